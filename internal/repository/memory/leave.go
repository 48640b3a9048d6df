package memory

import (
	"context"
	"sort"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.s.leaves[req.ID] = req
	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.leaves[req.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	req.CreatedAt = stored.CreatedAt
	req.UpdatedAt = r.s.now()
	r.s.leaves[req.ID] = req
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.Filter) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []leave.LeaveRequest{}
	for _, req := range r.s.leaves {
		if matchLeave(req, filter) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateFrom.Equal(out[j].DateFrom) {
			return out[i].DateFrom.After(out[j].DateFrom)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchLeave(req leave.LeaveRequest, f leave.Filter) bool {
	switch {
	case !f.IncludeDeleted && req.DeletedAt != nil:
		return false
	case f.UserID != nil && req.UserID != *f.UserID:
		return false
	case f.Status != nil && req.Status != *f.Status:
		return false
	case f.Type != nil && req.Type != *f.Type:
		return false
	case f.From != nil && req.EndDate().Before(*f.From):
		return false
	case f.To != nil && req.DateFrom.After(*f.To):
		return false
	}
	return true
}
