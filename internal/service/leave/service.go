package leave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

// LedgerProjector writes and reverts leave codes in the monthly ledgers.
type LedgerProjector interface {
	ApplyCode(ctx context.Context, userID string, dates []time.Time, code ledger.Code, note string) []ledger.DateOutcome
	ClearDates(ctx context.Context, userID string, dates []time.Time) []ledger.DateOutcome
}

// CertificateStore keeps sickness certificates.
type CertificateStore interface {
	UploadCertificate(ctx context.Context, userID string, file io.Reader, filename string) (string, error)
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

const certificateURLExpiry = 15 * time.Minute

type Config struct {
	Now func() time.Time
}

type leaveService struct {
	repo     leave.LeaveRequestRepository
	ledger   LedgerProjector
	files    CertificateStore
	users    user.UserRepository
	notifier notification.Service
	now      func() time.Time
}

// NewLeaveService wires the leave request workflow. files and notifier may be nil.
func NewLeaveService(
	repo leave.LeaveRequestRepository,
	projector LedgerProjector,
	files CertificateStore,
	users user.UserRepository,
	notifier notification.Service,
	cfg Config,
) leave.LeaveRequestService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &leaveService{
		repo:     repo,
		ledger:   projector,
		files:    files,
		users:    users,
		notifier: notifier,
		now:      cfg.Now,
	}
}

// Create implements leave.LeaveRequestService.
func (s *leaveService) Create(ctx context.Context, sess auth.Session, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if sess.UserID == "" {
		return leave.LeaveRequestResponse{}, auth.ErrNoSession
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	from, _ := calendar.ParseDate(req.DateFrom)
	r := leave.LeaveRequest{
		ID:             uuid.New().String(),
		UserID:         sess.UserID,
		Type:           req.Type,
		PermissionKind: req.PermissionKind,
		Status:         leave.StatusPending,
		DateFrom:       from,
		Reason:         req.Reason,
	}
	if req.DateTo != nil && *req.DateTo != "" {
		to, _ := calendar.ParseDate(*req.DateTo)
		r.DateTo = &to
	}
	if r.Kind() == leave.PermissionHourly {
		r.TimeFrom = req.TimeFrom
		r.TimeTo = req.TimeTo
	}

	if err := s.ensureNoOverlap(ctx, r); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if req.File != nil && req.FileHeader != nil {
		if s.files == nil {
			return leave.LeaveRequestResponse{}, fmt.Errorf("certificate storage is not configured")
		}
		path, err := s.files.UploadCertificate(ctx, sess.UserID, req.File, req.FileHeader.Filename)
		if err != nil {
			return leave.LeaveRequestResponse{}, fmt.Errorf("failed to upload certificate: %w", err)
		}
		r.CertificatePath = &path
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	s.notifyAdmins(ctx, created)
	return s.toResponse(ctx, created), nil
}

func (s *leaveService) ensureNoOverlap(ctx context.Context, r leave.LeaveRequest) error {
	from, to := r.DateFrom, r.EndDate()
	existing, err := s.repo.List(ctx, leave.Filter{UserID: &r.UserID, From: &from, To: &to})
	if err != nil {
		return fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	for _, e := range existing {
		if e.Status == leave.StatusRejected || e.DeletedAt != nil {
			continue
		}
		// Hourly permissions on the same day may coexist.
		if r.Kind() == leave.PermissionHourly && e.Kind() == leave.PermissionHourly && !timesOverlap(r, e) {
			continue
		}
		return leave.ErrLeaveRequestOverlap
	}
	return nil
}

func timesOverlap(a, b leave.LeaveRequest) bool {
	if a.TimeFrom == nil || a.TimeTo == nil || b.TimeFrom == nil || b.TimeTo == nil {
		return true
	}
	// "HH:MM" strings compare in time order.
	return *a.TimeFrom < *b.TimeTo && *b.TimeFrom < *a.TimeTo
}

// Get implements leave.LeaveRequestService.
func (s *leaveService) Get(ctx context.Context, sess auth.Session, id string) (leave.LeaveRequestResponse, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !sess.IsAdmin() {
		if r.UserID != sess.UserID {
			return leave.LeaveRequestResponse{}, leave.ErrNotOwner
		}
		if r.DeletedAt != nil {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
	}
	return s.toResponse(ctx, r), nil
}

// ListMine implements leave.LeaveRequestService.
func (s *leaveService) ListMine(ctx context.Context, sess auth.Session, req leave.ListRequest) ([]leave.LeaveRequestResponse, error) {
	if sess.UserID == "" {
		return nil, auth.ErrNoSession
	}
	userID := sess.UserID
	req.UserID = &userID
	return s.List(ctx, req)
}

// List implements leave.LeaveRequestService.
func (s *leaveService) List(ctx context.Context, req leave.ListRequest) ([]leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requests, err := s.repo.List(ctx, leave.Filter{UserID: req.UserID, Status: req.Status, Type: req.Type})
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	resp := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, s.toResponse(ctx, r))
	}
	return resp, nil
}

// CountPending implements leave.LeaveRequestService.
func (s *leaveService) CountPending(ctx context.Context, userID string) (int, error) {
	status := leave.StatusPending
	filter := leave.Filter{Status: &status}
	if userID != "" {
		filter.UserID = &userID
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending leave requests: %w", err)
	}
	return len(requests), nil
}

// Approve implements leave.LeaveRequestService.
func (s *leaveService) Approve(ctx context.Context, sess auth.Session, id string) (leave.LeaveRequestResponse, error) {
	r, err := s.getPendingForReview(ctx, sess, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	now := s.now().UTC()
	reviewer := sess.UserID
	r.Status = leave.StatusApproved
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now

	if err := s.repo.Update(ctx, r); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to approve leave request: %w", err)
	}

	r.SyncInfo = s.sync(ctx, r)
	if err := s.repo.Update(ctx, r); err != nil {
		slog.Error("failed to store leave sync info", "leave_request_id", r.ID, "error", err)
	}

	s.notifyOwner(ctx, r, notification.TypeLeaveApproved, "Leave request approved",
		fmt.Sprintf("Your %s request from %s was approved.", r.Type, calendar.FormatDate(r.DateFrom)))

	return s.toResponse(ctx, r), nil
}

// sync projects an approved request onto the ledger. Failures are recorded per date.
func (s *leaveService) sync(ctx context.Context, r leave.LeaveRequest) *leave.SyncInfo {
	info := &leave.SyncInfo{SyncedAt: s.now().UTC()}

	p := leave.Project(r)
	if p.Manual {
		info.Message = "no ledger projection for this request, enter hours manually"
		info.Dates = []ledger.DateOutcome{}
		return info
	}

	info.Code = p.Code
	info.Dates = s.ledger.ApplyCode(ctx, r.UserID, p.Dates, p.Code, syncNote(r))
	info.SyncResult = allSucceeded(info.Dates)
	if !info.SyncResult {
		info.Message = "some dates could not be written to the ledger"
		slog.Warn("leave request partially synchronized", "leave_request_id", r.ID, "user_id", r.UserID)
	}
	return info
}

func syncNote(r leave.LeaveRequest) string {
	if r.Type == leave.TypePermission {
		return fmt.Sprintf("%s permission (request %s)", r.Kind(), r.ID)
	}
	return fmt.Sprintf("%s (request %s)", r.Type, r.ID)
}

func allSucceeded(outcomes []ledger.DateOutcome) bool {
	for _, o := range outcomes {
		if !o.Success {
			return false
		}
	}
	return true
}

// Reject implements leave.LeaveRequestService.
func (s *leaveService) Reject(ctx context.Context, sess auth.Session, id string, req leave.RejectRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	r, err := s.getPendingForReview(ctx, sess, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	now := s.now().UTC()
	reviewer := sess.UserID
	r.Status = leave.StatusRejected
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	r.RejectionReason = &req.Reason

	if err := s.repo.Update(ctx, r); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to reject leave request: %w", err)
	}

	s.notifyOwner(ctx, r, notification.TypeLeaveRejected, "Leave request rejected",
		fmt.Sprintf("Your %s request from %s was rejected: %s", r.Type, calendar.FormatDate(r.DateFrom), req.Reason))

	return s.toResponse(ctx, r), nil
}

func (s *leaveService) getPendingForReview(ctx context.Context, sess auth.Session, id string) (leave.LeaveRequest, error) {
	if !sess.IsAdmin() {
		return leave.LeaveRequest{}, user.ErrAdminPrivilegeRequired
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if r.DeletedAt != nil {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if r.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	return r, nil
}

// Delete implements leave.LeaveRequestService.
func (s *leaveService) Delete(ctx context.Context, sess auth.Session, id string) (leave.LeaveRequestResponse, error) {
	if !sess.IsAdmin() {
		return leave.LeaveRequestResponse{}, user.ErrAdminPrivilegeRequired
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if r.DeletedAt != nil {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	if r.Status != leave.StatusApproved {
		return leave.LeaveRequestResponse{}, leave.ErrOnlyApprovedDeletable
	}

	now := s.now().UTC()
	deletedBy := sess.UserID
	r.DeletedAt = &now
	r.DeletedBy = &deletedBy

	if err := s.repo.Update(ctx, r); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to delete leave request: %w", err)
	}

	r.DesyncResult = s.desync(ctx, r)
	if err := s.repo.Update(ctx, r); err != nil {
		slog.Error("failed to store leave desync result", "leave_request_id", r.ID, "error", err)
	}

	s.notifyOwner(ctx, r, notification.TypeLeaveRevoked, "Leave request revoked",
		fmt.Sprintf("Your approved %s request from %s was removed.", r.Type, calendar.FormatDate(r.DateFrom)))

	return s.toResponse(ctx, r), nil
}

// desync resets every projected date to placeholder, whatever was written there since.
func (s *leaveService) desync(ctx context.Context, r leave.LeaveRequest) *leave.DesyncResult {
	result := &leave.DesyncResult{DesyncedAt: s.now().UTC(), Dates: []ledger.DateOutcome{}}

	p := leave.Project(r)
	if p.Manual {
		result.Success = true
		return result
	}

	result.Dates = s.ledger.ClearDates(ctx, r.UserID, p.Dates)
	result.Success = allSucceeded(result.Dates)
	if !result.Success {
		slog.Warn("leave request partially desynchronized", "leave_request_id", r.ID, "user_id", r.UserID)
	}
	return result
}

// Cancel implements leave.LeaveRequestService.
func (s *leaveService) Cancel(ctx context.Context, sess auth.Session, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.DeletedAt != nil {
		return leave.ErrLeaveRequestNotFound
	}
	if r.UserID != sess.UserID {
		return leave.ErrNotOwner
	}
	if r.Status != leave.StatusPending {
		return leave.ErrOnlyPendingCancellable
	}

	now := s.now().UTC()
	r.DeletedAt = &now
	r.DeletedBy = &sess.UserID
	if err := s.repo.Update(ctx, r); err != nil {
		return fmt.Errorf("failed to cancel leave request: %w", err)
	}
	return nil
}

func (s *leaveService) toResponse(ctx context.Context, r leave.LeaveRequest) leave.LeaveRequestResponse {
	resp := leave.NewLeaveRequestResponse(r)
	if r.CertificatePath != nil && s.files != nil {
		url, err := s.files.GetFileURL(ctx, *r.CertificatePath, certificateURLExpiry)
		if err != nil {
			slog.Warn("failed to build certificate url", "leave_request_id", r.ID, "error", err)
		} else {
			resp.CertificateURL = &url
		}
	}
	return resp
}

func (s *leaveService) notifyOwner(ctx context.Context, r leave.LeaveRequest, typ notification.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: r.UserID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data:        map[string]interface{}{"leave_request_id": r.ID},
	})
	if err != nil {
		slog.Warn("failed to queue leave notification", "leave_request_id", r.ID, "type", typ, "error", err)
	}
}

func (s *leaveService) notifyAdmins(ctx context.Context, r leave.LeaveRequest) {
	if s.notifier == nil || s.users == nil {
		return
	}

	admin := user.RoleAdmin
	admins, err := s.users.List(ctx, user.Filter{Role: &admin, ActiveOnly: true})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("failed to list admins for leave notification", "error", err)
		}
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, a := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: a.ID,
			SenderID:    &r.UserID,
			Type:        notification.TypeLeaveSubmitted,
			Title:       "New leave request",
			Message:     fmt.Sprintf("A %s request from %s is waiting for review.", r.Type, calendar.FormatDate(r.DateFrom)),
			Data:        map[string]interface{}{"leave_request_id": r.ID},
		})
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Warn("failed to queue leave notification", "leave_request_id", r.ID, "type", notification.TypeLeaveSubmitted, "error", err)
	}
}
