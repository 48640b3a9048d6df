package leave

import (
	"context"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
)

type LeaveRequestService interface {
	Create(ctx context.Context, sess auth.Session, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Get(ctx context.Context, sess auth.Session, id string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, sess auth.Session, filter ListRequest) ([]LeaveRequestResponse, error)
	List(ctx context.Context, filter ListRequest) ([]LeaveRequestResponse, error)
	CountPending(ctx context.Context, userID string) (int, error)

	// Approve transitions a pending request and projects it onto the ledger. Projection
	// failures are stored on the request, never returned.
	Approve(ctx context.Context, sess auth.Session, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, sess auth.Session, id string, req RejectRequest) (LeaveRequestResponse, error)

	// Delete soft-deletes an approved request and reverts its ledger days.
	Delete(ctx context.Context, sess auth.Session, id string) (LeaveRequestResponse, error)

	// Cancel lets the owner withdraw a pending request.
	Cancel(ctx context.Context, sess auth.Session, id string) error
}
