package leave

import (
	"context"
	"time"
)

type Filter struct {
	UserID *string
	Status *Status
	Type   *Type
	// From and To select requests whose date range overlaps [From, To].
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, r LeaveRequest) (LeaveRequest, error)
	// GetByID returns soft-deleted requests too; callers check DeletedAt.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, r LeaveRequest) error
	// List orders by DateFrom descending.
	List(ctx context.Context, filter Filter) ([]LeaveRequest, error)
}
