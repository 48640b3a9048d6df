package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveRequestOverlap          = errors.New("an active leave request already covers these dates")
	ErrOnlyApprovedDeletable        = errors.New("only approved leave requests can be deleted")
	ErrOnlyPendingCancellable       = errors.New("only pending leave requests can be cancelled")
	ErrNotOwner                     = errors.New("leave request belongs to another user")
	ErrInvalidCertificate           = errors.New("certificate must be a pdf, jpg, jpeg or png file of at most 5MB")
)
