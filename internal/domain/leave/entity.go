package leave

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
)

type Type string

const (
	TypePermission Type = "permission"
	TypeVacation   Type = "vacation"
	TypeSickness   Type = "sickness"
)

// PermissionKind narrows a permission request.
type PermissionKind string

const (
	PermissionDaily    PermissionKind = "daily"
	PermissionHourly   PermissionKind = "hourly"
	PermissionMultiDay PermissionKind = "multi-day"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// MaxMultiDayPermission is the largest number of working days a multi-day permission may span.
const MaxMultiDayPermission = 10

// MaxSpanYears bounds the calendar range of a single request.
const MaxSpanYears = 1

type LeaveRequest struct {
	ID              string
	UserID          string
	Type            Type
	PermissionKind  *PermissionKind
	Status          Status
	DateFrom        time.Time
	DateTo          *time.Time
	TimeFrom        *string
	TimeTo          *string
	Reason          string
	CertificatePath *string
	SyncInfo        *SyncInfo
	DesyncResult    *DesyncResult
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	DeletedAt       *time.Time
	DeletedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EndDate returns DateTo, or DateFrom for single-day requests.
func (r LeaveRequest) EndDate() time.Time {
	if r.DateTo != nil {
		return *r.DateTo
	}
	return r.DateFrom
}

// Kind returns the permission kind, or "" for other types.
func (r LeaveRequest) Kind() PermissionKind {
	if r.PermissionKind == nil {
		return ""
	}
	return *r.PermissionKind
}

// SyncInfo records the projection of an approved request onto the ledger.
type SyncInfo struct {
	SyncResult bool                 `json:"sync_result"`
	Code       ledger.Code          `json:"code,omitempty"`
	Dates      []ledger.DateOutcome `json:"dates"`
	Message    string               `json:"message,omitempty"`
	SyncedAt   time.Time            `json:"synced_at"`
}

// DesyncResult records the revert of a deleted approved request.
type DesyncResult struct {
	Success    bool                 `json:"success"`
	Dates      []ledger.DateOutcome `json:"dates"`
	DesyncedAt time.Time            `json:"desynced_at"`
}
