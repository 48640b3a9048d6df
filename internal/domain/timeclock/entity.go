package timeclock

import (
	"time"
)

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusAutoClosed Status = "auto-closed"
)

// Values written by the auto-close sweep.
const (
	AutoCloseReason        = "missing clock-out"
	AutoCloseClockOutTime  = "23:59"
	AutoCloseStandardHours = 8
)

// Record is the clock session of one user on one calendar day.
type Record struct {
	ID              string
	UserID          string
	Date            time.Time // calendar day, UTC midnight
	ClockInTime     string    // "HH:MM" in the service timezone
	ClockOutTime    *string
	ClockInAt       time.Time
	ClockOutAt      *time.Time
	StandardHours   int
	OvertimeHours   int
	Status          Status
	AutoCloseReason *string
	DeviceID        *string
	LedgerSync      *LedgerSync
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LedgerSync records the outcome of propagating a record's hours to the monthly ledger.
type LedgerSync struct {
	Applied  bool      `json:"applied"`
	Reason   string    `json:"reason,omitempty"`
	Error    string    `json:"error,omitempty"`
	SyncedAt time.Time `json:"synced_at"`
}
