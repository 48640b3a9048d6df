package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeClockAutoClosed  NotificationType = "clock_auto_closed"
	TypeLeaveSubmitted   NotificationType = "leave_submitted"
	TypeLeaveApproved    NotificationType = "leave_approved"
	TypeLeaveRejected    NotificationType = "leave_rejected"
	TypeLeaveRevoked     NotificationType = "leave_revoked"
	TypeLedgerSyncFailed NotificationType = "ledger_sync_failed"
	TypeLedgerEdited     NotificationType = "ledger_edited"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
