package dashboard

import (
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
)

// DashboardResponse is the landing view of a signed-in user.
type DashboardResponse struct {
	Date                string                    `json:"date"`
	Today               *timeclock.RecordResponse `json:"today"`
	Month               ledger.MonthView          `json:"month"`
	PendingLeave        int                       `json:"pending_leave_requests"`
	UnreadNotifications int                       `json:"unread_notifications"`
	AutoClosed          int                       `json:"auto_closed_sessions"`
}
