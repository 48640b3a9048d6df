package timeclock

import (
	"context"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
)

type Service interface {
	// ClockIn opens today's session. A repeated clock-in is not an error: the result
	// carries a warning and the original clock-in time.
	ClockIn(ctx context.Context, sess auth.Session) (ClockInResult, error)

	// ClockOut completes today's session and propagates the hours to the ledger.
	ClockOut(ctx context.Context, sess auth.Session) (RecordResponse, error)

	// Scan toggles the scanned user's session from a kiosk device.
	Scan(ctx context.Context, sess auth.Session, req ScanRequest) (ScanResult, error)

	// Today returns the caller's record for today, or nil.
	Today(ctx context.Context, userID string) (*RecordResponse, error)

	ListMonth(ctx context.Context, req ListMonthRequest) ([]RecordResponse, error)

	// AutoCloseStale closes in-progress sessions dated before today. An empty userID sweeps everyone.
	AutoCloseStale(ctx context.Context, userID string) (AutoCloseReport, error)

	// SweepOnDashboard runs AutoCloseStale for userID, sharing concurrent runs and
	// swallowing failures.
	SweepOnDashboard(ctx context.Context, userID string) AutoCloseReport
}
