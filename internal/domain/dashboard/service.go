package dashboard

import (
	"context"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
)

type DashboardService interface {
	// Get closes the caller's stale sessions, then assembles the dashboard.
	Get(ctx context.Context, sess auth.Session) (*DashboardResponse, error)
}
