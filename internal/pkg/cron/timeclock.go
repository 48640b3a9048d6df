package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
)

// Sweeper closes stale sessions. An empty userID sweeps every user.
type Sweeper interface {
	AutoCloseStale(ctx context.Context, userID string) (timeclock.AutoCloseReport, error)
}

type TimeClockJobs struct {
	sweeper  Sweeper
	interval time.Duration
}

func NewTimeClockJobs(sweeper Sweeper, interval time.Duration) *TimeClockJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TimeClockJobs{sweeper: sweeper, interval: interval}
}

func (j *TimeClockJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", j.interval, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions closes every in-progress session dated before today.
func (j *TimeClockJobs) AutoCloseStaleSessions(ctx context.Context) error {
	report, err := j.sweeper.AutoCloseStale(ctx, "")
	if err != nil {
		return err
	}
	if report.Closed > 0 || report.Failed > 0 {
		slog.Info("Cron: auto-closed stale sessions", "closed", report.Closed, "failed", report.Failed)
	}
	return nil
}
