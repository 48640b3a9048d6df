package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
)

// AutoCloseStale implements timeclock.Service.
func (s *timeclockService) AutoCloseStale(ctx context.Context, userID string) (timeclock.AutoCloseReport, error) {
	today := calendar.DateOf(s.nowLocal())

	stale, err := s.repo.ListStaleOpen(ctx, userID, today, s.cfg.SweepBatchSize)
	if err != nil {
		return timeclock.AutoCloseReport{}, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	var report timeclock.AutoCloseReport
	for _, rec := range stale {
		closed, err := s.autoClose(ctx, rec)
		if err != nil {
			slog.Error("failed to auto-close session", "record_id", rec.ID, "user_id", rec.UserID, "error", err)
			report.Failed++
			continue
		}
		if closed {
			report.Closed++
		}
	}

	if report.Closed > 0 || report.Failed > 0 {
		slog.Info("auto-close sweep finished", "user_id", userID, "closed", report.Closed, "failed", report.Failed)
	}
	return report, nil
}

func (s *timeclockService) autoClose(ctx context.Context, rec timeclock.Record) (bool, error) {
	clockOut := timeclock.AutoCloseClockOutTime
	reason := timeclock.AutoCloseReason
	clockOutAt := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(), 23, 59, 0, 0, s.cfg.Location).UTC()

	rec.ClockOutTime = &clockOut
	rec.ClockOutAt = &clockOutAt
	rec.StandardHours = timeclock.AutoCloseStandardHours
	rec.OvertimeHours = 0
	rec.Status = timeclock.StatusAutoClosed
	rec.AutoCloseReason = &reason

	if err := s.repo.Update(ctx, rec, timeclock.StatusInProgress); err != nil {
		if errors.Is(err, timeclock.ErrStatusChanged) {
			return false, nil
		}
		return false, err
	}

	rec.LedgerSync = s.syncLedger(ctx, rec, ledger.NoteAutoClose)
	if err := s.repo.Update(ctx, rec, timeclock.StatusAutoClosed); err != nil {
		slog.Warn("failed to store ledger sync outcome", "record_id", rec.ID, "error", err)
	}

	if s.notifier != nil {
		date := calendar.FormatDate(rec.Date)
		err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: rec.UserID,
			Type:        notification.TypeClockAutoClosed,
			Title:       "Session closed automatically",
			Message:     fmt.Sprintf("You did not clock out on %s; the day was closed at %s with %d hours.", date, clockOut, timeclock.AutoCloseStandardHours),
			Data:        map[string]interface{}{"record_id": rec.ID, "date": date},
		})
		if err != nil {
			slog.Warn("failed to queue auto-close notification", "user_id", rec.UserID, "error", err)
		}
	}

	return true, nil
}

// SweepOnDashboard implements timeclock.Service.
func (s *timeclockService) SweepOnDashboard(ctx context.Context, userID string) timeclock.AutoCloseReport {
	v, err, _ := s.sweeps.Do(userID, func() (interface{}, error) {
		// The sweep outlives a client that disconnects mid-request.
		sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SweepTimeout)
		defer cancel()
		return s.AutoCloseStale(sweepCtx, userID)
	})
	if err != nil {
		slog.Warn("dashboard auto-close sweep failed", "user_id", userID, "error", err)
		return timeclock.AutoCloseReport{}
	}
	return v.(timeclock.AutoCloseReport)
}
