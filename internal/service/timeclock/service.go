package timeclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

// LedgerSyncer receives the hours of closed sessions.
type LedgerSyncer interface {
	SyncClockHours(ctx context.Context, userID string, date time.Time, standard, overtime int, note string) (ledger.ClockSyncResult, error)
}

type Config struct {
	// Location is the timezone that defines "today" and the HH:MM clock times.
	Location *time.Location
	// SweepBatchSize bounds the records closed per sweep invocation.
	SweepBatchSize int
	// SweepTimeout bounds a dashboard-triggered sweep.
	SweepTimeout time.Duration
	// RescanWindow is how long after clock-in a kiosk scan repeats the clock-in instead of
	// clocking out.
	RescanWindow time.Duration
	Now          func() time.Time
}

type timeclockService struct {
	repo     timeclock.Repository
	users    user.UserRepository
	ledger   LedgerSyncer
	notifier notification.Service
	cfg      Config
	sweeps   singleflight.Group
}

// NewTimeclockService wires the recorder. notifier may be nil.
func NewTimeclockService(
	repo timeclock.Repository,
	users user.UserRepository,
	ledgerSyncer LedgerSyncer,
	notifier notification.Service,
	cfg Config,
) timeclock.Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 50
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 30 * time.Second
	}
	if cfg.RescanWindow <= 0 {
		cfg.RescanWindow = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &timeclockService{
		repo:     repo,
		users:    users,
		ledger:   ledgerSyncer,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *timeclockService) nowLocal() time.Time {
	return s.cfg.Now().In(s.cfg.Location)
}

// ClockIn implements timeclock.Service.
func (s *timeclockService) ClockIn(ctx context.Context, sess auth.Session) (timeclock.ClockInResult, error) {
	if sess.UserID == "" {
		return timeclock.ClockInResult{}, auth.ErrNoSession
	}
	return s.clockIn(ctx, sess.UserID, nil)
}

func (s *timeclockService) clockIn(ctx context.Context, userID string, deviceID *string) (timeclock.ClockInResult, error) {
	local := s.nowLocal()

	rec := timeclock.Record{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        calendar.DateOf(local),
		ClockInTime: local.Format(calendar.TimeLayout),
		ClockInAt:   local.UTC(),
		Status:      timeclock.StatusInProgress,
		DeviceID:    deviceID,
	}

	stored, created, err := s.repo.CreateIfAbsent(ctx, rec)
	if err != nil {
		return timeclock.ClockInResult{}, fmt.Errorf("failed to create time clock record: %w", err)
	}

	if !created {
		return timeclock.ClockInResult{
			Record:           timeclock.NewRecordResponse(stored),
			AlreadyClockedIn: true,
			Warning:          alreadyClockedIn(stored),
		}, nil
	}

	slog.Info("clocked in", "user_id", userID, "date", calendar.FormatDate(stored.Date), "time", stored.ClockInTime)
	return timeclock.ClockInResult{Record: timeclock.NewRecordResponse(stored)}, nil
}

// ClockOut implements timeclock.Service.
func (s *timeclockService) ClockOut(ctx context.Context, sess auth.Session) (timeclock.RecordResponse, error) {
	if sess.UserID == "" {
		return timeclock.RecordResponse{}, auth.ErrNoSession
	}
	return s.clockOut(ctx, sess.UserID)
}

func (s *timeclockService) clockOut(ctx context.Context, userID string) (timeclock.RecordResponse, error) {
	local := s.nowLocal()

	rec, err := s.repo.GetByUserAndDate(ctx, userID, calendar.DateOf(local))
	if err != nil {
		if errors.Is(err, timeclock.ErrRecordNotFound) {
			return timeclock.RecordResponse{}, timeclock.ErrNotClockedIn
		}
		return timeclock.RecordResponse{}, fmt.Errorf("failed to get today's record: %w", err)
	}

	if conflict := stateConflict(rec); conflict != nil {
		return timeclock.RecordResponse{}, conflict
	}

	clockOut := local.Format(calendar.TimeLayout)
	if clockOut == rec.ClockInTime {
		return timeclock.RecordResponse{}, &timeclock.StateConflictError{Err: timeclock.ErrClockOutTooSoon, Record: rec}
	}
	hours, err := timeclock.ComputeHours(rec.ClockInTime, clockOut)
	if err != nil {
		return timeclock.RecordResponse{}, err
	}

	clockOutAt := local.UTC()
	rec.ClockOutTime = &clockOut
	rec.ClockOutAt = &clockOutAt
	rec.StandardHours = hours.Standard
	rec.OvertimeHours = hours.Overtime
	rec.Status = timeclock.StatusCompleted

	if err := s.repo.Update(ctx, rec, timeclock.StatusInProgress); err != nil {
		if errors.Is(err, timeclock.ErrStatusChanged) {
			if current, getErr := s.repo.GetByUserAndDate(ctx, userID, rec.Date); getErr == nil {
				if conflict := stateConflict(current); conflict != nil {
					return timeclock.RecordResponse{}, conflict
				}
			}
		}
		return timeclock.RecordResponse{}, fmt.Errorf("failed to complete time clock record: %w", err)
	}

	slog.Info("clocked out", "user_id", userID, "date", calendar.FormatDate(rec.Date),
		"standard_hours", rec.StandardHours, "overtime_hours", rec.OvertimeHours)

	// Ledger propagation is a secondary effect; its failure is recorded, never returned.
	rec.LedgerSync = s.syncLedger(ctx, rec, "")
	if err := s.repo.Update(ctx, rec, timeclock.StatusCompleted); err != nil {
		slog.Warn("failed to store ledger sync outcome", "record_id", rec.ID, "error", err)
	}

	return timeclock.NewRecordResponse(rec), nil
}

func alreadyClockedIn(rec timeclock.Record) string {
	return fmt.Sprintf("already clocked in today at %s", rec.ClockInTime)
}

func stateConflict(rec timeclock.Record) error {
	switch rec.Status {
	case timeclock.StatusCompleted:
		return &timeclock.StateConflictError{Err: timeclock.ErrAlreadyClockedOut, Record: rec}
	case timeclock.StatusAutoClosed:
		return &timeclock.StateConflictError{Err: timeclock.ErrAutoClosed, Record: rec}
	}
	return nil
}

func (s *timeclockService) syncLedger(ctx context.Context, rec timeclock.Record, note string) *timeclock.LedgerSync {
	outcome := &timeclock.LedgerSync{SyncedAt: s.cfg.Now().UTC()}

	res, err := s.ledger.SyncClockHours(ctx, rec.UserID, rec.Date, rec.StandardHours, rec.OvertimeHours, note)
	if err != nil {
		slog.Error("failed to sync clock hours to ledger",
			"user_id", rec.UserID, "date", calendar.FormatDate(rec.Date), "error", err)
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Applied = res.Applied
	outcome.Reason = res.Reason
	return outcome
}

// Scan implements timeclock.Service.
func (s *timeclockService) Scan(ctx context.Context, sess auth.Session, req timeclock.ScanRequest) (timeclock.ScanResult, error) {
	if !sess.IsDevice() {
		return timeclock.ScanResult{}, auth.ErrInvalidDevice
	}
	if err := req.Validate(); err != nil {
		return timeclock.ScanResult{}, err
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return timeclock.ScanResult{}, err
	}
	if !u.Active {
		return timeclock.ScanResult{}, user.ErrUserInactive
	}
	if !u.QRActive {
		return timeclock.ScanResult{}, user.ErrQRInactive
	}

	rec, err := s.repo.GetByUserAndDate(ctx, u.ID, calendar.DateOf(s.nowLocal()))
	switch {
	case errors.Is(err, timeclock.ErrRecordNotFound):
		deviceID := sess.DeviceID
		res, err := s.clockIn(ctx, u.ID, &deviceID)
		if err != nil {
			return timeclock.ScanResult{}, err
		}
		return timeclock.ScanResult{Action: timeclock.ScanActionClockIn, Record: res.Record, Warning: res.Warning}, nil
	case err != nil:
		return timeclock.ScanResult{}, fmt.Errorf("failed to get today's record: %w", err)
	}

	if conflict := stateConflict(rec); conflict != nil {
		return timeclock.ScanResult{}, conflict
	}

	// A badge read again shortly after clock-in repeats the clock-in.
	if s.cfg.Now().Sub(rec.ClockInAt) < s.cfg.RescanWindow {
		return timeclock.ScanResult{
			Action:  timeclock.ScanActionClockIn,
			Record:  timeclock.NewRecordResponse(rec),
			Warning: alreadyClockedIn(rec),
		}, nil
	}

	out, err := s.clockOut(ctx, u.ID)
	if err != nil {
		return timeclock.ScanResult{}, err
	}
	return timeclock.ScanResult{Action: timeclock.ScanActionClockOut, Record: out}, nil
}

// Today implements timeclock.Service.
func (s *timeclockService) Today(ctx context.Context, userID string) (*timeclock.RecordResponse, error) {
	rec, err := s.repo.GetByUserAndDate(ctx, userID, calendar.DateOf(s.nowLocal()))
	if err != nil {
		if errors.Is(err, timeclock.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get today's record: %w", err)
	}
	resp := timeclock.NewRecordResponse(rec)
	return &resp, nil
}

// ListMonth implements timeclock.Service.
func (s *timeclockService) ListMonth(ctx context.Context, req timeclock.ListMonthRequest) ([]timeclock.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	records, err := s.repo.ListByUserAndRange(ctx, req.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time clock records: %w", err)
	}

	resp := make([]timeclock.RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, timeclock.NewRecordResponse(r))
	}
	return resp, nil
}
