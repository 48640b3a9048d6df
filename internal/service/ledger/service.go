package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
)

type Config struct {
	// Retries bounds the read-modify-write attempts made when a save hits a version conflict.
	Retries    int
	Constraint ledger.Constraint
}

func DefaultConfig() Config {
	return Config{Retries: 3, Constraint: ledger.EditorConstraint}
}

type ledgerService struct {
	repo ledger.Repository
	cfg  Config
}

func NewLedgerService(repo ledger.Repository, cfg Config) ledger.Service {
	if cfg.Retries <= 0 {
		cfg.Retries = 1
	}
	if cfg.Constraint == (ledger.Constraint{}) {
		cfg.Constraint = ledger.EditorConstraint
	}
	return &ledgerService{repo: repo, cfg: cfg}
}

// Load implements ledger.Service.
func (s *ledgerService) Load(ctx context.Context, userID string, month, year int) (*ledger.Ledger, error) {
	if !calendar.ValidMonth(month, year) {
		return nil, ledger.ErrInvalidMonth
	}

	l, err := s.repo.GetByKey(ctx, ledger.Key(userID, month, year))
	if err == nil {
		return &l, nil
	}
	if !errors.Is(err, ledger.ErrLedgerNotFound) {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	legacyKey := ledger.LegacyKey(userID, month, year)
	if legacyKey == ledger.Key(userID, month, year) {
		return nil, nil
	}

	l, err = s.repo.GetByKey(ctx, legacyKey)
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load legacy ledger: %w", err)
	}
	return &l, nil
}

// GetMonth implements ledger.Service.
func (s *ledgerService) GetMonth(ctx context.Context, userID string, month, year int) (ledger.MonthView, error) {
	l, err := s.Load(ctx, userID, month, year)
	if err != nil {
		return ledger.MonthView{}, err
	}
	return ledger.NewMonthView(userID, month, year, l), nil
}

// Save implements ledger.Service.
func (s *ledgerService) Save(ctx context.Context, req ledger.SaveRequest) (ledger.MonthView, error) {
	if err := req.Validate(); err != nil {
		return ledger.MonthView{}, err
	}

	l, err := s.update(ctx, req.UserID, req.Month, req.Year, req.Version, func(entries []ledger.DayEntry) (bool, error) {
		changed := false
		for _, in := range req.Entries {
			i := ledger.IndexOf(entries, in.Date)
			if i < 0 {
				return false, fmt.Errorf("%w: %s", ledger.ErrDateOutOfMonth, in.Date)
			}
			if applyManualEdit(&entries[i], in, s.cfg.Constraint) {
				changed = true
			}
		}
		return changed, nil
	})
	if err != nil {
		return ledger.MonthView{}, err
	}

	return ledger.NewMonthView(req.UserID, req.Month, req.Year, l), nil
}

// SyncClockHours implements ledger.Service.
func (s *ledgerService) SyncClockHours(ctx context.Context, userID string, date time.Time, standard, overtime int, note string) (ledger.ClockSyncResult, error) {
	date = calendar.DateOf(date)
	key := calendar.FormatDate(date)

	var result ledger.ClockSyncResult
	_, err := s.update(ctx, userID, int(date.Month()), date.Year(), nil, func(entries []ledger.DayEntry) (bool, error) {
		i := ledger.IndexOf(entries, key)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ledger.ErrDateOutOfMonth, key)
		}
		result = applyClockHours(&entries[i], standard, overtime, note)
		return result.Applied, nil
	})
	if err != nil {
		return ledger.ClockSyncResult{}, err
	}

	if !result.Applied {
		slog.Info("clock sync refused by ledger policy", "user_id", userID, "date", key, "reason", result.Reason)
	}
	return result, nil
}

// ApplyCode implements ledger.Service.
func (s *ledgerService) ApplyCode(ctx context.Context, userID string, dates []time.Time, code ledger.Code, note string) []ledger.DateOutcome {
	return s.forEachMonth(ctx, userID, dates, func(e *ledger.DayEntry) {
		e.SetCode(code, ledger.SourceLeaveSync, note)
	})
}

// ClearDates implements ledger.Service.
func (s *ledgerService) ClearDates(ctx context.Context, userID string, dates []time.Time) []ledger.DateOutcome {
	return s.forEachMonth(ctx, userID, dates, func(e *ledger.DayEntry) {
		e.Reset()
	})
}

// forEachMonth groups dates by month and runs one document update per month.
// Outcomes are returned in the order of dates.
func (s *ledgerService) forEachMonth(ctx context.Context, userID string, dates []time.Time, apply func(e *ledger.DayEntry)) []ledger.DateOutcome {
	type monthKey struct{ month, year int }

	groups := make(map[monthKey][]string)
	var order []monthKey
	for _, d := range dates {
		d = calendar.DateOf(d)
		k := monthKey{int(d.Month()), d.Year()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], calendar.FormatDate(d))
	}

	failed := make(map[string]string)
	for _, k := range order {
		days := groups[k]
		_, err := s.update(ctx, userID, k.month, k.year, nil, func(entries []ledger.DayEntry) (bool, error) {
			for _, day := range days {
				i := ledger.IndexOf(entries, day)
				if i < 0 {
					return false, fmt.Errorf("%w: %s", ledger.ErrDateOutOfMonth, day)
				}
				apply(&entries[i])
			}
			return true, nil
		})
		if err != nil {
			slog.Error("failed to update ledger month", "user_id", userID, "month", k.month, "year", k.year, "error", err)
			for _, day := range days {
				failed[day] = err.Error()
			}
		}
	}

	outcomes := make([]ledger.DateOutcome, 0, len(dates))
	for _, d := range dates {
		day := calendar.FormatDate(calendar.DateOf(d))
		if msg, ok := failed[day]; ok {
			outcomes = append(outcomes, ledger.DateOutcome{Date: day, Error: msg})
			continue
		}
		outcomes = append(outcomes, ledger.DateOutcome{Date: day, Success: true})
	}
	return outcomes
}

// ListMonth implements ledger.Service.
func (s *ledgerService) ListMonth(ctx context.Context, month, year int) ([]ledger.MonthView, error) {
	if !calendar.ValidMonth(month, year) {
		return nil, ledger.ErrInvalidMonth
	}

	docs, err := s.repo.ListByMonth(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}

	// A user may still have a legacy document next to the canonical one; canonical wins.
	byUser := make(map[string]ledger.Ledger, len(docs))
	for _, d := range docs {
		prev, ok := byUser[d.UserID]
		if ok && prev.ID == ledger.Key(d.UserID, month, year) {
			continue
		}
		byUser[d.UserID] = d
	}

	views := make([]ledger.MonthView, 0, len(byUser))
	for userID, d := range byUser {
		d := d
		views = append(views, ledger.NewMonthView(userID, month, year, &d))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].UserID < views[j].UserID })
	return views, nil
}

// MigrateLegacyKeys implements ledger.Service.
func (s *ledgerService) MigrateLegacyKeys(ctx context.Context) (ledger.MigrationReport, error) {
	legacy, err := s.repo.ListLegacy(ctx)
	if err != nil {
		return ledger.MigrationReport{}, fmt.Errorf("failed to list legacy ledgers: %w", err)
	}

	report := ledger.MigrationReport{Scanned: len(legacy)}
	for _, old := range legacy {
		merged, err := s.migrateOne(ctx, old)
		if err != nil {
			slog.Error("failed to migrate legacy ledger", "key", old.ID, "error", err)
			report.Failed = append(report.Failed, old.ID)
			continue
		}
		report.Migrated++
		if merged {
			report.Merged++
		}
	}
	return report, nil
}

func (s *ledgerService) migrateOne(ctx context.Context, old ledger.Ledger) (bool, error) {
	key := ledger.Key(old.UserID, old.Month, old.Year)

	current, err := s.repo.GetByKey(ctx, key)
	switch {
	case errors.Is(err, ledger.ErrLedgerNotFound):
		fresh := old
		fresh.ID = key
		fresh.Entries = ledger.MergeExisting(ledger.GenerateEmptyMonth(old.Month, old.Year), old.Entries)
		if _, err := s.repo.Save(ctx, fresh, 0); err != nil {
			return false, err
		}
		return false, s.repo.Delete(ctx, old.ID)
	case err != nil:
		return false, err
	}

	// Canonical data wins; legacy data only fills days the canonical document leaves empty.
	entries := ledger.MergeExisting(ledger.GenerateEmptyMonth(old.Month, old.Year), current.Entries)
	legacyEntries := ledger.MergeExisting(ledger.GenerateEmptyMonth(old.Month, old.Year), old.Entries)
	for i := range entries {
		if !entries[i].HasData && legacyEntries[i].HasData {
			entries[i] = legacyEntries[i]
		}
	}
	current.Entries = entries
	if _, err := s.repo.Save(ctx, current, current.Version); err != nil {
		return false, err
	}
	return true, s.repo.Delete(ctx, old.ID)
}

// update runs a whole-document read-modify-write under optimistic concurrency. A caller
// supplied expectedVersion disables retries: a mismatch is reported as ErrLedgerConflict.
func (s *ledgerService) update(
	ctx context.Context,
	userID string,
	month, year int,
	expectedVersion *int64,
	fn func(entries []ledger.DayEntry) (bool, error),
) (*ledger.Ledger, error) {
	key := ledger.Key(userID, month, year)

	for attempt := 1; ; attempt++ {
		current, err := s.Load(ctx, userID, month, year)
		if err != nil {
			return nil, err
		}

		var (
			base    int64
			stored  []ledger.DayEntry
			created time.Time
		)
		if current != nil {
			stored = current.Entries
			// A legacy document is rewritten under the canonical key.
			if current.ID == key {
				base = current.Version
				created = current.CreatedAt
			}
		}

		if expectedVersion != nil && *expectedVersion != base {
			return nil, ledger.ErrLedgerConflict
		}

		entries := ledger.MergeExisting(ledger.GenerateEmptyMonth(month, year), stored)
		changed, err := fn(entries)
		if err != nil {
			return nil, err
		}
		if !changed {
			return current, nil
		}

		saved, err := s.repo.Save(ctx, ledger.Ledger{
			ID:        key,
			UserID:    userID,
			Month:     month,
			Year:      year,
			Entries:   entries,
			CreatedAt: created,
		}, base)
		if err == nil {
			return &saved, nil
		}

		if errors.Is(err, ledger.ErrLedgerConflict) && expectedVersion == nil && attempt < s.cfg.Retries {
			slog.Warn("ledger version conflict, retrying", "key", key, "attempt", attempt)
			continue
		}
		if errors.Is(err, ledger.ErrLedgerConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}
}
