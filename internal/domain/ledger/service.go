package ledger

import (
	"context"
	"time"
)

// Service owns every read-modify-write against ledger documents.
type Service interface {
	// Load returns nil when the user has no document for the month.
	Load(ctx context.Context, userID string, month, year int) (*Ledger, error)

	// GetMonth returns the full month view, stored entries merged into placeholders.
	GetMonth(ctx context.Context, userID string, month, year int) (MonthView, error)

	// Save applies the admin editor input.
	Save(ctx context.Context, req SaveRequest) (MonthView, error)

	// SyncClockHours propagates computed clock hours into the entry of date,
	// subject to the reconciliation policy.
	SyncClockHours(ctx context.Context, userID string, date time.Time, standard, overtime int, note string) (ClockSyncResult, error)

	// ApplyCode writes code into every given date.
	ApplyCode(ctx context.Context, userID string, dates []time.Time, code Code, note string) []DateOutcome

	// ClearDates resets every given date to placeholder form.
	ClearDates(ctx context.Context, userID string, dates []time.Time) []DateOutcome

	ListMonth(ctx context.Context, month, year int) ([]MonthView, error)

	// MigrateLegacyKeys rewrites zero-padded documents under canonical keys.
	MigrateLegacyKeys(ctx context.Context) (MigrationReport, error)
}
