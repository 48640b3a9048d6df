package timeclock

import (
	"context"
	"time"
)

type Repository interface {
	// CreateIfAbsent atomically inserts rec unless a record for (rec.UserID, rec.Date) exists.
	// It returns the stored record and whether it was created by this call.
	CreateIfAbsent(ctx context.Context, rec Record) (Record, bool, error)

	// GetByUserAndDate returns ErrRecordNotFound when the user has no record that day.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (Record, error)

	// Update replaces rec only while the stored status still equals from, otherwise ErrStatusChanged.
	Update(ctx context.Context, rec Record, from Status) error

	// ListStaleOpen returns in-progress records dated before the given day, oldest first.
	// An empty userID matches every user.
	ListStaleOpen(ctx context.Context, userID string, before time.Time, limit int) ([]Record, error)

	// ListByUserAndRange returns the user's records with from <= date <= to, ordered by date.
	ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]Record, error)
}
