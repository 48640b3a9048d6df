package ledger

import "context"

// Repository persists whole ledger documents.
type Repository interface {
	// GetByKey returns ErrLedgerNotFound when no document is stored under key.
	GetByKey(ctx context.Context, key string) (Ledger, error)

	// Save writes l as a whole document. expectedVersion 0 creates the document and fails with
	// ErrLedgerConflict if it already exists; otherwise the stored version must equal
	// expectedVersion. The returned ledger carries the new version.
	Save(ctx context.Context, l Ledger, expectedVersion int64) (Ledger, error)

	Delete(ctx context.Context, key string) error

	// ListByMonth returns every ledger of the given month under either key form.
	ListByMonth(ctx context.Context, month, year int) ([]Ledger, error)

	// ListLegacy returns documents still stored under zero-padded keys.
	ListLegacy(ctx context.Context) ([]Ledger, error)
}
