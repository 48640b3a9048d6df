package memory

import (
	"context"
	"sort"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
)

type ledgerRepository struct {
	s *Store
}

func NewLedgerRepository(s *Store) ledger.Repository {
	return &ledgerRepository{s: s}
}

func copyLedger(l ledger.Ledger) ledger.Ledger {
	l.Entries = append([]ledger.DayEntry(nil), l.Entries...)
	return l
}

func (r *ledgerRepository) GetByKey(ctx context.Context, key string) (ledger.Ledger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.ledgers[key]
	if !ok {
		return ledger.Ledger{}, ledger.ErrLedgerNotFound
	}
	return copyLedger(l), nil
}

func (r *ledgerRepository) Save(ctx context.Context, l ledger.Ledger, expectedVersion int64) (ledger.Ledger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, exists := r.s.ledgers[l.ID]
	switch {
	case expectedVersion == 0 && exists:
		return ledger.Ledger{}, ledger.ErrLedgerConflict
	case expectedVersion != 0 && (!exists || stored.Version != expectedVersion):
		return ledger.Ledger{}, ledger.ErrLedgerConflict
	}

	now := r.s.now()
	if exists {
		l.CreatedAt = stored.CreatedAt
	} else if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	l.Version = expectedVersion + 1

	l = copyLedger(l)
	r.s.ledgers[l.ID] = l
	return copyLedger(l), nil
}

func (r *ledgerRepository) Delete(ctx context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.ledgers, key)
	return nil
}

func (r *ledgerRepository) ListByMonth(ctx context.Context, month, year int) ([]ledger.Ledger, error) {
	return r.list(func(l ledger.Ledger) bool { return l.Month == month && l.Year == year }), nil
}

func (r *ledgerRepository) ListLegacy(ctx context.Context) ([]ledger.Ledger, error) {
	return r.list(func(l ledger.Ledger) bool { return ledger.IsLegacyKey(l.ID) }), nil
}

func (r *ledgerRepository) list(match func(ledger.Ledger) bool) []ledger.Ledger {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []ledger.Ledger{}
	for _, l := range r.s.ledgers {
		if match(l) {
			out = append(out, copyLedger(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
