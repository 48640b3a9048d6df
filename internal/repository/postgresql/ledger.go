package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/database"
)

const ledgerColumns = `id, user_id, month, year, entries, version, created_at, updated_at`

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.Repository {
	return &ledgerRepository{db: db}
}

func scanLedger(row pgx.Row) (ledger.Ledger, error) {
	var l ledger.Ledger
	var entries []byte
	if err := row.Scan(&l.ID, &l.UserID, &l.Month, &l.Year, &entries, &l.Version, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return ledger.Ledger{}, err
	}
	if err := json.Unmarshal(entries, &l.Entries); err != nil {
		return ledger.Ledger{}, fmt.Errorf("failed to decode ledger %s entries: %w", l.ID, err)
	}
	return l, nil
}

func (r *ledgerRepository) GetByKey(ctx context.Context, key string) (ledger.Ledger, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ledgerColumns + ` FROM monthly_ledgers WHERE id = $1`
	l, err := scanLedger(q.QueryRow(ctx, query, key))
	if err != nil {
		if isNoRows(err) {
			return ledger.Ledger{}, ledger.ErrLedgerNotFound
		}
		return ledger.Ledger{}, fmt.Errorf("failed to get ledger: %w", err)
	}
	return l, nil
}

// Save inserts with ON CONFLICT DO NOTHING for new documents and compares versions in the
// UPDATE predicate otherwise. Zero affected rows means another writer got there first.
func (r *ledgerRepository) Save(ctx context.Context, l ledger.Ledger, expectedVersion int64) (ledger.Ledger, error) {
	q := GetQuerier(ctx, r.db)

	entries, err := json.Marshal(l.Entries)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("failed to encode ledger entries: %w", err)
	}

	var row pgx.Row
	if expectedVersion == 0 {
		row = q.QueryRow(ctx, `
			INSERT INTO monthly_ledgers (id, user_id, month, year, entries, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, NOW(), NOW())
			ON CONFLICT (id) DO NOTHING
			RETURNING `+ledgerColumns,
			l.ID, l.UserID, l.Month, l.Year, entries,
		)
	} else {
		row = q.QueryRow(ctx, `
			UPDATE monthly_ledgers
			SET entries = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3
			RETURNING `+ledgerColumns,
			l.ID, entries, expectedVersion,
		)
	}

	saved, err := scanLedger(row)
	if err != nil {
		if isNoRows(err) {
			return ledger.Ledger{}, ledger.ErrLedgerConflict
		}
		return ledger.Ledger{}, fmt.Errorf("failed to save ledger: %w", err)
	}
	return saved, nil
}

func (r *ledgerRepository) Delete(ctx context.Context, key string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM monthly_ledgers WHERE id = $1`, key); err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListByMonth(ctx context.Context, month, year int) ([]ledger.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM monthly_ledgers WHERE month = $1 AND year = $2 ORDER BY id`
	return r.list(ctx, query, month, year)
}

// ListLegacy matches documents whose id spells the month with a leading zero.
func (r *ledgerRepository) ListLegacy(ctx context.Context) ([]ledger.Ledger, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM monthly_ledgers
		WHERE month < 10 AND id = user_id || '_0' || month::text || '_' || year::text
		ORDER BY id`
	return r.list(ctx, query)
}

func (r *ledgerRepository) list(ctx context.Context, query string, args ...interface{}) ([]ledger.Ledger, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	defer rows.Close()

	out := []ledger.Ledger{}
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}
