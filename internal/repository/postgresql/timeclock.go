package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/database"
)

const recordColumns = `id, user_id, date, clock_in_time, clock_out_time, clock_in_at, clock_out_at,
	standard_hours, overtime_hours, status, auto_close_reason, device_id, ledger_sync, created_at, updated_at`

type timeclockRepository struct {
	db *database.DB
}

func NewTimeclockRepository(db *database.DB) timeclock.Repository {
	return &timeclockRepository{db: db}
}

func scanRecord(row pgx.Row) (timeclock.Record, error) {
	var rec timeclock.Record
	var status string
	var syncJSON []byte

	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.ClockInTime,
		&rec.ClockOutTime,
		&rec.ClockInAt,
		&rec.ClockOutAt,
		&rec.StandardHours,
		&rec.OvertimeHours,
		&status,
		&rec.AutoCloseReason,
		&rec.DeviceID,
		&syncJSON,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return timeclock.Record{}, err
	}

	rec.Status = timeclock.Status(status)
	rec.Date = calendar.DateOf(rec.Date)
	if len(syncJSON) > 0 {
		rec.LedgerSync = &timeclock.LedgerSync{}
		if err := json.Unmarshal(syncJSON, rec.LedgerSync); err != nil {
			return timeclock.Record{}, fmt.Errorf("failed to decode ledger sync: %w", err)
		}
	}
	return rec, nil
}

func encodeSync(s *timeclock.LedgerSync) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// CreateIfAbsent relies on the (user_id, date) unique constraint. When the insert is skipped
// the stored record is read back.
func (r *timeclockRepository) CreateIfAbsent(ctx context.Context, rec timeclock.Record) (timeclock.Record, bool, error) {
	q := GetQuerier(ctx, r.db)

	syncJSON, err := encodeSync(rec.LedgerSync)
	if err != nil {
		return timeclock.Record{}, false, err
	}

	query := `
		INSERT INTO time_clock_records (
			id, user_id, date, clock_in_time, clock_out_time, clock_in_at, clock_out_at,
			standard_hours, overtime_hours, status, auto_close_reason, device_id, ledger_sync,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		ON CONFLICT (user_id, date) DO NOTHING
		RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		calendar.DateOf(rec.Date),
		rec.ClockInTime,
		rec.ClockOutTime,
		rec.ClockInAt,
		rec.ClockOutAt,
		rec.StandardHours,
		rec.OvertimeHours,
		string(rec.Status),
		rec.AutoCloseReason,
		rec.DeviceID,
		syncJSON,
	))
	if err == nil {
		return created, true, nil
	}
	if !isNoRows(err) {
		return timeclock.Record{}, false, fmt.Errorf("failed to create time clock record: %w", err)
	}

	existing, err := r.GetByUserAndDate(ctx, rec.UserID, rec.Date)
	if err != nil {
		return timeclock.Record{}, false, err
	}
	return existing, false, nil
}

func (r *timeclockRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (timeclock.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + ` FROM time_clock_records WHERE user_id = $1 AND date = $2`
	rec, err := scanRecord(q.QueryRow(ctx, query, userID, calendar.DateOf(date)))
	if err != nil {
		if isNoRows(err) {
			return timeclock.Record{}, timeclock.ErrRecordNotFound
		}
		return timeclock.Record{}, fmt.Errorf("failed to get time clock record: %w", err)
	}
	return rec, nil
}

// Update is a compare-and-set on status.
func (r *timeclockRepository) Update(ctx context.Context, rec timeclock.Record, from timeclock.Status) error {
	q := GetQuerier(ctx, r.db)

	syncJSON, err := encodeSync(rec.LedgerSync)
	if err != nil {
		return err
	}

	query := `
		UPDATE time_clock_records
		SET clock_out_time = $3, clock_out_at = $4, standard_hours = $5, overtime_hours = $6,
			status = $7, auto_close_reason = $8, ledger_sync = $9, updated_at = NOW()
		WHERE user_id = $1 AND date = $2 AND status = $10
	`
	result, err := q.Exec(ctx, query,
		rec.UserID,
		calendar.DateOf(rec.Date),
		rec.ClockOutTime,
		rec.ClockOutAt,
		rec.StandardHours,
		rec.OvertimeHours,
		string(rec.Status),
		rec.AutoCloseReason,
		syncJSON,
		string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update time clock record: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByUserAndDate(ctx, rec.UserID, rec.Date); err != nil {
		return err
	}
	return timeclock.ErrStatusChanged
}

func (r *timeclockRepository) ListStaleOpen(ctx context.Context, userID string, before time.Time, limit int) ([]timeclock.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM time_clock_records
		WHERE status = $1 AND date < $2 AND ($3 = '' OR user_id = $3)
		ORDER BY date, user_id`
	args := []interface{}{string(timeclock.StatusInProgress), calendar.DateOf(before), userID}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

func (r *timeclockRepository) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]timeclock.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM time_clock_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`
	return r.list(ctx, query, userID, calendar.DateOf(from), calendar.DateOf(to))
}

func (r *timeclockRepository) list(ctx context.Context, query string, args ...interface{}) ([]timeclock.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time clock records: %w", err)
	}
	defer rows.Close()

	out := []timeclock.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time clock record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}
