package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/database"
)

const deviceColumns = `id, name, location, key_hash, active, last_seen_at, created_at, updated_at`

type deviceRepository struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepository{db: db}
}

func scanDevice(row pgx.Row) (device.Device, error) {
	var d device.Device
	err := row.Scan(&d.ID, &d.Name, &d.Location, &d.KeyHash, &d.Active, &d.LastSeenAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *deviceRepository) Create(ctx context.Context, d device.Device) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (id, name, location, key_hash, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + deviceColumns

	created, err := scanDevice(q.QueryRow(ctx, query, d.ID, d.Name, d.Location, d.KeyHash, d.Active))
	if err != nil {
		return device.Device{}, fmt.Errorf("failed to create device: %w", err)
	}
	return created, nil
}

func (r *deviceRepository) GetByID(ctx context.Context, id string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDevice(q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

func (r *deviceRepository) List(ctx context.Context) ([]device.Device, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	out := []device.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deviceRepository) Update(ctx context.Context, d device.Device) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE devices SET name = $2, location = $3, key_hash = $4, active = $5, updated_at = NOW() WHERE id = $1`
	result, err := q.Exec(ctx, query, d.ID, d.Name, d.Location, d.KeyHash, d.Active)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}

func (r *deviceRepository) Touch(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `UPDATE devices SET last_seen_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}
