package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/database"
)

const leaveColumns = `id, user_id, type, permission_kind, status, date_from, date_to, time_from, time_to,
	reason, certificate_path, sync_info, desync_result, reviewed_by, reviewed_at, rejection_reason,
	deleted_at, deleted_by, created_at, updated_at`

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	var typ, status string
	var kind *string
	var syncJSON, desyncJSON []byte

	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&typ,
		&kind,
		&status,
		&req.DateFrom,
		&req.DateTo,
		&req.TimeFrom,
		&req.TimeTo,
		&req.Reason,
		&req.CertificatePath,
		&syncJSON,
		&desyncJSON,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.RejectionReason,
		&req.DeletedAt,
		&req.DeletedBy,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return leave.LeaveRequest{}, err
	}

	req.Type = leave.Type(typ)
	req.Status = leave.Status(status)
	if kind != nil {
		k := leave.PermissionKind(*kind)
		req.PermissionKind = &k
	}
	if len(syncJSON) > 0 {
		req.SyncInfo = &leave.SyncInfo{}
		if err := json.Unmarshal(syncJSON, req.SyncInfo); err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to decode sync info: %w", err)
		}
	}
	if len(desyncJSON) > 0 {
		req.DesyncResult = &leave.DesyncResult{}
		if err := json.Unmarshal(desyncJSON, req.DesyncResult); err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to decode desync result: %w", err)
		}
	}
	return req, nil
}

// leaveArgs returns the column values in leaveColumns order, without the timestamps.
func leaveArgs(req leave.LeaveRequest) ([]interface{}, error) {
	var kind *string
	if req.PermissionKind != nil {
		k := string(*req.PermissionKind)
		kind = &k
	}

	var syncJSON, desyncJSON []byte
	var err error
	if req.SyncInfo != nil {
		if syncJSON, err = json.Marshal(req.SyncInfo); err != nil {
			return nil, fmt.Errorf("failed to encode sync info: %w", err)
		}
	}
	if req.DesyncResult != nil {
		if desyncJSON, err = json.Marshal(req.DesyncResult); err != nil {
			return nil, fmt.Errorf("failed to encode desync result: %w", err)
		}
	}

	return []interface{}{
		req.ID,
		req.UserID,
		string(req.Type),
		kind,
		string(req.Status),
		calendar.DateOf(req.DateFrom),
		req.DateTo,
		req.TimeFrom,
		req.TimeTo,
		req.Reason,
		req.CertificatePath,
		syncJSON,
		desyncJSON,
		req.ReviewedBy,
		req.ReviewedAt,
		req.RejectionReason,
		req.DeletedAt,
		req.DeletedBy,
	}, nil
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	args, err := leaveArgs(req)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	query := `
		INSERT INTO leave_requests (` + leaveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		RETURNING ` + leaveColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query, args...))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`
	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	args, err := leaveArgs(req)
	if err != nil {
		return err
	}

	query := `
		UPDATE leave_requests
		SET user_id = $2, type = $3, permission_kind = $4, status = $5, date_from = $6, date_to = $7,
			time_from = $8, time_to = $9, reason = $10, certificate_path = $11, sync_info = $12,
			desync_result = $13, reviewed_by = $14, reviewed_at = $15, rejection_reason = $16,
			deleted_at = $17, deleted_by = $18, updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.Filter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{}
	args := []interface{}{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		whereClauses = append(whereClauses, fmt.Sprintf(clause, len(args)))
	}

	if !filter.IncludeDeleted {
		whereClauses = append(whereClauses, "deleted_at IS NULL")
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.Type != nil {
		add("type = $%d", string(*filter.Type))
	}
	if filter.From != nil {
		add("COALESCE(date_to, date_from) >= $%d", calendar.DateOf(*filter.From))
	}
	if filter.To != nil {
		add("date_from <= $%d", calendar.DateOf(*filter.To))
	}

	query := `SELECT ` + leaveColumns + ` FROM leave_requests`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY date_from DESC, created_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	out := []leave.LeaveRequest{}
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}
