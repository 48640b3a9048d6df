package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates missing tables and indexes. It is idempotent.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
