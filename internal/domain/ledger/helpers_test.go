package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}
