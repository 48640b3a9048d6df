package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
)

type fakeClock struct {
	swept []string
	today *timeclock.RecordResponse
	err   error
}

func (f *fakeClock) SweepOnDashboard(_ context.Context, userID string) timeclock.AutoCloseReport {
	f.swept = append(f.swept, userID)
	return timeclock.AutoCloseReport{Closed: 1}
}

func (f *fakeClock) Today(context.Context, string) (*timeclock.RecordResponse, error) {
	return f.today, f.err
}

type fakeLedger struct {
	month, year int
}

func (f *fakeLedger) GetMonth(_ context.Context, userID string, month, year int) (ledger.MonthView, error) {
	f.month, f.year = month, year
	return ledger.NewMonthView(userID, month, year, nil), nil
}

type countFunc func(ctx context.Context, userID string) (int, error)

func (f countFunc) CountPending(ctx context.Context, userID string) (int, error) { return f(ctx, userID) }

func (f countFunc) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return f(ctx, userID)
}

func constant(n int) countFunc {
	return func(context.Context, string) (int, error) { return n, nil }
}

func TestGet(t *testing.T) {
	clock := &fakeClock{today: &timeclock.RecordResponse{ClockInTime: "09:00"}}
	led := &fakeLedger{}
	svc := NewDashboardService(clock, led, constant(2), constant(5), time.UTC).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2025, 4, 8, 10, 0, 0, 0, time.UTC) }

	resp, err := svc.Get(context.Background(), auth.Session{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"u1"}, clock.swept)
	assert.Equal(t, "2025-04-08", resp.Date)
	assert.Equal(t, 1, resp.AutoClosed)
	assert.Equal(t, "09:00", resp.Today.ClockInTime)
	assert.Equal(t, 4, led.month)
	assert.Equal(t, 2025, led.year)
	assert.Len(t, resp.Month.Entries, 30)
	assert.Equal(t, 2, resp.PendingLeave)
	assert.Equal(t, 5, resp.UnreadNotifications)
}

func TestGet_PropagatesErrors(t *testing.T) {
	clock := &fakeClock{err: errors.New("boom")}
	svc := NewDashboardService(clock, &fakeLedger{}, constant(0), nil, nil)

	_, err := svc.Get(context.Background(), auth.Session{UserID: "u1"})
	assert.EqualError(t, err, "boom")

	_, err = svc.Get(context.Background(), auth.Session{})
	assert.ErrorIs(t, err, auth.ErrNoSession)
}
