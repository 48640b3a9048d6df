package timeclock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository/memory"
	ledgersvc "github.com/timesheet-hr/timesheet-backend-go/internal/service/ledger"
)

var rome = time.FixedZone("CET", 3600)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.April, day, hour, minute, 0, 0, rome)
}

// recordingNotifier keeps queued notifications; other methods are not used by the recorder.
type recordingNotifier struct {
	notification.Service
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (n *recordingNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, r := range reqs {
		_ = n.QueueNotification(ctx, r)
	}
	return nil
}

type failingLedger struct{}

func (failingLedger) SyncClockHours(context.Context, string, time.Time, int, int, string) (ledger.ClockSyncResult, error) {
	return ledger.ClockSyncResult{}, errors.New("ledger store unavailable")
}

type fixture struct {
	svc      timeclock.Service
	clock    *fakeClock
	ledger   ledger.Service
	users    user.UserRepository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{t: at(7, 9, 0)}
	ledgerSvc := ledgersvc.NewLedgerService(memory.NewLedgerRepository(store), ledgersvc.DefaultConfig())
	users := memory.NewUserRepository(store)
	notifier := &recordingNotifier{}

	svc := NewTimeclockService(memory.NewTimeclockRepository(store), users, ledgerSvc, notifier, Config{
		Location: rome,
		Now:      clock.Now,
	})
	return &fixture{svc: svc, clock: clock, ledger: ledgerSvc, users: users, notifier: notifier}
}

func (f *fixture) entry(t *testing.T, userID, date string) ledger.DayEntry {
	t.Helper()
	view, err := f.ledger.GetMonth(context.Background(), userID, 4, 2025)
	require.NoError(t, err)
	return view.Entries[ledger.IndexOf(view.Entries, date)]
}

var alice = auth.Session{UserID: "alice", Role: user.RoleUser}

func TestClockInAndOut_SyncsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)
	assert.False(t, res.AlreadyClockedIn)
	assert.Equal(t, "09:00", res.Record.ClockInTime)
	assert.Equal(t, "2025-04-07", res.Record.Date)
	assert.Equal(t, timeclock.StatusInProgress, res.Record.Status)

	f.clock.Set(at(7, 18, 40))
	out, err := f.svc.ClockOut(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, timeclock.StatusCompleted, out.Status)
	require.NotNil(t, out.ClockOutTime)
	assert.Equal(t, "18:40", *out.ClockOutTime)
	assert.Equal(t, 8, out.StandardHours)
	assert.Equal(t, 2, out.OvertimeHours)
	require.NotNil(t, out.LedgerSync)
	assert.True(t, out.LedgerSync.Applied)

	e := f.entry(t, "alice", "2025-04-07")
	assert.Equal(t, ledger.Hours(8), e.Total)
	assert.Equal(t, 2, e.Overtime)
	assert.Equal(t, ledger.NoteTimeClock, e.Notes)
}

func TestClockIn_DuplicateReturnsWarning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)

	f.clock.Set(at(7, 10, 15))
	second, err := f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)

	assert.True(t, second.AlreadyClockedIn)
	assert.Equal(t, "already clocked in today at 09:00", second.Warning)
	assert.Equal(t, first.Record.ID, second.Record.ID)
}

func TestClockIn_ConcurrentCreatesOneSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.ClockIn(ctx, alice)
			assert.NoError(t, err)
			if !res.AlreadyClockedIn {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestClockOut_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockOut(ctx, alice)
	assert.ErrorIs(t, err, timeclock.ErrNotClockedIn)

	_, err = f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)
	f.clock.Set(at(7, 17, 0))
	_, err = f.svc.ClockOut(ctx, alice)
	require.NoError(t, err)

	_, err = f.svc.ClockOut(ctx, alice)
	require.ErrorIs(t, err, timeclock.ErrAlreadyClockedOut)

	var conflict *timeclock.StateConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, err.Error(), "clocked in at 09:00, clocked out at 17:00")

	_, err = f.svc.ClockOut(ctx, auth.Session{})
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestClockOut_LedgerFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := &fakeClock{t: at(7, 9, 0)}
	svc := NewTimeclockService(memory.NewTimeclockRepository(store), memory.NewUserRepository(store), failingLedger{}, nil, Config{
		Location: rome,
		Now:      clock.Now,
	})

	_, err := svc.ClockIn(ctx, alice)
	require.NoError(t, err)
	clock.Set(at(7, 13, 0))

	out, err := svc.ClockOut(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, timeclock.StatusCompleted, out.Status)
	require.NotNil(t, out.LedgerSync)
	assert.False(t, out.LedgerSync.Applied)
	assert.Equal(t, "ledger store unavailable", out.LedgerSync.Error)

	today, err := svc.Today(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, 4, today.StandardHours)
	require.NotNil(t, today.LedgerSync)
	assert.NotEmpty(t, today.LedgerSync.Error)
}

func TestClockOut_LeaveCodeWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.ApplyCode(ctx, "alice", []time.Time{at(7, 0, 0)}, ledger.CodeSickness, "sick")

	_, err := f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)
	f.clock.Set(at(7, 17, 0))
	out, err := f.svc.ClockOut(ctx, alice)
	require.NoError(t, err)

	require.NotNil(t, out.LedgerSync)
	assert.False(t, out.LedgerSync.Applied)
	assert.Equal(t, ledgersvc.ReasonLeaveCode, out.LedgerSync.Reason)
	assert.Equal(t, ledger.CodeTotal(ledger.CodeSickness), f.entry(t, "alice", "2025-04-07").Total)
}

func TestAutoCloseStale_ClosesYesterday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)

	f.clock.Set(at(8, 8, 30))
	report, err := f.svc.AutoCloseStale(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, timeclock.AutoCloseReport{Closed: 1}, report)

	records, err := f.svc.ListMonth(ctx, timeclock.ListMonthRequest{UserID: "alice", Month: 4, Year: 2025})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, timeclock.StatusAutoClosed, rec.Status)
	require.NotNil(t, rec.ClockOutTime)
	assert.Equal(t, "23:59", *rec.ClockOutTime)
	assert.Equal(t, 8, rec.StandardHours)
	assert.Equal(t, 0, rec.OvertimeHours)
	require.NotNil(t, rec.AutoCloseReason)
	assert.Equal(t, timeclock.AutoCloseReason, *rec.AutoCloseReason)

	e := f.entry(t, "alice", "2025-04-07")
	assert.Equal(t, ledger.Hours(8), e.Total)
	assert.Equal(t, ledger.NoteAutoClose, e.Notes)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeClockAutoClosed, f.notifier.sent[0].Type)
	assert.Equal(t, "alice", f.notifier.sent[0].RecipientID)

	// A fresh day starts clean and a second sweep finds nothing.
	_, err = f.svc.ClockOut(ctx, alice)
	assert.ErrorIs(t, err, timeclock.ErrNotClockedIn)
	report, err = f.svc.AutoCloseStale(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, report.Closed)
}

func TestAutoCloseStale_LeavesTodayAndOthersAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bob := auth.Session{UserID: "bob"}

	_, err := f.svc.ClockIn(ctx, bob)
	require.NoError(t, err)

	f.clock.Set(at(8, 9, 0))
	_, err = f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)

	report := f.svc.SweepOnDashboard(ctx, "alice")
	assert.Zero(t, report.Closed)

	today, err := f.svc.Today(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, timeclock.StatusInProgress, today.Status)

	report = f.svc.SweepOnDashboard(ctx, "bob")
	assert.Equal(t, 1, report.Closed)
}

func TestScan_TogglesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kiosk := auth.Session{DeviceID: "kiosk-1"}

	_, err := f.users.Upsert(ctx, user.User{ID: "alice", Email: "alice@example.com", Role: user.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.users.Update(ctx, user.User{ID: "alice", Email: "alice@example.com", Role: user.RoleUser, Active: true, QRActive: true}))

	res, err := f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ScanActionClockIn, res.Action)
	require.NotNil(t, res.Record.DeviceID)
	assert.Equal(t, "kiosk-1", *res.Record.DeviceID)

	f.clock.Set(at(7, 17, 10))
	res, err = f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ScanActionClockOut, res.Action)
	assert.Equal(t, 8, res.Record.StandardHours)

	_, err = f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	assert.ErrorIs(t, err, timeclock.ErrAlreadyClockedOut)
}

func (f *fixture) enableBadge(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	email := userID + "@example.com"
	_, err := f.users.Upsert(ctx, user.User{ID: userID, Email: email, Role: user.RoleUser})
	require.NoError(t, err)
	require.NoError(t, f.users.Update(ctx, user.User{ID: userID, Email: email, Role: user.RoleUser, Active: true, QRActive: true}))
}

func TestScan_RescanWithinWindowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.enableBadge(t, "alice")
	kiosk := auth.Session{DeviceID: "kiosk-1"}

	_, err := f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)

	for _, ts := range []time.Time{at(7, 9, 0).Add(20 * time.Second), at(7, 9, 1), at(7, 9, 4)} {
		f.clock.Set(ts)
		res, err := f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, timeclock.ScanActionClockIn, res.Action)
		assert.Equal(t, "already clocked in today at 09:00", res.Warning)
		assert.Equal(t, timeclock.StatusInProgress, res.Record.Status)
		assert.Nil(t, res.Record.ClockOutTime)
	}

	assert.False(t, f.entry(t, "alice", "2025-04-07").HasData)

	f.clock.Set(at(7, 17, 30))
	res, err := f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ScanActionClockOut, res.Action)
	assert.Equal(t, 8, res.Record.StandardHours)
	assert.Equal(t, ledger.Hours(8), f.entry(t, "alice", "2025-04-07").Total)
}

func TestScan_ClocksOutAfterConfiguredWindow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := &fakeClock{t: at(7, 9, 0)}
	users := memory.NewUserRepository(store)
	ledgerSvc := ledgersvc.NewLedgerService(memory.NewLedgerRepository(store), ledgersvc.DefaultConfig())
	svc := NewTimeclockService(memory.NewTimeclockRepository(store), users, ledgerSvc, nil, Config{
		Location:     rome,
		RescanWindow: time.Minute,
		Now:          clock.Now,
	})
	f := &fixture{svc: svc, clock: clock, ledger: ledgerSvc, users: users}
	f.enableBadge(t, "alice")
	kiosk := auth.Session{DeviceID: "kiosk-1"}

	_, err := svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)

	clock.Set(at(7, 9, 0).Add(50 * time.Second))
	res, err := svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ScanActionClockIn, res.Action)

	clock.Set(at(7, 9, 2))
	res, err = svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, timeclock.ScanActionClockOut, res.Action)
	assert.Equal(t, 0, res.Record.OvertimeHours)
}

func TestClockOut_SameMinuteIsRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, alice)
	require.NoError(t, err)

	f.clock.Set(at(7, 9, 0).Add(40 * time.Second))
	_, err = f.svc.ClockOut(ctx, alice)
	require.ErrorIs(t, err, timeclock.ErrClockOutTooSoon)
	var conflict *timeclock.StateConflictError
	require.True(t, errors.As(err, &conflict))

	today, err := f.svc.Today(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, timeclock.StatusInProgress, today.Status)
	assert.Zero(t, today.OvertimeHours)
	assert.False(t, f.entry(t, "alice", "2025-04-07").HasData)

	f.clock.Set(at(7, 17, 0))
	out, err := f.svc.ClockOut(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 8, out.StandardHours)
	assert.Equal(t, 0, out.OvertimeHours)
}

func TestScan_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kiosk := auth.Session{DeviceID: "kiosk-1"}

	require.NoError(t, func() error {
		_, err := f.users.Upsert(ctx, user.User{ID: "carol", Email: "carol@example.com", Role: user.RoleUser})
		return err
	}())
	require.NoError(t, f.users.Update(ctx, user.User{ID: "carol", Email: "carol@example.com", Active: true}))

	_, err := f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "carol"})
	assert.ErrorIs(t, err, user.ErrQRInactive)

	_, err = f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{UserID: "nobody"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.Scan(ctx, alice, timeclock.ScanRequest{UserID: "carol"})
	assert.ErrorIs(t, err, auth.ErrInvalidDevice)

	_, err = f.svc.Scan(ctx, kiosk, timeclock.ScanRequest{})
	assert.Error(t, err)
}
