package leave

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository/memory"
	ledgersvc "github.com/timesheet-hr/timesheet-backend-go/internal/service/ledger"
)

var (
	employee = auth.Session{UserID: "emp", Role: user.RoleUser}
	admin    = auth.Session{UserID: "boss", Role: user.RoleAdmin}
)

type recordingNotifier struct {
	notification.Service
	mu       sync.Mutex
	sent     []notification.CreateNotificationRequest
	failBulk bool
}

func (n *recordingNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	if n.failBulk {
		return errors.New("notification queue is full")
	}
	for _, r := range reqs {
		_ = n.QueueNotification(ctx, r)
	}
	return nil
}

func (n *recordingNotifier) types() []notification.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.NotificationType, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Type)
	}
	return out
}

type fakeFiles struct {
	uploaded map[string]string
}

func (f *fakeFiles) UploadCertificate(_ context.Context, userID string, file io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	path := "certificates/" + userID + "/" + filename
	f.uploaded[path] = string(b)
	return path, nil
}

func (f *fakeFiles) GetFileURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "http://files.test/" + path, nil
}

// failingProjector fails every ledger write.
type failingProjector struct{}

func (failingProjector) ApplyCode(_ context.Context, _ string, dates []time.Time, _ ledger.Code, _ string) []ledger.DateOutcome {
	out := make([]ledger.DateOutcome, 0, len(dates))
	for _, d := range dates {
		out = append(out, ledger.DateOutcome{Date: d.Format(time.DateOnly), Error: "ledger store unavailable"})
	}
	return out
}

func (failingProjector) ClearDates(ctx context.Context, userID string, dates []time.Time) []ledger.DateOutcome {
	return failingProjector{}.ApplyCode(ctx, userID, dates, "", "")
}

type fixture struct {
	svc      leave.LeaveRequestService
	ledger   ledger.Service
	files    *fakeFiles
	notifier *recordingNotifier
}

func newFixture(t *testing.T, projector LedgerProjector) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	users := memory.NewUserRepository(store)
	for _, u := range []user.User{
		{ID: "boss", Email: "boss@example.com", Role: user.RoleAdmin, Active: true},
		{ID: "emp", Email: "emp@example.com", Role: user.RoleUser, Active: true},
	} {
		_, err := users.Upsert(ctx, u)
		require.NoError(t, err)
	}

	ledgerSvc := ledgersvc.NewLedgerService(memory.NewLedgerRepository(store), ledgersvc.DefaultConfig())
	if projector == nil {
		projector = ledgerSvc
	}

	f := &fixture{
		ledger:   ledgerSvc,
		files:    &fakeFiles{uploaded: map[string]string{}},
		notifier: &recordingNotifier{},
	}
	f.svc = NewLeaveService(memory.NewLeaveRequestRepository(store), projector, f.files, users, f.notifier, Config{
		Now: func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) },
	})
	return f
}

func (f *fixture) month(t *testing.T) []ledger.DayEntry {
	t.Helper()
	view, err := f.ledger.GetMonth(context.Background(), "emp", 4, 2025)
	require.NoError(t, err)
	return view.Entries
}

func strPtr(s string) *string { return &s }

func kindPtr(k leave.PermissionKind) *leave.PermissionKind { return &k }

func vacation(from, to string) leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{Type: leave.TypeVacation, DateFrom: from, DateTo: strPtr(to), Reason: "holiday"}
}

func TestVacation_SyncAndDesyncRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, employee, vacation("2025-04-07", "2025-04-11"))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, created.Status)
	assert.Contains(t, f.notifier.types(), notification.TypeLeaveSubmitted)

	approved, err := f.svc.Approve(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "boss", *approved.ReviewedBy)

	require.NotNil(t, approved.SyncInfo)
	assert.True(t, approved.SyncInfo.SyncResult)
	assert.Equal(t, ledger.CodeVacation, approved.SyncInfo.Code)
	require.Len(t, approved.SyncInfo.Dates, 5)
	assert.Equal(t, "2025-04-07", approved.SyncInfo.Dates[0].Date)
	assert.Equal(t, "2025-04-11", approved.SyncInfo.Dates[4].Date)

	entries := f.month(t)
	for d := 7; d <= 11; d++ {
		e := entries[d-1]
		assert.Equal(t, ledger.CodeTotal(ledger.CodeVacation), e.Total, e.Date)
		assert.Equal(t, ledger.SourceLeaveSync, e.Source, e.Date)
	}
	assert.True(t, entries[5].IsPlaceholder())
	assert.True(t, entries[11].IsPlaceholder())

	deleted, err := f.svc.Delete(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	require.NotNil(t, deleted.DesyncResult)
	assert.True(t, deleted.DesyncResult.Success)
	assert.Len(t, deleted.DesyncResult.Dates, 5)

	for _, e := range f.month(t) {
		assert.True(t, e.IsPlaceholder(), e.Date)
	}

	assert.Contains(t, f.notifier.types(), notification.TypeLeaveApproved)
	assert.Contains(t, f.notifier.types(), notification.TypeLeaveRevoked)

	_, err = f.svc.Get(ctx, employee, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	got, err := f.svc.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}

func TestApprove_SyncFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingProjector{})

	created, err := f.svc.Create(ctx, employee, vacation("2025-04-07", "2025-04-08"))
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.SyncInfo)
	assert.False(t, approved.SyncInfo.SyncResult)
	assert.NotEmpty(t, approved.SyncInfo.Message)
	require.Len(t, approved.SyncInfo.Dates, 2)
	assert.Equal(t, "ledger store unavailable", approved.SyncInfo.Dates[0].Error)

	stored, err := f.svc.Get(ctx, employee, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, stored.Status)
	assert.NotNil(t, stored.SyncInfo)
}

func TestApprove_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	daily, err := f.svc.Create(ctx, employee, leave.CreateLeaveRequest{
		Type: leave.TypePermission, PermissionKind: kindPtr(leave.PermissionDaily), DateFrom: "2025-04-14",
	})
	require.NoError(t, err)
	res, err := f.svc.Approve(ctx, admin, daily.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.CodePermission, res.SyncInfo.Code)
	assert.Equal(t, ledger.CodeTotal(ledger.CodePermission), f.month(t)[13].Total)

	hourly, err := f.svc.Create(ctx, employee, leave.CreateLeaveRequest{
		Type: leave.TypePermission, PermissionKind: kindPtr(leave.PermissionHourly), DateFrom: "2025-04-15",
		TimeFrom: strPtr("09:00"), TimeTo: strPtr("11:00"),
	})
	require.NoError(t, err)
	res, err = f.svc.Approve(ctx, admin, hourly.ID)
	require.NoError(t, err)
	assert.Empty(t, res.SyncInfo.Dates)
	assert.NotEmpty(t, res.SyncInfo.Message)
	assert.True(t, f.month(t)[14].IsPlaceholder())
}

func TestReview_OnlyPendingAndAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, employee, vacation("2025-04-07", "2025-04-08"))
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, employee, created.ID)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = f.svc.Reject(ctx, admin, created.ID, leave.RejectRequest{})
	assert.Error(t, err)

	rejected, err := f.svc.Reject(ctx, admin, created.ID, leave.RejectRequest{Reason: "team offsite"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "team offsite", *rejected.RejectionReason)
	assert.Contains(t, f.notifier.types(), notification.TypeLeaveRejected)

	_, err = f.svc.Approve(ctx, admin, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	_, err = f.svc.Delete(ctx, admin, created.ID)
	assert.ErrorIs(t, err, leave.ErrOnlyApprovedDeletable)

	_, err = f.svc.Approve(ctx, admin, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestCreate_RefusesOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	first, err := f.svc.Create(ctx, employee, vacation("2025-04-07", "2025-04-11"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, employee, vacation("2025-04-11", "2025-04-15"))
	assert.ErrorIs(t, err, leave.ErrLeaveRequestOverlap)

	// Rejected requests free their dates.
	_, err = f.svc.Reject(ctx, admin, first.ID, leave.RejectRequest{Reason: "no"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, employee, vacation("2025-04-11", "2025-04-15"))
	assert.NoError(t, err)
}

func TestCreate_HourlyPermissionsMayShareADay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	hourly := func(from, to string) leave.CreateLeaveRequest {
		return leave.CreateLeaveRequest{
			Type: leave.TypePermission, PermissionKind: kindPtr(leave.PermissionHourly), DateFrom: "2025-04-15",
			TimeFrom: strPtr(from), TimeTo: strPtr(to),
		}
	}

	_, err := f.svc.Create(ctx, employee, hourly("09:00", "11:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, employee, hourly("14:00", "15:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, employee, hourly("10:30", "12:00"))
	assert.ErrorIs(t, err, leave.ErrLeaveRequestOverlap)
}

func TestCreate_SicknessWithCertificate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	content := "%PDF-1.4"
	created, err := f.svc.Create(ctx, employee, leave.CreateLeaveRequest{
		Type:       leave.TypeSickness,
		DateFrom:   "2025-04-22",
		File:       nopFile{strings.NewReader(content)},
		FileHeader: &multipart.FileHeader{Filename: "cert.pdf", Size: int64(len(content))},
	})
	require.NoError(t, err)
	require.NotNil(t, created.CertificateURL)
	assert.Equal(t, "http://files.test/certificates/emp/cert.pdf", *created.CertificateURL)
	assert.Equal(t, content, f.files.uploaded["certificates/emp/cert.pdf"])

	approved, err := f.svc.Approve(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.CodeSickness, approved.SyncInfo.Code)
	require.Len(t, approved.SyncInfo.Dates, 1)
	assert.Equal(t, "2025-04-22", approved.SyncInfo.Dates[0].Date)
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create(context.Background(), employee, vacation("2025-04-11", "2025-04-07"))
	assert.Error(t, err)

	_, err = f.svc.Create(context.Background(), auth.Session{}, vacation("2025-04-07", "2025-04-08"))
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestCreate_RefusesUnboundedRange(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), employee, vacation("2025-04-07", "9999-12-31"))
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.ToMap(), "date_to")

	list, err := f.svc.ListMine(context.Background(), employee, leave.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_AdminNotificationFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	f := newFixture(t, nil)
	f.notifier.failBulk = true

	created, err := f.svc.Create(context.Background(), employee, vacation("2025-04-07", "2025-04-08"))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, created.Status)

	assert.Contains(t, logs.String(), "failed to queue leave notification")
	assert.Contains(t, logs.String(), "notification queue is full")
	assert.Contains(t, logs.String(), created.ID)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, employee, vacation("2025-04-07", "2025-04-08"))
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, auth.Session{UserID: "someone-else"}, created.ID)
	assert.ErrorIs(t, err, leave.ErrNotOwner)

	require.NoError(t, f.svc.Cancel(ctx, employee, created.ID))

	mine, err := f.svc.ListMine(ctx, employee, leave.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, mine)

	err = f.svc.Cancel(ctx, employee, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	approvedReq, err := f.svc.Create(ctx, employee, vacation("2025-04-14", "2025-04-14"))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, approvedReq.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Cancel(ctx, employee, approvedReq.ID), leave.ErrOnlyPendingCancellable)
}

func TestListAndCountPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	a, err := f.svc.Create(ctx, employee, vacation("2025-04-07", "2025-04-08"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, employee, vacation("2025-04-14", "2025-04-15"))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, a.ID)
	require.NoError(t, err)

	n, err := f.svc.CountPending(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := leave.StatusApproved
	list, err := f.svc.List(ctx, leave.ListRequest{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	mine, err := f.svc.ListMine(ctx, employee, leave.ListRequest{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-04-14", mine[0].DateFrom)
}

type nopFile struct {
	*strings.Reader
}

func (nopFile) Close() error { return nil }
