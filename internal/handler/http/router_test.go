package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/dashboard"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/report"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/jwt"
)

type fakeTimeClock struct {
	timeclock.Service
	clockIn  func(sess auth.Session) (timeclock.ClockInResult, error)
	clockOut func(sess auth.Session) (timeclock.RecordResponse, error)
	scan     func(sess auth.Session, req timeclock.ScanRequest) (timeclock.ScanResult, error)
}

func (f *fakeTimeClock) ClockIn(_ context.Context, sess auth.Session) (timeclock.ClockInResult, error) {
	return f.clockIn(sess)
}

func (f *fakeTimeClock) ClockOut(_ context.Context, sess auth.Session) (timeclock.RecordResponse, error) {
	return f.clockOut(sess)
}

func (f *fakeTimeClock) Scan(_ context.Context, sess auth.Session, req timeclock.ScanRequest) (timeclock.ScanResult, error) {
	return f.scan(sess, req)
}

type fakeLedger struct {
	ledger.Service
	saved    *ledger.SaveRequest
	getMonth func(userID string, month, year int) (ledger.MonthView, error)
}

func (f *fakeLedger) GetMonth(_ context.Context, userID string, month, year int) (ledger.MonthView, error) {
	return f.getMonth(userID, month, year)
}

func (f *fakeLedger) Save(_ context.Context, req ledger.SaveRequest) (ledger.MonthView, error) {
	f.saved = &req
	return ledger.NewMonthView(req.UserID, req.Month, req.Year, nil), nil
}

type fakeLeave struct {
	leave.LeaveRequestService
	created *leave.CreateLeaveRequest
}

func (f *fakeLeave) Create(_ context.Context, sess auth.Session, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	f.created = &req
	return leave.LeaveRequestResponse{ID: "lr1", UserID: sess.UserID, Type: req.Type, Status: leave.StatusPending, DateFrom: req.DateFrom}, nil
}

type fakeReport struct {
	report.ReportService
}

func (fakeReport) ExportMonthlyXLSX(_ context.Context, _ report.MonthlyReportRequest, w io.Writer) error {
	_, err := w.Write([]byte("PK"))
	return err
}

type fakeDevices struct {
	device.DeviceService
}

func (fakeDevices) Authenticate(_ context.Context, id, key string) (auth.Session, error) {
	if id == "kiosk-1" && key == "secret" {
		return auth.Session{DeviceID: id}, nil
	}
	return auth.Session{}, auth.ErrInvalidDevice
}

type fakeDashboard struct{ dashboard.DashboardService }
type fakeUsers struct{ user.UserService }
type fakeNotifications struct{ notification.Service }

type testServer struct {
	router    http.Handler
	tokens    jwt.Service
	timeClock *fakeTimeClock
	ledger    *fakeLedger
	leave     *fakeLeave
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	loc := time.UTC
	tokens := jwt.NewJWTService("test-secret", "", time.Hour)
	s := &testServer{
		tokens:    tokens,
		timeClock: &fakeTimeClock{},
		ledger:    &fakeLedger{},
		leave:     &fakeLeave{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(logger, nil, tokens, fakeDevices{}, KioskOptions{RatePerSecond: 100, Burst: 100}, Handlers{
		Dashboard:    NewDashboardHandler(fakeDashboard{}),
		TimeClock:    NewTimeClockHandler(s.timeClock, loc),
		Ledger:       NewLedgerHandler(s.ledger, loc),
		Report:       NewReportHandler(fakeReport{}, loc),
		Leave:        NewLeaveHandler(s.leave),
		Device:       NewDeviceHandler(fakeDevices{}),
		User:         NewUserHandler(fakeUsers{}),
		Notification: NewNotificationHandler(fakeNotifications{}, tokens),
	})
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request, role user.Role) *httptest.ResponseRecorder {
	t.Helper()
	if role != "" {
		token, _, err := s.tokens.GenerateAccessToken(auth.Session{UserID: "u1", Email: "u1@example.com", Role: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClockIn(t *testing.T) {
	s := newTestServer(t)

	s.timeClock.clockIn = func(sess auth.Session) (timeclock.ClockInResult, error) {
		assert.Equal(t, "u1", sess.UserID)
		return timeclock.ClockInResult{Record: timeclock.RecordResponse{UserID: sess.UserID, ClockInTime: "08:00"}}, nil
	}
	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/clock-in", nil), user.RoleUser)
	assert.Equal(t, http.StatusCreated, rec.Code)

	s.timeClock.clockIn = func(sess auth.Session) (timeclock.ClockInResult, error) {
		return timeclock.ClockInResult{AlreadyClockedIn: true, Warning: "already clocked in at 08:00"}, nil
	}
	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/clock-in", nil), user.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already clocked in at 08:00", decode(t, rec).Message)
}

func TestClockOut_StateConflict(t *testing.T) {
	s := newTestServer(t)
	out := "17:00"
	s.timeClock.clockOut = func(auth.Session) (timeclock.RecordResponse, error) {
		return timeclock.RecordResponse{}, &timeclock.StateConflictError{
			Err:    timeclock.ErrAlreadyClockedOut,
			Record: timeclock.Record{ClockInTime: "08:00", ClockOutTime: &out},
		}
	}

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/clock-out", nil), user.RoleUser)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Message, "clocked in at 08:00")
	assert.Contains(t, body.Error.Message, "clocked out at 17:00")
}

func TestLedgerMe_MonthQuery(t *testing.T) {
	s := newTestServer(t)
	s.ledger.getMonth = func(userID string, month, year int) (ledger.MonthView, error) {
		return ledger.NewMonthView(userID, month, year, nil), nil
	}

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/me?month=2&year=2024", nil), user.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data ledger.MonthView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.Data.UserID)
	assert.Len(t, body.Data.Entries, 29)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/me?month=13", nil), user.RoleUser)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminLedgerSave(t *testing.T) {
	s := newTestServer(t)
	payload := `{"month":4,"year":2025,"entries":[{"date":"2025-04-07","total":"8","overtime":1}]}`

	rec := s.do(t, httptest.NewRequest(http.MethodPut, "/api/v1/admin/ledger/u2", bytes.NewBufferString(payload)), user.RoleUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, s.ledger.saved)

	rec = s.do(t, httptest.NewRequest(http.MethodPut, "/api/v1/admin/ledger/u2", bytes.NewBufferString(payload)), user.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.ledger.saved)
	assert.Equal(t, "u2", s.ledger.saved.UserID)
	assert.Equal(t, 1, s.ledger.saved.Entries[0].Overtime)
}

func TestCalendarMonth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/2024/12", nil), user.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []struct {
			Date      string `json:"date"`
			IsHoliday bool   `json:"is_holiday"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 31)
	assert.Equal(t, "2024-12-25", body.Data[24].Date)
	assert.True(t, body.Data[24].IsHoliday)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/2024/13", nil), user.RoleUser)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaveCreate_Multipart(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", `{"type":"vacation","date_from":"2025-04-07","date_to":"2025-04-11","reason":"trip"}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-requests", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(t, req, user.RoleUser)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, s.leave.created)
	assert.Equal(t, leave.TypeVacation, s.leave.created.Type)
	assert.Nil(t, s.leave.created.FileHeader)
}

func TestLeaveCreate_JSONValidation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-requests",
		bytes.NewBufferString(`{"type":"permission","permission_kind":"hourly","date_from":"2025-04-07","time_from":"10:00","time_to":"09:00"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(t, req, user.RoleUser)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, s.leave.created)
}

func TestKioskScan(t *testing.T) {
	s := newTestServer(t)
	s.timeClock.scan = func(sess auth.Session, req timeclock.ScanRequest) (timeclock.ScanResult, error) {
		assert.Equal(t, "kiosk-1", sess.DeviceID)
		return timeclock.ScanResult{Action: timeclock.ScanActionClockIn, Record: timeclock.RecordResponse{UserID: req.UserID}}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/kiosk/scan", bytes.NewBufferString(`{"user_id":"u7"}`))
	rec := s.do(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/kiosk/scan", bytes.NewBufferString(`{"user_id":"u7"}`))
	req.Header.Set(middleware.HeaderDeviceID, "kiosk-1")
	req.Header.Set(middleware.HeaderDeviceKey, "secret")
	rec = s.do(t, req, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportMonthlyXLSX(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports/monthly.xlsx?month=4&year=2025", nil), user.RoleAdmin)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ledger-2025-04.xlsx")
	assert.Equal(t, "PK", rec.Body.String())
}
