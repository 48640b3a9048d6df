package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/jwt"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
}

func kioskRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kiosk/scan", strings.NewReader(`{"user_id":"u1"}`))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	return req.WithContext(auth.WithSession(req.Context(), auth.Session{DeviceID: "d1"}))
}

const (
	scanCacheKey = "idemp:/api/v1/kiosk/scan:device:d1:k1"
	scanLockKey  = scanCacheKey + ":lock"
)

func TestIdempotency_StoresFirstResponse(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ttl := 10 * time.Minute

	payload, err := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: `{"success":true}`})
	require.NoError(t, err)

	mock.ExpectGet(scanCacheKey).RedisNil()
	mock.ExpectSetNX(scanLockKey, "locked", idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(scanCacheKey, payload, ttl).SetVal("OK")
	mock.ExpectDel(scanLockKey).SetVal(1)

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(db, ttl)(okHandler(&calls)).ServeHTTP(rec, kioskRequest("k1"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	db, mock := redismock.NewClientMock()

	payload, err := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: `{"success":true}`})
	require.NoError(t, err)
	mock.ExpectGet(scanCacheKey).SetVal(string(payload))

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(db, time.Minute)(okHandler(&calls)).ServeHTTP(rec, kioskRequest("k1"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(HeaderReplayed))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, 0, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet(scanCacheKey).RedisNil()
	mock.ExpectSetNX(scanLockKey, "locked", idempotencyLockTTL).SetVal(false)

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(db, time.Minute)(okHandler(&calls)).ServeHTTP(rec, kioskRequest("k1"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_PassThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(db, time.Minute)(okHandler(&calls)).ServeHTTP(rec, kioskRequest(""))
	assert.Equal(t, 1, calls)

	mock.ExpectGet(scanCacheKey).SetErr(errors.New("connection refused"))
	rec = httptest.NewRecorder()
	Idempotency(db, time.Minute)(okHandler(&calls)).ServeHTTP(rec, kioskRequest("k1"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimitByCaller(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Every(time.Hour), 2)
	calls := 0
	h := RateLimitByCaller(limiter)(okHandler(&calls))

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, kioskRequest(""))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// Other devices have their own bucket.
	req := kioskRequest("")
	req = req.WithContext(auth.WithSession(context.Background(), auth.Session{DeviceID: "d2"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthRequired_PutsSessionInContext(t *testing.T) {
	tokens := jwt.NewJWTService("secret", "", time.Hour)
	token, _, err := tokens.GenerateAccessToken(auth.Session{UserID: "u1", Email: "a@b.c", Role: user.RoleAdmin})
	require.NoError(t, err)

	var got auth.Session
	h := jwtauth.Verifier(tokens.JWTAuth())(AuthRequired(tokens)(AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	}))))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", got.UserID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnlyAndPermissions(t *testing.T) {
	calls := 0
	employee := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(auth.WithSession(req.Context(), auth.Session{UserID: "u1", Role: user.RoleUser}))
	}

	rec := httptest.NewRecorder()
	AdminOnly(okHandler(&calls)).ServeHTTP(rec, employee())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	RequirePermission(user.PermissionLedgerEdit)(okHandler(&calls)).ServeHTTP(rec, employee())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	RequirePermission(user.PermissionLeaveCreate)(okHandler(&calls)).ServeHTTP(rec, employee())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
}

type fakeDevices struct {
	device.DeviceService
}

func (fakeDevices) Authenticate(_ context.Context, id, key string) (auth.Session, error) {
	if id == "d1" && key == "good" {
		return auth.Session{DeviceID: id}, nil
	}
	return auth.Session{}, auth.ErrInvalidDevice
}

func TestDeviceAuth(t *testing.T) {
	calls := 0
	h := DeviceAuth(fakeDevices{})(okHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderDeviceID, "d1")
	req.Header.Set(HeaderDeviceKey, "good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req.Header.Set(HeaderDeviceKey, "bad")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, calls)
}
