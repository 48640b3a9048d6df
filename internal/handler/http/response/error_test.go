package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

func TestHandleError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "month is required"}}, http.StatusUnprocessableEntity},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"admin required", user.ErrAdminPrivilegeRequired, http.StatusForbidden},
		{"not clocked in", timeclock.ErrNotClockedIn, http.StatusConflict},
		{"same-minute clock-out", &timeclock.StateConflictError{Err: timeclock.ErrClockOutTooSoon, Record: timeclock.Record{ClockInTime: "09:00"}}, http.StatusConflict},
		{"ledger conflict wrapped", fmt.Errorf("save: %w", ledger.ErrLedgerConflict), http.StatusConflict},
		{"date out of month", ledger.ErrDateOutOfMonth, http.StatusBadRequest},
		{"leave not found", leave.ErrLeaveRequestNotFound, http.StatusNotFound},
		{"not owner", leave.ErrNotOwner, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleError_StateConflictCarriesTimes(t *testing.T) {
	out := "18:00"
	err := &timeclock.StateConflictError{
		Err:    timeclock.ErrAlreadyClockedOut,
		Record: timeclock.Record{ClockInTime: "09:00", ClockOutTime: &out},
	}

	rec := httptest.NewRecorder()
	HandleError(rec, err)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error.Message, "09:00")
	assert.Contains(t, body.Error.Message, "18:00")
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, NewMeta(1, 20, 41).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 0, 41).TotalPages)
}
