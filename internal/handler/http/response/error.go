package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Unknown errors are logged and
// reported as 500 without their text.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// The message carries the recorded clock times.
	var stateErr *timeclock.StateConflictError
	if errors.As(err, &stateErr) {
		Conflict(w, stateErr.Error())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrInvalidDevice):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrDeviceInactive):
		Forbidden(w, err.Error())

	// User
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrUserInactive),
		errors.Is(err, user.ErrQRInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")

	// Time clock
	case errors.Is(err, timeclock.ErrNotClockedIn),
		errors.Is(err, timeclock.ErrAlreadyClockedOut),
		errors.Is(err, timeclock.ErrAutoClosed),
		errors.Is(err, timeclock.ErrClockOutTooSoon),
		errors.Is(err, timeclock.ErrStatusChanged):
		Conflict(w, err.Error())
	case errors.Is(err, timeclock.ErrRecordNotFound):
		NotFound(w, "Time clock record not found")
	case errors.Is(err, timeclock.ErrInvalidClockTime):
		BadRequest(w, err.Error(), nil)

	// Ledger
	case errors.Is(err, ledger.ErrLedgerNotFound):
		NotFound(w, "Monthly hours ledger not found")
	case errors.Is(err, ledger.ErrLedgerConflict):
		Conflict(w, "The ledger was changed by someone else, reload and retry")
	case errors.Is(err, ledger.ErrInvalidTotal),
		errors.Is(err, ledger.ErrInvalidMonth),
		errors.Is(err, ledger.ErrInvalidKey),
		errors.Is(err, ledger.ErrDateOutOfMonth):
		BadRequest(w, err.Error(), nil)

	// Leave
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrLeaveRequestOverlap),
		errors.Is(err, leave.ErrOnlyApprovedDeletable),
		errors.Is(err, leave.ErrOnlyPendingCancellable):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNotOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrInvalidCertificate):
		BadRequest(w, err.Error(), nil)

	// Devices and notifications
	case errors.Is(err, device.ErrDeviceNotFound):
		NotFound(w, "Device not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, notification.ErrQueueFull):
		ServiceUnavailable(w, "Notification queue is full, retry later")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
