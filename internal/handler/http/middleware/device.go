package middleware

import (
	"net/http"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
)

const (
	HeaderDeviceID  = "X-Device-ID"
	HeaderDeviceKey = "X-Device-Key"
)

// DeviceAuth authenticates kiosk requests with the device id and key headers.
func DeviceAuth(devices device.DeviceService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, key := r.Header.Get(HeaderDeviceID), r.Header.Get(HeaderDeviceKey)
			if id == "" || key == "" {
				response.HandleError(w, auth.ErrInvalidDevice)
				return
			}

			sess, err := devices.Authenticate(r.Context(), id, key)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}
