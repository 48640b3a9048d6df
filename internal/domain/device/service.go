package device

import (
	"context"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
)

type DeviceService interface {
	// Create registers a kiosk. The plain key is only ever returned here.
	Create(ctx context.Context, req CreateDeviceRequest) (CreatedDeviceResponse, error)
	List(ctx context.Context) ([]DeviceResponse, error)
	SetActive(ctx context.Context, id string, active bool) (DeviceResponse, error)

	// Authenticate checks a device key and returns a device session.
	Authenticate(ctx context.Context, id, key string) (auth.Session, error)
}
