package device

import (
	"context"
	"time"
)

type DeviceRepository interface {
	Create(ctx context.Context, d Device) (Device, error)
	GetByID(ctx context.Context, id string) (Device, error)
	List(ctx context.Context) ([]Device, error)
	Update(ctx context.Context, d Device) error
	// Touch records the last successful authentication.
	Touch(ctx context.Context, id string, at time.Time) error
}
