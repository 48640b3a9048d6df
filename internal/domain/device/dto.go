package device

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

type CreateDeviceRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"max=200"`
}

func (r *CreateDeviceRequest) Validate() error {
	return validator.Struct(r)
}

type DeviceResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Location   string     `json:"location,omitempty"`
	Active     bool       `json:"active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewDeviceResponse(d Device) DeviceResponse {
	return DeviceResponse{
		ID:         d.ID,
		Name:       d.Name,
		Location:   d.Location,
		Active:     d.Active,
		LastSeenAt: d.LastSeenAt,
		CreatedAt:  d.CreatedAt,
	}
}

// CreatedDeviceResponse carries the plain device key, shown once.
type CreatedDeviceResponse struct {
	DeviceResponse
	Key string `json:"key"`
}
