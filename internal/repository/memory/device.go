package memory

import (
	"context"
	"sort"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
)

type deviceRepository struct {
	s *Store
}

func NewDeviceRepository(s *Store) device.DeviceRepository {
	return &deviceRepository{s: s}
}

func (r *deviceRepository) Create(ctx context.Context, d device.Device) (device.Device, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	d.CreatedAt = now
	d.UpdatedAt = now
	r.s.devices[d.ID] = d
	return d, nil
}

func (r *deviceRepository) GetByID(ctx context.Context, id string) (device.Device, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.devices[id]
	if !ok {
		return device.Device{}, device.ErrDeviceNotFound
	}
	return d, nil
}

func (r *deviceRepository) List(ctx context.Context) ([]device.Device, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]device.Device, 0, len(r.s.devices))
	for _, d := range r.s.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *deviceRepository) Update(ctx context.Context, d device.Device) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.devices[d.ID]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.CreatedAt = stored.CreatedAt
	d.UpdatedAt = r.s.now()
	r.s.devices[d.ID] = d
	return nil
}

func (r *deviceRepository) Touch(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.devices[id]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.LastSeenAt = &at
	r.s.devices[id] = d
	return nil
}
