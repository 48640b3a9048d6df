package device

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
)

const keyBytes = 24

type deviceService struct {
	repo device.DeviceRepository
	cost int
	now  func() time.Time
}

// NewDeviceService returns a device service hashing keys with bcrypt at the given cost
// (bcrypt.DefaultCost when cost is 0).
func NewDeviceService(repo device.DeviceRepository, cost int) device.DeviceService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &deviceService{repo: repo, cost: cost, now: time.Now}
}

func (s *deviceService) Create(ctx context.Context, req device.CreateDeviceRequest) (device.CreatedDeviceResponse, error) {
	if err := req.Validate(); err != nil {
		return device.CreatedDeviceResponse{}, err
	}

	key, err := generateKey()
	if err != nil {
		return device.CreatedDeviceResponse{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), s.cost)
	if err != nil {
		return device.CreatedDeviceResponse{}, fmt.Errorf("failed to hash device key: %w", err)
	}

	created, err := s.repo.Create(ctx, device.Device{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Location: req.Location,
		KeyHash:  string(hash),
		Active:   true,
	})
	if err != nil {
		return device.CreatedDeviceResponse{}, fmt.Errorf("failed to create device: %w", err)
	}

	return device.CreatedDeviceResponse{
		DeviceResponse: device.NewDeviceResponse(created),
		Key:            key,
	}, nil
}

func (s *deviceService) List(ctx context.Context) ([]device.DeviceResponse, error) {
	devices, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	resp := make([]device.DeviceResponse, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, device.NewDeviceResponse(d))
	}
	return resp, nil
}

func (s *deviceService) SetActive(ctx context.Context, id string, active bool) (device.DeviceResponse, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return device.DeviceResponse{}, err
	}

	d.Active = active
	if err := s.repo.Update(ctx, d); err != nil {
		return device.DeviceResponse{}, fmt.Errorf("failed to update device: %w", err)
	}
	return device.NewDeviceResponse(d), nil
}

func (s *deviceService) Authenticate(ctx context.Context, id, key string) (auth.Session, error) {
	if id == "" || key == "" {
		return auth.Session{}, auth.ErrInvalidDevice
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return auth.Session{}, auth.ErrInvalidDevice
		}
		return auth.Session{}, fmt.Errorf("failed to load device: %w", err)
	}
	if !d.Active {
		return auth.Session{}, auth.ErrDeviceInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(d.KeyHash), []byte(key)); err != nil {
		return auth.Session{}, auth.ErrInvalidDevice
	}

	if err := s.repo.Touch(ctx, d.ID, s.now().UTC()); err != nil {
		slog.Warn("failed to record device activity", "device_id", d.ID, "error", err)
	}

	return auth.Session{DeviceID: d.ID}, nil
}

func generateKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate device key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
