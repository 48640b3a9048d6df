// Package repository opens the document store selected by DB_DRIVER.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/config"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/database"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/mongodb"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository/memory"
	mongorepo "github.com/timesheet-hr/timesheet-backend-go/internal/repository/mongodb"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository/postgresql"
)

// Set bundles one repository per collection.
type Set struct {
	Ledgers       ledger.Repository
	Records       timeclock.Repository
	LeaveRequests leave.LeaveRequestRepository
	Users         user.UserRepository
	Devices       device.DeviceRepository
	Notifications notification.Repository
}

// Open connects to the configured driver, prepares its schema and returns the set with a
// function that releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, postgresURL string) (*Set, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, postgresURL, database.PoolOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Connected to PostgreSQL", "database", cfg.Name)
		return &Set{
			Ledgers:       postgresql.NewLedgerRepository(db),
			Records:       postgresql.NewTimeclockRepository(db),
			LeaveRequests: postgresql.NewLeaveRequestRepository(db),
			Users:         postgresql.NewUserRepository(db),
			Devices:       postgresql.NewDeviceRepository(db),
			Notifications: postgresql.NewNotificationRepository(db),
		}, db.Close, nil

	case config.DriverMongo:
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.Name)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Close(closeCtx); err != nil {
				slog.Error("Failed to disconnect MongoDB", "error", err)
			}
		}
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, err
		}
		slog.Info("Connected to MongoDB", "database", cfg.Name)
		return &Set{
			Ledgers:       mongorepo.NewLedgerRepository(db),
			Records:       mongorepo.NewTimeclockRepository(db),
			LeaveRequests: mongorepo.NewLeaveRequestRepository(db),
			Users:         mongorepo.NewUserRepository(db),
			Devices:       mongorepo.NewDeviceRepository(db),
			Notifications: mongorepo.NewNotificationRepository(db),
		}, closeFn, nil

	case config.DriverMemory:
		slog.Warn("Using in-memory store, data is lost on restart")
		return NewMemorySet(memory.NewStore()), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// NewMemorySet wraps an in-memory store.
func NewMemorySet(s *memory.Store) *Set {
	return &Set{
		Ledgers:       memory.NewLedgerRepository(s),
		Records:       memory.NewTimeclockRepository(s),
		LeaveRequests: memory.NewLeaveRequestRepository(s),
		Users:         memory.NewUserRepository(s),
		Devices:       memory.NewDeviceRepository(s),
		Notifications: memory.NewNotificationRepository(s),
	}
}
