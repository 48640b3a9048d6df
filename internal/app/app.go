// Package app wires repositories into services for the API server and the admin CLI.
package app

import (
	"fmt"

	"github.com/timesheet-hr/timesheet-backend-go/internal/config"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/dashboard"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/report"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/email"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/sse"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/storage"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository"
	dashboardService "github.com/timesheet-hr/timesheet-backend-go/internal/service/dashboard"
	deviceService "github.com/timesheet-hr/timesheet-backend-go/internal/service/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/service/file"
	leaveService "github.com/timesheet-hr/timesheet-backend-go/internal/service/leave"
	ledgerService "github.com/timesheet-hr/timesheet-backend-go/internal/service/ledger"
	notificationService "github.com/timesheet-hr/timesheet-backend-go/internal/service/notification"
	reportService "github.com/timesheet-hr/timesheet-backend-go/internal/service/report"
	timeclockService "github.com/timesheet-hr/timesheet-backend-go/internal/service/timeclock"
	userService "github.com/timesheet-hr/timesheet-backend-go/internal/service/user"
)

type Services struct {
	Hub           *sse.Hub
	Files         file.FileService
	Notifications notification.Service
	Ledger        ledger.Service
	TimeClock     timeclock.Service
	Leave         leave.LeaveRequestService
	Users         user.UserService
	Devices       device.DeviceService
	Reports       report.ReportService
	Dashboard     dashboard.DashboardService
}

func NewServices(cfg *config.Config, repos *repository.Set) (*Services, error) {
	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		fileStorage = local
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	loc := cfg.App.Location()
	hub := sse.NewHub()

	s := &Services{Hub: hub}
	s.Files = file.NewFileService(fileStorage)
	notifCfg := notificationService.Config{}
	if cfg.SMTP.Host != "" {
		mailer, err := email.NewEmailService(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		notifCfg.Mailer = mailer
		notifCfg.Recipients = repos.Users
	}
	s.Notifications = notificationService.NewNotificationService(repos.Notifications, hub, notifCfg)
	s.Ledger = ledgerService.NewLedgerService(repos.Ledgers, ledgerService.Config{
		Retries:    cfg.Ledger.SyncRetries,
		Constraint: ledger.Constraint{MinHours: 0, MaxHours: cfg.Ledger.MaxEditableHours},
	})
	s.TimeClock = timeclockService.NewTimeclockService(repos.Records, repos.Users, s.Ledger, s.Notifications, timeclockService.Config{
		Location:     loc,
		RescanWindow: cfg.Kiosk.RescanWindow,
	})
	s.Leave = leaveService.NewLeaveService(repos.LeaveRequests, s.Ledger, s.Files, repos.Users, s.Notifications, leaveService.Config{})
	s.Users = userService.NewUserService(repos.Users)
	s.Devices = deviceService.NewDeviceService(repos.Devices, 0)
	s.Reports = reportService.NewReportService(s.Ledger, repos.Users)
	s.Dashboard = dashboardService.NewDashboardService(s.TimeClock, s.Ledger, s.Leave, s.Notifications, loc)

	return s, nil
}

// Close flushes queued notifications and ends open event streams.
func (s *Services) Close() {
	s.Notifications.Stop()
	s.Hub.Close()
}
