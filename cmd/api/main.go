package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/timesheet-hr/timesheet-backend-go/internal/app"
	"github.com/timesheet-hr/timesheet-backend-go/internal/config"
	appHTTP "github.com/timesheet-hr/timesheet-backend-go/internal/handler/http"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/cron"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/jwt"
	"github.com/timesheet-hr/timesheet-backend-go/internal/repository"
)

const (
	appName    = "timesheet-backend"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := appHTTP.NewLogger(appName, appVersion, cfg.App.Env, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	repos, closeRepos, err := repository.Open(connectCtx, cfg.Database, cfg.DatabaseURL())
	cancel()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer closeRepos()

	services, err := app.NewServices(cfg, repos)
	if err != nil {
		return err
	}
	defer services.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("Redis unreachable, kiosk replay protection fails open until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	} else {
		slog.Warn("REDIS_ADDR not set, kiosk scans are not idempotent")
	}

	scheduler := cron.NewScheduler()
	cron.NewTimeClockJobs(services.TimeClock, cfg.Cron.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiration)
	loc := cfg.App.Location()

	kiosk := appHTTP.KioskOptions{
		RatePerSecond:  cfg.Kiosk.RatePerSecond,
		Burst:          cfg.Kiosk.Burst,
		IdempotencyTTL: cfg.Kiosk.IdempotencyTTL,
	}
	if rdb != nil {
		kiosk.Redis = rdb
	}

	router := appHTTP.NewRouter(logger, cfg.App.FrontendURL, JWTService, services.Devices, kiosk, appHTTP.Handlers{
		Dashboard:    appHTTP.NewDashboardHandler(services.Dashboard),
		TimeClock:    appHTTP.NewTimeClockHandler(services.TimeClock, loc),
		Ledger:       appHTTP.NewLedgerHandler(services.Ledger, loc),
		Report:       appHTTP.NewReportHandler(services.Reports, loc),
		Leave:        appHTTP.NewLeaveHandler(services.Leave),
		Device:       appHTTP.NewDeviceHandler(services.Devices),
		User:         appHTTP.NewUserHandler(services.Users),
		Notification: appHTTP.NewNotificationHandler(services.Notifications, JWTService),
		Uploads:      http.FileServer(http.Dir(cfg.Storage.BasePath)),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
