package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/jwt"
)

// KioskOptions tunes the scan endpoint. A nil Redis disables replay protection.
type KioskOptions struct {
	Redis          redis.Cmdable
	RatePerSecond  float64
	Burst          int
	IdempotencyTTL time.Duration
}

type Handlers struct {
	Dashboard    DashboardHandler
	TimeClock    TimeClockHandler
	Ledger       LedgerHandler
	Report       ReportHandler
	Leave        LeaveHandler
	Device       DeviceHandler
	User         UserHandler
	Notification NotificationHandler

	// Uploads serves stored certificates under /uploads when set.
	Uploads http.Handler
}

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	JWTService jwt.Service,
	devices device.DeviceService,
	kiosk KioskOptions,
	h Handlers,
) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-CSRF-Token",
			middleware.HeaderIdempotencyKey, middleware.HeaderDeviceID, middleware.HeaderDeviceKey,
		},
		ExposedHeaders: []string{"Link", "Content-Disposition", middleware.HeaderReplayed},
		MaxAge:         300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if h.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", h.Uploads))
	}

	limiter := middleware.NewKeyedLimiter(rate.Limit(kiosk.RatePerSecond), kiosk.Burst)

	r.Route("/api/v1", func(r chi.Router) {

		// Kiosk devices authenticate with their own key
		r.Route("/kiosk", func(r chi.Router) {
			r.Use(middleware.DeviceAuth(devices))
			r.Use(middleware.RateLimitByCaller(limiter))
			if kiosk.Redis != nil {
				r.Use(middleware.Idempotency(kiosk.Redis, kiosk.IdempotencyTTL))
			}
			r.Post("/scan", h.TimeClock.Scan)
		})

		// EventSource cannot send headers
		r.With(middleware.SSETokenAuth(JWTService)).Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Get("/me", h.User.Me)
			r.Get("/calendar/{year}/holidays", Holidays)
			r.Get("/calendar/{year}/{month}", CalendarMonth)
			r.Get("/me/dashboard", h.Dashboard.Get)

			r.Route("/timeclock", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionTimeClockOwn))
				r.Post("/clock-in", h.TimeClock.ClockIn)
				r.Post("/clock-out", h.TimeClock.ClockOut)
				r.Get("/today", h.TimeClock.Today)
				r.Get("/me", h.TimeClock.ListMine)
			})

			r.With(middleware.RequirePermission(user.PermissionLedgerViewOwn)).Get("/ledger/me", h.Ledger.GetMine)

			r.Route("/leave-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.Create)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))
					r.Get("/me", h.Leave.ListMine)
					r.Get("/{id}", h.Leave.Get)
					r.Delete("/{id}", h.Leave.Cancel)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/sse-token", h.Notification.GetSSEToken)
				r.Delete("/{id}", h.Notification.Delete)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/ledger", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionLedgerViewAll)).Get("/", h.Ledger.ListMonth)
					r.With(middleware.RequirePermission(user.PermissionLedgerViewAll)).Get("/{userID}", h.Ledger.GetForUser)
					r.With(middleware.RequirePermission(user.PermissionLedgerEdit)).Put("/{userID}", h.Ledger.Save)
				})

				r.Route("/reports", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsView))
					r.Get("/monthly", h.Report.MonthlyLedger)
					r.Get("/monthly.xlsx", h.Report.ExportMonthlyXLSX)
				})

				r.Route("/leave-requests", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", h.Leave.List)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.Approve)
						r.Post("/{id}/reject", h.Leave.Reject)
						r.Delete("/{id}", h.Leave.Delete)
					})
				})

				r.Route("/devices", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionDeviceManage))
					r.Get("/", h.Device.List)
					r.Post("/", h.Device.Create)
					r.Patch("/{id}", h.Device.SetActive)
				})

				r.Route("/users", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Get("/", h.User.List)
					r.Post("/", h.User.Upsert)
					r.Patch("/{id}", h.User.Update)
				})
			})
		})
	})

	return r
}

// NewLogger builds the JSON request logger in the ECS schema.
func NewLogger(app, version, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
