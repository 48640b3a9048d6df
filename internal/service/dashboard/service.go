package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/dashboard"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
)

type (
	TimeClock interface {
		SweepOnDashboard(ctx context.Context, userID string) timeclock.AutoCloseReport
		Today(ctx context.Context, userID string) (*timeclock.RecordResponse, error)
	}
	Ledger interface {
		GetMonth(ctx context.Context, userID string, month, year int) (ledger.MonthView, error)
	}
	PendingCounter interface {
		CountPending(ctx context.Context, userID string) (int, error)
	}
	UnreadCounter interface {
		GetUnreadCount(ctx context.Context, userID string) (int, error)
	}
)

type dashboardService struct {
	clock    TimeClock
	ledger   Ledger
	leave    PendingCounter
	unread   UnreadCounter
	location *time.Location
	now      func() time.Time
}

// NewDashboardService assembles the dashboard from the other services. unread may be nil.
func NewDashboardService(clock TimeClock, ledger Ledger, leave PendingCounter, unread UnreadCounter, location *time.Location) dashboard.DashboardService {
	if location == nil {
		location = time.UTC
	}
	return &dashboardService{
		clock:    clock,
		ledger:   ledger,
		leave:    leave,
		unread:   unread,
		location: location,
		now:      time.Now,
	}
}

// Get runs the sweep first so today's view and the month already reflect closed sessions.
func (s *dashboardService) Get(ctx context.Context, sess auth.Session) (*dashboard.DashboardResponse, error) {
	if sess.UserID == "" {
		return nil, auth.ErrNoSession
	}

	report := s.clock.SweepOnDashboard(ctx, sess.UserID)

	today := s.now().In(s.location)
	resp := &dashboard.DashboardResponse{
		Date:       calendar.FormatDate(today),
		AutoClosed: report.Closed,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec, err := s.clock.Today(gCtx, sess.UserID)
		if err != nil {
			return err
		}
		resp.Today = rec
		return nil
	})

	g.Go(func() error {
		view, err := s.ledger.GetMonth(gCtx, sess.UserID, int(today.Month()), today.Year())
		if err != nil {
			return err
		}
		resp.Month = view
		return nil
	})

	g.Go(func() error {
		n, err := s.leave.CountPending(gCtx, sess.UserID)
		if err != nil {
			return err
		}
		resp.PendingLeave = n
		return nil
	})

	if s.unread != nil {
		g.Go(func() error {
			n, err := s.unread.GetUnreadCount(gCtx, sess.UserID)
			if err != nil {
				return err
			}
			resp.UnreadNotifications = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}
