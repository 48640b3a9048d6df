package auth

import (
	"context"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

// Session identifies who is acting on a request. Kiosk sessions carry a DeviceID
// and no UserID; the scanned user is passed to the operation explicitly.
type Session struct {
	UserID   string
	Email    string
	Role     user.Role
	DeviceID string
}

func (s Session) IsAdmin() bool { return s.Role == user.RoleAdmin }

func (s Session) IsDevice() bool { return s.DeviceID != "" && s.UserID == "" }

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}
