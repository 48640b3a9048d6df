package device

import "time"

// Device is a kiosk that scans badges on behalf of users.
type Device struct {
	ID         string
	Name       string
	Location   string
	KeyHash    string
	Active     bool
	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
