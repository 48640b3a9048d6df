// Package memory is a process-local document store. It backs the "memory" database driver
// and the service tests.
package memory

import (
	"sync"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/leave"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/notification"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

// Store holds every collection behind one mutex.
type Store struct {
	mu            sync.Mutex
	ledgers       map[string]ledger.Ledger
	records       map[string]timeclock.Record
	leaves        map[string]leave.LeaveRequest
	users         map[string]user.User
	devices       map[string]device.Device
	notifications []*notification.Notification

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		ledgers: make(map[string]ledger.Ledger),
		records: make(map[string]timeclock.Record),
		leaves:  make(map[string]leave.LeaveRequest),
		users:   make(map[string]user.User),
		devices: make(map[string]device.Device),
		now:     func() time.Time { return time.Now().UTC() },
	}
}
