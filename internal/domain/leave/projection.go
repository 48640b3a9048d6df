package leave

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
)

// Projection is the set of ledger days an approved request writes.
type Projection struct {
	Code  ledger.Code
	Dates []time.Time
	// Manual is set when the request has no ledger effect and must be entered by hand.
	Manual bool
}

// Project computes the ledger days of r. Weekdays are counted without holiday exclusion
// for sickness and multi-day permissions.
func Project(r LeaveRequest) Projection {
	from := calendar.DateOf(r.DateFrom)
	to := calendar.DateOf(r.EndDate())

	switch r.Type {
	case TypeVacation:
		return Projection{Code: ledger.CodeVacation, Dates: weekdays(from, to, 0)}

	case TypeSickness:
		if r.DateTo == nil {
			return Projection{Code: ledger.CodeSickness, Dates: []time.Time{from}}
		}
		return Projection{Code: ledger.CodeSickness, Dates: weekdays(from, to, 0)}

	case TypePermission:
		switch r.Kind() {
		case PermissionDaily:
			return Projection{Code: ledger.CodePermission, Dates: []time.Time{from}}
		case PermissionMultiDay:
			return Projection{Code: ledger.CodePermission, Dates: weekdays(from, to, MaxMultiDayPermission)}
		case PermissionHourly:
			return Projection{Code: ledger.CodePermission, Manual: true}
		}
	}

	return Projection{Manual: true}
}

// weekdays lists Monday-to-Friday dates in [from, to]; limit > 0 caps the count.
func weekdays(from, to time.Time, limit int) []time.Time {
	var dates []time.Time
	calendar.EachDay(from, to, func(d time.Time) {
		if calendar.IsWeekend(d) {
			return
		}
		if limit > 0 && len(dates) >= limit {
			return
		}
		dates = append(dates, d)
	})
	return dates
}
