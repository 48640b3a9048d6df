package timeclock

import (
	"fmt"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
)

// MaxStandardHours is the daily cap of standard hours; the rest is overtime.
const MaxStandardHours = 8

const minutesPerDay = 24 * 60

// WorkedHours is the result of a clock-in/clock-out pair.
type WorkedHours struct {
	ElapsedMinutes int
	Rounded        int
	Standard       int
	Overtime       int
}

// ComputeHours derives worked hours from two "HH:MM" times. A clock-out at or before
// the clock-in is taken as an overnight shift. Hours round to the nearest hour with a
// remainder of 30 minutes or more rounding up.
func ComputeHours(clockIn, clockOut string) (WorkedHours, error) {
	in, err := time.Parse(calendar.TimeLayout, clockIn)
	if err != nil {
		return WorkedHours{}, fmt.Errorf("%w: clock-in %q", ErrInvalidClockTime, clockIn)
	}
	out, err := time.Parse(calendar.TimeLayout, clockOut)
	if err != nil {
		return WorkedHours{}, fmt.Errorf("%w: clock-out %q", ErrInvalidClockTime, clockOut)
	}

	elapsed := (out.Hour()*60 + out.Minute()) - (in.Hour()*60 + in.Minute())
	if elapsed <= 0 {
		elapsed += minutesPerDay
	}

	rounded := elapsed / 60
	if elapsed%60 >= 30 {
		rounded++
	}

	w := WorkedHours{ElapsedMinutes: elapsed, Rounded: rounded, Standard: rounded}
	if rounded > MaxStandardHours {
		w.Standard = MaxStandardHours
		w.Overtime = rounded - MaxStandardHours
	}
	return w, nil
}
