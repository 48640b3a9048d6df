package ledger

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
)

// Constraint bounds the numeric totals accepted by an editor.
type Constraint struct {
	MinHours int
	MaxHours int
}

// EditorConstraint is the range enforced by the admin monthly editor.
var EditorConstraint = Constraint{MinHours: 0, MaxHours: 8}

// Clamp forces hours into [MinHours, MaxHours].
func (c Constraint) Clamp(hours int) int {
	if hours < c.MinHours {
		return c.MinHours
	}
	if hours > c.MaxHours {
		return c.MaxHours
	}
	return hours
}

// GenerateEmptyMonth returns one placeholder per calendar day of month in year.
func GenerateEmptyMonth(month, year int) []DayEntry {
	n := calendar.DaysInMonth(month, year)
	entries := make([]DayEntry, 0, n)
	for day := 1; day <= n; day++ {
		entries = append(entries, NewPlaceholder(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)))
	}
	return entries
}

// MergeExisting left-joins the full month skeleton with the stored entries by date.
// Stored entries outside the skeleton are dropped; classification always comes from the skeleton.
func MergeExisting(empty, existing []DayEntry) []DayEntry {
	byDate := make(map[string]DayEntry, len(existing))
	for _, e := range existing {
		byDate[e.Date] = e
	}

	merged := make([]DayEntry, len(empty))
	for i, placeholder := range empty {
		stored, ok := byDate[placeholder.Date]
		if !ok {
			merged[i] = placeholder
			continue
		}
		stored.IsWeekend = placeholder.IsWeekend
		stored.IsHoliday = placeholder.IsHoliday
		stored.HolidayName = placeholder.HolidayName
		stored.DayType = placeholder.DayType
		merged[i] = stored
	}
	return merged
}

// Normalize applies the storage invariants to e: codes carry no overtime, numeric totals
// are clamped to c and overtime is never negative.
func Normalize(e DayEntry, c Constraint) DayEntry {
	if e.Total.IsCode() {
		e.Total.Hours = 0
		e.Overtime = 0
		return e
	}
	e.Total.Hours = c.Clamp(e.Total.Hours)
	if e.Overtime < 0 {
		e.Overtime = 0
	}
	return e
}

// IndexOf returns the position of date within entries, or -1.
func IndexOf(entries []DayEntry, date string) int {
	for i := range entries {
		if entries[i].Date == date {
			return i
		}
	}
	return -1
}
