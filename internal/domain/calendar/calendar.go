package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// TimeLayout is the wall clock format used for clock-in and clock-out times.
const TimeLayout = "15:04"

type DayType string

const (
	DayTypeHoliday DayType = "holiday"
	DayTypeWeekend DayType = "weekend"
	DayTypeWorkday DayType = "workday"
)

// ParseDate parses a "YYYY-MM-DD" string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formats t as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf truncates t to its calendar day in its own location and returns it as UTC midnight,
// so that dates coming from different zones compare by calendar day only.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of calendar days of month in year.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidMonth reports whether month and year describe a usable calendar month.
func ValidMonth(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 1970 && year <= 9999
}

// EachDay calls fn for every day from start to end inclusive.
func EachDay(start, end time.Time, fn func(day time.Time)) {
	start, end = DateOf(start), DateOf(end)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekdaysBetween counts Monday-to-Friday days from start to end inclusive.
// Holidays are not excluded.
func WeekdaysBetween(start, end time.Time) int {
	count := 0
	EachDay(start, end, func(d time.Time) {
		if !IsWeekend(d) {
			count++
		}
	})
	return count
}
