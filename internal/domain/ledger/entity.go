package ledger

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
)

// Source records which writer last owned an entry.
type Source string

const (
	SourceNone      Source = ""
	SourceManual    Source = "manual"
	SourceLeaveSync Source = "leave_sync"
	SourceTimeClock Source = "time_clock"
)

// Notes stamped by the automated writers.
const (
	NoteTimeClock = "updated by time-clock system"
	NoteAutoClose = "auto-closed: missing clock-out"
)

// DayEntry is one day of a monthly ledger.
type DayEntry struct {
	Date        string           `json:"date"`
	Total       Total            `json:"total"`
	Overtime    int              `json:"overtime"`
	Notes       string           `json:"notes"`
	Source      Source           `json:"source,omitempty"`
	HasData     bool             `json:"has_data"`
	IsWeekend   bool             `json:"is_weekend"`
	IsHoliday   bool             `json:"is_holiday"`
	HolidayName *string          `json:"holiday_name"`
	DayType     calendar.DayType `json:"day_type"`
}

// Ledger is the monthly hours document of one user.
type Ledger struct {
	ID        string
	UserID    string
	Month     int
	Year      int
	Entries   []DayEntry
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPlaceholder returns the empty entry for date, annotated with its classification.
func NewPlaceholder(date time.Time) DayEntry {
	info := calendar.DayInfo(date)
	return DayEntry{
		Date:        info.Date,
		IsWeekend:   info.IsWeekend,
		IsHoliday:   info.IsHoliday,
		HolidayName: info.HolidayName,
		DayType:     info.DayType,
	}
}

// Reset turns e back into a placeholder. The day classification is kept.
func (e *DayEntry) Reset() {
	e.Total = Total{}
	e.Overtime = 0
	e.Notes = ""
	e.Source = SourceNone
	e.HasData = false
}

// SetCode writes a special code into e. Codes carry no overtime.
func (e *DayEntry) SetCode(code Code, source Source, note string) {
	e.Total = CodeTotal(code)
	e.Overtime = 0
	e.Notes = note
	e.Source = source
	e.HasData = true
}

// SetHours writes a numeric total and overtime into e.
func (e *DayEntry) SetHours(hours, overtime int, source Source, note string) {
	e.Total = Hours(hours)
	e.Overtime = overtime
	e.Notes = note
	e.Source = source
	e.HasData = true
}

// IsPlaceholder reports whether e holds no user data.
func (e DayEntry) IsPlaceholder() bool {
	return !e.HasData && e.Total.IsZero() && e.Overtime == 0 && e.Notes == ""
}

// Summary aggregates the numeric totals and codes of a month.
type Summary struct {
	StandardHours int          `json:"standard_hours"`
	OvertimeHours int          `json:"overtime_hours"`
	DaysWithData  int          `json:"days_with_data"`
	Codes         map[Code]int `json:"codes"`
}

// Summarize computes the month summary of entries.
func Summarize(entries []DayEntry) Summary {
	s := Summary{Codes: make(map[Code]int)}
	for _, e := range entries {
		if !e.HasData {
			continue
		}
		s.DaysWithData++
		if e.Total.IsCode() {
			s.Codes[e.Total.Code]++
			continue
		}
		s.StandardHours += e.Total.Hours
		s.OvertimeHours += e.Overtime
	}
	return s
}
