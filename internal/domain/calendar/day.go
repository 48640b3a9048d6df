package calendar

import "time"

// Day describes the classification of a single calendar day.
type Day struct {
	Date            string  `json:"date"`
	DayOfWeek       string  `json:"day_of_week"`
	IsWeekend       bool    `json:"is_weekend"`
	IsHoliday       bool    `json:"is_holiday"`
	HolidayName     *string `json:"holiday_name"`
	IsNonWorkingDay bool    `json:"is_non_working_day"`
	DayType         DayType `json:"day_type"`
}

// DayInfo classifies date. A holiday that falls on a weekend is reported as a holiday.
func DayInfo(date time.Time) Day {
	date = DateOf(date)
	weekend := IsWeekend(date)
	holiday, name := IsHoliday(date)

	d := Day{
		Date:            FormatDate(date),
		DayOfWeek:       date.Weekday().String(),
		IsWeekend:       weekend,
		IsHoliday:       holiday,
		IsNonWorkingDay: weekend || holiday,
		DayType:         DayTypeWorkday,
	}

	switch {
	case holiday:
		d.HolidayName = &name
		d.DayType = DayTypeHoliday
	case weekend:
		d.DayType = DayTypeWeekend
	}

	return d
}

// MonthDays returns the descriptors for every day of month in year.
func MonthDays(month, year int) []Day {
	n := DaysInMonth(month, year)
	days := make([]Day, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, DayInfo(time.Date(year, time.Month(month), i, 0, 0, 0, 0, time.UTC)))
	}
	return days
}
