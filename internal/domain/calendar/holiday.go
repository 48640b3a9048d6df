package calendar

import (
	"fmt"
	"sync"
	"time"
)

// fixedHolidays are the national holidays that fall on the same day every year.
var fixedHolidays = map[string]string{
	"01-01": "Capodanno",
	"01-06": "Epifania",
	"04-25": "Festa della Liberazione",
	"05-01": "Festa del Lavoro",
	"06-02": "Festa della Repubblica",
	"08-15": "Ferragosto",
	"11-01": "Ognissanti",
	"12-08": "Immacolata Concezione",
	"12-25": "Natale",
	"12-26": "Santo Stefano",
}

const (
	EasterSundayName = "Pasqua"
	EasterMondayName = "Lunedì dell'Angelo"
)

var yearCache sync.Map // int -> map[string]string

// EasterSunday returns Easter Sunday of the given year using the anonymous
// Gregorian computus (Gauss, as refined by Meeus/Jones/Butcher).
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// HolidaysForYear returns the holidays of year keyed by "MM-DD".
// The returned map is a copy and may be modified by the caller.
func HolidaysForYear(year int) map[string]string {
	table := holidayTable(year)
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// IsHoliday reports whether date is a holiday and its name.
func IsHoliday(date time.Time) (bool, string) {
	name, ok := holidayTable(date.Year())[monthDayKey(date)]
	return ok, name
}

func holidayTable(year int) map[string]string {
	if cached, ok := yearCache.Load(year); ok {
		return cached.(map[string]string)
	}

	table := make(map[string]string, len(fixedHolidays)+2)
	for k, v := range fixedHolidays {
		table[k] = v
	}

	easter := EasterSunday(year)
	table[monthDayKey(easter)] = EasterSundayName
	table[monthDayKey(easter.AddDate(0, 0, 1))] = EasterMondayName

	actual, _ := yearCache.LoadOrStore(year, table)
	return actual.(map[string]string)
}

func monthDayKey(date time.Time) string {
	return fmt.Sprintf("%02d-%02d", int(date.Month()), date.Day())
}
