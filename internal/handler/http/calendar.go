package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

// CalendarMonth serves the day descriptors of /calendar/{year}/{month}.
func CalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil || !calendar.ValidMonth(month, year) {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "month",
			Message: "year and month must form a valid calendar month",
		}})
		return
	}

	response.Success(w, calendar.MonthDays(month, year))
}

// Holidays serves the holiday table of /calendar/{year}/holidays.
func Holidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || !calendar.ValidMonth(1, year) {
		response.BadRequest(w, "Invalid year", nil)
		return
	}

	response.Success(w, calendar.HolidaysForYear(year))
}
