package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

// mustSession returns the authenticated session or writes a 401.
func mustSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return auth.Session{}, false
	}
	return sess, true
}

// monthQuery reads ?month=&year=, defaulting to the month of now.
func monthQuery(r *http.Request, now time.Time) (int, int, error) {
	month, year := int(now.Month()), now.Year()
	var errs validator.ValidationErrors

	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
		}
		month = m
	}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 1970 and 9999"})
		}
		year = y
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return month, year, nil
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// clock returns the current time in loc.
type clock struct {
	loc *time.Location
	now func() time.Time
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{loc: loc, now: time.Now}
}

func (c clock) Now() time.Time {
	return c.now().In(c.loc)
}
