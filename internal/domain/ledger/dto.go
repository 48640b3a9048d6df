package ledger

import (
	"fmt"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

type MonthView struct {
	UserID  string     `json:"user_id"`
	Month   int        `json:"month"`
	Year    int        `json:"year"`
	Version int64      `json:"version"`
	Stored  bool       `json:"stored"`
	Entries []DayEntry `json:"entries"`
	Summary Summary    `json:"summary"`
}

// NewMonthView merges l (which may be nil) into the month skeleton.
func NewMonthView(userID string, month, year int, l *Ledger) MonthView {
	view := MonthView{
		UserID: userID,
		Month:  month,
		Year:   year,
	}
	var stored []DayEntry
	if l != nil {
		stored = l.Entries
		view.Stored = true
		// Legacy documents are rewritten under a fresh canonical key on the next save.
		if l.ID == Key(userID, month, year) {
			view.Version = l.Version
		}
	}
	view.Entries = MergeExisting(GenerateEmptyMonth(month, year), stored)
	view.Summary = Summarize(view.Entries)
	return view
}

type EntryInput struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Total    Total  `json:"total"`
	Overtime int    `json:"overtime" validate:"min=0,max=24"`
	Notes    string `json:"notes" validate:"max=500"`
}

// SaveRequest is the admin editor payload. A nil Version saves over whatever is stored.
type SaveRequest struct {
	UserID  string       `json:"-" validate:"required"`
	Month   int          `json:"month" validate:"required,min=1,max=12"`
	Year    int          `json:"year" validate:"required,min=1970,max=9999"`
	Version *int64       `json:"version,omitempty"`
	Entries []EntryInput `json:"entries" validate:"required,dive"`
}

func (r *SaveRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	seen := make(map[string]struct{}, len(r.Entries))
	for i, e := range r.Entries {
		field := fmt.Sprintf("entries[%d].date", i)
		d, err := calendar.ParseDate(e.Date)
		if err != nil {
			continue
		}
		if int(d.Month()) != r.Month || d.Year() != r.Year {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("date %s is outside %d/%d", e.Date, r.Month, r.Year),
			})
		}
		if _, dup := seen[e.Date]; dup {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("date %s is listed more than once", e.Date),
			})
		}
		seen[e.Date] = struct{}{}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ClockSyncResult reports whether a clock write reached the ledger.
type ClockSyncResult struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// DateOutcome is the per-date result of a leave projection or revert.
type DateOutcome struct {
	Date    string `json:"date"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type MigrationReport struct {
	Scanned  int      `json:"scanned"`
	Migrated int      `json:"migrated"`
	Merged   int      `json:"merged"`
	Failed   []string `json:"failed,omitempty"`
}
