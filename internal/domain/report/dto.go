package report

import (
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

type MonthlyReportRequest struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=1970,max=9999"`
}

func (r *MonthlyReportRequest) Validate() error {
	return validator.Struct(r)
}

// MonthlyReport is the month overview of every user's ledger.
type MonthlyReport struct {
	Month       int         `json:"month"`
	Year        int         `json:"year"`
	Days        []DayColumn `json:"days"`
	Rows        []Row       `json:"rows"`
	GeneratedAt string      `json:"generated_at"`
}

type DayColumn struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Working bool   `json:"working"`
}

type Row struct {
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Cells       []string       `json:"cells"`
	Summary     ledger.Summary `json:"summary"`
}
