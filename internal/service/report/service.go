package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/report"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
)

// LedgerLister returns every ledger of a month.
type LedgerLister interface {
	ListMonth(ctx context.Context, month, year int) ([]ledger.MonthView, error)
}

type reportService struct {
	ledgers LedgerLister
	users   user.UserRepository
	now     func() time.Time
}

func NewReportService(ledgers LedgerLister, users user.UserRepository) report.ReportService {
	return &reportService{ledgers: ledgers, users: users, now: time.Now}
}

// MonthlyLedger returns a row per active user plus any user that has a ledger for the month.
func (s *reportService) MonthlyLedger(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReport, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyReport{}, err
	}

	views, err := s.ledgers.ListMonth(ctx, req.Month, req.Year)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	users, err := s.users.List(ctx, user.Filter{ActiveOnly: true})
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to list users: %w", err)
	}

	byUser := make(map[string]ledger.MonthView, len(views))
	for _, v := range views {
		byUser[v.UserID] = v
	}

	profiles := make(map[string]user.User, len(users))
	for _, u := range users {
		profiles[u.ID] = u
		if _, ok := byUser[u.ID]; !ok {
			byUser[u.ID] = ledger.NewMonthView(u.ID, req.Month, req.Year, nil)
		}
	}

	skeleton := ledger.GenerateEmptyMonth(req.Month, req.Year)
	days := make([]report.DayColumn, 0, len(skeleton))
	for _, e := range skeleton {
		d, _ := calendar.ParseDate(e.Date)
		days = append(days, report.DayColumn{
			Date:    e.Date,
			Weekday: d.Weekday().String()[:3],
			Working: e.DayType == calendar.DayTypeWorkday,
		})
	}

	rows := make([]report.Row, 0, len(byUser))
	for userID, view := range byUser {
		row := report.Row{UserID: userID, Summary: view.Summary, Cells: make([]string, len(view.Entries))}
		if p, ok := profiles[userID]; ok {
			row.DisplayName = p.DisplayName
			row.Email = p.Email
		} else if u, err := s.users.GetByID(ctx, userID); err == nil {
			row.DisplayName = u.DisplayName
			row.Email = u.Email
		}
		for i, e := range view.Entries {
			row.Cells[i] = cellText(e)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DisplayName != rows[j].DisplayName {
			return rows[i].DisplayName < rows[j].DisplayName
		}
		return rows[i].UserID < rows[j].UserID
	})

	return report.MonthlyReport{
		Month:       req.Month,
		Year:        req.Year,
		Days:        days,
		Rows:        rows,
		GeneratedAt: s.now().Format(time.RFC3339),
	}, nil
}

// cellText renders a day as "8", "8+2" with overtime, a code, or "" for a placeholder.
func cellText(e ledger.DayEntry) string {
	if !e.HasData {
		return ""
	}
	if e.Overtime > 0 && !e.Total.IsCode() {
		return fmt.Sprintf("%d+%d", e.Total.Hours, e.Overtime)
	}
	return e.Total.String()
}

var summaryCodes = []ledger.Code{
	ledger.CodeVacation,
	ledger.CodeSickness,
	ledger.CodePermission,
	ledger.CodeAbsence,
	ledger.CodeRedundancyFund,
}

// ExportMonthlyXLSX implements report.ReportService.
func (s *reportService) ExportMonthlyXLSX(ctx context.Context, req report.MonthlyReportRequest, w io.Writer) error {
	rep, err := s.MonthlyLedger(ctx, req)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := fmt.Sprintf("%04d-%02d", rep.Year, rep.Month)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"User", "Email"}
	for _, d := range rep.Days {
		header = append(header, d.Date[8:]+" "+d.Weekday)
	}
	header = append(header, "Standard", "Overtime")
	for _, c := range summaryCodes {
		header = append(header, string(c))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rep.Rows {
		name := r.DisplayName
		if name == "" {
			name = r.UserID
		}
		values := []interface{}{name, r.Email}
		for _, c := range r.Cells {
			if h, err := strconv.Atoi(c); err == nil {
				values = append(values, h)
				continue
			}
			values = append(values, c)
		}
		values = append(values, r.Summary.StandardHours, r.Summary.OvertimeHours)
		for _, c := range summaryCodes {
			values = append(values, r.Summary.Codes[c])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.UserID, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
