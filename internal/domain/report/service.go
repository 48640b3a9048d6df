package report

import (
	"context"
	"io"
)

type ReportService interface {
	MonthlyLedger(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	// ExportMonthlyXLSX writes the monthly report as a single-sheet workbook.
	ExportMonthlyXLSX(ctx context.Context, req MonthlyReportRequest, w io.Writer) error
}
