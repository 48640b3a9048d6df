package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/report"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	MonthlyLedger(w http.ResponseWriter, r *http.Request)
	ExportMonthlyXLSX(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	clock         clock
}

func NewReportHandler(reportService report.ReportService, loc *time.Location) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		clock:         newClock(loc),
	}
}

func (h *reportHandlerImpl) parseRequest(r *http.Request) (report.MonthlyReportRequest, error) {
	month, year, err := monthQuery(r, h.clock.Now())
	if err != nil {
		return report.MonthlyReportRequest{}, err
	}
	req := report.MonthlyReportRequest{Month: month, Year: year}
	return req, req.Validate()
}

// MonthlyLedger implements ReportHandler.
func (h *reportHandlerImpl) MonthlyLedger(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.MonthlyLedger(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyXLSX implements ReportHandler. The workbook is buffered so a failure
// still produces a JSON error instead of a truncated file.
func (h *reportHandlerImpl) ExportMonthlyXLSX(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportMonthlyXLSX(r.Context(), req, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("ledger-%d-%02d.xlsx", req.Year, req.Month)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
