package timeclock

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

type RecordResponse struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Date            string      `json:"date"`
	ClockInTime     string      `json:"clock_in_time"`
	ClockOutTime    *string     `json:"clock_out_time"`
	StandardHours   int         `json:"standard_hours"`
	OvertimeHours   int         `json:"overtime_hours"`
	Status          Status      `json:"status"`
	AutoCloseReason *string     `json:"auto_close_reason,omitempty"`
	DeviceID        *string     `json:"device_id,omitempty"`
	LedgerSync      *LedgerSync `json:"ledger_sync,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		Date:            calendar.FormatDate(r.Date),
		ClockInTime:     r.ClockInTime,
		ClockOutTime:    r.ClockOutTime,
		StandardHours:   r.StandardHours,
		OvertimeHours:   r.OvertimeHours,
		Status:          r.Status,
		AutoCloseReason: r.AutoCloseReason,
		DeviceID:        r.DeviceID,
		LedgerSync:      r.LedgerSync,
		UpdatedAt:       r.UpdatedAt,
	}
}

type ClockInResult struct {
	Record RecordResponse `json:"record"`
	// AlreadyClockedIn is set on a repeated clock-in; Record is then the original session.
	AlreadyClockedIn bool   `json:"already_clocked_in"`
	Warning          string `json:"warning,omitempty"`
}

type ScanAction string

const (
	ScanActionClockIn  ScanAction = "clock_in"
	ScanActionClockOut ScanAction = "clock_out"
)

type ScanRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

func (r *ScanRequest) Validate() error {
	return validator.Struct(r)
}

type ScanResult struct {
	Action  ScanAction     `json:"action"`
	Record  RecordResponse `json:"record"`
	Warning string         `json:"warning,omitempty"`
}

type ListMonthRequest struct {
	UserID string `validate:"required"`
	Month  int    `validate:"min=1,max=12"`
	Year   int    `validate:"min=1970,max=9999"`
}

func (r *ListMonthRequest) Validate() error {
	return validator.Struct(r)
}

type AutoCloseReport struct {
	Closed int `json:"closed"`
	Failed int `json:"failed"`
}
