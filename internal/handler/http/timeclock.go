package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/timeclock"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
)

type TimeClockHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)

	// Scan is the kiosk endpoint; the caller is a device session.
	Scan(w http.ResponseWriter, r *http.Request)
}

type timeClockHandlerImpl struct {
	timeClockService timeclock.Service
	clock            clock
}

func NewTimeClockHandler(timeClockService timeclock.Service, loc *time.Location) TimeClockHandler {
	return &timeClockHandlerImpl{
		timeClockService: timeClockService,
		clock:            newClock(loc),
	}
}

// ClockIn implements TimeClockHandler.
func (h *timeClockHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}

	result, err := h.timeClockService.ClockIn(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.AlreadyClockedIn {
		response.SuccessWithMessage(w, result.Warning, result)
		return
	}
	response.Created(w, "Clocked in successfully", result)
}

// ClockOut implements TimeClockHandler.
func (h *timeClockHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}

	record, err := h.timeClockService.ClockOut(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out successfully", record)
}

// Today implements TimeClockHandler.
func (h *timeClockHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}

	record, err := h.timeClockService.Today(r.Context(), sess.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// ListMine implements TimeClockHandler.
func (h *timeClockHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}

	month, year, err := monthQuery(r, h.clock.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.timeClockService.ListMonth(r.Context(), timeclock.ListMonthRequest{
		UserID: sess.UserID,
		Month:  month,
		Year:   year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// Scan implements TimeClockHandler.
func (h *timeClockHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}

	var req timeclock.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Scan decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeClockService.Scan(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Warning != "" {
		response.SuccessWithMessage(w, result.Warning, result)
		return
	}
	response.Success(w, result)
}
