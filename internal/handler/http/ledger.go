package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/ledger"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
)

type LedgerHandler interface {
	GetMine(w http.ResponseWriter, r *http.Request)

	// Admin
	GetForUser(w http.ResponseWriter, r *http.Request)
	ListMonth(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService ledger.Service
	clock         clock
}

func NewLedgerHandler(ledgerService ledger.Service, loc *time.Location) LedgerHandler {
	return &ledgerHandlerImpl{
		ledgerService: ledgerService,
		clock:         newClock(loc),
	}
}

// GetMine implements LedgerHandler.
func (h *ledgerHandlerImpl) GetMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.writeMonth(w, r, sess.UserID)
}

// GetForUser implements LedgerHandler.
func (h *ledgerHandlerImpl) GetForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, "User ID is required", nil)
		return
	}
	h.writeMonth(w, r, userID)
}

func (h *ledgerHandlerImpl) writeMonth(w http.ResponseWriter, r *http.Request, userID string) {
	month, year, err := monthQuery(r, h.clock.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	view, err := h.ledgerService.GetMonth(r.Context(), userID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, view)
}

// ListMonth implements LedgerHandler.
func (h *ledgerHandlerImpl) ListMonth(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthQuery(r, h.clock.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	views, err := h.ledgerService.ListMonth(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, views)
}

// Save implements LedgerHandler.
func (h *ledgerHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	var req ledger.SaveRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Save ledger decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = chi.URLParam(r, "userID")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	view, err := h.ledgerService.Save(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Ledger saved successfully", view)
}
