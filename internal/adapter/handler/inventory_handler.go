package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
	"github.com/srgjo27/ticket_inventory/internal/core/services"
)

type InventoryHandler struct {
	svc      *services.AllocationService
	notifier ports.Notifier
}

func NewInventoryHandler(svc *services.AllocationService, notifier ports.Notifier) *InventoryHandler {
	return &InventoryHandler{svc: svc, notifier: notifier}
}

// Register wires every route onto the mux.
func (h *InventoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/availability", h.Availability)
	mux.HandleFunc("/holds", h.Holds)
	mux.HandleFunc("/holds/", h.HoldByID)
	mux.HandleFunc("/purchases", h.Purchases)
	mux.HandleFunc("/sessions/", h.SessionHolds)
	mux.HandleFunc("/transactions", h.Transactions)
	mux.HandleFunc("/subscribe", h.Subscribe)
}

// Availability serves GET /availability?event_id=&ticket_type_id=&qty=.
// Without ticket_type_id it returns the whole event's status.
func (h *InventoryHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	eventID, err := uuid.Parse(r.URL.Query().Get("event_id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	rawType := r.URL.Query().Get("ticket_type_id")
	if rawType == "" {
		status, err := h.svc.EventStatus(r.Context(), eventID, r.URL.Query().Get("session_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	ticketTypeID, err := uuid.Parse(rawType)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid ticket type id")
		return
	}

	qty, _ := strconv.Atoi(r.URL.Query().Get("qty"))

	snapshot, err := h.svc.CheckAvailability(r.Context(), eventID, ticketTypeID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Holds serves POST /holds.
func (h *InventoryHandler) Holds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req services.CreateHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	hold, err := h.svc.CreateHold(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hold)
}

// HoldByID serves DELETE /holds/{id}?reason=.
func (h *InventoryHandler) HoldByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	holdID, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/holds/"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid hold id")
		return
	}

	if err := h.svc.ReleaseHold(r.Context(), holdID, r.URL.Query().Get("reason")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// Purchases serves POST /purchases with body {"hold_id": "..."}.
func (h *InventoryHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		HoldID string `json:"hold_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	holdID, err := uuid.Parse(req.HoldID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid hold id")
		return
	}

	hold, err := h.svc.PurchaseTickets(r.Context(), holdID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hold)
}

// SessionHolds serves DELETE /sessions/{id}/holds.
func (h *InventoryHandler) SessionHolds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	sessionID, ok := strings.CutSuffix(rest, "/holds")
	if !ok || sessionID == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	released := h.svc.ReleaseAllHoldsForSession(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, map[string]int{"released": released})
}

// Transactions serves GET /transactions?event_id=&ticket_type_id=&limit=.
func (h *InventoryHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	eventID := parseOptionalID(r.URL.Query().Get("event_id"))
	ticketTypeID := parseOptionalID(r.URL.Query().Get("ticket_type_id"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txns, err := h.svc.Transactions(r.Context(), eventID, ticketTypeID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// Subscribe serves GET /subscribe?event_id= as a server-sent event stream.
// Events are a latency optimization; clients reconcile via /availability.
func (h *InventoryHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	eventID := parseOptionalID(r.URL.Query().Get("event_id"))

	events, cancel := h.notifier.Subscribe(eventID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}

func parseOptionalID(raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeError maps domain errors onto HTTP statuses. Insufficient capacity
// additionally reports the quantity actually available so the UI can offer a
// smaller request.
func writeError(w http.ResponseWriter, err error) {
	if ice, ok := domain.AsInsufficientCapacity(err); ok {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":              ice.Error(),
			"requested_quantity": ice.Requested,
			"available_quantity": ice.Available,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrTicketTypeNotFound), errors.Is(err, domain.ErrHoldNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyTerminal):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  err.Error(),
			"action": "re-check availability and request a new hold",
		})
	case errors.Is(err, domain.ErrEventClosed), errors.Is(err, domain.ErrDuplicateRequest), errors.Is(err, domain.ErrTooManyHolds):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidHoldType),
		errors.Is(err, domain.ErrInvalidEventID), errors.Is(err, domain.ErrInvalidTicketType):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
