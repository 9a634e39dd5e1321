// Package handlers provides HTTP handlers for the banking ledger.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/modules/banking"
)

// Handler handles banking HTTP requests
type Handler struct {
	service *banking.Service
	log     zerolog.Logger
}

// NewHandler creates a new banking handler
func NewHandler(service *banking.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "banking").Logger(),
	}
}

type transactionRequest struct {
	ShipID string  `json:"shipId"`
	Year   int     `json:"year"`
	Amount float64 `json:"amountGco2eq"`
}

// HandleGetRecords returns the ship-year's ledger entries, newest first.
// GET /api/banking/records?shipId=R001&year=2024
func (h *Handler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	shipID := r.URL.Query().Get("shipId")
	if shipID == "" {
		h.writeError(w, http.StatusBadRequest, "shipId query parameter is required")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}

	entries, err := h.service.Records(shipID, year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.BankEntry{}
	}

	available, err := h.service.AvailableBanked(shipID, year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"records":               entries,
		"count":                 len(entries),
		"availableBankedGco2eq": available,
	})
}

// HandleBank sets surplus aside.
// POST /api/banking/bank
func (h *Handler) HandleBank(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Bank(req.ShipID, req.Year, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

// HandleApply consumes banked surplus.
// POST /api/banking/apply
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Apply(req.ShipID, req.Year, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRuleViolation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Banking request failed")
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
