// Package handlers provides HTTP handlers for compliance balance queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/modules/compliance"
)

// Handler handles compliance HTTP requests
type Handler struct {
	service *compliance.Service
	log     zerolog.Logger
}

// NewHandler creates a new compliance handler
func NewHandler(service *compliance.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "compliance").Logger(),
	}
}

// HandleGetBalance returns the compliance balance for a ship-year,
// computing it from route data on first access.
// GET /api/compliance/cb?shipId=R001&year=2024
func (h *Handler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	shipID, year, ok := h.shipYearParams(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(shipID, year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"shipId":     balance.ShipID,
		"year":       balance.Year,
		"cbGco2eq":   balance.CBGramsCO2,
		"status":     balance.Status(),
		"computedAt": balance.ComputedAt,
	})
}

// HandleGetAdjustedBalance returns the banking-adjusted compliance balance.
// GET /api/compliance/adjusted-cb?shipId=R001&year=2024
func (h *Handler) HandleGetAdjustedBalance(w http.ResponseWriter, r *http.Request) {
	shipID, year, ok := h.shipYearParams(w, r)
	if !ok {
		return
	}

	adjusted, err := h.service.AdjustedCB(shipID, year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"shipId":           shipID,
		"year":             year,
		"adjustedCbGco2eq": adjusted,
	})
}

func (h *Handler) shipYearParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	shipID := r.URL.Query().Get("shipId")
	if shipID == "" {
		h.writeError(w, http.StatusBadRequest, "shipId query parameter is required")
		return "", 0, false
	}

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		h.writeError(w, http.StatusBadRequest, "year query parameter is required")
		return "", 0, false
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "year must be an integer")
		return "", 0, false
	}

	return shipID, year, true
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
	if status == http.StatusServiceUnavailable || status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Compliance request failed")
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
