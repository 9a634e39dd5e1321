// Package handlers provides HTTP handlers for pool management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/modules/pooling"
)

// Handler handles pooling HTTP requests
type Handler struct {
	service *pooling.Service
	log     zerolog.Logger
}

// NewHandler creates a new pooling handler
func NewHandler(service *pooling.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "pooling").Logger(),
	}
}

// HandleCreatePool creates a pool and runs the allocation. A pool needs
// at least two ships to be meaningful over HTTP; single-ship pools are
// only reachable programmatically.
// POST /api/pools
func (h *Handler) HandleCreatePool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year    int      `json:"year"`
		ShipIDs []string `json:"shipIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.ShipIDs) < 2 {
		h.writeError(w, http.StatusBadRequest, "A pool requires at least two ships")
		return
	}

	result, err := h.service.CreatePool(req.Year, req.ShipIDs)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

// HandleGetPool returns a stored pool with its members.
// GET /api/pools/{poolID}
func (h *Handler) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "poolID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Pool ID must be an integer")
		return
	}

	pool, err := h.service.GetPool(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, pool)
}

// HandleListPools returns the pools created for a year.
// GET /api/pools?year=2024
func (h *Handler) HandleListPools(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}

	pools, err := h.service.ListPools(year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if pools == nil {
		pools = []domain.Pool{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
		"count": len(pools),
	})
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
		h.log.Error().Err(err).Msg("Pooling request failed")
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
