// Package handlers provides HTTP handlers for route and comparison queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/modules/routes"
)

// Handler handles route HTTP requests
type Handler struct {
	service *routes.Service
	log     zerolog.Logger
}

// NewHandler creates a new routes handler
func NewHandler(service *routes.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "routes").Logger(),
	}
}

// HandleListRoutes returns all routes, baseline first.
// GET /api/routes
func (h *Handler) HandleListRoutes(w http.ResponseWriter, r *http.Request) {
	allRoutes, err := h.service.ListRoutes()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if allRoutes == nil {
		allRoutes = []domain.Route{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"routes": allRoutes,
		"count":  len(allRoutes),
	})
}

// HandleSetBaseline flags a route as the comparison baseline.
// POST /api/routes/{routeID}/baseline
func (h *Handler) HandleSetBaseline(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	if routeID == "" {
		h.writeError(w, http.StatusBadRequest, "Route ID is required")
		return
	}

	route, err := h.service.SetBaseline(routeID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, route)
}

// HandleComparison compares routes against the baseline. With a
// comparisonRouteId query parameter a single route is compared,
// otherwise every non-baseline route is.
// GET /api/routes/comparison?comparisonRouteId=R003
func (h *Handler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	if routeID := r.URL.Query().Get("comparisonRouteId"); routeID != "" {
		result, err := h.service.Compare(routeID)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, result)
		return
	}

	results, err := h.service.CompareAll()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"comparisons": results,
		"count":       len(results),
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
		h.log.Error().Err(err).Msg("Routes request failed")
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
