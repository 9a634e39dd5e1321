package routes

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
)

// Service orchestrates route listing, baseline selection, and
// baseline comparisons.
type Service struct {
	repo         domain.RouteRepository
	calculator   *ComparisonCalculator
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new routes service
func NewService(
	repo domain.RouteRepository,
	calculator *ComparisonCalculator,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		calculator:   calculator,
		eventManager: eventManager,
		log:          log.With().Str("service", "routes").Logger(),
	}
}

// ListRoutes returns every route, baseline first.
func (s *Service) ListRoutes() ([]domain.Route, error) {
	return s.repo.FindAll()
}

// SetBaseline moves the baseline flag to the given route and returns it.
func (s *Service) SetBaseline(routeID string) (*domain.Route, error) {
	if strings.TrimSpace(routeID) == "" {
		return nil, domain.InvalidInputf("route ID is required")
	}

	if err := s.repo.SetBaseline(routeID); err != nil {
		return nil, err
	}

	route, err := s.repo.FindByRouteID(routeID)
	if err != nil {
		return nil, err
	}

	s.eventManager.Emit(events.BaselineChanged, "routes", events.BaselineChangedData{
		RouteID: routeID,
	})

	return route, nil
}

// Compare measures one route against the current baseline.
func (s *Service) Compare(comparisonRouteID string) (*ComparisonResult, error) {
	baseline, err := s.repo.FindBaseline()
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, domain.NotFoundf("no baseline route set")
	}

	comparison, err := s.repo.FindByRouteID(comparisonRouteID)
	if err != nil {
		return nil, err
	}
	if comparison == nil {
		return nil, domain.NotFoundf("route %s not found", comparisonRouteID)
	}

	return s.calculator.Compare(baseline, comparison)
}

// CompareAll measures every non-baseline route against the baseline.
func (s *Service) CompareAll() ([]ComparisonResult, error) {
	baseline, err := s.repo.FindBaseline()
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, domain.NotFoundf("no baseline route set")
	}

	all, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, domain.NotFoundf("no routes available")
	}

	return s.calculator.CompareMultiple(baseline, all)
}
