package compliance

import (
	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
)

// Service orchestrates compliance balance computation and persistence.
type Service struct {
	calculator   *Calculator
	repo         domain.ComplianceRepository
	routeRepo    domain.RouteRepository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new compliance service
func NewService(
	calculator *Calculator,
	repo domain.ComplianceRepository,
	routeRepo domain.RouteRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		calculator:   calculator,
		repo:         repo,
		routeRepo:    routeRepo,
		eventManager: eventManager,
		log:          log.With().Str("service", "compliance").Logger(),
	}
}

// Compute calculates a compliance balance from explicit intensity and
// fuel data, persists it (upsert by ship-year), and returns the result.
func (s *Service) Compute(in ComputeInput) (*ComputeResult, error) {
	result, err := s.calculator.Compute(in)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(result.Balance)
	if err != nil {
		return nil, err
	}
	result.Balance = saved

	s.eventManager.Emit(events.BalanceComputed, "compliance", events.BalanceComputedData{
		ShipID:     saved.ShipID,
		Year:       saved.Year,
		CBGramsCO2: saved.CBGramsCO2,
		Status:     string(saved.Status()),
	})

	return result, nil
}

// GetBalance returns the stored balance for a ship-year, computing and
// persisting it from the ship's route data on first access. Route IDs
// double as ship IDs in the reference fleet.
func (s *Service) GetBalance(shipID string, year int) (*domain.ComplianceBalance, error) {
	if err := domain.ValidateShipID(shipID); err != nil {
		return nil, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}

	balance, err := s.repo.FindByShipAndYear(shipID, year)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}

	route, err := s.routeRepo.FindByRouteID(shipID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, domain.NotFoundf("no route data found for ship %s", shipID)
	}

	result, err := s.Compute(ComputeInput{
		ShipID:          shipID,
		Year:            year,
		ActualIntensity: route.GHGIntensity,
		FuelConsumption: route.FuelConsumption,
	})
	if err != nil {
		return nil, err
	}

	return result.Balance, nil
}

// AdjustedCB returns the ship-year's balance adjusted for banked and
// applied amounts, 0 if no balance is stored.
func (s *Service) AdjustedCB(shipID string, year int) (float64, error) {
	if err := domain.ValidateShipID(shipID); err != nil {
		return 0, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return 0, err
	}
	return s.repo.AdjustedCB(shipID, year)
}
