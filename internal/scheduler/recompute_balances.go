package scheduler

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/modules/compliance"
)

// RecomputeBalancesJob computes compliance balances for routes that do
// not have one yet. Existing balances are never overwritten: they may
// carry applied banked surplus, and recomputing from route data would
// wipe it.
type RecomputeBalancesJob struct {
	routeRepo      domain.RouteRepository
	complianceRepo domain.ComplianceRepository
	service        *compliance.Service
	log            zerolog.Logger
}

// NewRecomputeBalancesJob creates a new recompute job
func NewRecomputeBalancesJob(
	routeRepo domain.RouteRepository,
	complianceRepo domain.ComplianceRepository,
	service *compliance.Service,
	log zerolog.Logger,
) *RecomputeBalancesJob {
	return &RecomputeBalancesJob{
		routeRepo:      routeRepo,
		complianceRepo: complianceRepo,
		service:        service,
		log:            log.With().Str("job", "recompute_balances").Logger(),
	}
}

// Run executes the recompute job
func (j *RecomputeBalancesJob) Run() error {
	startTime := time.Now()

	routes, err := j.routeRepo.FindAll()
	if err != nil {
		return err
	}

	computed := 0
	skipped := 0
	for _, route := range routes {
		existing, err := j.complianceRepo.FindByShipAndYear(route.RouteID, route.Year)
		if err != nil {
			return err
		}
		if existing != nil {
			skipped++
			continue
		}

		if _, err := j.service.Compute(compliance.ComputeInput{
			ShipID:          route.RouteID,
			Year:            route.Year,
			ActualIntensity: route.GHGIntensity,
			FuelConsumption: route.FuelConsumption,
		}); err != nil {
			j.log.Error().
				Err(err).
				Str("route", route.RouteID).
				Msg("Failed to compute balance")
			continue
		}
		computed++
	}

	j.log.Info().
		Int("computed", computed).
		Int("skipped", skipped).
		Dur("duration_ms", time.Since(startTime)).
		Msg("Balance recompute completed")

	return nil
}

// Name returns the job name for scheduler
func (j *RecomputeBalancesJob) Name() string {
	return "recompute_balances"
}
