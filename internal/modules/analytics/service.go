package analytics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
)

const fleetStatsKey = "fleet_stats"

// Service computes fleet analytics, caching snapshots between requests.
type Service struct {
	routeRepo domain.RouteRepository
	cache     *SnapshotCache
	log       zerolog.Logger
}

// NewService creates a new analytics service
func NewService(routeRepo domain.RouteRepository, cache *SnapshotCache, log zerolog.Logger) *Service {
	return &Service{
		routeRepo: routeRepo,
		cache:     cache,
		log:       log.With().Str("service", "analytics").Logger(),
	}
}

// FleetStats returns fleet-wide statistics, served from the snapshot
// cache when a fresh entry exists.
func (s *Service) FleetStats() (*FleetStats, error) {
	var cached FleetStats
	hit, err := s.cache.Get(fleetStatsKey, &cached)
	if err != nil {
		// Cache trouble never fails the request
		s.log.Warn().Err(err).Msg("Snapshot cache unavailable, computing directly")
	} else if hit {
		return &cached, nil
	}

	stats, err := s.compute()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(fleetStatsKey, stats); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache fleet stats")
	}

	return stats, nil
}

// Refresh recomputes the fleet snapshot and replaces the cached entry.
func (s *Service) Refresh() (*FleetStats, error) {
	stats, err := s.compute()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(fleetStatsKey, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) compute() (*FleetStats, error) {
	started := time.Now()

	routes, err := s.routeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	stats, err := ComputeFleetStats(routes)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("duration", fmt.Sprintf("%v", time.Since(started))).
		Int("routes", stats.RouteCount).
		Msg("Computed fleet stats")

	return stats, nil
}
