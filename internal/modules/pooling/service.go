package pooling

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
)

// CreatePoolResult is the outcome of creating a pool.
type CreatePoolResult struct {
	Pool          *domain.Pool `json:"pool"`
	TotalCBBefore float64      `json:"totalCbBefore"`
	TotalCBAfter  float64      `json:"totalCbAfter"`
}

// Service assembles pools from ships' adjusted balances and runs the
// allocation.
type Service struct {
	allocator      *Allocator
	repo           domain.PoolRepository
	complianceRepo domain.ComplianceRepository
	eventManager   *events.Manager
	log            zerolog.Logger
}

// NewService creates a new pooling service
func NewService(
	allocator *Allocator,
	repo domain.PoolRepository,
	complianceRepo domain.ComplianceRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		allocator:      allocator,
		repo:           repo,
		complianceRepo: complianceRepo,
		eventManager:   eventManager,
		log:            log.With().Str("service", "pooling").Logger(),
	}
}

// CreatePool pools the given ships for a year. Each ship enters with
// its adjusted balance; the pooled total must be non-negative before
// any allocation runs.
func (s *Service) CreatePool(year int, shipIDs []string) (*CreatePoolResult, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	if len(shipIDs) == 0 {
		return nil, domain.InvalidInputf("pool must have at least one ship")
	}
	seen := make(map[string]bool, len(shipIDs))
	for _, shipID := range shipIDs {
		if strings.TrimSpace(shipID) == "" {
			return nil, domain.InvalidInputf("pool ship IDs must be non-empty")
		}
		if seen[shipID] {
			return nil, domain.InvalidInputf("duplicate ship %s in pool", shipID)
		}
		seen[shipID] = true
	}

	members := make([]domain.PoolMember, 0, len(shipIDs))
	var totalBefore float64
	for _, shipID := range shipIDs {
		cb, err := s.complianceRepo.AdjustedCB(shipID, year)
		if err != nil {
			return nil, err
		}
		members = append(members, domain.PoolMember{ShipID: shipID, CBBefore: cb, CBAfter: cb})
		totalBefore += cb
	}

	if totalBefore < 0 {
		return nil, domain.RuleViolationf("pool total CB must be non-negative, got %v", totalBefore)
	}

	allocated := s.allocator.Allocate(members)

	// Re-validate the allocation against every pool invariant before it
	// is persisted.
	if _, err := domain.NewPool(year, allocated, time.Now().UTC()); err != nil {
		return nil, err
	}

	pool, err := s.repo.CreatePool(year, allocated)
	if err != nil {
		return nil, err
	}

	s.eventManager.Emit(events.PoolCreated, "pooling", events.PoolCreatedData{
		PoolID:        pool.ID,
		Year:          pool.Year,
		MemberCount:   pool.MemberCount(),
		TotalCBBefore: pool.TotalCBBefore(),
		TotalCBAfter:  pool.TotalCBAfter(),
	})

	return &CreatePoolResult{
		Pool:          pool,
		TotalCBBefore: pool.TotalCBBefore(),
		TotalCBAfter:  pool.TotalCBAfter(),
	}, nil
}

// GetPool returns a stored pool by ID.
func (s *Service) GetPool(id int64) (*domain.Pool, error) {
	pool, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, domain.NotFoundf("pool %d not found", id)
	}
	return pool, nil
}

// ListPools returns all pools created for a year.
func (s *Service) ListPools(year int) ([]domain.Pool, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	return s.repo.FindByYear(year)
}
