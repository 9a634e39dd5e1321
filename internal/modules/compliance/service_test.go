package compliance

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
)

type stubRouteRepo struct {
	routes map[string]*domain.Route
}

func (s *stubRouteRepo) FindAll() ([]domain.Route, error) { return nil, nil }

func (s *stubRouteRepo) FindByRouteID(routeID string) (*domain.Route, error) {
	return s.routes[routeID], nil
}

func (s *stubRouteRepo) FindBaseline() (*domain.Route, error) { return nil, nil }

func (s *stubRouteRepo) SetBaseline(routeID string) error { return nil }

func newTestService(t *testing.T, routes map[string]*domain.Route) *Service {
	t.Helper()
	return NewService(
		NewCalculator(),
		newTestRepo(t),
		&stubRouteRepo{routes: routes},
		events.NewManager(zerolog.Nop()),
		zerolog.Nop(),
	)
}

func TestService_GetBalance_ComputesFromRouteOnFirstAccess(t *testing.T) {
	svc := newTestService(t, map[string]*domain.Route{
		"R001": {RouteID: "R001", GHGIntensity: 91.2, FuelConsumption: 5000, Year: 2024},
	})

	balance, err := svc.GetBalance("R001", 2024)
	require.NoError(t, err)

	target := float64(domain.TargetIntensity)
	wantCB := (target - 91.2) * (5000 * domain.EnergyConversionFactor)
	assert.InDelta(t, wantCB, balance.CBGramsCO2, 1e-3)
	assert.Equal(t, domain.StatusDeficit, balance.Status())

	// Second call reads the stored row instead of recomputing
	again, err := svc.GetBalance("R001", 2024)
	require.NoError(t, err)
	assert.Equal(t, balance.ID, again.ID)
	assert.Equal(t, balance.CBGramsCO2, again.CBGramsCO2)
}

func TestService_GetBalance_UnknownShip(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.GetBalance("R404", 2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_GetBalance_Validation(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.GetBalance("", 2024)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.GetBalance("R001", 1850)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_Compute_PersistsAndEmits(t *testing.T) {
	svc := newTestService(t, nil)

	ch, unsubscribe := svc.eventManager.Subscribe()
	defer unsubscribe()

	result, err := svc.Compute(ComputeInput{
		ShipID:          "R002",
		Year:            2024,
		ActualIntensity: 85.0,
		FuelConsumption: 3000,
	})
	require.NoError(t, err)
	assert.NotZero(t, result.Balance.ID)

	ev := <-ch
	assert.Equal(t, events.BalanceComputed, ev.Type)
	assert.Equal(t, "compliance", ev.Module)

	stored, err := svc.repo.FindByShipAndYear("R002", 2024)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.Balance.CBGramsCO2, stored.CBGramsCO2)
}

func TestService_AdjustedCB_DefaultsToZero(t *testing.T) {
	svc := newTestService(t, nil)

	adjusted, err := svc.AdjustedCB("R404", 2024)
	require.NoError(t, err)
	assert.Equal(t, 0.0, adjusted)
}
