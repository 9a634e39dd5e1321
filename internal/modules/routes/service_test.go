package routes

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
)

func newTestService(t *testing.T) (*Service, *events.Manager) {
	t.Helper()
	manager := events.NewManager(zerolog.Nop())
	svc := NewService(newTestRepo(t), NewComparisonCalculator(), manager, zerolog.Nop())
	return svc, manager
}

func TestService_SetBaselineEmitsEvent(t *testing.T) {
	svc, manager := newTestService(t)

	ch, unsubscribe := manager.Subscribe()
	defer unsubscribe()

	route, err := svc.SetBaseline("R003")
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.True(t, route.IsBaseline)

	ev := <-ch
	assert.Equal(t, events.BaselineChanged, ev.Type)
	assert.Equal(t, "routes", ev.Module)
}

func TestService_SetBaselineValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetBaseline("   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SetBaseline("R999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CompareSingle(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Compare("R003")
	require.NoError(t, err)
	assert.Equal(t, "R002", result.BaselineRouteID)
	assert.Equal(t, "R003", result.ComparisonRouteID)

	_, err = svc.Compare("R999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CompareWithoutBaseline(t *testing.T) {
	svc, _ := newTestService(t)

	// Clear the seeded baseline flag
	_, err := svc.repo.(*Repository).db.Exec("UPDATE routes SET is_baseline = 0")
	require.NoError(t, err)

	_, err = svc.Compare("R003")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CompareAll()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CompareAllSkipsBaseline(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.CompareAll()
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, result := range results {
		assert.Equal(t, "R002", result.BaselineRouteID)
		assert.NotEqual(t, "R002", result.ComparisonRouteID)
	}
}
