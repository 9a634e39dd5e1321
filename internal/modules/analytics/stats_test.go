package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/domain"
)

func TestComputeFleetStats(t *testing.T) {
	routes := []domain.Route{
		{RouteID: "R001", GHGIntensity: 91.0, FuelConsumption: 5000, Distance: 12000, TotalEmissions: 45000},
		{RouteID: "R002", GHGIntensity: 89.0, FuelConsumption: 3000, Distance: 8000, TotalEmissions: 25000},
		{RouteID: "R003", GHGIntensity: 81.0, FuelConsumption: 2000, Distance: 6000, TotalEmissions: 15000},
		{RouteID: "R004", GHGIntensity: 94.0, FuelConsumption: 6000, Distance: 15000, TotalEmissions: 52000},
	}

	stats, err := ComputeFleetStats(routes)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.RouteCount)
	assert.Equal(t, 2, stats.CompliantCount)
	assert.Equal(t, 0.5, stats.CompliantShare)
	assert.InDelta(t, 88.75, stats.MeanIntensity, 1e-9)
	assert.Equal(t, 81.0, stats.MinIntensity)
	assert.Equal(t, 94.0, stats.MaxIntensity)
	assert.Equal(t, 16000.0, stats.TotalFuelTonnes)
	assert.Equal(t, 41000.0, stats.TotalDistanceNM)
	assert.Equal(t, 137000.0, stats.TotalEmissions)
	assert.Equal(t, domain.TargetIntensity, stats.TargetIntensity)
	assert.Greater(t, stats.StdDevIntensity, 0.0)
	assert.GreaterOrEqual(t, stats.P90Intensity, stats.MedianIntensity)
}

func TestComputeFleetStats_SingleRoute(t *testing.T) {
	stats, err := ComputeFleetStats([]domain.Route{
		{RouteID: "R001", GHGIntensity: 85.0, FuelConsumption: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.RouteCount)
	assert.Equal(t, 85.0, stats.MeanIntensity)
	assert.Equal(t, 0.0, stats.StdDevIntensity)
	assert.Equal(t, 85.0, stats.MinIntensity)
	assert.Equal(t, 85.0, stats.MaxIntensity)
	assert.Equal(t, 1.0, stats.CompliantShare)
}

func TestComputeFleetStats_NoRoutes(t *testing.T) {
	_, err := ComputeFleetStats(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
