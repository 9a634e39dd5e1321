package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/domain"
)

func TestComparisonCalculator_Compare(t *testing.T) {
	calc := NewComparisonCalculator()

	t.Run("cleaner route yields negative diff and is compliant", func(t *testing.T) {
		baseline := &domain.Route{RouteID: "R002", GHGIntensity: 90.0}
		comparison := &domain.Route{RouteID: "R003", GHGIntensity: 81.0}

		result, err := calc.Compare(baseline, comparison)
		require.NoError(t, err)

		assert.InDelta(t, -10.0, result.PercentDiff, 1e-9)
		assert.True(t, result.Compliant)
		assert.Equal(t, "R002", result.BaselineRouteID)
		assert.Equal(t, "R003", result.ComparisonRouteID)
	})

	t.Run("dirtier route yields positive diff", func(t *testing.T) {
		baseline := &domain.Route{RouteID: "R002", GHGIntensity: 90.0}
		comparison := &domain.Route{RouteID: "R004", GHGIntensity: 94.5}

		result, err := calc.Compare(baseline, comparison)
		require.NoError(t, err)

		assert.InDelta(t, 5.0, result.PercentDiff, 1e-9)
		assert.False(t, result.Compliant)
	})

	t.Run("compliance is judged against the target, not the baseline", func(t *testing.T) {
		baseline := &domain.Route{RouteID: "R002", GHGIntensity: 95.0}
		comparison := &domain.Route{RouteID: "R005", GHGIntensity: 89.3368}

		result, err := calc.Compare(baseline, comparison)
		require.NoError(t, err)

		// Equal to the target means not strictly below it
		assert.False(t, result.Compliant)
		assert.Negative(t, result.PercentDiff)
	})

	t.Run("nil baseline argument is invalid", func(t *testing.T) {
		_, err := calc.Compare(nil, &domain.Route{RouteID: "R003", GHGIntensity: 81.0})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("zero baseline intensity is invalid", func(t *testing.T) {
		baseline := &domain.Route{RouteID: "R002", GHGIntensity: 0}
		_, err := calc.Compare(baseline, &domain.Route{RouteID: "R003", GHGIntensity: 81.0})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestComparisonCalculator_CompareMultiple(t *testing.T) {
	calc := NewComparisonCalculator()
	baseline := &domain.Route{RouteID: "R002", GHGIntensity: 90.0}

	t.Run("skips the baseline and preserves order", func(t *testing.T) {
		results, err := calc.CompareMultiple(baseline, []domain.Route{
			{RouteID: "R001", GHGIntensity: 91.0},
			{RouteID: "R002", GHGIntensity: 90.0},
			{RouteID: "R003", GHGIntensity: 81.0},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "R001", results[0].ComparisonRouteID)
		assert.Equal(t, "R003", results[1].ComparisonRouteID)
	})

	t.Run("empty comparison list is invalid", func(t *testing.T) {
		_, err := calc.CompareMultiple(baseline, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
