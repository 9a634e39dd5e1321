package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/domain"
)

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator()

	t.Run("deficit when intensity above target", func(t *testing.T) {
		result, err := calc.Compute(ComputeInput{
			ShipID:          "R001",
			Year:            2024,
			ActualIntensity: 91.0,
			FuelConsumption: 5000,
		})
		require.NoError(t, err)

		// Mirror the runtime grouping: constant folding of the whole
		// expression would land on a different last bit
		target := float64(domain.TargetIntensity)
		wantEnergy := 5000 * domain.EnergyConversionFactor
		wantCB := (target - 91.0) * wantEnergy
		assert.Equal(t, wantEnergy, result.EnergyInScope)
		assert.Equal(t, wantCB, result.Balance.CBGramsCO2)
		assert.Equal(t, domain.StatusDeficit, result.Status)
		assert.True(t, result.Balance.IsDeficit())
	})

	t.Run("surplus when intensity below target", func(t *testing.T) {
		result, err := calc.Compute(ComputeInput{
			ShipID:          "R002",
			Year:            2024,
			ActualIntensity: 85.0,
			FuelConsumption: 3000,
		})
		require.NoError(t, err)

		target := float64(domain.TargetIntensity)
		wantEnergy := 3000 * domain.EnergyConversionFactor
		wantCB := (target - 85.0) * wantEnergy
		assert.Equal(t, wantCB, result.Balance.CBGramsCO2)
		assert.Equal(t, domain.StatusSurplus, result.Status)
		assert.True(t, result.Balance.IsSurplus())
	})

	t.Run("intensity exactly at target yields zero surplus", func(t *testing.T) {
		result, err := calc.Compute(ComputeInput{
			ShipID:          "R003",
			Year:            2024,
			ActualIntensity: domain.TargetIntensity,
			FuelConsumption: 4000,
		})
		require.NoError(t, err)

		assert.Equal(t, 0.0, result.Balance.CBGramsCO2)
		assert.Equal(t, domain.StatusSurplus, result.Status)
		// Zero is reported surplus but is neither bankable nor a deficit
		assert.False(t, result.Balance.IsSurplus())
		assert.False(t, result.Balance.IsDeficit())
	})

	t.Run("zero fuel consumption yields zero balance", func(t *testing.T) {
		result, err := calc.Compute(ComputeInput{
			ShipID:          "R004",
			Year:            2024,
			ActualIntensity: 95.0,
			FuelConsumption: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Balance.CBGramsCO2)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		in := ComputeInput{ShipID: "R001", Year: 2024, ActualIntensity: 90.5, FuelConsumption: 1234.5}
		a, err := calc.Compute(in)
		require.NoError(t, err)
		b, err := calc.Compute(in)
		require.NoError(t, err)
		assert.Equal(t, a.Balance.CBGramsCO2, b.Balance.CBGramsCO2)
	})
}

func TestCalculator_ComputeValidation(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		in   ComputeInput
	}{
		{"empty ship id", ComputeInput{ShipID: "  ", Year: 2024, ActualIntensity: 90, FuelConsumption: 100}},
		{"year below range", ComputeInput{ShipID: "R001", Year: 1999, ActualIntensity: 90, FuelConsumption: 100}},
		{"year above range", ComputeInput{ShipID: "R001", Year: 2101, ActualIntensity: 90, FuelConsumption: 100}},
		{"negative intensity", ComputeInput{ShipID: "R001", Year: 2024, ActualIntensity: -1, FuelConsumption: 100}},
		{"negative fuel", ComputeInput{ShipID: "R001", Year: 2024, ActualIntensity: 90, FuelConsumption: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Compute(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
