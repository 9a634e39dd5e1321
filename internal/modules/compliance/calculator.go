// Package compliance computes and stores per-ship-year compliance
// balances against the regulatory GHG intensity target.
package compliance

import (
	"time"

	"github.com/varuna/varuna/internal/domain"
)

// ComputeInput holds the arguments for a compliance balance computation.
type ComputeInput struct {
	ShipID          string
	Year            int
	ActualIntensity float64 // gCO2e/MJ
	FuelConsumption float64 // tonnes
}

// ComputeResult is the outcome of a compliance balance computation.
type ComputeResult struct {
	Balance       *domain.ComplianceBalance
	EnergyInScope float64 // MJ
	Status        domain.ComplianceStatus
}

// Calculator computes compliance balances. It is pure: no side effects,
// deterministic, idempotent for identical inputs.
type Calculator struct{}

// NewCalculator creates a new compliance calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute calculates the compliance balance:
//
//	energyInScope = fuelConsumption * EnergyConversionFactor
//	cb            = (TargetIntensity - actualIntensity) * energyInScope
//
// Positive cb is surplus, negative is deficit.
func (c *Calculator) Compute(in ComputeInput) (*ComputeResult, error) {
	if err := domain.ValidateShipID(in.ShipID); err != nil {
		return nil, err
	}
	if err := domain.ValidateYear(in.Year); err != nil {
		return nil, err
	}
	if in.ActualIntensity < 0 {
		return nil, domain.InvalidInputf("actual intensity must be non-negative, got %v", in.ActualIntensity)
	}
	if in.FuelConsumption < 0 {
		return nil, domain.InvalidInputf("fuel consumption must be non-negative, got %v", in.FuelConsumption)
	}

	energyInScope := in.FuelConsumption * domain.EnergyConversionFactor
	cb := (domain.TargetIntensity - in.ActualIntensity) * energyInScope

	balance, err := domain.NewComplianceBalance(in.ShipID, in.Year, cb, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &ComputeResult{
		Balance:       balance,
		EnergyInScope: energyInScope,
		Status:        balance.Status(),
	}, nil
}
