// Package domain contains pure business types for Varuna. It is the
// innermost ring of the architecture and has no infrastructure imports.
package domain

import (
	"strings"
	"time"
)

// Regulatory constants used by compliance balance computation and
// comparison flagging.
const (
	// TargetIntensity is the regulatory GHG intensity threshold in
	// gCO2e/MJ (2% below the 91.16 reference value).
	TargetIntensity = 89.3368

	// EnergyConversionFactor converts fuel consumption in tonnes to
	// energy in scope, in MJ per tonne.
	EnergyConversionFactor = 41000.0

	// MinYear and MaxYear bound every reporting year accepted by the
	// system.
	MinYear = 2000
	MaxYear = 2100
)

// ComplianceStatus classifies a compliance balance.
type ComplianceStatus string

const (
	StatusSurplus ComplianceStatus = "SURPLUS"
	StatusDeficit ComplianceStatus = "DEFICIT"
)

// ComplianceBalance is a ship's signed compliance balance for one year,
// in gCO2-equivalent. One logical balance exists per (ShipID, Year).
type ComplianceBalance struct {
	ID         int64     `json:"id,omitempty"`
	ShipID     string    `json:"shipId"`
	Year       int       `json:"year"`
	CBGramsCO2 float64   `json:"cbGco2eq"`
	ComputedAt time.Time `json:"computedAt"`
}

// NewComplianceBalance validates and constructs a compliance balance.
func NewComplianceBalance(shipID string, year int, cb float64, computedAt time.Time) (*ComplianceBalance, error) {
	if err := ValidateShipID(shipID); err != nil {
		return nil, err
	}
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	return &ComplianceBalance{
		ShipID:     shipID,
		Year:       year,
		CBGramsCO2: cb,
		ComputedAt: computedAt,
	}, nil
}

// Status classifies the balance. Zero counts as surplus here; the strict
// predicates below disagree on zero on purpose, banking eligibility
// depends on the strict form.
func (b *ComplianceBalance) Status() ComplianceStatus {
	if b.CBGramsCO2 >= 0 {
		return StatusSurplus
	}
	return StatusDeficit
}

// IsSurplus reports whether the balance is strictly positive.
func (b *ComplianceBalance) IsSurplus() bool {
	return b.CBGramsCO2 > 0
}

// IsDeficit reports whether the balance is strictly negative.
func (b *ComplianceBalance) IsDeficit() bool {
	return b.CBGramsCO2 < 0
}

// ValidateShipID rejects empty or whitespace-only ship identifiers.
func ValidateShipID(shipID string) error {
	if strings.TrimSpace(shipID) == "" {
		return InvalidInputf("ship ID is required")
	}
	return nil
}

// ValidateYear rejects years outside [MinYear, MaxYear].
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return InvalidInputf("year %d must be between %d and %d", year, MinYear, MaxYear)
	}
	return nil
}
