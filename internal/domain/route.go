package domain

import (
	"strings"
	"time"
)

// Route is the per-voyage input data compliance computations consume.
// Exactly one route is flagged as the comparison baseline at a time; the
// route repository enforces that transactionally.
type Route struct {
	ID              int64     `json:"id"`
	RouteID         string    `json:"routeId"`
	VesselType      string    `json:"vesselType"`
	FuelType        string    `json:"fuelType"`
	Year            int       `json:"year"`
	GHGIntensity    float64   `json:"ghgIntensity"`    // gCO2e/MJ
	FuelConsumption float64   `json:"fuelConsumption"` // tonnes
	Distance        float64   `json:"distance"`        // nautical miles
	TotalEmissions  float64   `json:"totalEmissions"`  // tonnes CO2e
	IsBaseline      bool      `json:"isBaseline"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Validate checks route field constraints.
func (r *Route) Validate() error {
	if strings.TrimSpace(r.RouteID) == "" {
		return InvalidInputf("route ID is required")
	}
	if strings.TrimSpace(r.VesselType) == "" {
		return InvalidInputf("vessel type is required")
	}
	if strings.TrimSpace(r.FuelType) == "" {
		return InvalidInputf("fuel type is required")
	}
	if err := ValidateYear(r.Year); err != nil {
		return err
	}
	if r.GHGIntensity < 0 {
		return InvalidInputf("GHG intensity must be non-negative, got %v", r.GHGIntensity)
	}
	if r.FuelConsumption < 0 {
		return InvalidInputf("fuel consumption must be non-negative, got %v", r.FuelConsumption)
	}
	if r.Distance < 0 {
		return InvalidInputf("distance must be non-negative, got %v", r.Distance)
	}
	if r.TotalEmissions < 0 {
		return InvalidInputf("total emissions must be non-negative, got %v", r.TotalEmissions)
	}
	return nil
}

// IsCompliant reports whether the route's intensity is strictly below the
// regulatory target.
func (r *Route) IsCompliant() bool {
	return r.GHGIntensity < TargetIntensity
}
