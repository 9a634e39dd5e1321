// Package analytics aggregates fleet-wide compliance statistics.
package analytics

import (
	"math"
	"sort"

	"github.com/varuna/varuna/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// FleetStats summarizes the fleet's GHG intensity and compliance
// position for one snapshot.
type FleetStats struct {
	RouteCount        int     `json:"routeCount"`
	CompliantCount    int     `json:"compliantCount"`
	CompliantShare    float64 `json:"compliantShare"`
	MeanIntensity     float64 `json:"meanIntensity"`
	StdDevIntensity   float64 `json:"stdDevIntensity"`
	MinIntensity      float64 `json:"minIntensity"`
	MaxIntensity      float64 `json:"maxIntensity"`
	MedianIntensity   float64 `json:"medianIntensity"`
	P90Intensity      float64 `json:"p90Intensity"`
	TotalFuelTonnes   float64 `json:"totalFuelTonnes"`
	TotalDistanceNM   float64 `json:"totalDistanceNm"`
	TotalEmissions    float64 `json:"totalEmissionsTonnes"`
	TargetIntensity   float64 `json:"targetIntensity"`
}

// ComputeFleetStats aggregates route data into fleet statistics.
func ComputeFleetStats(routes []domain.Route) (*FleetStats, error) {
	if len(routes) == 0 {
		return nil, domain.NotFoundf("no routes to aggregate")
	}

	intensities := make([]float64, 0, len(routes))
	stats := &FleetStats{
		RouteCount:      len(routes),
		TargetIntensity: domain.TargetIntensity,
		MinIntensity:    math.Inf(1),
		MaxIntensity:    math.Inf(-1),
	}

	for _, route := range routes {
		intensities = append(intensities, route.GHGIntensity)
		if route.IsCompliant() {
			stats.CompliantCount++
		}
		if route.GHGIntensity < stats.MinIntensity {
			stats.MinIntensity = route.GHGIntensity
		}
		if route.GHGIntensity > stats.MaxIntensity {
			stats.MaxIntensity = route.GHGIntensity
		}
		stats.TotalFuelTonnes += route.FuelConsumption
		stats.TotalDistanceNM += route.Distance
		stats.TotalEmissions += route.TotalEmissions
	}

	stats.CompliantShare = float64(stats.CompliantCount) / float64(len(routes))
	stats.MeanIntensity, stats.StdDevIntensity = stat.MeanStdDev(intensities, nil)
	if len(intensities) == 1 {
		stats.StdDevIntensity = 0
	}

	sort.Float64s(intensities)
	stats.MedianIntensity = stat.Quantile(0.5, stat.Empirical, intensities, nil)
	stats.P90Intensity = stat.Quantile(0.9, stat.Empirical, intensities, nil)

	return stats, nil
}
