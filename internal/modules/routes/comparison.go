package routes

import (
	"github.com/varuna/varuna/internal/domain"
)

// ComparisonResult describes a comparison route measured against the
// baseline. PercentDiff is negative when the comparison route is cleaner.
type ComparisonResult struct {
	BaselineRouteID     string  `json:"baselineRouteId"`
	ComparisonRouteID   string  `json:"comparisonRouteId"`
	BaselineIntensity   float64 `json:"baselineGhgIntensity"`
	ComparisonIntensity float64 `json:"comparisonGhgIntensity"`
	PercentDiff         float64 `json:"percentDiff"`
	Compliant           bool    `json:"compliant"`
}

// ComparisonCalculator compares route GHG intensities against a baseline.
// Pure and deterministic.
type ComparisonCalculator struct{}

// NewComparisonCalculator creates a new comparison calculator
func NewComparisonCalculator() *ComparisonCalculator {
	return &ComparisonCalculator{}
}

// Compare measures a comparison route against the baseline:
//
//	percentDiff = ((comparison / baseline) - 1) * 100
//
// Compliance is judged on the comparison route's own intensity against
// the regulatory target, independent of the baseline.
func (c *ComparisonCalculator) Compare(baseline, comparison *domain.Route) (*ComparisonResult, error) {
	if baseline == nil {
		return nil, domain.InvalidInputf("baseline route is required")
	}
	if comparison == nil {
		return nil, domain.InvalidInputf("comparison route is required")
	}
	if baseline.GHGIntensity <= 0 {
		return nil, domain.InvalidInputf("baseline GHG intensity must be positive, got %v", baseline.GHGIntensity)
	}

	percentDiff := (comparison.GHGIntensity/baseline.GHGIntensity - 1) * 100

	return &ComparisonResult{
		BaselineRouteID:     baseline.RouteID,
		ComparisonRouteID:   comparison.RouteID,
		BaselineIntensity:   baseline.GHGIntensity,
		ComparisonIntensity: comparison.GHGIntensity,
		PercentDiff:         percentDiff,
		Compliant:           comparison.IsCompliant(),
	}, nil
}

// CompareMultiple measures each route against the baseline, preserving
// input order. The baseline itself is skipped if present in the list.
func (c *ComparisonCalculator) CompareMultiple(baseline *domain.Route, comparisons []domain.Route) ([]ComparisonResult, error) {
	if baseline == nil {
		return nil, domain.InvalidInputf("baseline route is required")
	}
	if len(comparisons) == 0 {
		return nil, domain.InvalidInputf("at least one comparison route is required")
	}

	results := make([]ComparisonResult, 0, len(comparisons))
	for i := range comparisons {
		if comparisons[i].RouteID == baseline.RouteID {
			continue
		}
		result, err := c.Compare(baseline, &comparisons[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, nil
}
