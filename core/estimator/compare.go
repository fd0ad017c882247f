package estimator

import (
	"vram-calculator/core/models"
)

// CompareAcrossPrecisions estimates base once per precision, widest first.
// The precision set on base is ignored.
func CompareAcrossPrecisions(base models.Configuration) []models.PrecisionResult {
	return defaultEstimator.CompareAcrossPrecisions(base)
}

// CompareAcrossPrecisions estimates base once per precision, widest first
func (e *Estimator) CompareAcrossPrecisions(base models.Configuration) []models.PrecisionResult {
	precisions := models.Precisions()
	results := make([]models.PrecisionResult, 0, len(precisions))
	for _, p := range precisions {
		results = append(results, models.PrecisionResult{
			Precision:        p,
			EstimationResult: e.Estimate(base.WithPrecision(p)),
		})
	}
	return results
}

// Savings returns, per precision, the share of total VRAM saved relative to fp32 in percent
// (one decimal). Rows are omitted when the comparison has no positive fp32 total.
func Savings(results []models.PrecisionResult) map[models.Precision]float64 {
	savings := make(map[models.Precision]float64, len(results))

	var baseline int
	for _, r := range results {
		if r.Precision == models.PrecisionFP32 {
			baseline = r.TotalVRAM
		}
	}
	if baseline <= 0 {
		return savings
	}

	for _, r := range results {
		pct := float64(baseline-r.TotalVRAM) / float64(baseline) * 100
		savings[r.Precision] = roundTo(pct, 1)
	}
	return savings
}
