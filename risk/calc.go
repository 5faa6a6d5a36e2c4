package risk

import "math"

// PlannedRiskUSD is the absolute dollar loss if the stop is hit.
func PlannedRiskUSD(qty, entry, stop float64) float64 {
	return math.Abs(qty) * math.Abs(entry-stop)
}

// SizeForRisk returns the whole share count whose stop-out loses at most
// riskUSD. It returns 0 when entry and stop coincide.
func SizeForRisk(riskUSD, entry, stop float64) float64 {
	perShare := math.Abs(entry - stop)
	if perShare == 0 || riskUSD <= 0 {
		return 0
	}
	return math.Floor(riskUSD / perShare)
}
