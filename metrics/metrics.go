// Package metrics derives the financial figures shown for a lot: risk/reward,
// cost basis, max loss, realized and unrealized gain/loss, stop elevation,
// stop distance and slippage.
//
// Every function is pure. Missing inputs are nil pointers and a result that
// cannot be computed (missing input, division by zero, non-finite value) is
// reported through a false second return rather than a zero or NaN.
package metrics

import (
	"math"

	"github.com/rustyeddy/lotboard/lot"
)

// GainLoss is a currency amount with its percentage of a base.
type GainLoss struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func result(x float64) (float64, bool) {
	if !finite(x) {
		return 0, false
	}
	return x, true
}

func gainLoss(amount, base float64) (GainLoss, bool) {
	if base == 0 {
		return GainLoss{}, false
	}
	pct := amount / base * 100
	if !finite(amount) || !finite(pct) {
		return GainLoss{}, false
	}
	return GainLoss{Amount: amount, Percent: pct}, true
}

// EntryPrice prefers the fill price over the limit price.
func EntryPrice(filled, limit *float64) *float64 {
	if filled != nil {
		return filled
	}
	return limit
}

// RiskReward is |target-entry| / |entry-stop|.
func RiskReward(entry, stop, target *float64) (float64, bool) {
	if entry == nil || stop == nil || target == nil {
		return 0, false
	}
	risk := math.Abs(*entry - *stop)
	if risk == 0 {
		return 0, false
	}
	return result(math.Abs(*target-*entry) / risk)
}

// CostBasis returns supplied when it is set and non-zero, else qty*entry.
func CostBasis(qty, entry float64, supplied *float64) float64 {
	if supplied != nil && *supplied != 0 {
		return *supplied
	}
	return qty * entry
}

// MaxLoss is the P/L if the stop fills: stop*qty - costBasis. It is only
// meaningful while the lot is live, so Canceled and Disposed lots have none.
func MaxLoss(stop, qty, costBasis *float64, status lot.Status) (float64, bool) {
	if status == lot.Canceled || status == lot.Disposed {
		return 0, false
	}
	if stop == nil || qty == nil || costBasis == nil {
		return 0, false
	}
	return result(*stop**qty - *costBasis)
}

// RealizedGainLoss measures a disposed lot against its disposal fill.
func RealizedGainLoss(qty, costBasis, disposedFill *float64) (GainLoss, bool) {
	if qty == nil || costBasis == nil || disposedFill == nil {
		return GainLoss{}, false
	}
	return gainLoss(*qty**disposedFill-*costBasis, *costBasis)
}

// UnrealizedGainLoss measures a live lot against the latest quote. A nil
// quote means the quote has not arrived yet; a zero quote is a real price.
func UnrealizedGainLoss(qty, costBasis, quote *float64) (GainLoss, bool) {
	if qty == nil || costBasis == nil || quote == nil {
		return GainLoss{}, false
	}
	return gainLoss(*qty**quote-*costBasis, *costBasis)
}

// StopElevation is how far, in percent, the latest price sits above the stop.
func StopElevation(latest, stop *float64) (float64, bool) {
	if latest == nil || stop == nil || *stop == 0 {
		return 0, false
	}
	return result((*latest - *stop) / *stop * 100)
}

// StopDistance is the gap between entry and stop, either in currency or, when
// relative is set, as a percentage of entry.
func StopDistance(entry, stop float64, relative bool) (float64, bool) {
	if !relative {
		return result(entry - stop)
	}
	if entry == 0 {
		return 0, false
	}
	return result((1 - stop/entry) * 100)
}

// Slippage is how far a disposal filled from its stop.
func Slippage(disposedFill, stop float64) (GainLoss, bool) {
	return gainLoss(disposedFill-stop, disposedFill)
}
