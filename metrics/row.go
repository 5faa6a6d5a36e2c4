package metrics

import "github.com/rustyeddy/lotboard/lot"

// RiskMetrics is everything derived for one row. Nil fields have no value.
type RiskMetrics struct {
	EntryPrice   *float64  `json:"entry_price"`
	CostBasis    *float64  `json:"cost_basis"`
	RiskReward   *float64  `json:"risk_reward"`
	MaxLoss      *float64  `json:"max_loss"`
	GainLoss     *GainLoss `json:"gain_loss"`
	Unrealized   bool      `json:"unrealized"`
	Elevation    *float64  `json:"stop_elevation"`
	StopDistance *float64  `json:"stop_distance"`
	StopPercent  *float64  `json:"stop_distance_pct"`
	Slippage     *GainLoss `json:"slippage"`
}

func opt(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func optGL(g GainLoss, ok bool) *GainLoss {
	if !ok {
		return nil
	}
	return &g
}

// Compute evaluates every metric for l. quote is the latest trade price for
// the lot's symbol, or nil while it is unknown.
func Compute(l lot.Lot, quote *float64) RiskMetrics {
	var m RiskMetrics

	entry := EntryPrice(l.FilledAvgPrice, l.LimitPrice)
	m.EntryPrice = entry

	qty := l.Qty
	if entry != nil {
		cb := CostBasis(qty, *entry, l.CostBasis)
		m.CostBasis = &cb
	} else if l.CostBasis != nil && *l.CostBasis != 0 {
		m.CostBasis = l.CostBasis
	}

	m.RiskReward = opt(RiskReward(entry, l.StopPrice, l.TargetPrice))
	m.MaxLoss = opt(MaxLoss(l.StopPrice, &qty, m.CostBasis, l.Status))

	switch l.Status {
	case lot.Disposed:
		m.GainLoss = optGL(RealizedGainLoss(&qty, m.CostBasis, l.DisposedFillPrice))
		if l.DisposedFillPrice != nil && l.StopPrice != nil {
			m.Slippage = optGL(Slippage(*l.DisposedFillPrice, *l.StopPrice))
		}
	case lot.Open, lot.Pending:
		m.Unrealized = true
		m.GainLoss = optGL(UnrealizedGainLoss(&qty, m.CostBasis, quote))
	}

	m.Elevation = opt(StopElevation(quote, l.StopPrice))

	if entry != nil && l.StopPrice != nil {
		m.StopDistance = opt(StopDistance(*entry, *l.StopPrice, false))
		m.StopPercent = opt(StopDistance(*entry, *l.StopPrice, true))
	}

	return m
}
