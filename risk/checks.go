package risk

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/metrics"
)

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`

	Entry          *float64 `json:"entry,omitempty"`
	RiskReward     *float64 `json:"risk_reward,omitempty"`
	MaxLoss        *float64 `json:"max_loss,omitempty"`
	PlannedRiskUSD float64  `json:"planned_risk_usd"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Has reports whether the decision carries a violation with code.
func (d Decision) Has(code string) bool {
	for _, v := range d.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Evaluate checks an order intent against the policy. last is the latest
// trade price and stands in for the entry on market orders.
func Evaluate(p Policy, in OrderIntent, last *float64) Decision {
	d := Decision{Allowed: true}

	// Basic sanity
	if strings.TrimSpace(in.Symbol) == "" {
		d.add("NO_SYMBOL", "symbol must be set")
	}
	if in.Qty <= 0 {
		d.add("NO_QTY", "qty must be positive")
	}

	var entry *float64
	switch in.Type {
	case lot.LimitOrder:
		if in.Limit == nil || *in.Limit <= 0 {
			d.add("NO_LIMIT", "limit orders need a positive limit price")
		} else {
			entry = in.Limit
		}
	default:
		if last == nil {
			d.add("NO_ENTRY", "no last trade to price a market order")
		} else {
			entry = last
		}
	}
	if !d.Allowed {
		return d
	}
	d.Entry = entry

	short := in.PositionType == lot.Short
	if in.Stop != nil {
		if (!short && *in.Stop >= *entry) || (short && *in.Stop <= *entry) {
			d.add("STOP_WRONG_SIDE",
				fmt.Sprintf("stop %.2f is on the wrong side of entry %.2f", *in.Stop, *entry))
		}
	}
	if in.Target != nil {
		if (!short && *in.Target <= *entry) || (short && *in.Target >= *entry) {
			d.add("TARGET_WRONG_SIDE",
				fmt.Sprintf("target %.2f is on the wrong side of entry %.2f", *in.Target, *entry))
		}
	}

	// Risk + RR
	if rr, ok := metrics.RiskReward(entry, in.Stop, in.Target); ok {
		d.RiskReward = &rr
		if p.MinRR > 0 && rr < p.MinRR {
			d.add("RR_TOO_LOW", fmt.Sprintf("RR %.2f below minimum %.2f", rr, p.MinRR))
		}
	}

	if in.Stop != nil {
		qty := in.Qty
		cb := metrics.CostBasis(qty, *entry, nil)
		if ml, ok := metrics.MaxLoss(in.Stop, &qty, &cb, lot.Pending); ok {
			d.MaxLoss = &ml
		}
		d.PlannedRiskUSD = PlannedRiskUSD(qty, *entry, *in.Stop)
		if p.MaxLossUSD > 0 && d.PlannedRiskUSD > p.MaxLossUSD {
			d.add("MAX_LOSS_TOO_HIGH",
				fmt.Sprintf("planned loss %.2f exceeds max %.2f", d.PlannedRiskUSD, p.MaxLossUSD))
		}
	}

	return d
}
