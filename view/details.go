package view

import (
	"github.com/rustyeddy/lotboard/format"
	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/metrics"
)

// Line is one row of the expanded lot table.
type Line struct {
	Label  string `json:"label"`
	Price  string `json:"price"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// Details is the expanded view under a lot row.
type Details struct {
	Summary  string `json:"summary"`
	Entry    Line   `json:"entry"`
	Disposal *Line  `json:"disposal,omitempty"`
	Net      string `json:"net,omitempty"`

	Cancelable   bool `json:"cancelable"`
	Liquidatable bool `json:"liquidatable"`
}

func Expand(l lot.Lot, opts Options) Details {
	side := "Bought"
	if l.PositionType == lot.Short {
		side = "Sold Short"
	}

	qty := l.Qty
	entry := metrics.EntryPrice(l.FilledAvgPrice, l.LimitPrice)
	var cb *float64
	if entry != nil {
		v := metrics.CostBasis(qty, *entry, l.CostBasis)
		cb = &v
	} else {
		cb = l.CostBasis
	}

	d := Details{
		Summary: string(l.PositionType) + " " + format.Qty(qty) + " " + l.Symbol,
		Entry: Line{
			Label:  side + ":",
			Price:  format.CurrencyPtr(l.FilledAvgPrice),
			Date:   format.Date(l.CreatedAt, opts.Location),
			Amount: format.CurrencyPtr(cb),
		},
		Cancelable:   l.Status == lot.Pending,
		Liquidatable: l.Status == lot.Open,
	}

	if l.Status == lot.Disposed && l.DisposedFillPrice != nil {
		proceeds := *l.DisposedFillPrice * qty
		line := Line{
			Label:  l.DisposeReason + ":",
			Price:  format.Currency(*l.DisposedFillPrice),
			Amount: format.Currency(proceeds),
		}
		if l.DisposedAt != nil {
			line.Date = format.Date(*l.DisposedAt, opts.Location)
		}
		d.Disposal = &line
		if gl, ok := metrics.RealizedGainLoss(&qty, cb, l.DisposedFillPrice); ok {
			d.Net = format.Currency(gl.Amount)
		}
	}
	return d
}
