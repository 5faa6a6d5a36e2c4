// Package view turns lots into the cells of the dashboard's lots table. All
// numbers come from the metrics package; this package only decides what to
// show and how.
package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/lotboard/colorscale"
	"github.com/rustyeddy/lotboard/format"
	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/metrics"
	"github.com/rustyeddy/lotboard/quotes"
)

// Loading is shown in place of a value that depends on a quote in flight.
const Loading = "..."

type Options struct {
	// RelativeStop shows the stop as a percentage below entry instead of a price.
	RelativeStop bool

	// MaxLossLimit is the loss at which the max-loss shade saturates.
	MaxLossLimit float64

	// Scale colors the stop cell by elevation. Zero value means colorscale.Stop.
	Scale colorscale.Scale

	Location *time.Location
}

// DefaultMaxLossLimit is used when Options.MaxLossLimit is not positive.
const DefaultMaxLossLimit = 1000

func (o Options) maxLossLimit() float64 {
	if o.MaxLossLimit <= 0 {
		return DefaultMaxLossLimit
	}
	return o.MaxLossLimit
}

func (o Options) scale() colorscale.Scale {
	if o.Scale.Max <= o.Scale.Min {
		return colorscale.Stop
	}
	return o.Scale
}

type Cell struct {
	Text       string `json:"text"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

type PositionCell struct {
	Qty    string `json:"qty"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Short  bool   `json:"short"`
}

type GainLossCell struct {
	Text       string `json:"text"`
	Gain       bool   `json:"gain"`
	Loss       bool   `json:"loss"`
	Unrealized bool   `json:"unrealized"`
	Loading    bool   `json:"loading"`
}

type Row struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	RowClass string `json:"row_class"`

	Status     Cell         `json:"status"`
	Entered    Cell         `json:"entered"`
	Position   PositionCell `json:"position"`
	CostBasis  Cell         `json:"cost_basis"`
	Stop       Cell         `json:"stop"`
	MaxLoss    Cell         `json:"max_loss"`
	Target     Cell         `json:"target"`
	RiskReward Cell         `json:"risk_reward"`
	Last       Cell         `json:"last"`
	GainLoss   GainLossCell `json:"gain_loss"`

	Metrics metrics.RiskMetrics `json:"metrics"`
}

// Render builds the table row for l given the quote state of its symbol.
func Render(l lot.Lot, q quotes.State, opts Options) Row {
	m := metrics.Compute(l, q.Price())

	r := Row{
		ID:       l.ID,
		ClientID: l.ClientID,
		RowClass: rowClass(l.Status),
		Status:   Cell{Text: statusText(l)},
		Entered:  Cell{Text: format.Date(l.CreatedAt, opts.Location)},
		Position: positionCell(l, m.EntryPrice),
		Target:   Cell{Text: format.CurrencyPtr(l.TargetPrice)},
		Last:     lastCell(q),
		GainLoss: gainLossCell(l.Status, m, q),
		Metrics:  m,
	}
	r.CostBasis = Cell{Text: format.CurrencyPtr(m.CostBasis)}
	r.Stop = stopCell(l, m, q, opts)

	if m.MaxLoss != nil {
		r.MaxLoss = Cell{
			Text:       format.Currency(*m.MaxLoss),
			Background: colorscale.MaxLossShade(*m.MaxLoss, opts.maxLossLimit()),
		}
	}
	if m.RiskReward != nil {
		r.RiskReward = Cell{Text: format.Fixed(*m.RiskReward, 1)}
	}
	return r
}

// RenderAll renders lots in order, looking quotes up with state.
func RenderAll(lots []lot.Lot, state func(symbol string) quotes.State, opts Options) []Row {
	rows := make([]Row, 0, len(lots))
	for _, l := range lots {
		rows = append(rows, Render(l, state(l.Symbol), opts))
	}
	return rows
}

func rowClass(s lot.Status) string {
	switch s {
	case lot.Pending:
		return "row-pending"
	case lot.Open:
		return "row-open"
	case lot.Disposed:
		return "row-disposed"
	case lot.Canceled:
		return "row-canceled"
	default:
		return "row-other"
	}
}

func statusText(l lot.Lot) string {
	switch l.Status {
	case lot.Disposed:
		return l.DisposeReason
	case lot.Pending:
		return fmt.Sprintf("%s / %s (%s)", l.Status, l.BrokerStatus, l.TimeInForce)
	default:
		return string(l.Status)
	}
}

func positionCell(l lot.Lot, entry *float64) PositionCell {
	price := format.CurrencyPtr(entry)
	if price == "" {
		price = "market"
	}
	return PositionCell{
		Qty:    format.Qty(l.SignedQty()),
		Symbol: l.Symbol,
		Price:  price,
		Short:  l.PositionType == lot.Short,
	}
}

func lastCell(q quotes.State) Cell {
	switch {
	case q.Quote != nil:
		return Cell{Text: format.Currency(q.Quote.Price)}
	case q.Err != nil:
		return Cell{Text: errorText(q.Err)}
	default:
		return Cell{Text: Loading}
	}
}

func errorText(err error) string {
	if errors.Is(err, lot.ErrSymbolNotFound) {
		return "Symbol not found"
	}
	return "Network error"
}

func stopCell(l lot.Lot, m metrics.RiskMetrics, q quotes.State, opts Options) Cell {
	if l.StopPrice == nil || l.Status == lot.Canceled {
		return Cell{}
	}
	stop := *l.StopPrice
	if m.EntryPrice == nil {
		return Cell{Text: format.Currency(stop)}
	}

	var c Cell
	if m.Elevation != nil && l.Status != lot.Disposed {
		c.Color = opts.scale().CSS(*m.Elevation)
	}

	if opts.RelativeStop {
		dist := Loading
		if m.StopPercent != nil {
			dist = format.Percent(*m.StopPercent)
		}
		elev := Loading
		if m.Elevation != nil {
			elev = format.Percent(*m.Elevation)
		}
		c.Text = fmt.Sprintf("%s (%s)", dist, elev)
		return c
	}

	diff := Loading
	if p := q.Price(); p != nil {
		diff = format.Currency(*p - stop)
	}
	c.Text = fmt.Sprintf("%s (%s)", format.Currency(stop), diff)
	return c
}

func gainLossCell(s lot.Status, m metrics.RiskMetrics, q quotes.State) GainLossCell {
	c := GainLossCell{Unrealized: m.Unrealized}
	if m.GainLoss == nil {
		switch {
		case s == lot.Disposed:
			c.Text = Loading
		case m.Unrealized && q.Quote == nil:
			c.Text = Loading
			c.Loading = true
		}
		return c
	}
	gl := *m.GainLoss
	c.Text = fmt.Sprintf("%s (%s)", format.Currency(gl.Amount), format.Percent(gl.Percent))
	c.Gain = gl.Amount > 0
	c.Loss = gl.Amount < 0
	return c
}
