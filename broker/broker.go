// Package broker describes the upstream order and quote API that lotboard
// forwards commands to.
package broker

import (
	"context"
	"time"

	"github.com/rustyeddy/lotboard/lot"
)

type Broker interface {
	LatestTrade(ctx context.Context, symbol string) (lot.Quote, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CancelOrder(ctx context.Context, clientID string) error
	Liquidate(ctx context.Context, req LiquidateRequest) (OrderAck, error)
}

type Side string

const (
	Buy       Side = "buy"
	SellShort Side = "sell_short"
	Sell      Side = "sell"
	BuyCover  Side = "buy_to_cover"
)

// EntrySide is the order side that opens a position of type pt.
func EntrySide(pt lot.PositionType) Side {
	if pt == lot.Short {
		return SellShort
	}
	return Buy
}

// ExitSide is the order side that closes a position of type pt.
func ExitSide(pt lot.PositionType) Side {
	if pt == lot.Short {
		return BuyCover
	}
	return Sell
}

type OrderRequest struct {
	ClientID    string        `json:"client_order_id"`
	Symbol      string        `json:"symbol"`
	Qty         float64       `json:"qty"`
	Side        Side          `json:"side"`
	Type        lot.OrderType `json:"type"`
	TimeInForce string        `json:"time_in_force"`
	LimitPrice  *float64      `json:"limit_price,omitempty"`
	StopLoss    *float64      `json:"stop_loss,omitempty"`
	TakeProfit  *float64      `json:"take_profit,omitempty"`
}

type LiquidateRequest struct {
	ClientID   string        `json:"client_order_id"`
	Side       Side          `json:"side"`
	Qty        float64       `json:"qty"`
	Type       lot.OrderType `json:"type"`
	LimitPrice *float64      `json:"limit_price,omitempty"`
}

// OrderAck is the broker's answer to an order command.
type OrderAck struct {
	ClientID       string     `json:"client_order_id"`
	Status         string     `json:"status"`
	FilledAvgPrice *float64   `json:"filled_avg_price,omitempty"`
	FilledAt       *time.Time `json:"filled_at,omitempty"`
}

// Filled reports whether the broker filled the order immediately.
func (a OrderAck) Filled() bool {
	return a.FilledAvgPrice != nil
}

// Mid is the midpoint of a bid/ask pair.
func Mid(bid, ask float64) float64 {
	return (bid + ask) / 2
}
