// Package lot holds the value records shared across lotboard: lots
// (tracked positions/orders), buckets and quotes.
package lot

import (
	"strings"
	"time"
)

type Status string

const (
	Pending  Status = "Pending"
	Open     Status = "Open"
	Disposed Status = "Disposed"
	Canceled Status = "Canceled"
	Other    Status = "Other"
)

// ParseStatus maps free text onto a Status. Unknown values become Other.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return Pending
	case "open":
		return Open
	case "disposed":
		return Disposed
	case "canceled", "cancelled":
		return Canceled
	default:
		return Other
	}
}

type PositionType string

const (
	Long  PositionType = "Long"
	Short PositionType = "Short"
)

// Lot is a single tracked position/order entry within a bucket. Optional
// prices are nil when the upstream API did not supply them.
type Lot struct {
	ID           string       `json:"id"`
	BucketID     int64        `json:"bucket_id"`
	Symbol       string       `json:"symbol"`
	Qty          float64      `json:"qty"`
	PositionType PositionType `json:"position_type"`

	FilledAvgPrice *float64 `json:"filled_avg_price"`
	LimitPrice     *float64 `json:"limit_price"`
	StopPrice      *float64 `json:"stop_price"`
	TargetPrice    *float64 `json:"target_price"`
	CostBasis      *float64 `json:"cost_basis"`

	Status       Status `json:"status"`
	BrokerStatus string `json:"broker_status,omitempty"`
	TimeInForce  string `json:"time_in_force,omitempty"`
	ClientID     string `json:"client_id"`

	// Set only when Status is Disposed.
	DisposedFillPrice *float64   `json:"disposed_fill_price"`
	DisposeReason     string     `json:"dispose_reason,omitempty"`
	DisposedAt        *time.Time `json:"disposed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignedQty is the quantity as displayed: negative for shorts.
func (l Lot) SignedQty() float64 {
	if l.PositionType == Short {
		return -l.Qty
	}
	return l.Qty
}

type Bucket struct {
	ID        int64     `json:"rowid"`
	Name      string    `json:"name"`
	LotCount  int       `json:"lot_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Deletable reports whether the bucket can be removed.
func (b Bucket) Deletable() bool { return b.LotCount == 0 }

type Quote struct {
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	BidPrice float64   `json:"bid_price,omitempty"`
	BidSize  float64   `json:"bid_size,omitempty"`
	AskPrice float64   `json:"ask_price,omitempty"`
	AskSize  float64   `json:"ask_size,omitempty"`
	Time     time.Time `json:"time"`
}

// Price returns a pointer to v, for filling optional Lot fields.
func Price(v float64) *float64 { return &v }

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}

type OrderType string

const (
	MarketOrder OrderType = "market"
	LimitOrder  OrderType = "limit"
)
