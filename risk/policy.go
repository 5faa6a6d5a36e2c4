package risk

import "github.com/rustyeddy/lotboard/lot"

type Policy struct {
	// Trade constraints
	MinRR float64 `json:"min_rr" yaml:"min_rr"` // 1.5

	// Largest acceptable loss if the stop fills, in dollars.
	MaxLossUSD float64 `json:"max_loss_usd" yaml:"max_loss_usd"` // 1000
}

// OrderIntent is what the order form submits before it reaches the broker.
type OrderIntent struct {
	Symbol       string           `json:"symbol"`
	Qty          float64          `json:"qty"`
	Type         lot.OrderType    `json:"type"`
	PositionType lot.PositionType `json:"position_type"`

	Limit  *float64 `json:"limit_price,omitempty"`
	Stop   *float64 `json:"stop_price,omitempty"`
	Target *float64 `json:"target_price,omitempty"`

	// Hard stops/targets are sent to the broker as bracket legs; soft ones
	// are only tracked here.
	HardStop   bool `json:"hard_stop"`
	HardTarget bool `json:"hard_target"`

	BucketID int64 `json:"bucket_id"`
}
