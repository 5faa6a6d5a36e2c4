package broker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/lotboard/lot"
)

func TestMid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bid      float64
		ask      float64
		expected float64
	}{
		{"simple", 1.0, 3.0, 2.0},
		{"same", 2.5, 2.5, 2.5},
		{"zero", 0.0, 0.0, 0.0},
		{"fractional", 1.1, 1.3, 1.2},
	}

	const tol = 1e-9

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Mid(tt.bid, tt.ask)
			if math.Abs(got-tt.expected) > tol {
				t.Fatalf("Mid() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestSides(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Buy, EntrySide(lot.Long))
	assert.Equal(t, SellShort, EntrySide(lot.Short))
	assert.Equal(t, Sell, ExitSide(lot.Long))
	assert.Equal(t, BuyCover, ExitSide(lot.Short))
	assert.Equal(t, Buy, EntrySide(""))
}

func TestOrderAckFilled(t *testing.T) {
	t.Parallel()

	assert.False(t, OrderAck{Status: "accepted"}.Filled())
	fill := 10.0
	assert.True(t, OrderAck{Status: "filled", FilledAvgPrice: &fill}.Filled())
}
