package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/lotboard/lot"
)

func p(v float64) *float64 { return &v }

func TestRiskReward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		entry, stop, target *float64
		want                float64
		ok                  bool
	}{
		{"long", p(100), p(90), p(130), 3, true},
		{"short", p(100), p(110), p(80), 2, true},
		{"fractional", p(50), p(48), p(53), 1.5, true},
		{"zero risk", p(100), p(100), p(120), 0, false},
		{"no stop", p(100), nil, p(120), 0, false},
		{"no target", p(100), p(90), nil, 0, false},
		{"no entry", nil, p(90), p(120), 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := RiskReward(tt.entry, tt.stop, tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRiskRewardFormula(t *testing.T) {
	t.Parallel()

	for _, c := range [][3]float64{
		{10, 9.5, 12}, {412.91, 400, 450}, {1.2345, 1.3, 1.1}, {7, 0, 14},
	} {
		got, ok := RiskReward(p(c[0]), p(c[1]), p(c[2]))
		require.True(t, ok)
		want := math.Abs(c[2]-c[0]) / math.Abs(c[0]-c[1])
		assert.InDelta(t, want, got, 1e-12)
	}
}

func TestCostBasis(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 500.0, CostBasis(10, 50, nil))
	assert.Equal(t, 480.0, CostBasis(10, 50, p(480)))
	assert.Equal(t, 500.0, CostBasis(10, 50, p(0)))
}

func TestMaxLoss(t *testing.T) {
	t.Parallel()

	_, ok := MaxLoss(p(45), p(10), p(500), lot.Disposed)
	assert.False(t, ok)

	_, ok = MaxLoss(p(45), p(10), p(500), lot.Canceled)
	assert.False(t, ok)

	got, ok := MaxLoss(p(45), p(10), p(500), lot.Open)
	require.True(t, ok)
	assert.InDelta(t, -50.0, got, 1e-12)

	got, ok = MaxLoss(p(45), p(10), p(500), lot.Pending)
	require.True(t, ok)
	assert.InDelta(t, -50.0, got, 1e-12)

	_, ok = MaxLoss(nil, p(10), p(500), lot.Open)
	assert.False(t, ok)
	_, ok = MaxLoss(p(45), nil, p(500), lot.Open)
	assert.False(t, ok)
	_, ok = MaxLoss(p(45), p(10), nil, lot.Open)
	assert.False(t, ok)
}

func TestRealizedGainLoss(t *testing.T) {
	t.Parallel()

	got, ok := RealizedGainLoss(p(10), p(500), p(60))
	require.True(t, ok)
	assert.InDelta(t, 100.0, got.Amount, 1e-12)
	assert.InDelta(t, 20.0, got.Percent, 1e-12)

	_, ok = RealizedGainLoss(p(10), p(0), p(60))
	assert.False(t, ok, "zero cost basis")

	_, ok = RealizedGainLoss(nil, p(500), p(60))
	assert.False(t, ok)
	_, ok = RealizedGainLoss(p(10), p(500), nil)
	assert.False(t, ok)
}

func TestUnrealizedGainLoss(t *testing.T) {
	t.Parallel()

	got, ok := UnrealizedGainLoss(p(10), p(500), p(0))
	require.True(t, ok, "zero is a valid quote")
	assert.InDelta(t, -500.0, got.Amount, 1e-12)
	assert.InDelta(t, -100.0, got.Percent, 1e-12)

	_, ok = UnrealizedGainLoss(p(10), p(500), nil)
	assert.False(t, ok, "quote not loaded")

	got, ok = UnrealizedGainLoss(p(2), p(825.82), p(361.55))
	require.True(t, ok)
	assert.InDelta(t, -102.72, got.Amount, 1e-9)
	assert.InDelta(t, -12.438546, got.Percent, 1e-6)
}

func TestStopElevation(t *testing.T) {
	t.Parallel()

	got, ok := StopElevation(p(110), p(100))
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-12)

	got, ok = StopElevation(p(95), p(100))
	require.True(t, ok)
	assert.InDelta(t, -5.0, got, 1e-12)

	_, ok = StopElevation(p(95), p(0))
	assert.False(t, ok)
	_, ok = StopElevation(nil, p(100))
	assert.False(t, ok)
	_, ok = StopElevation(p(95), nil)
	assert.False(t, ok)
}

func TestStopDistance(t *testing.T) {
	t.Parallel()

	got, ok := StopDistance(100, 90, true)
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-12)

	got, ok = StopDistance(100, 90, false)
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-12)

	_, ok = StopDistance(0, 90, true)
	assert.False(t, ok)

	got, ok = StopDistance(0, 90, false)
	require.True(t, ok)
	assert.InDelta(t, -90.0, got, 1e-12)
}

func TestSlippage(t *testing.T) {
	t.Parallel()

	got, ok := Slippage(95, 100)
	require.True(t, ok)
	assert.InDelta(t, -5.0, got.Amount, 1e-12)
	assert.InDelta(t, -5.26, got.Percent, 0.005)

	_, ok = Slippage(0, 100)
	assert.False(t, ok)
}

func TestEntryPrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10.5, *EntryPrice(p(10.5), p(10)))
	assert.Equal(t, 10.0, *EntryPrice(nil, p(10)))
	assert.Nil(t, EntryPrice(nil, nil))
}

func TestNonFiniteInputsHaveNoValue(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	_, ok := RiskReward(p(inf), p(1), p(2))
	assert.False(t, ok)
	_, ok = StopElevation(p(math.NaN()), p(1))
	assert.False(t, ok)
	_, ok = UnrealizedGainLoss(p(1), p(1), p(inf))
	assert.False(t, ok)
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	l := lot.Lot{
		Symbol:         "SPY",
		Qty:            10,
		PositionType:   lot.Long,
		FilledAvgPrice: p(361.92),
		LimitPrice:     p(362.4),
		StopPrice:      p(350),
		TargetPrice:    p(400),
		Status:         lot.Open,
	}
	q := p(365.97)

	first := Compute(l, q)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Compute(l, q))
	}

	rr1, ok1 := RiskReward(p(100), p(90), p(130))
	rr2, ok2 := RiskReward(p(100), p(90), p(130))
	assert.Equal(t, rr1, rr2)
	assert.Equal(t, ok1, ok2)

	s1, _ := Slippage(95, 100)
	s2, _ := Slippage(95, 100)
	assert.Equal(t, s1, s2)
}
