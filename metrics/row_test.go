package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/lotboard/lot"
)

func TestComputeOpen(t *testing.T) {
	t.Parallel()

	l := lot.Lot{
		Symbol:         "AAPL",
		Qty:            10,
		FilledAvgPrice: p(50),
		LimitPrice:     p(51),
		StopPrice:      p(45),
		TargetPrice:    p(65),
		Status:         lot.Open,
	}

	m := Compute(l, p(55))

	require.NotNil(t, m.EntryPrice)
	assert.Equal(t, 50.0, *m.EntryPrice)
	require.NotNil(t, m.CostBasis)
	assert.Equal(t, 500.0, *m.CostBasis)
	require.NotNil(t, m.RiskReward)
	assert.InDelta(t, 3.0, *m.RiskReward, 1e-12)
	require.NotNil(t, m.MaxLoss)
	assert.InDelta(t, -50.0, *m.MaxLoss, 1e-12)
	require.NotNil(t, m.GainLoss)
	assert.True(t, m.Unrealized)
	assert.InDelta(t, 50.0, m.GainLoss.Amount, 1e-12)
	assert.InDelta(t, 10.0, m.GainLoss.Percent, 1e-12)
	require.NotNil(t, m.Elevation)
	assert.InDelta(t, 22.2222, *m.Elevation, 1e-4)
	require.NotNil(t, m.StopDistance)
	assert.InDelta(t, 5.0, *m.StopDistance, 1e-12)
	require.NotNil(t, m.StopPercent)
	assert.InDelta(t, 10.0, *m.StopPercent, 1e-12)
	assert.Nil(t, m.Slippage)
}

func TestComputeWithoutQuote(t *testing.T) {
	t.Parallel()

	l := lot.Lot{Qty: 10, LimitPrice: p(50), StopPrice: p(45), Status: lot.Pending}
	m := Compute(l, nil)

	assert.True(t, m.Unrealized)
	assert.Nil(t, m.GainLoss)
	assert.Nil(t, m.Elevation)
	assert.Nil(t, m.RiskReward)
	require.NotNil(t, m.MaxLoss)
	assert.InDelta(t, -50.0, *m.MaxLoss, 1e-12)
}

func TestComputeDisposed(t *testing.T) {
	t.Parallel()

	l := lot.Lot{
		Qty:               10,
		FilledAvgPrice:    p(50),
		StopPrice:         p(47),
		CostBasis:         p(500),
		Status:            lot.Disposed,
		DisposedFillPrice: p(46),
		DisposeReason:     "Stopped",
	}
	m := Compute(l, p(60))

	assert.False(t, m.Unrealized)
	assert.Nil(t, m.MaxLoss)
	require.NotNil(t, m.GainLoss)
	assert.InDelta(t, -40.0, m.GainLoss.Amount, 1e-12)
	assert.InDelta(t, -8.0, m.GainLoss.Percent, 1e-12)
	require.NotNil(t, m.Slippage)
	assert.InDelta(t, -1.0, m.Slippage.Amount, 1e-12)
}

func TestComputeCanceled(t *testing.T) {
	t.Parallel()

	l := lot.Lot{Qty: 5, LimitPrice: p(20), StopPrice: p(18), Status: lot.Canceled}
	m := Compute(l, p(19))

	assert.Nil(t, m.MaxLoss)
	assert.Nil(t, m.GainLoss)
	assert.False(t, m.Unrealized)
}

func TestComputeMarketOrderWithoutPrices(t *testing.T) {
	t.Parallel()

	m := Compute(lot.Lot{Qty: 5, Status: lot.Pending}, p(19))

	assert.Nil(t, m.EntryPrice)
	assert.Nil(t, m.CostBasis)
	assert.Nil(t, m.GainLoss)
	assert.Nil(t, m.StopDistance)
}
