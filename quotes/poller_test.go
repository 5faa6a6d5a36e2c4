package quotes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/lotboard/lot"
)

func TestPollerRefresh(t *testing.T) {
	t.Parallel()

	src := &fakeSource{prices: map[string]float64{"AAPL": 150, "MSFT": 300}}
	c := NewCache(src, nil, nil)
	c.Track("AAPL")
	c.Track("MSFT")
	c.Track("GONE")

	var mu sync.Mutex
	seen := map[string]float64{}
	p := &Poller{Cache: c, OnQuote: func(q lot.Quote) {
		mu.Lock()
		seen[q.Symbol] = q.Price
		mu.Unlock()
	}}

	n := p.Refresh(context.Background())
	assert.Equal(t, 2, n)
	assert.Equal(t, map[string]float64{"AAPL": 150, "MSFT": 300}, seen)
	assert.ErrorIs(t, c.Get("GONE").Err, lot.ErrSymbolNotFound)
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	src := &fakeSource{prices: map[string]float64{"AAPL": 150}}
	c := NewCache(src, nil, nil)
	c.Track("AAPL")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- (&Poller{Cache: c, Interval: 10 * time.Millisecond}).Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
