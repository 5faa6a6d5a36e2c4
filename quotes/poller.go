package quotes

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/lotboard/lot"
)

// Poller refreshes every tracked symbol on an interval.
type Poller struct {
	Cache    *Cache
	Interval time.Duration

	// Concurrency bounds parallel upstream requests; 0 means 4.
	Concurrency int

	// OnQuote is called, possibly concurrently, for each applied quote.
	OnQuote func(lot.Quote)

	Log *slog.Logger
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches every tracked symbol once and returns how many quotes
// were applied. Per-symbol failures are logged, not returned.
func (p *Poller) Refresh(ctx context.Context) int {
	logger := p.Log
	if logger == nil {
		logger = slog.Default()
	}
	limit := p.Concurrency
	if limit <= 0 {
		limit = 4
	}

	syms := p.Cache.Symbols()
	applied := make([]bool, len(syms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sym := range syms {
		g.Go(func() error {
			q, ok, err := p.Cache.Fetch(gctx, sym)
			if err != nil {
				logger.Warn("quote refresh failed",
					slog.String("symbol", sym),
					slog.String("error", err.Error()),
				)
				return nil
			}
			applied[i] = ok
			if ok && p.OnQuote != nil {
				p.OnQuote(q)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range applied {
		if ok {
			n++
		}
	}
	return n
}
