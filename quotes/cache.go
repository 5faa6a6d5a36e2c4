// Package quotes keeps the latest quote per symbol. Requests for a symbol are
// ticketed so that a slow, superseded response can never overwrite the
// answer to a newer request.
package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/lotboard/internal/telemetry"
	"github.com/rustyeddy/lotboard/lot"
)

// Source fetches a fresh quote from upstream.
type Source interface {
	LatestTrade(ctx context.Context, symbol string) (lot.Quote, error)
}

// State is what a renderer sees for one symbol.
type State struct {
	Quote   *lot.Quote
	Loading bool
	Err     error
}

// Price is the quote price, or nil while no quote has been applied.
func (s State) Price() *float64 {
	if s.Quote == nil {
		return nil
	}
	p := s.Quote.Price
	return &p
}

// Ticket identifies one request for a symbol.
type Ticket struct {
	Symbol string
	Seq    uint64
}

type entry struct {
	issued uint64
	quote  *lot.Quote
	err    error
}

type Cache struct {
	src     Source
	log     *slog.Logger
	metrics *telemetry.Metrics

	mu      sync.RWMutex
	entries map[string]*entry
}

func NewCache(src Source, logger *slog.Logger, m *telemetry.Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		src:     src,
		log:     logger.With(slog.String("component", "quotes")),
		metrics: m,
		entries: make(map[string]*entry),
	}
}

func (c *Cache) entryLocked(sym string) *entry {
	e, ok := c.entries[sym]
	if !ok {
		e = &entry{}
		c.entries[sym] = e
	}
	return e
}

// Track registers sym for polling without issuing a request.
func (c *Cache) Track(sym string) {
	sym = lot.NormalizeSymbol(sym)
	if sym == "" {
		return
	}
	c.mu.Lock()
	c.entryLocked(sym)
	c.mu.Unlock()
}

// Symbols lists every tracked symbol in order.
func (c *Cache) Symbols() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.entries))
	for sym := range c.entries {
		out = append(out, sym)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Begin issues a ticket that supersedes every earlier ticket for sym.
func (c *Cache) Begin(sym string) Ticket {
	sym = lot.NormalizeSymbol(sym)
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(sym)
	e.issued++
	return Ticket{Symbol: sym, Seq: e.issued}
}

// Apply stores q if t is still the newest ticket for its symbol and reports
// whether it did.
func (c *Cache) Apply(t Ticket, q lot.Quote) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[t.Symbol]
	if !ok || t.Seq != e.issued {
		c.metrics.QuoteDiscarded()
		return false
	}
	q.Symbol = t.Symbol
	e.quote = &q
	e.err = nil
	return true
}

// Fail records err for t's symbol under the same rule as Apply. The last
// good quote is kept.
func (c *Cache) Fail(t Ticket, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[t.Symbol]
	if !ok || t.Seq != e.issued {
		c.metrics.QuoteDiscarded()
		return false
	}
	e.err = err
	return true
}

// Get returns a snapshot of the state for sym.
func (c *Cache) Get(sym string) State {
	sym = lot.NormalizeSymbol(sym)
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[sym]
	if !ok {
		return State{Loading: true}
	}
	st := State{Err: e.err}
	if e.quote != nil {
		q := *e.quote
		st.Quote = &q
	}
	st.Loading = st.Quote == nil && st.Err == nil
	return st
}

// Fetch requests a fresh quote for sym. applied is false when a newer
// request for the same symbol was issued while this one was in flight.
func (c *Cache) Fetch(ctx context.Context, sym string) (q lot.Quote, applied bool, err error) {
	if lot.NormalizeSymbol(sym) == "" {
		return lot.Quote{}, false, fmt.Errorf("symbol is required: %w", lot.ErrInvalid)
	}
	t := c.Begin(sym)

	start := time.Now()
	q, err = c.src.LatestTrade(ctx, t.Symbol)
	c.metrics.ObserveQuoteFetch(err, time.Since(start))
	if err != nil {
		c.Fail(t, err)
		return lot.Quote{}, false, fmt.Errorf("latest trade %s: %w", t.Symbol, err)
	}

	applied = c.Apply(t, q)
	if !applied {
		c.log.Debug("stale quote discarded",
			slog.String("symbol", t.Symbol),
			slog.Uint64("seq", t.Seq),
		)
	}
	q.Symbol = t.Symbol
	return q, applied, nil
}
