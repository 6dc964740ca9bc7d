// Package price resolves token mints to USD prices across an ordered list
// of upstream sources, failing open to zero so a pricing outage never blocks
// the swap flow.
package price

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SauceFoong/jup-swap-app/internal/metrics"
)

const defaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	price   float64
	expires time.Time
}

// Fetcher tries each configured source in order and returns the first price
// it gets. All failures resolve to zero, never an error.
type Fetcher struct {
	sources []Source
	http    *http.Client
	log     zerolog.Logger
	ttl     time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

// Option configures Fetcher construction parameters.
type Option func(*Fetcher)

// WithCacheTTL overrides how long a fetched price is reused.
func WithCacheTTL(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.ttl = d
		}
	}
}

// WithHTTPClient overrides the HTTP client used against the sources.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.http = c
		}
	}
}

// NewFetcher constructs a fetcher over the given source priority order.
func NewFetcher(sources []Source, log zerolog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		sources: sources,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
		ttl:     defaultCacheTTL,
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the USD price for a mint, or 0 when every source fails.
func (f *Fetcher) Fetch(ctx context.Context, mint string) float64 {
	if mint == "" {
		return 0
	}
	if px, ok := f.cached(mint); ok {
		return px
	}

	for _, src := range f.sources {
		px, err := src.Fetch(ctx, f.http, mint)
		if err != nil {
			metrics.PriceLookupsTotal.WithLabelValues(src.Name(), "error").Inc()
			f.log.Warn().Err(err).Str("source", src.Name()).Str("mint", mint).Msg("price source failed")
			continue
		}
		metrics.PriceLookupsTotal.WithLabelValues(src.Name(), "ok").Inc()
		f.store(mint, px)
		return px
	}

	f.log.Warn().Str("mint", mint).Msg("all price sources failed, returning zero")
	return 0
}

func (f *Fetcher) cached(mint string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.cache[mint]
	if !ok || f.now().After(entry.expires) {
		return 0, false
	}
	return entry.price, true
}

func (f *Fetcher) store(mint string, px float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[mint] = cacheEntry{price: px, expires: f.now().Add(f.ttl)}
}
