package provider

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/metrics"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a fetched series is served from memory.
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	series    types.PriceSeries
	fetchedAt time.Time
}

// CachedProvider wraps a Provider and keeps each fetched series in memory for a TTL.
// Entries are keyed by ticker and lookback. Failed fetches are never cached, so the
// next call retries the upstream provider.
type CachedProvider struct {
	underlying Provider
	ttl        time.Duration
	clock      func() time.Time
	logger     *logger.Logger
	entries    map[string]cacheEntry
	mu         sync.RWMutex
}

// NewCachedProvider creates a new CachedProvider wrapping the given Provider.
func NewCachedProvider(underlying Provider, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CachedProvider{
		underlying: underlying,
		ttl:        ttl,
		clock:      time.Now,
		logger:     log,
		entries:    make(map[string]cacheEntry),
	}
}

// Name implements Provider.
func (c *CachedProvider) Name() ProviderType {
	return c.underlying.Name()
}

// Fetch implements Provider with caching.
func (c *CachedProvider) Fetch(ctx context.Context, ticker string, lookbackYears int) (types.PriceSeries, error) {
	key := cacheKey(ticker, lookbackYears)

	// Check cache first (read lock)
	c.mu.RLock()
	if series, ok := c.lookup(key); ok {
		c.mu.RUnlock()
		metrics.CacheLookupsTotal.WithLabelValues("memory", metrics.ResultHit).Inc()

		return series, nil
	}
	c.mu.RUnlock()

	// Cache miss - fetch from underlying (write lock)
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if series, ok := c.lookup(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("memory", metrics.ResultHit).Inc()

		return series, nil
	}

	metrics.CacheLookupsTotal.WithLabelValues("memory", metrics.ResultMiss).Inc()

	series, err := c.underlying.Fetch(ctx, ticker, lookbackYears)
	if err != nil {
		return nil, err
	}

	c.entries[key] = cacheEntry{series: slices.Clone(series), fetchedAt: c.clock()}
	c.logger.Debug("Cached price series",
		zap.String("ticker", ticker),
		zap.Int("lookback_years", lookbackYears),
		zap.Int("points", len(series)),
		zap.Duration("ttl", c.ttl),
	)

	return series, nil
}

// Invalidate drops the entry for ticker and lookback.
func (c *CachedProvider) Invalidate(ticker string, lookbackYears int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(ticker, lookbackYears))
}

// ClearCache drops every entry.
func (c *CachedProvider) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// lookup must be called with c.mu held.
func (c *CachedProvider) lookup(key string) (types.PriceSeries, bool) {
	entry, ok := c.entries[key]
	if !ok || c.clock().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}

	return slices.Clone(entry.series), true
}

func cacheKey(ticker string, lookbackYears int) string {
	return fmt.Sprintf("%s:%d", strings.ToUpper(ticker), lookbackYears)
}
