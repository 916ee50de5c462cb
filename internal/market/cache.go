// Package market holds the last-known price per symbol and the feeds that fill it.
package market

import (
	"sort"
	"sync"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/metrics"
	"settlement-core/pkg/apperror"

	"github.com/shopspring/decimal"
)

// DefaultMaxAge is how old a price may be before it is stale.
const DefaultMaxAge = 60 * time.Second

// Cache implements ports.PriceCache. Writes are last-writer-wins per symbol;
// reads never block writers.
type Cache struct {
	entries sync.Map // symbol -> domain.Observation
	maxAge  time.Duration
	now     func() time.Time
}

// NewCache creates a cache that treats observations older than maxAge as stale.
func NewCache(maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{maxAge: maxAge, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// MaxAge returns the configured staleness bound.
func (c *Cache) MaxAge() time.Duration {
	return c.maxAge
}

// Set records price for symbol as observed now.
func (c *Cache) Set(symbol string, price decimal.Decimal) {
	c.entries.Store(symbol, domain.Observation{
		Symbol:     symbol,
		Price:      price,
		ObservedAt: c.now(),
	})
}

// Get returns the last observation regardless of age.
func (c *Cache) Get(symbol string) (domain.Observation, bool) {
	v, ok := c.entries.Load(symbol)
	if !ok {
		return domain.Observation{}, false
	}
	return v.(domain.Observation), true
}

// IsStale reports whether symbol is older than maxAge. Absent symbols are stale.
func (c *Cache) IsStale(symbol string, maxAge time.Duration) bool {
	obs, ok := c.Get(symbol)
	if !ok {
		return true
	}
	return obs.Age(c.now()) > maxAge
}

// Lookup returns the observation and its freshness against the configured max age.
func (c *Cache) Lookup(symbol string) (domain.Observation, domain.Freshness) {
	obs, ok := c.Get(symbol)
	freshness := domain.FreshnessAbsent
	switch {
	case !ok:
	case obs.Age(c.now()) > c.maxAge:
		freshness = domain.FreshnessStale
	default:
		freshness = domain.FreshnessFresh
	}
	metrics.PriceReads.WithLabelValues(freshness.String()).Inc()
	return obs, freshness
}

// GetFresh is the read path for financial decisions. Absent and stale prices
// are errors, both retryable.
func (c *Cache) GetFresh(symbol string) (domain.Observation, error) {
	obs, freshness := c.Lookup(symbol)
	switch freshness {
	case domain.FreshnessAbsent:
		return domain.Observation{}, apperror.ErrMarketDataUnavailable(symbol)
	case domain.FreshnessStale:
		return obs, apperror.ErrStalePrice(symbol)
	}
	return obs, nil
}

// All returns every observation sorted by symbol.
func (c *Cache) All() []domain.Observation {
	var out []domain.Observation
	c.entries.Range(func(_, v any) bool {
		out = append(out, v.(domain.Observation))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// SymbolAge is one row of Stats.
type SymbolAge struct {
	Symbol string `json:"symbol"`
	AgeMS  int64  `json:"age_ms"`
	Stale  bool   `json:"stale"`
}

// Stats summarizes cache health.
type Stats struct {
	TotalSymbols int         `json:"total_symbols"`
	StaleCount   int         `json:"stale_count"`
	Symbols      []SymbolAge `json:"symbols"`
}

func (c *Cache) Stats() Stats {
	now := c.now()
	all := c.All()
	stats := Stats{TotalSymbols: len(all), Symbols: make([]SymbolAge, 0, len(all))}
	for _, obs := range all {
		age := obs.Age(now)
		stale := age > c.maxAge
		if stale {
			stats.StaleCount++
		}
		stats.Symbols = append(stats.Symbols, SymbolAge{Symbol: obs.Symbol, AgeMS: age.Milliseconds(), Stale: stale})
	}
	return stats
}

// Clear drops every observation.
func (c *Cache) Clear() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
}
