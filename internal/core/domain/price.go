package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Observation is the last known price of a symbol and when it was seen.
type Observation struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
}

// Age returns how old the observation is at now.
func (o Observation) Age(now time.Time) time.Duration {
	return now.Sub(o.ObservedAt)
}

// Freshness classifies a cache lookup.
type Freshness int

const (
	FreshnessAbsent Freshness = iota
	FreshnessStale
	FreshnessFresh
)

func (f Freshness) String() string {
	switch f {
	case FreshnessFresh:
		return "fresh"
	case FreshnessStale:
		return "stale"
	default:
		return "absent"
	}
}

var quoteAssets = []string{"USDT", "USDC", "BUSD", "USD", "BTC", "ETH"}

// NormalizeSymbol turns exchange tickers like "btcusdt" into "BTC/USDT".
// Symbols that already contain a slash are only upper-cased.
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || strings.Contains(s, "/") {
		return s
	}
	for _, q := range quoteAssets {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return s[:len(s)-len(q)] + "/" + q
		}
	}
	return s
}
