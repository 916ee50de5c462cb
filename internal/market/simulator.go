package market

import (
	"context"
	"math/rand/v2"
	"time"

	"settlement-core/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SimulatedSymbol seeds one random-walk series.
type SimulatedSymbol struct {
	Symbol     string
	Base       float64
	Volatility float64
}

// DefaultSimulatedSymbols are the development-mode markets.
var DefaultSimulatedSymbols = []SimulatedSymbol{
	{Symbol: "BTC/USDT", Base: 42000, Volatility: 0.001},
	{Symbol: "ETH/USDT", Base: 2200, Volatility: 0.0015},
	{Symbol: "BNB/USDT", Base: 320, Volatility: 0.002},
}

// Simulator feeds the cache with a mean-reverting random walk.
type Simulator struct {
	cache    ports.PriceCache
	events   ports.EventBus
	symbols  []SimulatedSymbol
	interval time.Duration
	rnd      *rand.Rand
	log      zerolog.Logger
}

// NewSimulator creates a simulator ticking every interval. events may be nil.
func NewSimulator(cache ports.PriceCache, events ports.EventBus, symbols []SimulatedSymbol, interval time.Duration, log zerolog.Logger) *Simulator {
	if len(symbols) == 0 {
		symbols = DefaultSimulatedSymbols
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Simulator{
		cache:    cache,
		events:   events,
		symbols:  symbols,
		interval: interval,
		rnd:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5e771e)),
		log:      log.With().Str("component", "market_simulator").Logger(),
	}
}

// Run seeds base prices, then ticks until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	s.log.Info().Int("symbols", len(s.symbols)).Msg("simulating market feed")
	for _, sym := range s.symbols {
		s.cache.Set(sym.Symbol, decimal.NewFromFloat(sym.Base))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances every series by one step.
func (s *Simulator) Tick(ctx context.Context) {
	for _, sym := range s.symbols {
		current := sym.Base
		if obs, ok := s.cache.Get(sym.Symbol); ok {
			current = obs.Price.InexactFloat64()
		}
		change := (s.rnd.Float64() - 0.5) * current * sym.Volatility
		reversion := (sym.Base - current) * 0.01
		price := decimal.NewFromFloat(current + change + reversion).Round(8)

		s.cache.Set(sym.Symbol, price)
		broadcastPrice(ctx, s.events, s.log, sym.Symbol, price)
	}
}
