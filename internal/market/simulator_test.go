package market

import (
	"context"
	"testing"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSimulator_RunSeedsBasePrices(t *testing.T) {
	cache, _ := newTestCache()
	sim := NewSimulator(cache, nil, nil, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	require.Eventually(t, func() bool { return len(cache.All()) == len(DefaultSimulatedSymbols) }, time.Second, 5*time.Millisecond)
	obs, ok := cache.Get("BTC/USDT")
	require.True(t, ok)
	assert.Equal(t, "42000", obs.Price.String())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop on cancel")
	}
}

func TestSimulator_TickStaysNearBase(t *testing.T) {
	cache, _ := newTestCache()
	symbols := []SimulatedSymbol{{Symbol: "ETH/USDT", Base: 2000, Volatility: 0.002}}
	sim := NewSimulator(cache, nil, symbols, time.Second, zerolog.Nop())

	for i := 0; i < 200; i++ {
		sim.Tick(context.Background())
	}

	obs, ok := cache.Get("ETH/USDT")
	require.True(t, ok)
	price := obs.Price.InexactFloat64()
	assert.Greater(t, price, 1000.0)
	assert.Less(t, price, 3000.0)
}

func TestSimulator_TickBroadcastsPrices(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventBus(ctrl)
	cache, _ := newTestCache()
	symbols := []SimulatedSymbol{
		{Symbol: "BTC/USDT", Base: 42000, Volatility: 0.001},
		{Symbol: "ETH/USDT", Base: 2200, Volatility: 0.001},
	}
	sim := NewSimulator(cache, events, symbols, time.Second, zerolog.Nop())

	events.EXPECT().
		Publish(gomock.Any(), domain.BroadcastScope, domain.EventPriceUpdate, gomock.Any()).
		Return(nil).
		Times(2)

	sim.Tick(context.Background())
}
