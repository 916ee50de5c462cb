package market

import (
	"sync"
	"testing"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewCache(60 * time.Second).WithClock(clock.Now), clock
}

func TestCache_SetGet(t *testing.T) {
	c, clock := newTestCache()

	_, ok := c.Get("BTC/USDT")
	assert.False(t, ok)

	c.Set("BTC/USDT", decimal.NewFromInt(42000))
	obs, ok := c.Get("BTC/USDT")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(42000).Equal(obs.Price))
	assert.Equal(t, clock.Now(), obs.ObservedAt)

	c.Set("BTC/USDT", decimal.NewFromInt(42100))
	obs, _ = c.Get("BTC/USDT")
	assert.True(t, decimal.NewFromInt(42100).Equal(obs.Price), "last writer wins")
}

func TestCache_IsStale(t *testing.T) {
	c, clock := newTestCache()

	assert.True(t, c.IsStale("ETH/USDT", time.Minute), "absent reports stale")

	c.Set("ETH/USDT", decimal.NewFromInt(2200))
	clock.Advance(60 * time.Second)
	assert.False(t, c.IsStale("ETH/USDT", time.Minute), "exactly max age is still fresh")

	clock.Advance(time.Second)
	assert.True(t, c.IsStale("ETH/USDT", time.Minute))
	assert.False(t, c.IsStale("ETH/USDT", 2*time.Minute))
}

func TestCache_Lookup(t *testing.T) {
	c, clock := newTestCache()

	_, f := c.Lookup("BNB/USDT")
	assert.Equal(t, domain.FreshnessAbsent, f)

	c.Set("BNB/USDT", decimal.NewFromInt(320))
	obs, f := c.Lookup("BNB/USDT")
	assert.Equal(t, domain.FreshnessFresh, f)
	assert.True(t, decimal.NewFromInt(320).Equal(obs.Price))

	clock.Advance(61 * time.Second)
	obs, f = c.Lookup("BNB/USDT")
	assert.Equal(t, domain.FreshnessStale, f)
	assert.True(t, decimal.NewFromInt(320).Equal(obs.Price), "stale lookup still returns the value")
}

func TestCache_GetFresh(t *testing.T) {
	c, clock := newTestCache()

	_, err := c.GetFresh("BTC/USDT")
	assert.True(t, apperror.HasCode(err, apperror.CodeMarketDataUnavailable))

	c.Set("BTC/USDT", decimal.NewFromInt(50000))
	obs, err := c.GetFresh("BTC/USDT")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(obs.Price))

	clock.Advance(61 * time.Second)
	_, err = c.GetFresh("BTC/USDT")
	assert.True(t, apperror.HasCode(err, apperror.CodeStalePrice))
	assert.True(t, apperror.IsRetryable(err))
}

func TestCache_AllStatsClear(t *testing.T) {
	c, clock := newTestCache()
	c.Set("ETH/USDT", decimal.NewFromInt(2200))
	clock.Advance(90 * time.Second)
	c.Set("BTC/USDT", decimal.NewFromInt(42000))

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "BTC/USDT", all[0].Symbol)
	assert.Equal(t, "ETH/USDT", all[1].Symbol)

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalSymbols)
	assert.Equal(t, 1, stats.StaleCount)
	assert.Equal(t, int64(90000), stats.Symbols[1].AgeMS)
	assert.True(t, stats.Symbols[1].Stale)

	c.Clear()
	assert.Empty(t, c.All())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set("BTC/USDT", decimal.NewFromInt(int64(i*1000+j)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, _ = c.Lookup("BTC/USDT")
			}
		}()
	}
	wg.Wait()

	_, ok := c.Get("BTC/USDT")
	assert.True(t, ok)
}
