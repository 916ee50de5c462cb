package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	initialReconnectDelay = 3 * time.Second
	maxReconnectDelay     = 60 * time.Second
	handshakeTimeout      = 10 * time.Second
	readTimeout           = 90 * time.Second
)

// tick is the exchange trade message, e.g. {"s":"BTCUSDT","p":"43120.12"}.
type tick struct {
	Symbol string          `json:"s"`
	Price  decimal.Decimal `json:"p"`
}

// Gateway consumes an external WebSocket price feed into the cache.
type Gateway struct {
	url    string
	cache  ports.PriceCache
	events ports.EventBus
	dialer *websocket.Dialer
	log    zerolog.Logger

	reconnectDelay time.Duration
}

// NewGateway creates a feed gateway. events may be nil.
func NewGateway(url string, cache ports.PriceCache, events ports.EventBus, log zerolog.Logger) *Gateway {
	return &Gateway{
		url:    url,
		cache:  cache,
		events: events,
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		log:    log.With().Str("component", "market_gateway").Logger(),

		reconnectDelay: initialReconnectDelay,
	}
}

// Run connects and re-connects until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	delay := g.reconnectDelay
	for {
		connected, err := g.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			delay = g.reconnectDelay
		}

		metrics.FeedReconnects.Inc()
		g.log.Warn().Err(err).Dur("retry_in", delay).Msg("market feed disconnected")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// session runs one connection. connected reports whether the dial succeeded.
func (g *Gateway) session(ctx context.Context) (connected bool, err error) {
	conn, _, err := g.dialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", g.url, err)
	}
	defer conn.Close()

	g.log.Info().Str("url", g.url).Msg("market feed connected")

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return true, err
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true, errors.New("feed closed connection")
			}
			return true, fmt.Errorf("read: %w", err)
		}
		if err := g.handle(ctx, data); err != nil {
			g.log.Debug().Err(err).Msg("skipping malformed tick")
		}
	}
}

func (g *Gateway) handle(ctx context.Context, data []byte) error {
	var t tick
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("decode tick: %w", err)
	}
	if t.Symbol == "" || !t.Price.IsPositive() {
		return fmt.Errorf("invalid tick %q", data)
	}

	symbol := domain.NormalizeSymbol(t.Symbol)
	g.cache.Set(symbol, t.Price)
	broadcastPrice(ctx, g.events, g.log, symbol, t.Price)
	return nil
}

func broadcastPrice(ctx context.Context, events ports.EventBus, log zerolog.Logger, symbol string, price decimal.Decimal) {
	if events == nil {
		return
	}
	payload := domain.PriceUpdatePayload{Symbol: symbol, Price: price, Timestamp: time.Now().UTC()}
	if err := events.Publish(ctx, domain.BroadcastScope, domain.EventPriceUpdate, payload); err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("price update not broadcast")
	}
}
