package handler

import (
	"strings"

	"settlement-core/internal/adapter/http/dto"
	"settlement-core/internal/core/domain"
	"settlement-core/internal/market"
	"settlement-core/pkg/apperror"
	"settlement-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// PriceView is the read side of the price cache exposed to operators.
type PriceView interface {
	All() []domain.Observation
	Lookup(symbol string) (domain.Observation, domain.Freshness)
	Stats() market.Stats
}

// MarketHandler serves cached prices.
type MarketHandler struct {
	prices PriceView
}

func NewMarketHandler(prices PriceView) *MarketHandler {
	return &MarketHandler{prices: prices}
}

// ListPrices handles GET /api/v1/admin/market/prices.
func (h *MarketHandler) ListPrices(c *gin.Context) {
	stats := h.prices.Stats()
	stale := make(map[string]bool, len(stats.Symbols))
	for _, s := range stats.Symbols {
		stale[s.Symbol] = s.Stale
	}

	all := h.prices.All()
	prices := make([]dto.PriceResponse, 0, len(all))
	for _, obs := range all {
		freshness := domain.FreshnessFresh
		if stale[obs.Symbol] {
			freshness = domain.FreshnessStale
		}
		prices = append(prices, toPriceResponse(obs, freshness))
	}

	response.OK(c, dto.PriceListResponse{
		Prices:     prices,
		Total:      stats.TotalSymbols,
		StaleCount: stats.StaleCount,
	})
}

// GetPrice handles GET /api/v1/admin/market/prices/:symbol. The symbol may be
// given as BTCUSDT or BTC-USDT since a slash cannot appear in a path segment.
func (h *MarketHandler) GetPrice(c *gin.Context) {
	symbol := domain.NormalizeSymbol(strings.ReplaceAll(c.Param("symbol"), "-", "/"))

	obs, freshness := h.prices.Lookup(symbol)
	if freshness == domain.FreshnessAbsent {
		response.Error(c, apperror.ErrMarketDataUnavailable(symbol))
		return
	}
	response.OK(c, toPriceResponse(obs, freshness))
}

func toPriceResponse(obs domain.Observation, freshness domain.Freshness) dto.PriceResponse {
	return dto.PriceResponse{
		Symbol:     obs.Symbol,
		Price:      obs.Price,
		ObservedAt: obs.ObservedAt,
		Freshness:  freshness.String(),
	}
}
