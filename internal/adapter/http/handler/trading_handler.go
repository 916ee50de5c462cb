package handler

import (
	"time"

	"settlement-core/internal/adapter/http/dto"
	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// TradingHandler serves the caller's own wallet and contracts.
type TradingHandler struct {
	trading    ports.TradingService
	settlement ports.SettlementService
	now        func() time.Time
}

func NewTradingHandler(trading ports.TradingService, settlement ports.SettlementService) *TradingHandler {
	return &TradingHandler{
		trading:    trading,
		settlement: settlement,
		now:        time.Now,
	}
}

// Deposit handles POST /api/v1/wallet/deposit.
func (h *TradingHandler) Deposit(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	var req dto.DepositRequest
	if !bind(c, &req) {
		return
	}

	wallet, err := h.trading.Deposit(c.Request.Context(), caller.ID, dto.ParseDecimal(req.Amount))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}

// OpenBinary handles POST /api/v1/binary.
func (h *TradingHandler) OpenBinary(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	var req dto.OpenBinaryRequest
	if !bind(c, &req) {
		return
	}

	trade, err := h.trading.OpenBinary(c.Request.Context(), ports.OpenBinaryRequest{
		AccountID: caller.ID,
		Symbol:    domain.NormalizeSymbol(req.Symbol),
		Direction: domain.Direction(req.Direction),
		Stake:     dto.ParseDecimal(req.Stake),
		ExpiresAt: req.Expiry(h.now()).UTC(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, trade)
}

// OpenTrade handles POST /api/v1/trades.
func (h *TradingHandler) OpenTrade(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	var req dto.OpenTradeRequest
	if !bind(c, &req) {
		return
	}

	trade, err := h.trading.OpenTrade(c.Request.Context(), ports.OpenTradeRequest{
		AccountID: caller.ID,
		Symbol:    domain.NormalizeSymbol(req.Symbol),
		Direction: domain.Direction(req.Direction),
		Amount:    dto.ParseDecimal(req.Amount),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, trade)
}

// CloseTrade handles POST /api/v1/trades/:id/close.
func (h *TradingHandler) CloseTrade(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	closure, err := h.settlement.CloseTrade(c.Request.Context(), id, caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, closure)
}
