package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts travel as strings so no precision is lost in JSON numbers.

// DepositRequest is the request body for crediting the caller's wallet.
type DepositRequest struct {
	Amount string `json:"amount" binding:"required,decimal_positive"`
}

// OpenBinaryRequest is the request body for a new binary option. Either
// expires_at or duration_seconds must be set.
type OpenBinaryRequest struct {
	Symbol          string     `json:"symbol" binding:"required,symbol"`
	Direction       string     `json:"direction" binding:"required,oneof=UP DOWN"`
	Stake           string     `json:"stake" binding:"required,decimal_positive"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" binding:"required_without=DurationSeconds"`
	DurationSeconds int        `json:"duration_seconds,omitempty" binding:"omitempty,min=1,max=86400"`
}

// Expiry resolves the absolute expiry relative to now.
func (r OpenBinaryRequest) Expiry(now time.Time) time.Time {
	if r.DurationSeconds > 0 {
		return now.Add(time.Duration(r.DurationSeconds) * time.Second)
	}
	return *r.ExpiresAt
}

// OpenTradeRequest is the request body for a new margin trade.
type OpenTradeRequest struct {
	Symbol    string `json:"symbol" binding:"required,symbol"`
	Direction string `json:"direction" binding:"required,oneof=LONG SHORT"`
	Amount    string `json:"amount" binding:"required,decimal_positive"`
}

// ForceCloseRequest carries the admin's reason for closing a trade.
type ForceCloseRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// ResolveCheckRequest carries the compliance reviewer's notes.
type ResolveCheckRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// PayoutRateRequest sets the binary payout rate.
type PayoutRateRequest struct {
	Rate string `json:"rate" binding:"required,decimal"`
}

// PayoutRateResponse reports the payout rate in force.
type PayoutRateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

// CancelScheduleResponse reports whether a pending resolution job was removed.
type CancelScheduleResponse struct {
	ContractID string `json:"contract_id"`
	Removed    bool   `json:"removed"`
}

// ListQuery bounds list endpoints.
type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// PriceResponse is one cached observation with its freshness.
type PriceResponse struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
	Freshness  string          `json:"freshness"`
}

// PriceListResponse lists every cached symbol.
type PriceListResponse struct {
	Prices     []PriceResponse `json:"prices"`
	Total      int             `json:"total"`
	StaleCount int             `json:"stale_count"`
}
