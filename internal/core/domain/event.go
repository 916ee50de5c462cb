package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventName identifies a domain event delivered to clients.
type EventName string

const (
	EventPriceUpdate      EventName = "PRICE_UPDATE"
	EventTradeOpened      EventName = "TRADE_OPENED"
	EventTradeClosed      EventName = "TRADE_CLOSED"
	EventTradeForceClosed EventName = "TRADE_FORCE_CLOSED"
	EventBinaryOpened     EventName = "BINARY_OPENED"
	EventBinaryResolved   EventName = "BINARY_RESOLVED"
	EventBalanceUpdated   EventName = "BALANCE_UPDATED"
	EventWalletLocked     EventName = "WALLET_LOCKED"
	EventWalletUnlocked   EventName = "WALLET_UNLOCKED"
	EventUserFrozen       EventName = "USER_FROZEN"
	EventUserUnfrozen     EventName = "USER_UNFROZEN"
	EventAdminAction      EventName = "ADMIN_ACTION"
	EventSystemAlert      EventName = "SYSTEM_ALERT"
)

// Scope selects who receives an event: one account or everybody.
type Scope struct {
	AccountID uuid.UUID
}

// BroadcastScope delivers to all subscribers.
var BroadcastScope = Scope{}

// AccountScope delivers only to the owner of accountID.
func AccountScope(accountID uuid.UUID) Scope {
	return Scope{AccountID: accountID}
}

// IsBroadcast returns true when no account is selected.
func (s Scope) IsBroadcast() bool {
	return s.AccountID == uuid.Nil
}

// Event is the envelope published on the bus.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Name       EventName `json:"event"`
	AccountID  *string   `json:"account_id,omitempty"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type BinaryOpenedPayload struct {
	TradeID    uuid.UUID       `json:"tradeId"`
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	Stake      decimal.Decimal `json:"stake"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExpiresAt  time.Time       `json:"expiresAt"`
}

type BinaryResolvedPayload struct {
	TradeID    uuid.UUID       `json:"tradeId"`
	Result     Result          `json:"result"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Payout     decimal.Decimal `json:"payout"`
	Timestamp  time.Time       `json:"timestamp"`
}

type TradePayload struct {
	TradeID    uuid.UUID        `json:"tradeId"`
	Symbol     string           `json:"symbol"`
	Direction  Direction        `json:"direction"`
	Amount     decimal.Decimal  `json:"amount"`
	EntryPrice decimal.Decimal  `json:"entryPrice"`
	ExitPrice  *decimal.Decimal `json:"exitPrice,omitempty"`
	PnL        *decimal.Decimal `json:"pnl,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

type BalanceUpdatedPayload struct {
	AccountID  uuid.UUID       `json:"userId"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Change     decimal.Decimal `json:"change"`
	Reason     string          `json:"reason"`
	Timestamp  time.Time       `json:"timestamp"`
}

type AccountFrozenPayload struct {
	AccountID uuid.UUID `json:"userId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type PriceUpdatePayload struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// Balance change reasons carried by BALANCE_UPDATED.
const (
	ReasonBinaryStake  = "BINARY_STAKE"
	ReasonBinaryPayout = "BINARY_PAYOUT"
	ReasonTradePnL     = "TRADE_PNL"
	ReasonForceClose   = "FORCE_CLOSE"
	ReasonDeposit      = "DEPOSIT"
)

// Notification templates sent through the dispatcher.
const (
	TemplateAccountFrozen  = "account-frozen"
	TemplateBinaryResolved = "binary-resolved"
	TemplateTradeClosed    = "trade-closed"
)
