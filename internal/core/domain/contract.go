package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a binary option or margin trade.
type ContractStatus string

const (
	ContractStatusOpen              ContractStatus = "OPEN"
	ContractStatusPendingResolution ContractStatus = "PENDING_RESOLUTION"
	ContractStatusResolved          ContractStatus = "RESOLVED"
	ContractStatusForceClosed       ContractStatus = "FORCE_CLOSED"
)

// IsTerminal returns true once the contract's financial effect has been applied.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusResolved || s == ContractStatusForceClosed
}

// CanTransitionTo enforces monotonic status progression.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	switch s {
	case ContractStatusOpen:
		return next == ContractStatusPendingResolution || next.IsTerminal()
	case ContractStatusPendingResolution:
		return next.IsTerminal()
	default:
		return false
	}
}

// Direction is the side a contract bets on.
type Direction string

const (
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// IsBinary returns true for UP/DOWN.
func (d Direction) IsBinary() bool {
	return d == DirectionUp || d == DirectionDown
}

// IsMargin returns true for LONG/SHORT.
func (d Direction) IsMargin() bool {
	return d == DirectionLong || d == DirectionShort
}

// Result is the outcome of a resolved binary option.
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
)

// BinaryTrade is a time-boxed UP/DOWN contract settled at ExpiresAt.
type BinaryTrade struct {
	ID         uuid.UUID        `json:"id"`
	AccountID  uuid.UUID        `json:"account_id"`
	Symbol     string           `json:"symbol"`
	Direction  Direction        `json:"direction"`
	Stake      decimal.Decimal  `json:"stake"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	ExitPrice  *decimal.Decimal `json:"exit_price,omitempty"`
	Result     *Result          `json:"result,omitempty"`
	Payout     *decimal.Decimal `json:"payout,omitempty"`
	Status     ContractStatus   `json:"status"`
	ExpiresAt  time.Time        `json:"expires_at"`
	CreatedAt  time.Time        `json:"created_at"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
}

// IsResolved reports whether the contract can no longer be settled.
func (b *BinaryTrade) IsResolved() bool {
	return b.Status.IsTerminal() || b.Result != nil
}

// LockKey is the distributed lock resource for this contract.
func (b *BinaryTrade) LockKey() string {
	return BinaryLockKey(b.ID)
}

// MarginTrade is an open-ended LONG/SHORT position closed manually or by an admin.
type MarginTrade struct {
	ID          uuid.UUID        `json:"id"`
	AccountID   uuid.UUID        `json:"account_id"`
	Symbol      string           `json:"symbol"`
	Direction   Direction        `json:"direction"`
	Amount      decimal.Decimal  `json:"amount"`
	EntryPrice  decimal.Decimal  `json:"entry_price"`
	ExitPrice   *decimal.Decimal `json:"exit_price,omitempty"`
	PnL         *decimal.Decimal `json:"pnl,omitempty"`
	Status      ContractStatus   `json:"status"`
	CloseReason *string          `json:"close_reason,omitempty"`
	OpenedAt    time.Time        `json:"opened_at"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty"`
}

// LockKey is the distributed lock resource for this trade.
func (m *MarginTrade) LockKey() string {
	return TradeLockKey(m.ID)
}

// BinaryLockKey builds the lock resource key for a binary contract.
func BinaryLockKey(id uuid.UUID) string {
	return "binary:" + id.String()
}

// TradeLockKey builds the lock resource key for a margin trade.
func TradeLockKey(id uuid.UUID) string {
	return "trade:" + id.String()
}

// EvaluateBinary decides a binary outcome. exit == entry is a LOSS.
func EvaluateBinary(direction Direction, entry, exit decimal.Decimal) Result {
	switch {
	case direction == DirectionUp && exit.GreaterThan(entry):
		return ResultWin
	case direction == DirectionDown && exit.LessThan(entry):
		return ResultWin
	default:
		return ResultLoss
	}
}

// BinaryPayout returns stake * (1 + rate) on WIN and zero otherwise.
func BinaryPayout(stake, rate decimal.Decimal, result Result) decimal.Decimal {
	if result != ResultWin {
		return decimal.Zero
	}
	return stake.Mul(decimal.NewFromInt(1).Add(rate))
}

// MarginPnL returns the signed profit of a margin position closed at exit.
func MarginPnL(direction Direction, entry, exit, amount decimal.Decimal) decimal.Decimal {
	if direction == DirectionShort {
		return entry.Sub(exit).Mul(amount)
	}
	return exit.Sub(entry).Mul(amount)
}

// BinaryResolution is what ResolveBinary reports to its caller.
type BinaryResolution struct {
	ContractID uuid.UUID       `json:"contract_id"`
	Result     Result          `json:"result"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	Payout     decimal.Decimal `json:"payout"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// TradeClosure is what CloseTrade/ForceCloseTrade report to their caller.
type TradeClosure struct {
	TradeID    uuid.UUID       `json:"trade_id"`
	Status     ContractStatus  `json:"status"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	PnL        decimal.Decimal `json:"pnl"`
	NewBalance decimal.Decimal `json:"new_balance"`
}
