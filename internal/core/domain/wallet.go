package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds an account's trading balance. One wallet per account.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Locked    bool            `json:"locked"` // blocks new contracts and withdrawals, not payouts
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanDebit reports whether a user-initiated debit of amount is allowed.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return !w.Locked && w.Balance.GreaterThanOrEqual(amount)
}
