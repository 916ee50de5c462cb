package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of wallet movement.
type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "DEPOSIT"
	TransactionTypeBinaryStake  TransactionType = "BINARY_STAKE"
	TransactionTypeBinaryPayout TransactionType = "BINARY_PAYOUT"
	TransactionTypeTradePnL     TransactionType = "TRADE_PNL"
)

// Transaction is an immutable ledger row written alongside every balance change.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	WalletID     uuid.UUID       `json:"wallet_id"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"` // signed; debits are negative
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ReferenceID  *uuid.UUID      `json:"reference_id,omitempty"` // contract that caused it
	CreatedAt    time.Time       `json:"created_at"`
}

// NewTransaction builds a ledger row for a balance change on w.
func NewTransaction(w *Wallet, typ TransactionType, amount decimal.Decimal, ref *uuid.UUID) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    w.AccountID,
		WalletID:     w.ID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: w.Balance,
		ReferenceID:  ref,
		CreatedAt:    time.Now().UTC(),
	}
}
