package postgres

import (
	"context"
	"errors"
	"fmt"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, account_id, balance, locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, w.ID, w.AccountID, w.Balance, w.Locked, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAccountID fetches the wallet owned by an account (non-locking read).
func (r *WalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, account_id, balance, locked, created_at, updated_at
		FROM wallets WHERE account_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&w.ID, &w.AccountID, &w.Balance, &w.Locked, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by account id: %w", err)
	}
	return w, nil
}

// GetByAccountIDForUpdate fetches a wallet with pessimistic locking.
// Concurrent settlements into the same wallet serialize on this row lock.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, account_id, balance, locked, created_at, updated_at
		FROM wallets WHERE account_id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, accountID).Scan(
		&w.ID, &w.AccountID, &w.Balance, &w.Locked, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update by account: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// SetLocked toggles the withdrawal/new-contract lock within a transaction.
func (r *WalletRepo) SetLocked(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, locked bool) error {
	query := `UPDATE wallets SET locked = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, locked, walletID)
	if err != nil {
		return fmt.Errorf("set wallet locked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
