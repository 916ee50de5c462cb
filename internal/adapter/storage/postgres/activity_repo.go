package postgres

import (
	"context"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityRepo implements ports.ActivityRepository over the ledger tables.
type ActivityRepo struct {
	pool Pool
}

// NewActivityRepo creates a new ActivityRepo.
func NewActivityRepo(pool Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

// CountTransactionsSince counts ledger rows for an account.
func (r *ActivityRepo) CountTransactionsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND created_at >= $2`

	var n int64
	if err := r.pool.QueryRow(ctx, query, accountID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// SumDepositsSince totals deposits for an account.
func (r *ActivityRepo) SumDepositsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE account_id = $1 AND type = $2 AND created_at >= $3`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, accountID, domain.TransactionTypeDeposit, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum deposits: %w", err)
	}
	return sum, nil
}

// CountTradesSince counts binary and margin contracts opened by an account.
func (r *ActivityRepo) CountTradesSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM trades WHERE account_id = $1 AND opened_at >= $2) +
		(SELECT COUNT(*) FROM binary_trades WHERE account_id = $1 AND created_at >= $2)`

	var n int64
	if err := r.pool.QueryRow(ctx, query, accountID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return n, nil
}

// SumTradeVolumeSince totals margin notional and binary stakes.
func (r *ActivityRepo) SumTradeVolumeSince(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	query := `SELECT
		COALESCE((SELECT SUM(amount * entry_price) FROM trades WHERE account_id = $1 AND opened_at >= $2), 0) +
		COALESCE((SELECT SUM(stake) FROM binary_trades WHERE account_id = $1 AND created_at >= $2), 0)`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, accountID, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum trade volume: %w", err)
	}
	return sum, nil
}

// ListActiveAccounts returns ACTIVE accounts with ledger activity since the cutoff.
func (r *ActivityRepo) ListActiveAccounts(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT t.account_id FROM transactions t
		JOIN users u ON u.id = t.account_id
		WHERE t.created_at >= $1 AND u.status = $2
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, since, domain.AccountStatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active accounts: %w", err)
	}
	return ids, nil
}
