package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const binaryTradeColumns = `id, account_id, symbol, direction, stake, entry_price, exit_price,
		result, payout, status, expires_at, created_at, resolved_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// BinaryTradeRepo implements ports.BinaryTradeRepository.
type BinaryTradeRepo struct {
	pool Pool
}

// NewBinaryTradeRepo creates a new BinaryTradeRepo.
func NewBinaryTradeRepo(pool Pool) *BinaryTradeRepo {
	return &BinaryTradeRepo{pool: pool}
}

func scanBinaryTrade(row rowScanner) (*domain.BinaryTrade, error) {
	b := &domain.BinaryTrade{}
	err := row.Scan(
		&b.ID, &b.AccountID, &b.Symbol, &b.Direction, &b.Stake, &b.EntryPrice, &b.ExitPrice,
		&b.Result, &b.Payout, &b.Status, &b.ExpiresAt, &b.CreatedAt, &b.ResolvedAt,
	)
	return b, err
}

// Create inserts a new OPEN binary trade within a transaction.
func (r *BinaryTradeRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.BinaryTrade) error {
	query := `INSERT INTO binary_trades (id, account_id, symbol, direction, stake, entry_price, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		b.ID, b.AccountID, b.Symbol, b.Direction, b.Stake, b.EntryPrice,
		b.Status, b.ExpiresAt, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert binary trade: %w", err)
	}
	return nil
}

// GetByID fetches a binary trade (non-locking read).
func (r *BinaryTradeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BinaryTrade, error) {
	query := `SELECT ` + binaryTradeColumns + ` FROM binary_trades WHERE id = $1`

	b, err := scanBinaryTrade(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get binary trade by id: %w", err)
	}
	return b, nil
}

// GetByIDForUpdate fetches a binary trade with pessimistic locking.
// This MUST be called within a transaction.
func (r *BinaryTradeRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BinaryTrade, error) {
	query := `SELECT ` + binaryTradeColumns + ` FROM binary_trades WHERE id = $1 FOR UPDATE`

	b, err := scanBinaryTrade(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get binary trade for update: %w", err)
	}
	return b, nil
}

// MarkPending moves an OPEN trade to PENDING_RESOLUTION. Other statuses are untouched.
func (r *BinaryTradeRepo) MarkPending(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE binary_trades SET status = $1 WHERE id = $2 AND status = $3`

	_, err := r.pool.Exec(ctx, query, domain.ContractStatusPendingResolution, id, domain.ContractStatusOpen)
	if err != nil {
		return fmt.Errorf("mark binary trade pending: %w", err)
	}
	return nil
}

// MarkResolved writes exit price, result and payout. The WHERE clause keeps
// the terminal transition single-shot: false means another writer got there first.
func (r *BinaryTradeRepo) MarkResolved(ctx context.Context, tx pgx.Tx, b *domain.BinaryTrade) (bool, error) {
	query := `UPDATE binary_trades
		SET exit_price = $1, result = $2, payout = $3, status = $4, resolved_at = $5
		WHERE id = $6 AND result IS NULL AND status IN ($7, $8)`

	tag, err := tx.Exec(ctx, query,
		b.ExitPrice, b.Result, b.Payout, domain.ContractStatusResolved, b.ResolvedAt,
		b.ID, domain.ContractStatusOpen, domain.ContractStatusPendingResolution,
	)
	if err != nil {
		return false, fmt.Errorf("mark binary trade resolved: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListExpiredUnresolved returns contracts past expiry with a null result, oldest first.
func (r *BinaryTradeRepo) ListExpiredUnresolved(ctx context.Context, now time.Time, limit int) ([]domain.BinaryTrade, error) {
	query := `SELECT ` + binaryTradeColumns + ` FROM binary_trades
		WHERE expires_at <= $1 AND result IS NULL AND status IN ($2, $3)
		ORDER BY expires_at ASC LIMIT $4`

	rows, err := r.pool.Query(ctx, query, now, domain.ContractStatusOpen, domain.ContractStatusPendingResolution, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired binary trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.BinaryTrade
	for rows.Next() {
		b, err := scanBinaryTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan binary trade: %w", err)
		}
		trades = append(trades, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate binary trades: %w", err)
	}
	return trades, nil
}
