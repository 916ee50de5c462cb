package postgres

import (
	"context"
	"errors"
	"fmt"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const marginTradeColumns = `id, account_id, symbol, direction, amount, entry_price, exit_price,
		pnl, status, close_reason, opened_at, closed_at`

// MarginTradeRepo implements ports.MarginTradeRepository.
type MarginTradeRepo struct {
	pool Pool
}

// NewMarginTradeRepo creates a new MarginTradeRepo.
func NewMarginTradeRepo(pool Pool) *MarginTradeRepo {
	return &MarginTradeRepo{pool: pool}
}

func scanMarginTrade(row rowScanner) (*domain.MarginTrade, error) {
	m := &domain.MarginTrade{}
	err := row.Scan(
		&m.ID, &m.AccountID, &m.Symbol, &m.Direction, &m.Amount, &m.EntryPrice, &m.ExitPrice,
		&m.PnL, &m.Status, &m.CloseReason, &m.OpenedAt, &m.ClosedAt,
	)
	return m, err
}

// Create inserts a new OPEN margin trade within a transaction.
func (r *MarginTradeRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.MarginTrade) error {
	query := `INSERT INTO trades (id, account_id, symbol, direction, amount, entry_price, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		m.ID, m.AccountID, m.Symbol, m.Direction, m.Amount, m.EntryPrice, m.Status, m.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByID fetches a margin trade (non-locking read).
func (r *MarginTradeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MarginTrade, error) {
	query := `SELECT ` + marginTradeColumns + ` FROM trades WHERE id = $1`

	m, err := scanMarginTrade(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return m, nil
}

// GetByIDForUpdate fetches a margin trade with pessimistic locking.
// This MUST be called within a transaction.
func (r *MarginTradeRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.MarginTrade, error) {
	query := `SELECT ` + marginTradeColumns + ` FROM trades WHERE id = $1 FOR UPDATE`

	m, err := scanMarginTrade(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trade for update: %w", err)
	}
	return m, nil
}

// Close writes the exit, pnl and terminal status. Returns false if the trade
// was already terminal.
func (r *MarginTradeRepo) Close(ctx context.Context, tx pgx.Tx, m *domain.MarginTrade) (bool, error) {
	query := `UPDATE trades
		SET exit_price = $1, pnl = $2, status = $3, close_reason = $4, closed_at = $5
		WHERE id = $6 AND status IN ($7, $8)`

	tag, err := tx.Exec(ctx, query,
		m.ExitPrice, m.PnL, m.Status, m.CloseReason, m.ClosedAt,
		m.ID, domain.ContractStatusOpen, domain.ContractStatusPendingResolution,
	)
	if err != nil {
		return false, fmt.Errorf("close trade: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
