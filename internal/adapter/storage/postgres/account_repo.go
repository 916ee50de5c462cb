package postgres

import (
	"context"
	"errors"
	"fmt"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// GetByID fetches an account by its UUID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, email, role, status, created_at, updated_at FROM users WHERE id = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Email, &a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// Freeze flips the account to FROZEN. The status guard makes concurrent
// freezes collapse into one: only the first caller sees changed=true.
func (r *AccountRepo) Freeze(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`

	tag, err := tx.Exec(ctx, query, domain.AccountStatusFrozen, id)
	if err != nil {
		return false, fmt.Errorf("freeze account: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
