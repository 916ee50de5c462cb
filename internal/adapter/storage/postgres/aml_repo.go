package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const amlCheckColumns = `id, account_id, check_type, severity, result, metadata,
		resolved_by, resolved_at, notes, created_at`

// AMLRepo implements ports.AMLRepository.
type AMLRepo struct {
	pool Pool
}

// NewAMLRepo creates a new AMLRepo.
func NewAMLRepo(pool Pool) *AMLRepo {
	return &AMLRepo{pool: pool}
}

func scanAMLCheck(row rowScanner) (*domain.AMLCheck, error) {
	c := &domain.AMLCheck{}
	var raw []byte
	err := row.Scan(
		&c.ID, &c.AccountID, &c.CheckType, &c.Severity, &c.Result, &raw,
		&c.ResolvedBy, &c.ResolvedAt, &c.Notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode aml metadata: %w", err)
		}
	}
	return c, nil
}

// CreateBatch persists all checks of one run atomically.
func (r *AMLRepo) CreateBatch(ctx context.Context, checks []domain.AMLCheck) error {
	if len(checks) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin aml batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `INSERT INTO aml_checks (id, account_id, check_type, severity, result, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, c := range checks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal aml metadata: %w", err)
		}
		if _, err := tx.Exec(ctx, query, c.ID, c.AccountID, c.CheckType, c.Severity, c.Result, meta, c.CreatedAt); err != nil {
			return fmt.Errorf("insert aml check: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit aml batch: %w", err)
	}
	return nil
}

// GetByID fetches a single check.
func (r *AMLRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AMLCheck, error) {
	query := `SELECT ` + amlCheckColumns + ` FROM aml_checks WHERE id = $1`

	c, err := scanAMLCheck(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get aml check: %w", err)
	}
	return c, nil
}

// ListByAccount returns an account's newest checks.
func (r *AMLRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AMLCheck, error) {
	query := `SELECT ` + amlCheckColumns + ` FROM aml_checks
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

// ListUnresolved returns FAIL/REVIEW checks awaiting admin review, oldest first.
func (r *AMLRepo) ListUnresolved(ctx context.Context, limit int) ([]domain.AMLCheck, error) {
	query := `SELECT ` + amlCheckColumns + ` FROM aml_checks
		WHERE resolved_at IS NULL AND result IN ($1, $2)
		ORDER BY created_at ASC LIMIT $3`
	return r.list(ctx, query, domain.AMLResultFail, domain.AMLResultReview, limit)
}

func (r *AMLRepo) list(ctx context.Context, query string, args ...any) ([]domain.AMLCheck, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list aml checks: %w", err)
	}
	defer rows.Close()

	var checks []domain.AMLCheck
	for rows.Next() {
		c, err := scanAMLCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan aml check: %w", err)
		}
		checks = append(checks, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aml checks: %w", err)
	}
	return checks, nil
}

// Resolve records an admin review. Returns false if the check was already resolved.
func (r *AMLRepo) Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, resolvedBy uuid.UUID, notes string) (bool, error) {
	query := `UPDATE aml_checks SET resolved_by = $1, resolved_at = NOW(), notes = $2
		WHERE id = $3 AND resolved_at IS NULL`

	tag, err := tx.Exec(ctx, query, resolvedBy, notes, id)
	if err != nil {
		return false, fmt.Errorf("resolve aml check: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
