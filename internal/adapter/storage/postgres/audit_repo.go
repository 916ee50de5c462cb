package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"settlement-core/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AuditRepo implements ports.AuditRepository. Entries are never updated.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const insertAuditQuery = `INSERT INTO audit_logs (id, actor_id, actor_role, action, target_type, target_id, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertAudit(ctx context.Context, db execer, e *domain.AuditEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = db.Exec(ctx, insertAuditQuery,
		e.ID, e.ActorID, e.ActorRole, e.Action, e.TargetType, e.TargetID, meta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Append writes the entry inside the caller's ledger transaction.
func (r *AuditRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.AuditEntry) error {
	return insertAudit(ctx, tx, e)
}

// Create writes the entry on its own.
func (r *AuditRepo) Create(ctx context.Context, e *domain.AuditEntry) error {
	return insertAudit(ctx, r.pool, e)
}

// ListByTarget returns the newest entries for one target.
func (r *AuditRepo) ListByTarget(ctx context.Context, targetType domain.AuditTarget, targetID string, limit int) ([]domain.AuditEntry, error) {
	query := `SELECT id, actor_id, actor_role, action, target_type, target_id, metadata, created_at
		FROM audit_logs WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at DESC LIMIT $3`

	rows, err := r.pool.Query(ctx, query, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e   domain.AuditEntry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.TargetType, &e.TargetID, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Metadata, err = domain.DecodeAuditMetadata(e.Action, raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return entries, nil
}
