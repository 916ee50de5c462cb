package service

import (
	"context"
	"fmt"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/pkg/apperror"

	"github.com/rs/zerolog"
)

const defaultTrailLimit = 100

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, entries are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log.With().Str("component", "audit").Logger()}
}

// Record writes an entry that is not part of a ledger transaction, asynchronously (fire-and-forget).
func (s *auditService) Record(ctx context.Context, entry *domain.AuditEntry) {
	if err := entry.Validate(); err != nil {
		s.log.Error().Err(err).Str("action", string(entry.Action)).Msg("rejected audit entry")
		return
	}
	go func() {
		s.log.Info().
			Str("action", string(entry.Action)).
			Str("target_type", string(entry.TargetType)).
			Str("target_id", entry.TargetID).
			Str("actor_role", string(entry.ActorRole)).
			Msg("audit")

		if s.repo != nil {
			if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
				s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit entry")
			}
		}
	}()
}

// Trail returns the newest entries for one target.
func (s *auditService) Trail(ctx context.Context, targetType domain.AuditTarget, targetID string, limit int) ([]domain.AuditEntry, error) {
	if targetID == "" {
		return nil, apperror.Validation("Target id is required")
	}
	if limit <= 0 || limit > 500 {
		limit = defaultTrailLimit
	}
	if s.repo == nil {
		return []domain.AuditEntry{}, nil
	}
	entries, err := s.repo.ListByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list audit trail: %w", err))
	}
	return entries, nil
}
