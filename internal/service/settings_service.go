package service

import (
	"context"
	"fmt"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const payoutRateKey = "binary_payout_rate"

// SettingsServiceImpl implements ports.SettingsService.
type SettingsServiceImpl struct {
	store       ports.SettingsStore
	audit       ports.AuditService
	defaultRate decimal.Decimal
	minRate     decimal.Decimal
	maxRate     decimal.Decimal
	log         zerolog.Logger
}

func NewSettingsService(
	store ports.SettingsStore,
	audit ports.AuditService,
	defaultRate, minRate, maxRate float64,
	log zerolog.Logger,
) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		store:       store,
		audit:       audit,
		defaultRate: decimal.NewFromFloat(defaultRate),
		minRate:     decimal.NewFromFloat(minRate),
		maxRate:     decimal.NewFromFloat(maxRate),
		log:         log.With().Str("component", "settings").Logger(),
	}
}

// PayoutRate returns the stored rate, or the configured default when unset.
func (s *SettingsServiceImpl) PayoutRate(ctx context.Context) (decimal.Decimal, error) {
	rate, ok, err := s.store.GetPayoutRate(ctx)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("read payout rate: %w", err))
	}
	if !ok {
		return s.defaultRate, nil
	}
	return rate, nil
}

// SetPayoutRate updates the binary payout rate. MASTER only.
func (s *SettingsServiceImpl) SetPayoutRate(ctx context.Context, rate decimal.Decimal, actor domain.Actor) error {
	if actor.Role != domain.RoleMaster {
		return apperror.ErrForbidden()
	}
	if rate.LessThan(s.minRate) || rate.GreaterThan(s.maxRate) {
		return apperror.ErrPayoutRateOutOfRange(s.minRate.String(), s.maxRate.String())
	}

	old, err := s.PayoutRate(ctx)
	if err != nil {
		return err
	}
	if err := s.store.SetPayoutRate(ctx, rate); err != nil {
		return apperror.InternalError(fmt.Errorf("store payout rate: %w", err))
	}

	s.log.Info().
		Str("actor_id", actor.ID.String()).
		Str("old", old.String()).
		Str("new", rate.String()).
		Msg("payout rate updated")

	s.audit.Record(ctx, domain.NewAuditEntry(actor, domain.AuditTargetSettings, payoutRateKey, domain.SettingsUpdatedMeta{
		Key:      payoutRateKey,
		OldValue: old.String(),
		NewValue: rate.String(),
	}))
	return nil
}
