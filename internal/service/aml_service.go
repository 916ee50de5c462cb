package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/metrics"
	"settlement-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	velocityWindow = time.Minute
	depositWindow  = 24 * time.Hour
	anomalyWindow  = time.Hour
	volumeWindow   = 24 * time.Hour

	defaultHistoryLimit = 50
	triggerTimeout      = 10 * time.Second
)

// AMLOptions holds rule thresholds and scan pacing.
type AMLOptions struct {
	VelocityThreshold   int64
	MaxDailyDeposits    decimal.Decimal
	MaxTradesPerHour    int64
	MaxDailyTradeVolume decimal.Decimal
	ScanBatch           int
	ScansPerSecond      float64
	ActivityWindow      time.Duration
}

// AMLServiceImpl implements ports.AMLService.
type AMLServiceImpl struct {
	activity    ports.ActivityRepository
	amlRepo     ports.AMLRepository
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	auditRepo   ports.AuditRepository
	transactor  ports.DBTransactor
	events      ports.EventBus
	notifier    ports.Notifier
	limiter     *rate.Limiter
	opts        AMLOptions
	now         func() time.Time
	log         zerolog.Logger

	wg sync.WaitGroup
}

func NewAMLService(
	activity ports.ActivityRepository,
	amlRepo ports.AMLRepository,
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	auditRepo ports.AuditRepository,
	transactor ports.DBTransactor,
	events ports.EventBus,
	notifier ports.Notifier,
	opts AMLOptions,
	log zerolog.Logger,
) *AMLServiceImpl {
	if opts.ScanBatch <= 0 {
		opts.ScanBatch = 200
	}
	if opts.ScansPerSecond <= 0 {
		opts.ScansPerSecond = 20
	}
	if opts.ActivityWindow <= 0 {
		opts.ActivityWindow = 24 * time.Hour
	}
	return &AMLServiceImpl{
		activity:    activity,
		amlRepo:     amlRepo,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		auditRepo:   auditRepo,
		transactor:  transactor,
		events:      events,
		notifier:    notifier,
		limiter:     rate.NewLimiter(rate.Limit(opts.ScansPerSecond), 1),
		opts:        opts,
		now:         time.Now,
		log:         log.With().Str("component", "aml").Logger(),
	}
}

// Trigger runs the checks for accountID in the background. The caller's
// request has usually finished by the time the run completes.
func (s *AMLServiceImpl) Trigger(accountID uuid.UUID) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
		defer cancel()
		if _, err := s.RunChecks(ctx, accountID); err != nil {
			s.log.Error().Err(err).Str("account_id", accountID.String()).Msg("triggered aml run failed")
		}
	}()
}

// Wait blocks until every triggered run has finished.
func (s *AMLServiceImpl) Wait() {
	s.wg.Wait()
}

// RunChecks evaluates every rule for accountID concurrently, persists the
// outcomes and freezes the account on a critical failure.
func (s *AMLServiceImpl) RunChecks(ctx context.Context, accountID uuid.UUID) (*domain.AMLReport, error) {
	now := s.now().UTC()
	checks := make([]domain.AMLCheck, 4)

	// Each goroutine owns exactly one slot of checks.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.activity.CountTransactionsSince(gctx, accountID, now.Add(-velocityWindow))
		if err != nil {
			return fmt.Errorf("velocity: %w", err)
		}
		checks[0] = s.evaluate(accountID, now, domain.AMLCheckVelocity,
			n > s.opts.VelocityThreshold, domain.AMLResultFail, domain.AMLSeverityCritical,
			domain.AMLMetadata{Observed: fmt.Sprint(n), Threshold: fmt.Sprint(s.opts.VelocityThreshold), Window: velocityWindow.String()})
		return nil
	})
	g.Go(func() error {
		sum, err := s.activity.SumDepositsSince(gctx, accountID, now.Add(-depositWindow))
		if err != nil {
			return fmt.Errorf("deposit volume: %w", err)
		}
		checks[1] = s.evaluate(accountID, now, domain.AMLCheckDepositVolume,
			sum.GreaterThan(s.opts.MaxDailyDeposits), domain.AMLResultReview, domain.AMLSeverityHigh,
			domain.AMLMetadata{Observed: sum.String(), Threshold: s.opts.MaxDailyDeposits.String(), Window: depositWindow.String()})
		return nil
	})
	g.Go(func() error {
		n, err := s.activity.CountTradesSince(gctx, accountID, now.Add(-anomalyWindow))
		if err != nil {
			return fmt.Errorf("trade anomaly: %w", err)
		}
		checks[2] = s.evaluate(accountID, now, domain.AMLCheckAnomaly,
			n > s.opts.MaxTradesPerHour, domain.AMLResultReview, domain.AMLSeverityMedium,
			domain.AMLMetadata{Observed: fmt.Sprint(n), Threshold: fmt.Sprint(s.opts.MaxTradesPerHour), Window: anomalyWindow.String()})
		return nil
	})
	g.Go(func() error {
		sum, err := s.activity.SumTradeVolumeSince(gctx, accountID, now.Add(-volumeWindow))
		if err != nil {
			return fmt.Errorf("trade volume: %w", err)
		}
		checks[3] = s.evaluate(accountID, now, domain.AMLCheckTradeVolume,
			sum.GreaterThan(s.opts.MaxDailyTradeVolume), domain.AMLResultReview, domain.AMLSeverityHigh,
			domain.AMLMetadata{Observed: sum.String(), Threshold: s.opts.MaxDailyTradeVolume.String(), Window: volumeWindow.String()})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("aml checks: %w", err))
	}

	report := domain.AggregateAML(accountID, checks)
	for _, c := range checks {
		metrics.AMLChecks.WithLabelValues(string(c.CheckType), string(c.Result)).Inc()
	}

	persistErr := s.amlRepo.CreateBatch(ctx, checks)
	if persistErr != nil {
		s.log.Error().Err(persistErr).Str("account_id", accountID.String()).Msg("persist aml checks failed")
	}

	// A critical failure freezes even when persisting the checks failed.
	if report.RequiresFreeze() {
		report.Frozen = s.freeze(ctx, accountID, report.FreezingCheck())
	}

	if report.OverallResult != domain.AMLResultPass {
		s.log.Warn().
			Str("account_id", accountID.String()).
			Str("result", string(report.OverallResult)).
			Str("severity", string(report.HighestSeverity)).
			Bool("frozen", report.Frozen).
			Msg("aml run flagged account")
	}

	if persistErr != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("persist aml checks: %w", persistErr))
	}
	return report, nil
}

func (s *AMLServiceImpl) evaluate(
	accountID uuid.UUID,
	now time.Time,
	checkType domain.AMLCheckType,
	breached bool,
	result domain.AMLResult,
	severity domain.AMLSeverity,
	meta domain.AMLMetadata,
) domain.AMLCheck {
	check := domain.AMLCheck{
		ID:        uuid.New(),
		AccountID: accountID,
		CheckType: checkType,
		Severity:  domain.AMLSeverityLow,
		Result:    domain.AMLResultPass,
		Metadata:  meta,
		CreatedAt: now,
	}
	if breached {
		check.Result = result
		check.Severity = severity
	}
	return check
}

// freeze sets the account FROZEN and locks its wallet in one transaction.
// Errors are logged, never returned: the check outcome stands regardless.
func (s *AMLServiceImpl) freeze(ctx context.Context, accountID uuid.UUID, check *domain.AMLCheck) bool {
	reason := fmt.Sprintf("AML %s check failed: %s > %s in %s",
		check.CheckType, check.Metadata.Observed, check.Metadata.Threshold, check.Metadata.Window)
	log := s.log.With().Str("account_id", accountID.String()).Str("check_id", check.ID.String()).Logger()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("freeze: begin tx failed")
		return false
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	changed, err := s.accountRepo.Freeze(ctx, dbTx, accountID)
	if err != nil {
		log.Error().Err(err).Msg("freeze: update account failed")
		return false
	}
	if !changed {
		log.Debug().Msg("account already frozen")
		return false
	}

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		log.Error().Err(err).Msg("freeze: lock wallet failed")
		return false
	}
	if wallet != nil {
		if err := s.walletRepo.SetLocked(ctx, dbTx, wallet.ID, true); err != nil {
			log.Error().Err(err).Msg("freeze: lock wallet failed")
			return false
		}
	}

	entry := domain.NewAuditEntry(domain.SystemActor, domain.AuditTargetAccount, accountID.String(),
		domain.UserFrozenAMLMeta{Reason: reason, CheckID: check.ID})
	if err := s.auditRepo.Append(ctx, dbTx, entry); err != nil {
		log.Error().Err(err).Msg("freeze: append audit failed")
		return false
	}

	if err := dbTx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("freeze: commit failed")
		return false
	}

	metrics.AccountsFrozen.Inc()
	log.Warn().Str("reason", reason).Msg("account frozen by aml")

	now := time.Now().UTC()
	scope := domain.AccountScope(accountID)
	if err := s.events.Publish(ctx, scope, domain.EventUserFrozen, domain.AccountFrozenPayload{
		AccountID: accountID, Reason: reason, Timestamp: now,
	}); err != nil {
		log.Warn().Err(err).Msg("freeze event publish failed")
	}
	if wallet != nil {
		if err := s.events.Publish(ctx, scope, domain.EventWalletLocked, map[string]any{
			"walletId": wallet.ID, "reason": reason, "timestamp": now,
		}); err != nil {
			log.Warn().Err(err).Msg("wallet lock event publish failed")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, accountID, domain.TemplateAccountFrozen, map[string]string{
			"reason":   reason,
			"check_id": check.ID.String(),
		}); err != nil {
			log.Warn().Err(err).Msg("freeze notification failed")
		}
	}
	return true
}

// ScanCycle re-checks recently active accounts, at most ScanBatch per cycle,
// paced by the scan limiter. Returns how many accounts were checked.
func (s *AMLServiceImpl) ScanCycle(ctx context.Context) (int, error) {
	since := s.now().Add(-s.opts.ActivityWindow)
	accounts, err := s.activity.ListActiveAccounts(ctx, since, s.opts.ScanBatch)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("list active accounts: %w", err))
	}

	scanned := 0
	for _, id := range accounts {
		if err := s.limiter.Wait(ctx); err != nil {
			return scanned, err
		}
		if _, err := s.RunChecks(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("account_id", id.String()).Msg("scan: aml run failed")
			continue
		}
		scanned++
	}

	s.log.Debug().Int("candidates", len(accounts)).Int("scanned", scanned).Msg("aml scan cycle done")
	return scanned, nil
}

func (s *AMLServiceImpl) History(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AMLCheck, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	checks, err := s.amlRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list aml checks: %w", err))
	}
	return checks, nil
}

func (s *AMLServiceImpl) Unresolved(ctx context.Context, limit int) ([]domain.AMLCheck, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	checks, err := s.amlRepo.ListUnresolved(ctx, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list unresolved aml checks: %w", err))
	}
	return checks, nil
}

// ResolveCheck records an admin review of a flagged check. It does not unfreeze.
func (s *AMLServiceImpl) ResolveCheck(ctx context.Context, checkID uuid.UUID, actor domain.Actor, notes string) error {
	if !actor.IsAdmin() {
		return apperror.ErrForbidden()
	}

	check, err := s.amlRepo.GetByID(ctx, checkID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("get aml check: %w", err))
	}
	if check == nil {
		return apperror.ErrNotFound("AML check")
	}
	if check.IsResolved() {
		return apperror.ErrInvalidState("AML check already resolved")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.amlRepo.Resolve(ctx, dbTx, checkID, actor.ID, notes)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("resolve aml check: %w", err))
	}
	if !ok {
		return apperror.ErrInvalidState("AML check already resolved")
	}

	entry := domain.NewAuditEntry(actor, domain.AuditTargetAMLCheck, checkID.String(),
		domain.AMLResolvedMeta{CheckID: checkID, Notes: notes})
	if err := s.auditRepo.Append(ctx, dbTx, entry); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("append audit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("check_id", checkID.String()).
		Str("resolved_by", actor.ID.String()).
		Msg("aml check resolved")
	return nil
}
