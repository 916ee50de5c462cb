package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/metrics"
	"settlement-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const releaseTimeout = 2 * time.Second

// SettlementOptions tunes the settlement engine.
type SettlementOptions struct {
	LockTTL time.Duration
	// RequireFreshPrice turns a stale exit price into a retryable error
	// instead of settling on it.
	RequireFreshPrice bool
}

// SettlementServiceImpl implements ports.SettlementService.
type SettlementServiceImpl struct {
	binaryRepo ports.BinaryTradeRepository
	tradeRepo  ports.MarginTradeRepository
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	auditRepo  ports.AuditRepository
	transactor ports.DBTransactor
	lock       ports.DistributedLock
	prices     ports.PriceCache
	rates      ports.PayoutRateProvider
	events     ports.EventBus
	notifier   ports.Notifier
	opts       SettlementOptions
	log        zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	binaryRepo ports.BinaryTradeRepository,
	tradeRepo ports.MarginTradeRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	auditRepo ports.AuditRepository,
	transactor ports.DBTransactor,
	lock ports.DistributedLock,
	prices ports.PriceCache,
	rates ports.PayoutRateProvider,
	events ports.EventBus,
	notifier ports.Notifier,
	opts SettlementOptions,
	log zerolog.Logger,
) *SettlementServiceImpl {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	return &SettlementServiceImpl{
		binaryRepo: binaryRepo,
		tradeRepo:  tradeRepo,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		auditRepo:  auditRepo,
		transactor: transactor,
		lock:       lock,
		prices:     prices,
		rates:      rates,
		events:     events,
		notifier:   notifier,
		opts:       opts,
		log:        log.With().Str("component", "settlement").Logger(),
	}
}

// ResolveBinary settles an expired binary option exactly once.
func (s *SettlementServiceImpl) ResolveBinary(ctx context.Context, contractID uuid.UUID) (*domain.BinaryResolution, error) {
	trade, err := s.binaryRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get binary trade: %w", err))
	}
	if trade == nil {
		return nil, apperror.ErrContractNotFound("binary contract")
	}
	if trade.IsResolved() {
		return nil, apperror.ErrAlreadyResolved()
	}

	release, err := s.acquire(ctx, trade.LockKey())
	if err != nil {
		return nil, err
	}
	defer release()
	start := time.Now()

	if err := s.binaryRepo.MarkPending(ctx, contractID); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("mark pending: %w", err))
	}

	exit, err := s.exitPrice(trade.Symbol)
	if err != nil {
		return nil, err
	}

	// Read once so the rate applied and the rate audited are the same value.
	rate, err := s.rates.PayoutRate(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.EvaluateBinary(trade.Direction, trade.EntryPrice, exit)
	payout := domain.BinaryPayout(trade.Stake, rate, result)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Re-read under the row lock: another holder may have settled between
	// our first read and the lock acquire.
	locked, err := s.binaryRepo.GetByIDForUpdate(ctx, dbTx, contractID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock binary trade: %w", err))
	}
	if locked == nil {
		return nil, apperror.ErrContractNotFound("binary contract")
	}
	if locked.IsResolved() {
		return nil, apperror.ErrAlreadyResolved()
	}

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, locked.AccountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if payout.IsPositive() {
		wallet.Balance = wallet.Balance.Add(payout)
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("credit payout: %w", err))
		}
		ref := locked.ID
		if err := s.txRepo.Create(ctx, dbTx, domain.NewTransaction(wallet, domain.TransactionTypeBinaryPayout, payout, &ref)); err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("record payout: %w", err))
		}
	}

	now := time.Now().UTC()
	locked.ExitPrice = &exit
	locked.Result = &result
	locked.Payout = &payout
	locked.Status = domain.ContractStatusResolved
	locked.ResolvedAt = &now

	changed, err := s.binaryRepo.MarkResolved(ctx, dbTx, locked)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("mark resolved: %w", err))
	}
	if !changed {
		return nil, apperror.ErrAlreadyResolved()
	}

	entry := domain.NewAuditEntry(domain.SystemActor, domain.AuditTargetBinaryTrade, locked.ID.String(), domain.BinaryResolvedMeta{
		AccountID:    locked.AccountID,
		Symbol:       locked.Symbol,
		Direction:    locked.Direction,
		EntryPrice:   locked.EntryPrice,
		ExitPrice:    exit,
		Result:       result,
		Payout:       payout,
		PayoutRate:   rate,
		WalletLocked: wallet.Locked,
	})
	if err := s.auditRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("append audit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.SettlementsTotal.WithLabelValues("binary", string(result)).Inc()
	metrics.SettlementDuration.WithLabelValues("binary").Observe(time.Since(start).Seconds())

	s.log.Info().
		Str("contract_id", locked.ID.String()).
		Str("account_id", locked.AccountID.String()).
		Str("result", string(result)).
		Str("exit", exit.String()).
		Str("payout", payout.String()).
		Msg("binary contract resolved")

	scope := domain.AccountScope(locked.AccountID)
	s.publish(ctx, scope, domain.EventBinaryResolved, domain.BinaryResolvedPayload{
		TradeID:    locked.ID,
		Result:     result,
		EntryPrice: locked.EntryPrice,
		ExitPrice:  exit,
		Payout:     payout,
		Timestamp:  now,
	})
	if payout.IsPositive() {
		s.publish(ctx, scope, domain.EventBalanceUpdated, domain.BalanceUpdatedPayload{
			AccountID:  locked.AccountID,
			NewBalance: wallet.Balance,
			Change:     payout,
			Reason:     domain.ReasonBinaryPayout,
			Timestamp:  now,
		})
	}
	s.notify(ctx, locked.AccountID, domain.TemplateBinaryResolved, map[string]string{
		"trade_id": locked.ID.String(),
		"symbol":   locked.Symbol,
		"result":   string(result),
		"payout":   payout.String(),
	})

	return &domain.BinaryResolution{
		ContractID: locked.ID,
		Result:     result,
		ExitPrice:  exit,
		Payout:     payout,
		NewBalance: wallet.Balance,
	}, nil
}

// CloseTrade closes a margin trade at the current market price.
// Users may only close their own trades; admins may close any.
func (s *SettlementServiceImpl) CloseTrade(ctx context.Context, tradeID uuid.UUID, actor domain.Actor) (*domain.TradeClosure, error) {
	trade, err := s.loadOpenTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !actor.IsSystem() && !actor.IsAdmin() && trade.AccountID != actor.ID {
		return nil, apperror.ErrForbidden()
	}
	return s.closeMargin(ctx, trade, actor, domain.ContractStatusResolved, "")
}

// ForceCloseTrade is the admin override. A reason is mandatory and audited.
func (s *SettlementServiceImpl) ForceCloseTrade(ctx context.Context, tradeID uuid.UUID, actor domain.Actor, reason string) (*domain.TradeClosure, error) {
	if reason == "" {
		return nil, apperror.Validation("Force close reason is required")
	}
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden()
	}
	trade, err := s.loadOpenTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	return s.closeMargin(ctx, trade, actor, domain.ContractStatusForceClosed, reason)
}

func (s *SettlementServiceImpl) loadOpenTrade(ctx context.Context, tradeID uuid.UUID) (*domain.MarginTrade, error) {
	trade, err := s.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get trade: %w", err))
	}
	if trade == nil {
		return nil, apperror.ErrContractNotFound("trade")
	}
	if trade.Status.IsTerminal() {
		return nil, apperror.ErrAlreadyResolved()
	}
	return trade, nil
}

func (s *SettlementServiceImpl) closeMargin(
	ctx context.Context,
	trade *domain.MarginTrade,
	actor domain.Actor,
	status domain.ContractStatus,
	reason string,
) (*domain.TradeClosure, error) {
	release, err := s.acquire(ctx, trade.LockKey())
	if err != nil {
		return nil, err
	}
	defer release()
	start := time.Now()

	exit, err := s.exitPrice(trade.Symbol)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.tradeRepo.GetByIDForUpdate(ctx, dbTx, trade.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock trade: %w", err))
	}
	if locked == nil {
		return nil, apperror.ErrContractNotFound("trade")
	}
	if locked.Status.IsTerminal() {
		return nil, apperror.ErrAlreadyResolved()
	}

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, locked.AccountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	pnl := domain.MarginPnL(locked.Direction, locked.EntryPrice, exit, locked.Amount)
	if err := s.applyPnL(ctx, dbTx, wallet, locked.ID, pnl); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	locked.ExitPrice = &exit
	locked.PnL = &pnl
	locked.Status = status
	locked.ClosedAt = &now
	if reason != "" {
		locked.CloseReason = &reason
	}

	changed, err := s.tradeRepo.Close(ctx, dbTx, locked)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("close trade: %w", err))
	}
	if !changed {
		return nil, apperror.ErrAlreadyResolved()
	}

	closed := domain.TradeClosedMeta{
		AccountID:  locked.AccountID,
		Symbol:     locked.Symbol,
		Direction:  locked.Direction,
		EntryPrice: locked.EntryPrice,
		ExitPrice:  exit,
		PnL:        pnl,
	}
	var meta domain.AuditMetadata = closed
	if status == domain.ContractStatusForceClosed {
		meta = domain.TradeForceClosedMeta{TradeClosedMeta: closed, Reason: reason}
	}
	if err := s.auditRepo.Append(ctx, dbTx, domain.NewAuditEntry(actor, domain.AuditTargetMarginTrade, locked.ID.String(), meta)); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("append audit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.SettlementsTotal.WithLabelValues("margin", string(status)).Inc()
	metrics.SettlementDuration.WithLabelValues("margin").Observe(time.Since(start).Seconds())

	s.log.Info().
		Str("trade_id", locked.ID.String()).
		Str("account_id", locked.AccountID.String()).
		Str("status", string(status)).
		Str("pnl", pnl.String()).
		Msg("margin trade closed")

	event, balanceReason := domain.EventTradeClosed, domain.ReasonTradePnL
	if status == domain.ContractStatusForceClosed {
		event, balanceReason = domain.EventTradeForceClosed, domain.ReasonForceClose
	}
	scope := domain.AccountScope(locked.AccountID)
	s.publish(ctx, scope, event, domain.TradePayload{
		TradeID:    locked.ID,
		Symbol:     locked.Symbol,
		Direction:  locked.Direction,
		Amount:     locked.Amount,
		EntryPrice: locked.EntryPrice,
		ExitPrice:  &exit,
		PnL:        &pnl,
		Reason:     reason,
		Timestamp:  now,
	})
	if !pnl.IsZero() {
		s.publish(ctx, scope, domain.EventBalanceUpdated, domain.BalanceUpdatedPayload{
			AccountID:  locked.AccountID,
			NewBalance: wallet.Balance,
			Change:     pnl,
			Reason:     balanceReason,
			Timestamp:  now,
		})
	}
	s.notify(ctx, locked.AccountID, domain.TemplateTradeClosed, map[string]string{
		"trade_id": locked.ID.String(),
		"symbol":   locked.Symbol,
		"pnl":      pnl.String(),
		"status":   string(status),
	})

	return &domain.TradeClosure{
		TradeID:    locked.ID,
		Status:     status,
		ExitPrice:  exit,
		PnL:        pnl,
		NewBalance: wallet.Balance,
	}, nil
}

// applyPnL credits or debits the wallet unconditionally. A loss larger than
// the balance drives it negative.
func (s *SettlementServiceImpl) applyPnL(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, tradeID uuid.UUID, pnl decimal.Decimal) error {
	if pnl.IsZero() {
		return nil
	}
	wallet.Balance = wallet.Balance.Add(pnl)
	if wallet.Balance.IsNegative() {
		s.log.Warn().
			Str("wallet_id", wallet.ID.String()).
			Str("trade_id", tradeID.String()).
			Str("balance", wallet.Balance.String()).
			Msg("margin loss exceeds balance")
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("apply pnl: %w", err))
	}
	ref := tradeID
	if err := s.txRepo.Create(ctx, dbTx, domain.NewTransaction(wallet, domain.TransactionTypeTradePnL, pnl, &ref)); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("record pnl: %w", err))
	}
	return nil
}

// acquire takes the contract lock and returns its release func.
func (s *SettlementServiceImpl) acquire(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	outcome, err := s.lock.Acquire(ctx, key, s.opts.LockTTL, owner)
	metrics.LockOutcomes.WithLabelValues(outcome.String()).Inc()

	switch outcome {
	case domain.LockAcquired:
	case domain.LockContended:
		s.log.Debug().Str("key", key).Msg("settlement lock held elsewhere")
		return nil, apperror.ErrLockContention()
	default:
		if err == nil {
			err = errors.New("lock backend returned no outcome")
		}
		return nil, apperror.ErrLockBackend(err)
	}

	return func() {
		// The caller's context may already be cancelled; release regardless.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if _, err := s.lock.Release(rctx, key, owner); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("lock release failed, waiting for ttl")
		}
	}, nil
}

// exitPrice reads the settlement price according to the freshness policy.
func (s *SettlementServiceImpl) exitPrice(symbol string) (decimal.Decimal, error) {
	if s.opts.RequireFreshPrice {
		obs, err := s.prices.GetFresh(symbol)
		if err != nil {
			return decimal.Zero, err
		}
		return obs.Price, nil
	}

	obs, freshness := s.prices.Lookup(symbol)
	switch freshness {
	case domain.FreshnessAbsent:
		return decimal.Zero, apperror.ErrMarketDataUnavailable(symbol)
	case domain.FreshnessStale:
		s.log.Warn().
			Str("symbol", symbol).
			Time("observed_at", obs.ObservedAt).
			Msg("settling on stale price")
	}
	return obs.Price, nil
}

func (s *SettlementServiceImpl) publish(ctx context.Context, scope domain.Scope, name domain.EventName, payload any) {
	if err := s.events.Publish(ctx, scope, name, payload); err != nil {
		s.log.Warn().Err(err).Str("event", string(name)).Msg("event publish failed")
	}
}

func (s *SettlementServiceImpl) notify(ctx context.Context, accountID uuid.UUID, template string, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, accountID, template, data); err != nil {
		s.log.Warn().Err(err).Str("template", template).Msg("notification dispatch failed")
	}
}
