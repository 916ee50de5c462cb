package service

import (
	"context"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TradingServiceImpl implements ports.TradingService.
type TradingServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	binaryRepo  ports.BinaryTradeRepository
	tradeRepo   ports.MarginTradeRepository
	txRepo      ports.TransactionRepository
	auditRepo   ports.AuditRepository
	transactor  ports.DBTransactor
	prices      ports.PriceCache
	scheduler   ports.SchedulerService
	aml         ports.AMLTrigger
	events      ports.EventBus
	marginReq   decimal.Decimal
	log         zerolog.Logger
}

// NewTradingService creates a new TradingServiceImpl. marginRequirement is
// the fraction of notional the balance must cover to open a margin trade.
func NewTradingService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	binaryRepo ports.BinaryTradeRepository,
	tradeRepo ports.MarginTradeRepository,
	txRepo ports.TransactionRepository,
	auditRepo ports.AuditRepository,
	transactor ports.DBTransactor,
	prices ports.PriceCache,
	scheduler ports.SchedulerService,
	aml ports.AMLTrigger,
	events ports.EventBus,
	marginRequirement float64,
	log zerolog.Logger,
) *TradingServiceImpl {
	return &TradingServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		binaryRepo:  binaryRepo,
		tradeRepo:   tradeRepo,
		txRepo:      txRepo,
		auditRepo:   auditRepo,
		transactor:  transactor,
		prices:      prices,
		scheduler:   scheduler,
		aml:         aml,
		events:      events,
		marginReq:   decimal.NewFromFloat(marginRequirement),
		log:         log.With().Str("component", "trading").Logger(),
	}
}

// OpenBinary debits the stake, records the contract with its write-once entry
// price and schedules resolution at expiry.
func (s *TradingServiceImpl) OpenBinary(ctx context.Context, req ports.OpenBinaryRequest) (*domain.BinaryTrade, error) {
	if !req.Direction.IsBinary() {
		return nil, apperror.ErrInvalidDirection()
	}
	if !req.Stake.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	now := time.Now().UTC()
	if !req.ExpiresAt.After(now) {
		return nil, apperror.ErrExpiryInPast()
	}

	account, err := s.activeAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	// Entry price must be fresh: a stale entry would mis-price the contract.
	obs, err := s.prices.GetFresh(req.Symbol)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, req.AccountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.Locked {
		return nil, apperror.ErrWalletLocked()
	}
	if !wallet.CanDebit(req.Stake) {
		return nil, apperror.ErrInsufficientFunds()
	}

	trade := &domain.BinaryTrade{
		ID:         uuid.New(),
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		Direction:  req.Direction,
		Stake:      req.Stake,
		EntryPrice: obs.Price,
		Status:     domain.ContractStatusOpen,
		ExpiresAt:  req.ExpiresAt.UTC(),
		CreatedAt:  now,
	}
	if err := s.binaryRepo.Create(ctx, dbTx, trade); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create binary trade: %w", err))
	}

	wallet.Balance = wallet.Balance.Sub(req.Stake)
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("debit stake: %w", err))
	}
	ref := trade.ID
	if err := s.txRepo.Create(ctx, dbTx, domain.NewTransaction(wallet, domain.TransactionTypeBinaryStake, req.Stake.Neg(), &ref)); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record stake: %w", err))
	}

	actor := domain.Actor{ID: account.ID, Role: account.Role}
	entry := domain.NewAuditEntry(actor, domain.AuditTargetBinaryTrade, trade.ID.String(), domain.BinaryOpenedMeta{
		AccountID:  trade.AccountID,
		Symbol:     trade.Symbol,
		Direction:  trade.Direction,
		Stake:      trade.Stake,
		EntryPrice: trade.EntryPrice,
		ExpiresAt:  trade.ExpiresAt,
	})
	if err := s.auditRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("append audit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	// The recovery sweep picks the contract up if scheduling fails here.
	if err := s.scheduler.EnqueueResolution(ctx, trade.ID, trade.ExpiresAt); err != nil {
		s.log.Error().Err(err).Str("contract_id", trade.ID.String()).Msg("schedule resolution failed")
	}

	s.log.Info().
		Str("contract_id", trade.ID.String()).
		Str("account_id", trade.AccountID.String()).
		Str("symbol", trade.Symbol).
		Str("direction", string(trade.Direction)).
		Str("stake", trade.Stake.String()).
		Time("expires_at", trade.ExpiresAt).
		Msg("binary contract opened")

	scope := domain.AccountScope(trade.AccountID)
	s.publish(ctx, scope, domain.EventBinaryOpened, domain.BinaryOpenedPayload{
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Direction:  trade.Direction,
		Stake:      trade.Stake,
		EntryPrice: trade.EntryPrice,
		ExpiresAt:  trade.ExpiresAt,
	})
	s.publish(ctx, scope, domain.EventBalanceUpdated, domain.BalanceUpdatedPayload{
		AccountID:  trade.AccountID,
		NewBalance: wallet.Balance,
		Change:     req.Stake.Neg(),
		Reason:     domain.ReasonBinaryStake,
		Timestamp:  now,
	})
	s.aml.Trigger(trade.AccountID)

	return trade, nil
}

// OpenTrade records a margin position. No funds move until close; the balance
// only has to cover the margin requirement on the notional.
func (s *TradingServiceImpl) OpenTrade(ctx context.Context, req ports.OpenTradeRequest) (*domain.MarginTrade, error) {
	if !req.Direction.IsMargin() {
		return nil, apperror.ErrInvalidDirection()
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.activeAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	obs, err := s.prices.GetFresh(req.Symbol)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, req.AccountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.Locked {
		return nil, apperror.ErrWalletLocked()
	}
	required := req.Amount.Mul(obs.Price).Mul(s.marginReq)
	if wallet.Balance.LessThan(required) {
		return nil, apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	trade := &domain.MarginTrade{
		ID:         uuid.New(),
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		Direction:  req.Direction,
		Amount:     req.Amount,
		EntryPrice: obs.Price,
		Status:     domain.ContractStatusOpen,
		OpenedAt:   now,
	}
	if err := s.tradeRepo.Create(ctx, dbTx, trade); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create trade: %w", err))
	}

	actor := domain.Actor{ID: account.ID, Role: account.Role}
	entry := domain.NewAuditEntry(actor, domain.AuditTargetMarginTrade, trade.ID.String(), domain.TradeOpenedMeta{
		AccountID:  trade.AccountID,
		Symbol:     trade.Symbol,
		Direction:  trade.Direction,
		Amount:     trade.Amount,
		EntryPrice: trade.EntryPrice,
	})
	if err := s.auditRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("append audit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("trade_id", trade.ID.String()).
		Str("account_id", trade.AccountID.String()).
		Str("symbol", trade.Symbol).
		Str("direction", string(trade.Direction)).
		Str("amount", trade.Amount.String()).
		Msg("margin trade opened")

	s.publish(ctx, domain.AccountScope(trade.AccountID), domain.EventTradeOpened, domain.TradePayload{
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Direction:  trade.Direction,
		Amount:     trade.Amount,
		EntryPrice: trade.EntryPrice,
		Timestamp:  now,
	})
	s.aml.Trigger(trade.AccountID)

	return trade, nil
}

// Deposit credits the wallet and writes a DEPOSIT ledger row.
func (s *TradingServiceImpl) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if _, err := s.activeAccount(ctx, accountID); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.Locked {
		return nil, apperror.ErrWalletLocked()
	}

	wallet.Balance = wallet.Balance.Add(amount)
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("credit deposit: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, domain.NewTransaction(wallet, domain.TransactionTypeDeposit, amount, nil)); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record deposit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account_id", accountID.String()).
		Str("amount", amount.String()).
		Msg("deposit credited")

	s.publish(ctx, domain.AccountScope(accountID), domain.EventBalanceUpdated, domain.BalanceUpdatedPayload{
		AccountID:  accountID,
		NewBalance: wallet.Balance,
		Change:     amount,
		Reason:     domain.ReasonDeposit,
		Timestamp:  time.Now().UTC(),
	})
	s.aml.Trigger(accountID)

	return wallet, nil
}

func (s *TradingServiceImpl) activeAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if account.IsFrozen() {
		return nil, apperror.ErrAccountFrozen()
	}
	return account, nil
}

func (s *TradingServiceImpl) publish(ctx context.Context, scope domain.Scope, name domain.EventName, payload any) {
	if err := s.events.Publish(ctx, scope, name, payload); err != nil {
		s.log.Warn().Err(err).Str("event", string(name)).Msg("event publish failed")
	}
}
