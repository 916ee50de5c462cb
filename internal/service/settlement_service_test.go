package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports/mocks"
	"settlement-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type settlementTestDeps struct {
	svc        *SettlementServiceImpl
	binaryRepo *mocks.MockBinaryTradeRepository
	tradeRepo  *mocks.MockMarginTradeRepository
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	auditRepo  *mocks.MockAuditRepository
	transactor *mocks.MockDBTransactor
	lock       *mocks.MockDistributedLock
	prices     *mocks.MockPriceCache
	rates      *mocks.MockPayoutRateProvider
	events     *mocks.MockEventBus
	notifier   *mocks.MockNotifier
	ctrl       *gomock.Controller
}

func setupSettlementService(t *testing.T, opts SettlementOptions) *settlementTestDeps {
	ctrl := gomock.NewController(t)
	d := &settlementTestDeps{
		binaryRepo: mocks.NewMockBinaryTradeRepository(ctrl),
		tradeRepo:  mocks.NewMockMarginTradeRepository(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		auditRepo:  mocks.NewMockAuditRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		lock:       mocks.NewMockDistributedLock(ctrl),
		prices:     mocks.NewMockPriceCache(ctrl),
		rates:      mocks.NewMockPayoutRateProvider(ctrl),
		events:     mocks.NewMockEventBus(ctrl),
		notifier:   mocks.NewMockNotifier(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewSettlementService(
		d.binaryRepo, d.tradeRepo, d.walletRepo, d.txRepo, d.auditRepo,
		d.transactor, d.lock, d.prices, d.rates, d.events, d.notifier,
		opts, newTestLogger(),
	)
	return d
}

func openBinary(direction domain.Direction, entry string) *domain.BinaryTrade {
	return &domain.BinaryTrade{
		ID:         uuid.New(),
		AccountID:  uuid.New(),
		Symbol:     "BTC/USDT",
		Direction:  direction,
		Stake:      dec("10"),
		EntryPrice: dec(entry),
		Status:     domain.ContractStatusOpen,
		ExpiresAt:  time.Now().Add(-time.Second),
		CreatedAt:  time.Now().Add(-time.Minute),
	}
}

func walletFor(accountID uuid.UUID, balance string) *domain.Wallet {
	return &domain.Wallet{ID: uuid.New(), AccountID: accountID, Balance: dec(balance)}
}

func observation(price string) domain.Observation {
	return domain.Observation{Symbol: "BTC/USDT", Price: dec(price), ObservedAt: time.Now()}
}

// expectLocked wires the lock acquire/release pair for key.
func (d *settlementTestDeps) expectLocked(key string) {
	d.lock.EXPECT().Acquire(gomock.Any(), key, 10*time.Second, gomock.Any()).Return(domain.LockAcquired, nil)
	d.lock.EXPECT().Release(gomock.Any(), key, gomock.Any()).Return(true, nil)
}

// expectResolveUpToTx wires everything before the ledger transaction.
func (d *settlementTestDeps) expectResolveUpToTx(trade *domain.BinaryTrade, exit, rate string) pgx.Tx {
	tx := &mockTx{}
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.binaryRepo.EXPECT().MarkPending(gomock.Any(), trade.ID).Return(nil)
	d.prices.EXPECT().Lookup(trade.Symbol).Return(observation(exit), domain.FreshnessFresh)
	d.rates.EXPECT().PayoutRate(gomock.Any()).Return(dec(rate), nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	locked := *trade
	d.binaryRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, trade.ID).Return(&locked, nil)
	return tx
}

// ==================== ResolveBinary Tests ====================

func TestSettlementService_ResolveBinary_Win(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	wallet := walletFor(trade.AccountID, "90")
	tx := d.expectResolveUpToTx(trade, "110", "0.85")

	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, dec("108.5").Equal(balance), "balance %s", balance)
			return nil
		},
	)
	d.txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeBinaryPayout, txn.Type)
			assert.True(t, dec("18.5").Equal(txn.Amount))
			require.NotNil(t, txn.ReferenceID)
			assert.Equal(t, trade.ID, *txn.ReferenceID)
			return nil
		},
	)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, b *domain.BinaryTrade) (bool, error) {
			assert.Equal(t, domain.ContractStatusResolved, b.Status)
			require.NotNil(t, b.Result)
			assert.Equal(t, domain.ResultWin, *b.Result)
			require.NotNil(t, b.ResolvedAt)
			return true, nil
		},
	)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, entry *domain.AuditEntry) error {
			assert.Equal(t, domain.AuditActionBinaryResolved, entry.Action)
			assert.Nil(t, entry.ActorID)
			meta := entry.Metadata.(domain.BinaryResolvedMeta)
			assert.True(t, dec("0.85").Equal(meta.PayoutRate))
			assert.True(t, dec("110").Equal(meta.ExitPrice))
			return nil
		},
	)
	scope := domain.AccountScope(trade.AccountID)
	d.events.EXPECT().Publish(gomock.Any(), scope, domain.EventBinaryResolved, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), scope, domain.EventBalanceUpdated, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Notify(gomock.Any(), trade.AccountID, domain.TemplateBinaryResolved, gomock.Any()).Return(nil)

	res, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultWin, res.Result)
	assert.True(t, dec("18.5").Equal(res.Payout))
	assert.True(t, dec("108.5").Equal(res.NewBalance))
}

func TestSettlementService_ResolveBinary_LossHasNoBalanceChange(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionDown, "100")
	wallet := walletFor(trade.AccountID, "90")
	tx := d.expectResolveUpToTx(trade, "105", "0.85")

	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.EventBinaryResolved, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Notify(gomock.Any(), trade.AccountID, domain.TemplateBinaryResolved, gomock.Any()).Return(nil)

	res, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultLoss, res.Result)
	assert.True(t, res.Payout.IsZero())
	assert.True(t, dec("90").Equal(res.NewBalance))
}

func TestSettlementService_ResolveBinary_TieIsLoss(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	wallet := walletFor(trade.AccountID, "90")
	tx := d.expectResolveUpToTx(trade, "100", "0.85")

	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.EventBinaryResolved, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultLoss, res.Result)
}

func TestSettlementService_ResolveBinary_LockedWalletStillPaid(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	wallet := walletFor(trade.AccountID, "0")
	wallet.Locked = true
	tx := d.expectResolveUpToTx(trade, "101", "0.9")

	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, gomock.Any()).Return(nil)
	d.txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, entry *domain.AuditEntry) error {
			assert.True(t, entry.Metadata.(domain.BinaryResolvedMeta).WalletLocked)
			return nil
		},
	)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.True(t, dec("19").Equal(res.NewBalance))
}

func TestSettlementService_ResolveBinary_PublishFailureDoesNotFail(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionDown, "100")
	wallet := walletFor(trade.AccountID, "50")
	tx := d.expectResolveUpToTx(trade, "120", "0.85")

	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("nats down"))
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("kafka down"))

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	require.NoError(t, err)
}

func TestSettlementService_ResolveBinary_NotFound(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	id := uuid.New()
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := d.svc.ResolveBinary(context.Background(), id)
	assert.True(t, apperror.HasCode(err, apperror.CodeContractNotFound))
}

func TestSettlementService_ResolveBinary_AlreadyResolved(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	result := domain.ResultLoss
	trade.Result = &result
	trade.Status = domain.ContractStatusResolved
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyResolved))
	assert.False(t, apperror.IsRetryable(err))
}

func TestSettlementService_ResolveBinary_LockContention(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.lock.EXPECT().Acquire(gomock.Any(), trade.LockKey(), gomock.Any(), gomock.Any()).Return(domain.LockContended, nil)

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeLockContention))
}

func TestSettlementService_ResolveBinary_LockBackendError(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.lock.EXPECT().Acquire(gomock.Any(), trade.LockKey(), gomock.Any(), gomock.Any()).
		Return(domain.LockBackendError, errors.New("connection refused"))

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeLockBackend))
	assert.True(t, apperror.IsRetryable(err))
}

func TestSettlementService_ResolveBinary_MarketDataUnavailable(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.binaryRepo.EXPECT().MarkPending(gomock.Any(), trade.ID).Return(nil)
	d.prices.EXPECT().Lookup(trade.Symbol).Return(domain.Observation{}, domain.FreshnessAbsent)

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeMarketDataUnavailable))
	assert.True(t, apperror.IsRetryable(err))
}

func TestSettlementService_ResolveBinary_StalePriceRejectedWhenFreshRequired(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{RequireFreshPrice: true})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.binaryRepo.EXPECT().MarkPending(gomock.Any(), trade.ID).Return(nil)
	d.prices.EXPECT().GetFresh(trade.Symbol).Return(domain.Observation{}, apperror.ErrStalePrice(trade.Symbol))

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeStalePrice))
	assert.True(t, apperror.IsRetryable(err))
}

func TestSettlementService_ResolveBinary_StalePriceUsedByDefault(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	wallet := walletFor(trade.AccountID, "0")
	tx := &mockTx{}
	stale := domain.Observation{Symbol: trade.Symbol, Price: dec("99"), ObservedAt: time.Now().Add(-5 * time.Minute)}

	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.binaryRepo.EXPECT().MarkPending(gomock.Any(), trade.ID).Return(nil)
	d.prices.EXPECT().Lookup(trade.Symbol).Return(stale, domain.FreshnessStale)
	d.rates.EXPECT().PayoutRate(gomock.Any()).Return(dec("0.85"), nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.binaryRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, trade.ID).Return(trade, nil)
	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.True(t, dec("99").Equal(res.ExitPrice))
}

func TestSettlementService_ResolveBinary_ResolvedWhileWaitingForRowLock(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionUp, "100")
	tx := &mockTx{}
	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.binaryRepo.EXPECT().MarkPending(gomock.Any(), trade.ID).Return(nil)
	d.prices.EXPECT().Lookup(trade.Symbol).Return(observation("110"), domain.FreshnessFresh)
	d.rates.EXPECT().PayoutRate(gomock.Any()).Return(dec("0.85"), nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)

	settled := *trade
	result := domain.ResultWin
	settled.Result = &result
	settled.Status = domain.ContractStatusResolved
	d.binaryRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, trade.ID).Return(&settled, nil)

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyResolved))
}

func TestSettlementService_ResolveBinary_MarkResolvedLostRace(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionDown, "100")
	wallet := walletFor(trade.AccountID, "10")
	tx := d.expectResolveUpToTx(trade, "101", "0.85")

	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(false, nil)

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyResolved))
}

func TestSettlementService_ResolveBinary_CommitError(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openBinary(domain.DirectionDown, "100")
	wallet := walletFor(trade.AccountID, "10")
	tx := &failingCommitTx{}

	d.binaryRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.binaryRepo.EXPECT().MarkPending(gomock.Any(), trade.ID).Return(nil)
	d.prices.EXPECT().Lookup(trade.Symbol).Return(observation("101"), domain.FreshnessFresh)
	d.rates.EXPECT().PayoutRate(gomock.Any()).Return(dec("0.85"), nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.binaryRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, trade.ID).Return(trade, nil)
	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	d.binaryRepo.EXPECT().MarkResolved(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(nil)

	_, err := d.svc.ResolveBinary(context.Background(), trade.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))
	assert.True(t, apperror.IsRetryable(err))
}

type failingCommitTx struct{ pgx.Tx }

func (m *failingCommitTx) Rollback(_ context.Context) error { return nil }
func (m *failingCommitTx) Commit(_ context.Context) error   { return errors.New("serialization failure") }

// ==================== CloseTrade Tests ====================

func openMargin(direction domain.Direction, entry, amount string) *domain.MarginTrade {
	return &domain.MarginTrade{
		ID:         uuid.New(),
		AccountID:  uuid.New(),
		Symbol:     "ETH/USDT",
		Direction:  direction,
		Amount:     dec(amount),
		EntryPrice: dec(entry),
		Status:     domain.ContractStatusOpen,
		OpenedAt:   time.Now().Add(-time.Hour),
	}
}

func (d *settlementTestDeps) expectCloseUpToWallet(trade *domain.MarginTrade, exit string, wallet *domain.Wallet) pgx.Tx {
	tx := &mockTx{}
	d.tradeRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.expectLocked(trade.LockKey())
	d.prices.EXPECT().Lookup(trade.Symbol).Return(domain.Observation{Symbol: trade.Symbol, Price: dec(exit), ObservedAt: time.Now()}, domain.FreshnessFresh)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	locked := *trade
	d.tradeRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, trade.ID).Return(&locked, nil)
	d.walletRepo.EXPECT().GetByAccountIDForUpdate(gomock.Any(), tx, trade.AccountID).Return(wallet, nil)
	return tx
}

func TestSettlementService_CloseTrade_LongProfit(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openMargin(domain.DirectionLong, "2000", "2")
	wallet := walletFor(trade.AccountID, "100")
	owner := domain.Actor{ID: trade.AccountID, Role: domain.RoleUser}
	tx := d.expectCloseUpToWallet(trade, "2050", wallet)

	d.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, gomock.Any()).Return(nil)
	d.txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeTradePnL, txn.Type)
			assert.True(t, dec("100").Equal(txn.Amount))
			return nil
		},
	)
	d.tradeRepo.EXPECT().Close(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, m *domain.MarginTrade) (bool, error) {
			assert.Equal(t, domain.ContractStatusResolved, m.Status)
			assert.Nil(t, m.CloseReason)
			return true, nil
		},
	)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, entry *domain.AuditEntry) error {
			assert.Equal(t, domain.AuditActionTradeClosed, entry.Action)
			require.NotNil(t, entry.ActorID)
			assert.Equal(t, owner.ID, *entry.ActorID)
			return nil
		},
	)
	scope := domain.AccountScope(trade.AccountID)
	d.events.EXPECT().Publish(gomock.Any(), scope, domain.EventTradeClosed, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), scope, domain.EventBalanceUpdated, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.Scope, _ domain.EventName, payload any) error {
			assert.Equal(t, domain.ReasonTradePnL, payload.(domain.BalanceUpdatedPayload).Reason)
			return nil
		},
	)
	d.notifier.EXPECT().Notify(gomock.Any(), trade.AccountID, domain.TemplateTradeClosed, gomock.Any()).Return(nil)

	res, err := d.svc.CloseTrade(context.Background(), trade.ID, owner)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(res.PnL))
	assert.True(t, dec("200").Equal(res.NewBalance))
}

func TestSettlementService_CloseTrade_ShortLossGoesNegative(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openMargin(domain.DirectionShort, "2000", "1")
	wallet := walletFor(trade.AccountID, "50")
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	tx := d.expectCloseUpToWallet(trade, "2100", wallet)

	d.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, dec("-50").Equal(balance))
			return nil
		},
	)
	d.txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.tradeRepo.EXPECT().Close(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := d.svc.CloseTrade(context.Background(), trade.ID, admin)
	require.NoError(t, err)
	assert.True(t, dec("-100").Equal(res.PnL))
	assert.True(t, res.NewBalance.IsNegative())
}

func TestSettlementService_CloseTrade_Forbidden(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openMargin(domain.DirectionLong, "2000", "1")
	d.tradeRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	_, err := d.svc.CloseTrade(context.Background(), trade.ID, stranger)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestSettlementService_CloseTrade_AlreadyClosed(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openMargin(domain.DirectionLong, "2000", "1")
	trade.Status = domain.ContractStatusResolved
	d.tradeRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)

	_, err := d.svc.CloseTrade(context.Background(), trade.ID, domain.Actor{ID: trade.AccountID, Role: domain.RoleUser})
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyResolved))
}

func TestSettlementService_CloseTrade_NotFound(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	id := uuid.New()
	d.tradeRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := d.svc.CloseTrade(context.Background(), id, domain.SystemActor)
	assert.True(t, apperror.HasCode(err, apperror.CodeContractNotFound))
}

func TestSettlementService_ForceCloseTrade(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openMargin(domain.DirectionLong, "2000", "1")
	wallet := walletFor(trade.AccountID, "500")
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	tx := d.expectCloseUpToWallet(trade, "1900", wallet)

	d.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, gomock.Any()).Return(nil)
	d.txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.tradeRepo.EXPECT().Close(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, m *domain.MarginTrade) (bool, error) {
			assert.Equal(t, domain.ContractStatusForceClosed, m.Status)
			require.NotNil(t, m.CloseReason)
			assert.Equal(t, "risk limit", *m.CloseReason)
			return true, nil
		},
	)
	d.auditRepo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, entry *domain.AuditEntry) error {
			assert.Equal(t, domain.AuditActionTradeForceClosed, entry.Action)
			assert.Equal(t, "risk limit", entry.Metadata.(domain.TradeForceClosedMeta).Reason)
			return nil
		},
	)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.EventTradeForceClosed, gomock.Any()).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.EventBalanceUpdated, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.Scope, _ domain.EventName, payload any) error {
			assert.Equal(t, domain.ReasonForceClose, payload.(domain.BalanceUpdatedPayload).Reason)
			return nil
		},
	)
	d.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := d.svc.ForceCloseTrade(context.Background(), trade.ID, admin, "risk limit")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusForceClosed, res.Status)
	assert.True(t, dec("400").Equal(res.NewBalance))
}

func TestSettlementService_ForceCloseTrade_Validation(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	_, err := d.svc.ForceCloseTrade(context.Background(), uuid.New(), admin, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))

	user := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	_, err = d.svc.ForceCloseTrade(context.Background(), uuid.New(), user, "because")
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestSettlementService_CloseTrade_LockContention(t *testing.T) {
	d := setupSettlementService(t, SettlementOptions{})
	defer d.ctrl.Finish()

	trade := openMargin(domain.DirectionLong, "2000", "1")
	d.tradeRepo.EXPECT().GetByID(gomock.Any(), trade.ID).Return(trade, nil)
	d.lock.EXPECT().Acquire(gomock.Any(), trade.LockKey(), gomock.Any(), gomock.Any()).Return(domain.LockContended, nil)

	_, err := d.svc.CloseTrade(context.Background(), trade.ID, domain.Actor{ID: trade.AccountID, Role: domain.RoleUser})
	assert.True(t, apperror.HasCode(err, apperror.CodeLockContention))
}
