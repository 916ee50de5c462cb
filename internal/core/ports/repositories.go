package ports

import (
	"context"
	"time"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BinaryTradeRepository defines persistence operations for binary options.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type BinaryTradeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, trade *domain.BinaryTrade) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BinaryTrade, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.BinaryTrade, error)
	// MarkPending moves OPEN to PENDING_RESOLUTION. Any other status is left untouched.
	MarkPending(ctx context.Context, id uuid.UUID) error
	// MarkResolved writes the outcome. Returns false if the row was already terminal.
	MarkResolved(ctx context.Context, tx pgx.Tx, trade *domain.BinaryTrade) (bool, error)
	// ListExpiredUnresolved returns contracts past expiry whose result is still null.
	ListExpiredUnresolved(ctx context.Context, now time.Time, limit int) ([]domain.BinaryTrade, error)
}

// MarginTradeRepository defines persistence operations for margin trades.
type MarginTradeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, trade *domain.MarginTrade) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MarginTrade, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.MarginTrade, error)
	// Close writes exit/pnl/status. Returns false if the row was already terminal.
	Close(ctx context.Context, tx pgx.Tx, trade *domain.MarginTrade) (bool, error)
}

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error)
	GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	SetLocked(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, locked bool) error
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// Freeze moves ACTIVE to FROZEN. Returns false if the account was already frozen.
	Freeze(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
}

// TransactionRepository records the ledger row for every balance change.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
}

// AuditRepository is the append-only audit trail.
type AuditRepository interface {
	// Append writes inside an existing ledger transaction.
	Append(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByTarget(ctx context.Context, targetType domain.AuditTarget, targetID string, limit int) ([]domain.AuditEntry, error)
}

// AMLRepository persists AML check outcomes.
type AMLRepository interface {
	CreateBatch(ctx context.Context, checks []domain.AMLCheck) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AMLCheck, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AMLCheck, error)
	ListUnresolved(ctx context.Context, limit int) ([]domain.AMLCheck, error)
	// Resolve records the admin review. Returns false if already resolved.
	Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, resolvedBy uuid.UUID, notes string) (bool, error)
}

// ActivityRepository answers the aggregate queries AML rules are built on.
type ActivityRepository interface {
	CountTransactionsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error)
	SumDepositsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error)
	CountTradesSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error)
	SumTradeVolumeSince(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error)
	ListActiveAccounts(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
