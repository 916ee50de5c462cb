package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks
//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"settlement-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Infrastructure Ports ---

// PriceCache is the sole read path for valuation.
type PriceCache interface {
	Set(symbol string, price decimal.Decimal)
	Get(symbol string) (domain.Observation, bool)
	IsStale(symbol string, maxAge time.Duration) bool
	Lookup(symbol string) (domain.Observation, domain.Freshness)
	// GetFresh fails with MarketDataUnavailable when absent and StalePrice when stale.
	GetFresh(symbol string) (domain.Observation, error)
}

// DistributedLock is a cluster-wide, TTL-bounded, non-reentrant mutex.
type DistributedLock interface {
	// Acquire never blocks. The error is only set with LockBackendError.
	Acquire(ctx context.Context, key string, ttl time.Duration, owner string) (domain.LockOutcome, error)
	// Release deletes the lock only if owner still holds it.
	Release(ctx context.Context, key string, owner string) (bool, error)
}

// EventBus publishes domain events, at-least-once.
type EventBus interface {
	Publish(ctx context.Context, scope domain.Scope, name domain.EventName, payload any) error
}

// Notifier hands notification requests to the delivery pipeline. Fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, template string, data map[string]string) error
}

// JobQueue is the delayed, unique-by-id resolution backlog.
type JobQueue interface {
	// Enqueue returns false when a job with the same id already exists.
	Enqueue(ctx context.Context, job *domain.Job) (bool, error)
	// Claim moves up to limit due jobs to active and returns them.
	Claim(ctx context.Context, now time.Time, limit int) ([]domain.Job, error)
	// Complete, Retry and Fail return domain.ErrJobClaimLost when the
	// job's claim was handed to another worker.
	Complete(ctx context.Context, job *domain.Job) error
	Retry(ctx context.Context, job *domain.Job, runAt time.Time) error
	Fail(ctx context.Context, job *domain.Job, reason string) error
	// Remove only succeeds for jobs that have not been claimed.
	Remove(ctx context.Context, jobID string) (bool, error)
	Exists(ctx context.Context, jobID string) (bool, error)
	Stats(ctx context.Context) (domain.QueueStats, error)
}

// SettingsStore holds runtime-adjustable platform settings.
type SettingsStore interface {
	// GetPayoutRate returns ok=false when no value has been set.
	GetPayoutRate(ctx context.Context) (decimal.Decimal, bool, error)
	SetPayoutRate(ctx context.Context, rate decimal.Decimal) error
}

// PayoutRateProvider supplies the binary payout rate at resolution time.
type PayoutRateProvider interface {
	PayoutRate(ctx context.Context) (decimal.Decimal, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(actor domain.Actor) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	ActorID uuid.UUID
	Role    domain.Role
}

// --- Service Ports (Business Logic) ---

// SettlementService resolves contracts and applies their ledger effect exactly once.
type SettlementService interface {
	ResolveBinary(ctx context.Context, contractID uuid.UUID) (*domain.BinaryResolution, error)
	CloseTrade(ctx context.Context, tradeID uuid.UUID, actor domain.Actor) (*domain.TradeClosure, error)
	ForceCloseTrade(ctx context.Context, tradeID uuid.UUID, actor domain.Actor, reason string) (*domain.TradeClosure, error)
}

// TradingService opens contracts and enforces creation-time business rules.
type TradingService interface {
	OpenBinary(ctx context.Context, req OpenBinaryRequest) (*domain.BinaryTrade, error)
	OpenTrade(ctx context.Context, req OpenTradeRequest) (*domain.MarginTrade, error)
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
}

// OpenBinaryRequest holds validated input for a new binary option.
type OpenBinaryRequest struct {
	AccountID uuid.UUID
	Symbol    string
	Direction domain.Direction
	Stake     decimal.Decimal
	ExpiresAt time.Time
}

// OpenTradeRequest holds validated input for a new margin trade.
type OpenTradeRequest struct {
	AccountID uuid.UUID
	Symbol    string
	Direction domain.Direction
	Amount    decimal.Decimal
}

// SchedulerService drives automatic expiry resolution.
type SchedulerService interface {
	ScheduleResolution(ctx context.Context, contractID uuid.UUID, expiresAt time.Time) error
	// EnqueueResolution is the post-commit path for a contract already
	// validated at open: it never rejects a just-passed expiry.
	EnqueueResolution(ctx context.Context, contractID uuid.UUID, expiresAt time.Time) error
	CancelResolution(ctx context.Context, contractID uuid.UUID) (bool, error)
	HandleJob(ctx context.Context, job domain.Job) error
	Sweep(ctx context.Context) (*domain.SweepReport, error)
	QueueStats(ctx context.Context) (domain.QueueStats, error)
}

// AMLTrigger requests an asynchronous AML run after account activity.
type AMLTrigger interface {
	Trigger(accountID uuid.UUID)
}

// AMLService runs risk checks and freezes accounts.
type AMLService interface {
	AMLTrigger
	RunChecks(ctx context.Context, accountID uuid.UUID) (*domain.AMLReport, error)
	ScanCycle(ctx context.Context) (int, error)
	History(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.AMLCheck, error)
	Unresolved(ctx context.Context, limit int) ([]domain.AMLCheck, error)
	ResolveCheck(ctx context.Context, checkID uuid.UUID, actor domain.Actor, notes string) error
}

// AuditService records out-of-transaction audit entries and reads the trail.
type AuditService interface {
	// Record persists in the background; failures are logged.
	Record(ctx context.Context, entry *domain.AuditEntry)
	Trail(ctx context.Context, targetType domain.AuditTarget, targetID string, limit int) ([]domain.AuditEntry, error)
}

// SettingsService exposes admin-managed settings.
type SettingsService interface {
	PayoutRateProvider
	SetPayoutRate(ctx context.Context, rate decimal.Decimal, actor domain.Actor) error
}
