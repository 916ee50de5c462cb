// Package testutil provides an in-memory ledger that satisfies the repository
// ports, for tests that exercise services under real concurrency.
package testutil

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Ledger keeps every table behind one mutex. A transaction holds the mutex
// from Begin to Commit/Rollback, which serializes writers the same way
// SELECT ... FOR UPDATE does on a single hot row. Repository methods that
// take a pgx.Tx assume the caller holds it; the others lock on their own.
type Ledger struct {
	mu sync.Mutex
	tables
}

type tables struct {
	accounts     map[uuid.UUID]domain.Account
	wallets      map[uuid.UUID]domain.Wallet
	binaries     map[uuid.UUID]domain.BinaryTrade
	trades       map[uuid.UUID]domain.MarginTrade
	amlChecks    map[uuid.UUID]domain.AMLCheck
	transactions []domain.Transaction
	audit        []domain.AuditEntry
}

func NewLedger() *Ledger {
	return &Ledger{tables: tables{
		accounts:  make(map[uuid.UUID]domain.Account),
		wallets:   make(map[uuid.UUID]domain.Wallet),
		binaries:  make(map[uuid.UUID]domain.BinaryTrade),
		trades:    make(map[uuid.UUID]domain.MarginTrade),
		amlChecks: make(map[uuid.UUID]domain.AMLCheck),
	}}
}

func (t *tables) clone() tables {
	return tables{
		accounts:     maps.Clone(t.accounts),
		wallets:      maps.Clone(t.wallets),
		binaries:     maps.Clone(t.binaries),
		trades:       maps.Clone(t.trades),
		amlChecks:    maps.Clone(t.amlChecks),
		transactions: slices.Clone(t.transactions),
		audit:        slices.Clone(t.audit),
	}
}

// --- Seeding and inspection ---

// SeedAccount creates an ACTIVE account with a wallet holding balance.
func (l *Ledger) SeedAccount(role domain.Role, balance decimal.Decimal) (domain.Account, domain.Wallet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	acc := domain.Account{ID: uuid.New(), Email: uuid.NewString() + "@test.local", Role: role, Status: domain.AccountStatusActive, CreatedAt: now, UpdatedAt: now}
	w := domain.Wallet{ID: uuid.New(), AccountID: acc.ID, Balance: balance, CreatedAt: now, UpdatedAt: now}
	l.accounts[acc.ID] = acc
	l.wallets[w.ID] = w
	return acc, w
}

// SeedBinary stores a contract as-is.
func (l *Ledger) SeedBinary(b domain.BinaryTrade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.binaries[b.ID] = b
}

// SeedTrade stores a margin trade as-is.
func (l *Ledger) SeedTrade(m domain.MarginTrade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades[m.ID] = m
}

func (l *Ledger) Account(id uuid.UUID) domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id]
}

func (l *Ledger) Wallet(accountID uuid.UUID) domain.Wallet {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, _ := l.walletOf(accountID)
	return w
}

func (l *Ledger) Binary(id uuid.UUID) domain.BinaryTrade {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.binaries[id]
}

func (l *Ledger) Trade(id uuid.UUID) domain.MarginTrade {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trades[id]
}

// Transactions returns the ledger rows of one account, oldest first.
func (l *Ledger) Transactions(accountID uuid.UUID) []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transaction
	for _, t := range l.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

// AuditActions returns the actions recorded against one target, oldest first.
func (l *Ledger) AuditActions(targetID string) []domain.AuditAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.AuditAction
	for _, e := range l.audit {
		if e.TargetID == targetID {
			out = append(out, e.Action)
		}
	}
	return out
}

func (l *Ledger) walletOf(accountID uuid.UUID) (domain.Wallet, bool) {
	for _, w := range l.wallets {
		if w.AccountID == accountID {
			return w, true
		}
	}
	return domain.Wallet{}, false
}

// --- Transactor ---

func (l *Ledger) Transactor() ports.DBTransactor { return transactor{l} }

type transactor struct{ l *Ledger }

func (t transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.l.mu.Lock()
	return &memTx{l: t.l, snapshot: t.l.tables.clone()}, nil
}

// memTx restores the snapshot taken at Begin unless committed. Only Commit
// and Rollback are implemented; repositories never issue SQL through it.
type memTx struct {
	pgx.Tx
	l        *Ledger
	snapshot tables
	done     bool
}

func (tx *memTx) Commit(_ context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.l.mu.Unlock()
	return nil
}

func (tx *memTx) Rollback(_ context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.l.tables = tx.snapshot
	tx.l.mu.Unlock()
	return nil
}

// --- Repositories ---

func (l *Ledger) Accounts() ports.AccountRepository { return accountRepo{l} }
func (l *Ledger) Wallets() ports.WalletRepository { return walletRepo{l} }
func (l *Ledger) Binaries() ports.BinaryTradeRepository { return binaryRepo{l} }
func (l *Ledger) Trades() ports.MarginTradeRepository { return tradeRepo{l} }
func (l *Ledger) TransactionsRepo() ports.TransactionRepository { return txRepo{l} }
func (l *Ledger) Audit() ports.AuditRepository { return auditRepo{l} }
func (l *Ledger) AML() ports.AMLRepository { return amlRepo{l} }
func (l *Ledger) Activity() ports.ActivityRepository { return activityRepo{l} }

type accountRepo struct{ l *Ledger }

func (r accountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	a, ok := r.l.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r accountRepo) Freeze(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	a, ok := r.l.accounts[id]
	if !ok || a.Status == domain.AccountStatusFrozen {
		return false, nil
	}
	a.Status = domain.AccountStatusFrozen
	a.UpdatedAt = time.Now().UTC()
	r.l.accounts[id] = a
	return true, nil
}

type walletRepo struct{ l *Ledger }

func (r walletRepo) Create(_ context.Context, w *domain.Wallet) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if _, exists := r.l.walletOf(w.AccountID); exists {
		return fmt.Errorf("wallet for account %s already exists", w.AccountID)
	}
	r.l.wallets[w.ID] = *w
	return nil
}

func (r walletRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	w, ok := r.l.walletOf(accountID)
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r walletRepo) GetByAccountIDForUpdate(_ context.Context, _ pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	w, ok := r.l.walletOf(accountID)
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r walletRepo) UpdateBalance(_ context.Context, _ pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	w, ok := r.l.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	r.l.wallets[walletID] = w
	return nil
}

func (r walletRepo) SetLocked(_ context.Context, _ pgx.Tx, walletID uuid.UUID, locked bool) error {
	w, ok := r.l.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Locked = locked
	r.l.wallets[walletID] = w
	return nil
}

type binaryRepo struct{ l *Ledger }

func (r binaryRepo) Create(_ context.Context, _ pgx.Tx, b *domain.BinaryTrade) error {
	r.l.binaries[b.ID] = *b
	return nil
}

func (r binaryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.BinaryTrade, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	return r.get(id), nil
}

func (r binaryRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.BinaryTrade, error) {
	return r.get(id), nil
}

func (r binaryRepo) get(id uuid.UUID) *domain.BinaryTrade {
	b, ok := r.l.binaries[id]
	if !ok {
		return nil
	}
	return &b
}

func (r binaryRepo) MarkPending(_ context.Context, id uuid.UUID) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	b, ok := r.l.binaries[id]
	if ok && b.Status == domain.ContractStatusOpen {
		b.Status = domain.ContractStatusPendingResolution
		r.l.binaries[id] = b
	}
	return nil
}

func (r binaryRepo) MarkResolved(_ context.Context, _ pgx.Tx, b *domain.BinaryTrade) (bool, error) {
	cur, ok := r.l.binaries[b.ID]
	if !ok || cur.IsResolved() {
		return false, nil
	}
	cur.ExitPrice, cur.Result, cur.Payout = b.ExitPrice, b.Result, b.Payout
	cur.Status, cur.ResolvedAt = domain.ContractStatusResolved, b.ResolvedAt
	r.l.binaries[b.ID] = cur
	return true, nil
}

func (r binaryRepo) ListExpiredUnresolved(_ context.Context, now time.Time, limit int) ([]domain.BinaryTrade, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []domain.BinaryTrade
	for _, b := range r.l.binaries {
		if !b.ExpiresAt.After(now) && !b.IsResolved() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type tradeRepo struct{ l *Ledger }

func (r tradeRepo) Create(_ context.Context, _ pgx.Tx, m *domain.MarginTrade) error {
	r.l.trades[m.ID] = *m
	return nil
}

func (r tradeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.MarginTrade, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	return r.get(id), nil
}

func (r tradeRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.MarginTrade, error) {
	return r.get(id), nil
}

func (r tradeRepo) get(id uuid.UUID) *domain.MarginTrade {
	m, ok := r.l.trades[id]
	if !ok {
		return nil
	}
	return &m
}

func (r tradeRepo) Close(_ context.Context, _ pgx.Tx, m *domain.MarginTrade) (bool, error) {
	cur, ok := r.l.trades[m.ID]
	if !ok || cur.Status.IsTerminal() {
		return false, nil
	}
	cur.ExitPrice, cur.PnL, cur.Status = m.ExitPrice, m.PnL, m.Status
	cur.CloseReason, cur.ClosedAt = m.CloseReason, m.ClosedAt
	r.l.trades[m.ID] = cur
	return true, nil
}

type txRepo struct{ l *Ledger }

func (r txRepo) Create(_ context.Context, _ pgx.Tx, t *domain.Transaction) error {
	r.l.transactions = append(r.l.transactions, *t)
	return nil
}

type auditRepo struct{ l *Ledger }

func (r auditRepo) Append(_ context.Context, _ pgx.Tx, e *domain.AuditEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	r.l.audit = append(r.l.audit, *e)
	return nil
}

func (r auditRepo) Create(ctx context.Context, e *domain.AuditEntry) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	return r.Append(ctx, nil, e)
}

func (r auditRepo) ListByTarget(_ context.Context, targetType domain.AuditTarget, targetID string, limit int) ([]domain.AuditEntry, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []domain.AuditEntry
	for i := len(r.l.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if e := r.l.audit[i]; e.TargetType == targetType && e.TargetID == targetID {
			out = append(out, e)
		}
	}
	return out, nil
}

type amlRepo struct{ l *Ledger }

func (r amlRepo) CreateBatch(_ context.Context, checks []domain.AMLCheck) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, c := range checks {
		r.l.amlChecks[c.ID] = c
	}
	return nil
}

func (r amlRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.AMLCheck, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	c, ok := r.l.amlChecks[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r amlRepo) ListByAccount(_ context.Context, accountID uuid.UUID, limit int) ([]domain.AMLCheck, error) {
	return r.list(limit, func(c domain.AMLCheck) bool { return c.AccountID == accountID })
}

func (r amlRepo) ListUnresolved(_ context.Context, limit int) ([]domain.AMLCheck, error) {
	return r.list(limit, func(c domain.AMLCheck) bool { return !c.IsResolved() && c.Result != domain.AMLResultPass })
}

func (r amlRepo) list(limit int, keep func(domain.AMLCheck) bool) ([]domain.AMLCheck, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []domain.AMLCheck
	for _, c := range r.l.amlChecks {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r amlRepo) Resolve(_ context.Context, _ pgx.Tx, id uuid.UUID, resolvedBy uuid.UUID, notes string) (bool, error) {
	c, ok := r.l.amlChecks[id]
	if !ok || c.IsResolved() {
		return false, nil
	}
	now := time.Now().UTC()
	c.ResolvedBy, c.ResolvedAt, c.Notes = &resolvedBy, &now, &notes
	r.l.amlChecks[id] = c
	return true, nil
}

type activityRepo struct{ l *Ledger }

func (r activityRepo) CountTransactionsSince(_ context.Context, accountID uuid.UUID, since time.Time) (int64, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var n int64
	for _, t := range r.l.transactions {
		if t.AccountID == accountID && !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r activityRepo) SumDepositsSince(_ context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	sum := decimal.Zero
	for _, t := range r.l.transactions {
		if t.AccountID == accountID && t.Type == domain.TransactionTypeDeposit && !t.CreatedAt.Before(since) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r activityRepo) CountTradesSince(_ context.Context, accountID uuid.UUID, since time.Time) (int64, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var n int64
	for _, b := range r.l.binaries {
		if b.AccountID == accountID && !b.CreatedAt.Before(since) {
			n++
		}
	}
	for _, m := range r.l.trades {
		if m.AccountID == accountID && !m.OpenedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r activityRepo) SumTradeVolumeSince(_ context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	sum := decimal.Zero
	for _, b := range r.l.binaries {
		if b.AccountID == accountID && !b.CreatedAt.Before(since) {
			sum = sum.Add(b.Stake)
		}
	}
	for _, m := range r.l.trades {
		if m.AccountID == accountID && !m.OpenedAt.Before(since) {
			sum = sum.Add(m.Amount.Mul(m.EntryPrice))
		}
	}
	return sum, nil
}

func (r activityRepo) ListActiveAccounts(_ context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, t := range r.l.transactions {
		if t.CreatedAt.Before(since) || seen[t.AccountID] {
			continue
		}
		if r.l.accounts[t.AccountID].Status != domain.AccountStatusActive {
			continue
		}
		seen[t.AccountID] = true
		out = append(out, t.AccountID)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
