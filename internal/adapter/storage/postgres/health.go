package postgres

import (
	"context"
	"fmt"
	"time"
)

// settlementTables must all exist before the ledger can accept trades.
var settlementTables = []string{
	"users", "wallets", "binary_trades", "trades",
	"transactions", "audit_logs", "aml_checks",
}

const healthTimeout = 2 * time.Second

// HealthCheck reports the ledger database unhealthy when it is unreachable
// or when the settlement schema has not been migrated.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var present int64
	err := h.pool.QueryRow(ctx,
		`SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ANY($1)`,
		settlementTables,
	).Scan(&present)
	if err != nil {
		return fmt.Errorf("ledger database: %w", err)
	}
	if int(present) < len(settlementTables) {
		return fmt.Errorf("ledger schema not migrated: %d of %d tables present", present, len(settlementTables))
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
