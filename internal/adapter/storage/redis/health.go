package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	healthKey     = "health:settlement"
	healthTimeout = 2 * time.Second
)

// HealthCheck requires a writable primary. Contract locks and the
// resolution queue write on every call, and a read-only replica still
// answers PING.
type HealthCheck struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewHealthCheck(client goredis.Cmdable) *HealthCheck {
	return &HealthCheck{client: client, now: time.Now}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	stamp := h.now().UTC().Format(time.RFC3339Nano)
	if err := h.client.Set(ctx, healthKey, stamp, 10*time.Second).Err(); err != nil {
		return fmt.Errorf("lock store not writable: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}
