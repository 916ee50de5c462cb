package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while owner still holds it, so a lock
// that expired and was re-acquired by someone else is never released by us.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock implements ports.DistributedLock using Redis SET NX with a TTL.
type Lock struct {
	client *goredis.Client
	prefix string
}

// NewLock creates a new Redis-backed distributed lock.
func NewLock(client *goredis.Client) *Lock {
	return &Lock{
		client: client,
		prefix: "lock:",
	}
}

// Acquire sets the lock record if no unexpired record exists. It never blocks
// and is not reentrant: a second Acquire by the same owner reports contention.
func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration, owner string) (domain.LockOutcome, error) {
	if ttl <= 0 {
		return domain.LockBackendError, fmt.Errorf("lock %s: ttl must be positive", key)
	}

	result, err := l.client.SetArgs(ctx, l.prefix+key, owner, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.LockContended, nil
		}
		return domain.LockBackendError, fmt.Errorf("redis lock acquire %s: %w", key, err)
	}
	if result != "OK" {
		return domain.LockContended, nil
	}
	return domain.LockAcquired, nil
}

// Release removes the lock if owner still holds it. A mismatched or expired
// owner is a no-op that returns false.
func (l *Lock) Release(ctx context.Context, key string, owner string) (bool, error) {
	n, err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, owner).Int64()
	if err != nil {
		return false, fmt.Errorf("redis lock release %s: %w", key, err)
	}
	return n == 1, nil
}
