package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// allowScript increments the window counter and arms its expiry on first hit.
// Returns {count, remaining ttl in ms}.
var allowScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RateLimitStore keeps fixed-window request counters per actor and route group.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
}

func NewRateLimitStore(client *goredis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
	}
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// Allow counts one request against key within window. The window starts at
// the first request, so bursts cannot straddle two aligned windows.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	res, err := allowScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit %s: %w", key, err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("redis rate limit %s: unexpected reply length %d", key, len(res))
	}

	count, ttl := res[0], res[1]
	if ttl < 0 {
		ttl = window.Milliseconds()
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(ttl) * time.Millisecond).Unix(),
	}, nil
}
