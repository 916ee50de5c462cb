package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"settlement-core/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// Job ids are unique across the delayed and active sets for as long as the
// job body lives in the jobs hash. Completed and failed jobs drop their body,
// so a recovery sweep can enqueue the same id again.
var enqueueScript = goredis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("ZADD", KEYS[2], ARGV[3], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
return 1
`)

// claimScript first puts active jobs whose visibility deadline passed back
// into the delayed set, then moves up to ARGV[2] due jobs to active.
// Returns a flat list of body, attempts pairs.
var claimScript = goredis.NewScript(`
local stalled = redis.call("ZRANGEBYSCORE", KEYS[2], "-inf", ARGV[1])
for _, id in ipairs(stalled) do
	redis.call("ZREM", KEYS[2], id)
	redis.call("ZADD", KEYS[1], ARGV[1], id)
end
local ids = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, tonumber(ARGV[2]))
local out = {}
for _, id in ipairs(ids) do
	redis.call("ZREM", KEYS[1], id)
	local body = redis.call("HGET", KEYS[3], id)
	if body then
		redis.call("ZADD", KEYS[2], ARGV[3], id)
		local attempts = redis.call("HINCRBY", KEYS[4], id, 1)
		table.insert(out, body)
		table.insert(out, attempts)
	end
end
return out
`)

// removeScript only removes jobs that have not been claimed yet.
var removeScript = goredis.NewScript(`
if redis.call("ZREM", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HDEL", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
return 1
`)

// The attempt number handed out by Claim is the claim token. A worker that
// outlived its visibility deadline no longer matches it and must not touch
// the job: Complete, Retry and Fail return 0 for it.
const ownsClaim = `
if not redis.call("ZSCORE", KEYS[1], ARGV[1]) then
	return 0
end
if redis.call("HGET", KEYS[3], ARGV[1]) ~= ARGV[2] then
	return 0
end
`

var completeScript = goredis.NewScript(ownsClaim + `
redis.call("ZREM", KEYS[1], ARGV[1])
redis.call("HDEL", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
redis.call("INCR", KEYS[4])
return 1
`)

var retryScript = goredis.NewScript(ownsClaim + `
redis.call("ZREM", KEYS[1], ARGV[1])
redis.call("HSET", KEYS[2], ARGV[1], ARGV[3])
redis.call("ZADD", KEYS[4], ARGV[4], ARGV[1])
return 1
`)

var failScript = goredis.NewScript(ownsClaim + `
redis.call("ZREM", KEYS[1], ARGV[1])
redis.call("HDEL", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
redis.call("HSET", KEYS[4], ARGV[1], ARGV[3])
return 1
`)

// JobQueue implements ports.JobQueue as a Redis delayed queue.
type JobQueue struct {
	client     *goredis.Client
	visibility time.Duration
	delayed    string // ZSET id -> run at (ms)
	active     string // ZSET id -> visibility deadline (ms)
	jobs       string // HASH id -> job JSON
	attempts   string // HASH id -> attempts started
	failed     string // HASH id -> job JSON
	completed  string // counter
}

// NewJobQueue creates a queue namespaced by name. Claimed jobs that are not
// completed, retried or failed within visibility are handed out again.
func NewJobQueue(client *goredis.Client, name string, visibility time.Duration) *JobQueue {
	prefix := "queue:" + name + ":"
	return &JobQueue{
		client:     client,
		visibility: visibility,
		delayed:    prefix + "delayed",
		active:     prefix + "active",
		jobs:       prefix + "jobs",
		attempts:   prefix + "attempts",
		failed:     prefix + "failed",
		completed:  prefix + "completed",
	}
}

// Enqueue adds a job due at job.RunAt. Returns false if the id is already queued.
func (q *JobQueue) Enqueue(ctx context.Context, job *domain.Job) (bool, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("marshal job: %w", err)
	}

	n, err := enqueueScript.Run(ctx, q.client,
		[]string{q.jobs, q.delayed, q.failed},
		job.ID, body, job.RunAt.UnixMilli(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis enqueue %s: %w", job.ID, err)
	}
	return n == 1, nil
}

// Claim moves up to limit jobs due at now into the active set.
func (q *JobQueue) Claim(ctx context.Context, now time.Time, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		return nil, nil
	}

	res, err := claimScript.Run(ctx, q.client,
		[]string{q.delayed, q.active, q.jobs, q.attempts},
		now.UnixMilli(), limit, now.Add(q.visibility).UnixMilli(),
	).Slice()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis claim: %w", err)
	}

	jobs := make([]domain.Job, 0, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		body, ok := res[i].(string)
		if !ok {
			return nil, fmt.Errorf("redis claim: unexpected body type %T", res[i])
		}
		var job domain.Job
		if err := json.Unmarshal([]byte(body), &job); err != nil {
			return nil, fmt.Errorf("unmarshal job: %w", err)
		}
		if attempts, ok := res[i+1].(int64); ok {
			job.Attempts = int(attempts)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Complete drops a finished job and bumps the completed counter.
func (q *JobQueue) Complete(ctx context.Context, job *domain.Job) error {
	n, err := completeScript.Run(ctx, q.client,
		[]string{q.active, q.jobs, q.attempts, q.completed},
		job.ID, job.Attempts,
	).Int64()
	if err != nil {
		return fmt.Errorf("redis complete %s: %w", job.ID, err)
	}
	if n == 0 {
		return domain.ErrJobClaimLost
	}
	return nil
}

// Retry moves an active job back to the delayed set, due at runAt.
func (q *JobQueue) Retry(ctx context.Context, job *domain.Job, runAt time.Time) error {
	job.RunAt = runAt
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	n, err := retryScript.Run(ctx, q.client,
		[]string{q.active, q.jobs, q.attempts, q.delayed},
		job.ID, job.Attempts, body, runAt.UnixMilli(),
	).Int64()
	if err != nil {
		return fmt.Errorf("redis retry %s: %w", job.ID, err)
	}
	if n == 0 {
		return domain.ErrJobClaimLost
	}
	return nil
}

// Fail parks a job in the failed set with the reason it gave up.
func (q *JobQueue) Fail(ctx context.Context, job *domain.Job, reason string) error {
	job.LastError = reason
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	n, err := failScript.Run(ctx, q.client,
		[]string{q.active, q.jobs, q.attempts, q.failed},
		job.ID, job.Attempts, body,
	).Int64()
	if err != nil {
		return fmt.Errorf("redis fail %s: %w", job.ID, err)
	}
	if n == 0 {
		return domain.ErrJobClaimLost
	}
	return nil
}

// Remove cancels a job that has not been claimed. Claimed jobs cannot be removed.
func (q *JobQueue) Remove(ctx context.Context, jobID string) (bool, error) {
	n, err := removeScript.Run(ctx, q.client, []string{q.delayed, q.jobs, q.attempts}, jobID).Int64()
	if err != nil {
		return false, fmt.Errorf("redis remove %s: %w", jobID, err)
	}
	return n == 1, nil
}

// Exists reports whether a job is waiting, delayed or active.
func (q *JobQueue) Exists(ctx context.Context, jobID string) (bool, error) {
	ok, err := q.client.HExists(ctx, q.jobs, jobID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", jobID, err)
	}
	return ok, nil
}

// Stats returns queue counts. Waiting jobs are due but not yet claimed.
func (q *JobQueue) Stats(ctx context.Context) (domain.QueueStats, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	var (
		waiting, delayed, active, failed *goredis.IntCmd
		completed                        *goredis.StringCmd
	)
	_, err := q.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		waiting = pipe.ZCount(ctx, q.delayed, "-inf", now)
		delayed = pipe.ZCount(ctx, q.delayed, "("+now, "+inf")
		active = pipe.ZCard(ctx, q.active)
		failed = pipe.HLen(ctx, q.failed)
		completed = pipe.Get(ctx, q.completed)
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return domain.QueueStats{}, fmt.Errorf("redis queue stats: %w", err)
	}

	stats := domain.QueueStats{
		Waiting: waiting.Val(),
		Delayed: delayed.Val(),
		Active:  active.Val(),
		Failed:  failed.Val(),
	}
	if n, err := completed.Int64(); err == nil {
		stats.Completed = n
	}
	return stats, nil
}
