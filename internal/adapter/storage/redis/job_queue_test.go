package redis

import (
	"context"
	"testing"
	"time"

	"settlement-core/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *JobQueue {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewJobQueue(client, "binary-resolution", time.Minute)
}

func newResolveJob(runAt time.Time) *domain.Job {
	contractID := uuid.New()
	return &domain.Job{
		ID:          domain.BinaryJobID(contractID),
		Kind:        domain.JobKindResolveBinary,
		ContractID:  contractID,
		RunAt:       runAt,
		MaxAttempts: 3,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestJobQueue_Enqueue_UniqueByID(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	job := newResolveJob(time.Now().Add(time.Minute))

	added, err := q.Enqueue(ctx, job)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = q.Enqueue(ctx, job)
	require.NoError(t, err)
	assert.False(t, added, "duplicate schedule must be a no-op")

	exists, err := q.Exists(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestJobQueue_Claim_OnlyDueJobs(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	due := newResolveJob(now.Add(-time.Second))
	later := newResolveJob(now.Add(time.Hour))
	_, err := q.Enqueue(ctx, due)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, later)
	require.NoError(t, err)

	jobs, err := q.Claim(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, due.ID, jobs[0].ID)
	assert.Equal(t, due.ContractID, jobs[0].ContractID)
	assert.Equal(t, 1, jobs[0].Attempts)

	jobs, err = q.Claim(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs, "claimed job must not be handed out twice")
}

func TestJobQueue_Claim_RespectsLimit(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		_, err := q.Enqueue(ctx, newResolveJob(now.Add(-time.Second)))
		require.NoError(t, err)
	}

	jobs, err := q.Claim(ctx, now, 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestJobQueue_Claim_RequeuesStalled(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()
	job := newResolveJob(now.Add(-time.Second))

	_, err := q.Enqueue(ctx, job)
	require.NoError(t, err)
	_, err = q.Claim(ctx, now, 1)
	require.NoError(t, err)

	// Past the visibility timeout the worker is presumed dead.
	jobs, err := q.Claim(ctx, now.Add(2*time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
	assert.Equal(t, 2, jobs[0].Attempts)
}

func TestJobQueue_RetryThenComplete(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()
	job := newResolveJob(now.Add(-time.Second))

	_, err := q.Enqueue(ctx, job)
	require.NoError(t, err)
	jobs, err := q.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	claimed := jobs[0]
	claimed.LastError = "no market data"
	require.NoError(t, q.Retry(ctx, &claimed, now.Add(2*time.Second)))

	jobs, err = q.Claim(ctx, now.Add(time.Second), 1)
	require.NoError(t, err)
	assert.Empty(t, jobs, "backoff not elapsed")

	jobs, err = q.Claim(ctx, now.Add(3*time.Second), 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 2, jobs[0].Attempts)
	assert.Equal(t, "no market data", jobs[0].LastError)

	require.NoError(t, q.Complete(ctx, &jobs[0]))

	exists, err := q.Exists(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Active)
}

func TestJobQueue_Fail_AllowsReenqueue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()
	job := newResolveJob(now.Add(-time.Second))

	_, err := q.Enqueue(ctx, job)
	require.NoError(t, err)
	jobs, err := q.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, &jobs[0], "contract not found"))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Failed)

	added, err := q.Enqueue(ctx, job)
	require.NoError(t, err)
	assert.True(t, added)

	stats, err = q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestJobQueue_Remove(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	pending := newResolveJob(now.Add(time.Hour))
	claimed := newResolveJob(now.Add(-time.Second))
	_, err := q.Enqueue(ctx, pending)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, claimed)
	require.NoError(t, err)
	_, err = q.Claim(ctx, now, 10)
	require.NoError(t, err)

	removed, err := q.Remove(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = q.Remove(ctx, claimed.ID)
	require.NoError(t, err)
	assert.False(t, removed, "a claimed job cannot be cancelled")

	removed, err = q.Remove(ctx, "binary-unknown")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestJobQueue_Stats(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	_, err := q.Enqueue(ctx, newResolveJob(now.Add(-time.Minute)))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, newResolveJob(now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, newResolveJob(now.Add(2*time.Hour)))
	require.NoError(t, err)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Waiting)
	assert.Equal(t, int64(2), stats.Delayed)
	assert.Equal(t, int64(0), stats.Completed)
}

func TestJobQueue_StaleClaimCannotFinishJob(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()
	job := newResolveJob(now.Add(-time.Second))

	_, err := q.Enqueue(ctx, job)
	require.NoError(t, err)
	first, err := q.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The first worker stalls past visibility and the job is handed out again.
	second, err := q.Claim(ctx, now.Add(2*time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, second, 1)

	stale := first[0]
	assert.ErrorIs(t, q.Complete(ctx, &stale), domain.ErrJobClaimLost)
	assert.ErrorIs(t, q.Retry(ctx, &stale, now.Add(time.Hour)), domain.ErrJobClaimLost)
	assert.ErrorIs(t, q.Fail(ctx, &stale, "late"), domain.ErrJobClaimLost)

	exists, err := q.Exists(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, exists, "live claim keeps its body")

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(1), stats.Active)

	require.NoError(t, q.Complete(ctx, &second[0]))
	stats, err = q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Active)
}

func TestJobQueue_FinishUnclaimedJob(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	job := newResolveJob(time.Now().Add(time.Hour))

	_, err := q.Enqueue(ctx, job)
	require.NoError(t, err)

	assert.ErrorIs(t, q.Complete(ctx, job), domain.ErrJobClaimLost)

	exists, err := q.Exists(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
