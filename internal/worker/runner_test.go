package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"settlement-core/internal/adapter/storage/redis"
	"settlement-core/internal/core/domain"
	"settlement-core/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(ctx context.Context, job domain.Job) error

func (f handlerFunc) HandleJob(ctx context.Context, job domain.Job) error { return f(ctx, job) }

type runnerFixture struct {
	queue  *redis.JobQueue
	runner *Runner
	now    time.Time
	mu     sync.Mutex
}

func newRunnerFixture(t *testing.T, h Handler, opts RunnerOptions) *runnerFixture {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &runnerFixture{
		queue: redis.NewJobQueue(client, "test", time.Minute),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.runner = NewRunner(f.queue, h, opts, zerolog.Nop())
	f.runner.now = f.clock
	return f
}

func (f *runnerFixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *runnerFixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *runnerFixture) enqueue(t *testing.T, maxAttempts int) *domain.Job {
	id := uuid.New()
	job := &domain.Job{
		ID:          domain.BinaryJobID(id),
		Kind:        domain.JobKindResolveBinary,
		ContractID:  id,
		RunAt:       f.clock(),
		MaxAttempts: maxAttempts,
		CreatedAt:   f.clock(),
	}
	added, err := f.queue.Enqueue(context.Background(), job)
	require.NoError(t, err)
	require.True(t, added)
	return job
}

func (f *runnerFixture) runOnce(t *testing.T) int {
	n, err := f.runner.RunOnce(context.Background())
	require.NoError(t, err)
	f.runner.Wait()
	return n
}

func TestRunner_CompletesJob(t *testing.T) {
	var calls atomic.Int32
	f := newRunnerFixture(t, handlerFunc(func(_ context.Context, job domain.Job) error {
		calls.Add(1)
		assert.Equal(t, 1, job.Attempts)
		return nil
	}), RunnerOptions{})
	job := f.enqueue(t, 3)

	assert.Equal(t, 1, f.runOnce(t))
	assert.Equal(t, int32(1), calls.Load())

	stats, err := f.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Active)

	exists, err := f.queue.Exists(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunner_RetriesWithBackoffThenFails(t *testing.T) {
	var attempts []int
	var mu sync.Mutex
	f := newRunnerFixture(t, handlerFunc(func(_ context.Context, job domain.Job) error {
		mu.Lock()
		attempts = append(attempts, job.Attempts)
		mu.Unlock()
		return apperror.ErrMarketDataUnavailable("BTC/USDT")
	}), RunnerOptions{BackoffBase: time.Second})
	f.enqueue(t, 3)

	assert.Equal(t, 1, f.runOnce(t))
	// Not due until base * 2^0 has passed.
	assert.Equal(t, 0, f.runOnce(t))
	f.advance(time.Second)
	assert.Equal(t, 1, f.runOnce(t))

	f.advance(time.Second)
	assert.Equal(t, 0, f.runOnce(t))
	f.advance(time.Second)
	assert.Equal(t, 1, f.runOnce(t))

	assert.Equal(t, []int{1, 2, 3}, attempts)

	stats, err := f.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Delayed+stats.Waiting+stats.Active)
}

func TestRunner_PermanentErrorFailsImmediately(t *testing.T) {
	f := newRunnerFixture(t, handlerFunc(func(context.Context, domain.Job) error {
		return apperror.ErrContractNotFound("binary contract")
	}), RunnerOptions{})
	f.enqueue(t, 3)

	assert.Equal(t, 1, f.runOnce(t))

	stats, err := f.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestRunner_UnknownErrorsAreRetried(t *testing.T) {
	f := newRunnerFixture(t, handlerFunc(func(context.Context, domain.Job) error {
		return errors.New("connection reset by peer")
	}), RunnerOptions{})
	f.enqueue(t, 3)

	assert.Equal(t, 1, f.runOnce(t))

	stats, err := f.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(1), stats.Waiting+stats.Delayed)
}

func TestRunner_RespectsConcurrency(t *testing.T) {
	release := make(chan struct{})
	var inFlight, peak atomic.Int32
	f := newRunnerFixture(t, handlerFunc(func(context.Context, domain.Job) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		return nil
	}), RunnerOptions{Concurrency: 2, RateLimit: 1000})
	for i := 0; i < 5; i++ {
		f.enqueue(t, 3)
	}

	n, err := f.runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, time.Second, time.Millisecond)

	// All slots busy: nothing more is claimed.
	n, err = f.runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	close(release)
	f.runner.Wait()
	assert.Equal(t, int32(2), peak.Load())

	assert.Equal(t, 2, f.runOnce(t))
	assert.Equal(t, 1, f.runOnce(t))
}

func TestRunner_StalledAttemptDoesNotFinishReclaimedJob(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	f := newRunnerFixture(t, handlerFunc(func(_ context.Context, job domain.Job) error {
		started.Add(1)
		if job.Attempts == 1 {
			<-release
			return errors.New("late failure")
		}
		return nil
	}), RunnerOptions{Concurrency: 2, RateLimit: 1000})
	job := f.enqueue(t, 3)

	n, err := f.runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Eventually(t, func() bool { return started.Load() == 1 }, time.Second, time.Millisecond)

	// Past the visibility timeout the job is handed out again and completes.
	f.advance(2 * time.Minute)
	n, err = f.runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Eventually(t, func() bool {
		stats, err := f.queue.Stats(context.Background())
		return err == nil && stats.Completed == 1
	}, time.Second, time.Millisecond)

	close(release)
	f.runner.Wait()

	stats, err := f.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(0), stats.Active+stats.Waiting+stats.Delayed)

	exists, err := f.queue.Exists(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunner_AttemptTimeout(t *testing.T) {
	f := newRunnerFixture(t, handlerFunc(func(ctx context.Context, _ domain.Job) error {
		<-ctx.Done()
		return ctx.Err()
	}), RunnerOptions{AttemptTimeout: 20 * time.Millisecond})
	f.enqueue(t, 1)

	assert.Equal(t, 1, f.runOnce(t))

	stats, err := f.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	f := newRunnerFixture(t, handlerFunc(func(context.Context, domain.Job) error {
		calls.Add(1)
		return nil
	}), RunnerOptions{PollInterval: 5 * time.Millisecond})
	f.enqueue(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.runner.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	done := make(chan struct{})

	go func() {
		Every(ctx, "test", 5*time.Millisecond, func(context.Context) error {
			if runs.Add(1) == 2 {
				return errors.New("transient")
			}
			return nil
		}, zerolog.Nop())
		close(done)
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic loop did not stop")
	}
}
