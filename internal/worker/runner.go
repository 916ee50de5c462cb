package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/metrics"
	"settlement-core/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Handler runs one attempt of a job. ports.SchedulerService satisfies it.
type Handler interface {
	HandleJob(ctx context.Context, job domain.Job) error
}

// RunnerOptions bounds how fast and how wide jobs are processed.
type RunnerOptions struct {
	Concurrency    int
	RateLimit      float64 // job starts per second
	RateBurst      int
	PollInterval   time.Duration
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
}

// Runner claims due jobs and dispatches them to a Handler with bounded
// concurrency, a start-rate limit and exponential backoff on retryable errors.
type Runner struct {
	queue   ports.JobQueue
	handler Handler
	limiter *rate.Limiter
	sem     chan struct{}
	opts    RunnerOptions
	now     func() time.Time
	log     zerolog.Logger

	wg sync.WaitGroup
}

func NewRunner(queue ports.JobQueue, handler Handler, opts RunnerOptions, log zerolog.Logger) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 50
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = opts.Concurrency
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 15 * time.Second
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 2 * time.Second
	}
	return &Runner{
		queue:   queue,
		handler: handler,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		sem:     make(chan struct{}, opts.Concurrency),
		opts:    opts,
		now:     time.Now,
		log:     log.With().Str("component", "job_runner").Logger(),
	}
}

// Run polls until ctx is cancelled, then waits for in-flight jobs.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info().
		Int("concurrency", r.opts.Concurrency).
		Float64("rate_limit", r.opts.RateLimit).
		Dur("poll_interval", r.opts.PollInterval).
		Msg("job runner started")

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.Error().Err(err).Msg("claim jobs failed")
		}
		select {
		case <-ctx.Done():
			r.Wait()
			r.log.Info().Msg("job runner stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce claims as many due jobs as there are free slots and starts them.
// It returns the number of jobs started.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	free := cap(r.sem) - len(r.sem)
	if free == 0 {
		return 0, nil
	}

	jobs, err := r.queue.Claim(ctx, r.now(), free)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}

	started := 0
	for _, job := range jobs {
		// Unstarted claims go back to the queue once their visibility expires.
		if err := r.limiter.Wait(ctx); err != nil {
			return started, err
		}
		r.sem <- struct{}{}
		r.wg.Add(1)
		go func(job domain.Job) {
			defer r.wg.Done()
			defer func() { <-r.sem }()
			r.process(ctx, job)
		}(job)
		started++
	}
	return started, nil
}

// Wait blocks until every started job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) process(ctx context.Context, job domain.Job) {
	log := r.log.With().Str("job_id", job.ID).Int("attempt", job.Attempts).Logger()

	attemptCtx, cancel := context.WithTimeout(ctx, r.opts.AttemptTimeout)
	err := r.handler.HandleJob(attemptCtx, job)
	cancel()

	// Queue bookkeeping must survive shutdown.
	qctx := context.WithoutCancel(ctx)

	switch {
	case err == nil:
		metrics.JobOutcomes.WithLabelValues("completed").Inc()
		if err := r.queue.Complete(qctx, &job); err != nil {
			logBookkeeping(log, "complete", err)
		}

	case apperror.IsRetryable(err) && !job.Exhausted():
		delay := domain.BackoffDelay(r.opts.BackoffBase, job.Attempts)
		metrics.JobOutcomes.WithLabelValues("retried").Inc()
		log.Warn().Err(err).Dur("retry_in", delay).Msg("job attempt failed, retrying")
		job.LastError = err.Error()
		if err := r.queue.Retry(qctx, &job, r.now().Add(delay)); err != nil {
			logBookkeeping(log, "retry", err)
		}

	default:
		metrics.JobOutcomes.WithLabelValues("failed").Inc()
		log.Error().Err(err).Int("max_attempts", job.MaxAttempts).Msg("job failed permanently")
		if err := r.queue.Fail(qctx, &job, err.Error()); err != nil {
			logBookkeeping(log, "fail", err)
		}
	}
}

// logBookkeeping reports a queue update that did not apply. A lost claim
// means another worker now owns the job and is expected after a stall.
func logBookkeeping(log zerolog.Logger, op string, err error) {
	if errors.Is(err, domain.ErrJobClaimLost) {
		log.Warn().Str("op", op).Msg("job claim expired before the attempt finished")
		return
	}
	log.Error().Err(err).Str("op", op).Msg("job bookkeeping failed")
}
