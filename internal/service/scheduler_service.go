package service

import (
	"context"
	"fmt"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/metrics"
	"settlement-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SchedulerOptions tunes resolution scheduling.
type SchedulerOptions struct {
	MaxAttempts int
	SweepBatch  int
}

// SchedulerServiceImpl implements ports.SchedulerService.
type SchedulerServiceImpl struct {
	queue      ports.JobQueue
	binaryRepo ports.BinaryTradeRepository
	settlement ports.SettlementService
	opts       SchedulerOptions
	now        func() time.Time
	log        zerolog.Logger
}

func NewSchedulerService(
	queue ports.JobQueue,
	binaryRepo ports.BinaryTradeRepository,
	settlement ports.SettlementService,
	opts SchedulerOptions,
	log zerolog.Logger,
) *SchedulerServiceImpl {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = 500
	}
	return &SchedulerServiceImpl{
		queue:      queue,
		binaryRepo: binaryRepo,
		settlement: settlement,
		opts:       opts,
		now:        time.Now,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// ScheduleResolution enqueues the resolution job to fire at expiresAt.
// Scheduling the same contract twice is a no-op.
func (s *SchedulerServiceImpl) ScheduleResolution(ctx context.Context, contractID uuid.UUID, expiresAt time.Time) error {
	if expiresAt.Before(s.now()) {
		return apperror.ErrExpiryInPast()
	}
	return s.enqueue(ctx, contractID, expiresAt)
}

// EnqueueResolution enqueues a contract whose expiry was checked when it was
// opened. An expiry that passed while the open committed is due immediately.
func (s *SchedulerServiceImpl) EnqueueResolution(ctx context.Context, contractID uuid.UUID, expiresAt time.Time) error {
	runAt := expiresAt
	if now := s.now(); runAt.Before(now) {
		runAt = now
	}
	return s.enqueue(ctx, contractID, runAt)
}

// CancelResolution removes a job that no worker has claimed yet.
func (s *SchedulerServiceImpl) CancelResolution(ctx context.Context, contractID uuid.UUID) (bool, error) {
	removed, err := s.queue.Remove(ctx, domain.BinaryJobID(contractID))
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("remove job: %w", err))
	}
	if removed {
		s.log.Info().Str("contract_id", contractID.String()).Msg("resolution cancelled")
	}
	return removed, nil
}

// HandleJob runs one resolution attempt. Returning nil completes the job;
// retryable errors (see apperror.IsRetryable) are retried with backoff and
// everything else fails the job permanently.
func (s *SchedulerServiceImpl) HandleJob(ctx context.Context, job domain.Job) error {
	if job.Kind != domain.JobKindResolveBinary {
		return apperror.ErrInvalidState(fmt.Sprintf("unknown job kind %q", job.Kind))
	}

	res, err := s.settlement.ResolveBinary(ctx, job.ContractID)
	switch {
	case err == nil:
		s.log.Debug().
			Str("job_id", job.ID).
			Int("attempt", job.Attempts).
			Str("result", string(res.Result)).
			Msg("resolution job settled contract")
		return nil
	case apperror.HasCode(err, apperror.CodeAlreadyResolved),
		apperror.HasCode(err, apperror.CodeLockContention):
		// Another path (admin, sweep, duplicate delivery) owns or owned the
		// settlement.
		s.log.Debug().Str("job_id", job.ID).Err(err).Msg("resolution already handled elsewhere")
		return nil
	default:
		return err
	}
}

// Sweep re-enqueues expired contracts that have no result and no live job.
func (s *SchedulerServiceImpl) Sweep(ctx context.Context) (*domain.SweepReport, error) {
	now := s.now()
	trades, err := s.binaryRepo.ListExpiredUnresolved(ctx, now, s.opts.SweepBatch)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list expired: %w", err))
	}

	report := &domain.SweepReport{Scanned: len(trades)}
	for i := range trades {
		id := trades[i].ID
		exists, err := s.queue.Exists(ctx, domain.BinaryJobID(id))
		if err != nil {
			return report, apperror.InternalError(fmt.Errorf("check job: %w", err))
		}
		if exists {
			continue
		}
		added, err := s.queue.Enqueue(ctx, s.newJob(id, now))
		if err != nil {
			return report, apperror.InternalError(fmt.Errorf("requeue %s: %w", id, err))
		}
		if added {
			report.Requeued++
		}
	}

	if report.Requeued > 0 {
		metrics.SweepRequeued.Add(float64(report.Requeued))
		s.log.Warn().
			Int("scanned", report.Scanned).
			Int("requeued", report.Requeued).
			Msg("sweep recovered expired contracts")
	}
	return report, nil
}

// QueueStats returns queue counts and mirrors them into metrics.
func (s *SchedulerServiceImpl) QueueStats(ctx context.Context) (domain.QueueStats, error) {
	stats, err := s.queue.Stats(ctx)
	if err != nil {
		return domain.QueueStats{}, apperror.InternalError(fmt.Errorf("queue stats: %w", err))
	}
	metrics.QueueDepth.WithLabelValues("waiting").Set(float64(stats.Waiting))
	metrics.QueueDepth.WithLabelValues("delayed").Set(float64(stats.Delayed))
	metrics.QueueDepth.WithLabelValues("active").Set(float64(stats.Active))
	metrics.QueueDepth.WithLabelValues("failed").Set(float64(stats.Failed))
	return stats, nil
}

func (s *SchedulerServiceImpl) enqueue(ctx context.Context, contractID uuid.UUID, runAt time.Time) error {
	added, err := s.queue.Enqueue(ctx, s.newJob(contractID, runAt))
	if err != nil {
		return apperror.InternalError(fmt.Errorf("enqueue job: %w", err))
	}
	if !added {
		s.log.Debug().Str("contract_id", contractID.String()).Msg("resolution already scheduled")
		return nil
	}
	s.log.Info().
		Str("contract_id", contractID.String()).
		Time("run_at", runAt).
		Msg("resolution scheduled")
	return nil
}

func (s *SchedulerServiceImpl) newJob(contractID uuid.UUID, runAt time.Time) *domain.Job {
	return &domain.Job{
		ID:          domain.BinaryJobID(contractID),
		Kind:        domain.JobKindResolveBinary,
		ContractID:  contractID,
		RunAt:       runAt,
		MaxAttempts: s.opts.MaxAttempts,
		CreatedAt:   s.now().UTC(),
	}
}
