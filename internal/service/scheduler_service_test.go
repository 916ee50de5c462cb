package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports/mocks"
	"settlement-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type schedulerTestDeps struct {
	svc        *SchedulerServiceImpl
	queue      *mocks.MockJobQueue
	binaryRepo *mocks.MockBinaryTradeRepository
	settlement *mocks.MockSettlementService
	now        time.Time
	ctrl       *gomock.Controller
}

func setupSchedulerService(t *testing.T) *schedulerTestDeps {
	ctrl := gomock.NewController(t)
	d := &schedulerTestDeps{
		queue:      mocks.NewMockJobQueue(ctrl),
		binaryRepo: mocks.NewMockBinaryTradeRepository(ctrl),
		settlement: mocks.NewMockSettlementService(ctrl),
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ctrl:       ctrl,
	}
	d.svc = NewSchedulerService(d.queue, d.binaryRepo, d.settlement, SchedulerOptions{}, newTestLogger())
	d.svc.now = func() time.Time { return d.now }
	return d
}

// ==================== ScheduleResolution Tests ====================

func TestSchedulerService_ScheduleResolution(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	id := uuid.New()
	expiry := d.now.Add(time.Minute)
	d.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job *domain.Job) (bool, error) {
			assert.Equal(t, domain.BinaryJobID(id), job.ID)
			assert.Equal(t, domain.JobKindResolveBinary, job.Kind)
			assert.Equal(t, id, job.ContractID)
			assert.Equal(t, expiry, job.RunAt)
			assert.Equal(t, 3, job.MaxAttempts)
			return true, nil
		},
	)

	require.NoError(t, d.svc.ScheduleResolution(context.Background(), id, expiry))
}

func TestSchedulerService_ScheduleResolution_Duplicate(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	d.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(false, nil)
	require.NoError(t, d.svc.ScheduleResolution(context.Background(), uuid.New(), d.now.Add(time.Minute)))
}

func TestSchedulerService_ScheduleResolution_ExpiryInPast(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	err := d.svc.ScheduleResolution(context.Background(), uuid.New(), d.now.Add(-time.Millisecond))
	assert.True(t, apperror.HasCode(err, apperror.CodeExpiryInPast))
}

func TestSchedulerService_EnqueueResolution_FutureExpiry(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	expiry := d.now.Add(time.Second)
	d.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job *domain.Job) (bool, error) {
			assert.Equal(t, expiry, job.RunAt)
			return true, nil
		},
	)

	require.NoError(t, d.svc.EnqueueResolution(context.Background(), uuid.New(), expiry))
}

func TestSchedulerService_EnqueueResolution_ExpiryPassedDuringOpen(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	// A one-second contract whose open took longer than its lifetime.
	id := uuid.New()
	d.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job *domain.Job) (bool, error) {
			assert.Equal(t, id, job.ContractID)
			assert.Equal(t, d.now, job.RunAt)
			return true, nil
		},
	)

	require.NoError(t, d.svc.EnqueueResolution(context.Background(), id, d.now.Add(-200*time.Millisecond)))
}

func TestSchedulerService_ScheduleResolution_QueueError(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	d.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
	err := d.svc.ScheduleResolution(context.Background(), uuid.New(), d.now.Add(time.Minute))
	require.Error(t, err)
}

func TestSchedulerService_CancelResolution(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	id := uuid.New()
	d.queue.EXPECT().Remove(gomock.Any(), domain.BinaryJobID(id)).Return(true, nil)
	removed, err := d.svc.CancelResolution(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, removed)

	d.queue.EXPECT().Remove(gomock.Any(), domain.BinaryJobID(id)).Return(false, nil)
	removed, err = d.svc.CancelResolution(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, removed)
}

// ==================== HandleJob Tests ====================

func TestSchedulerService_HandleJob(t *testing.T) {
	id := uuid.New()
	job := domain.Job{ID: domain.BinaryJobID(id), Kind: domain.JobKindResolveBinary, ContractID: id, Attempts: 1, MaxAttempts: 3}

	tests := []struct {
		name      string
		err       error
		wantErr   bool
		retryable bool
	}{
		{"settled", nil, false, false},
		{"already resolved", apperror.ErrAlreadyResolved(), false, false},
		{"lock contention", apperror.ErrLockContention(), false, false},
		{"market data unavailable", apperror.ErrMarketDataUnavailable("BTC/USDT"), true, true},
		{"lock backend", apperror.ErrLockBackend(errors.New("timeout")), true, true},
		{"not found", apperror.ErrContractNotFound("binary contract"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupSchedulerService(t)
			defer d.ctrl.Finish()

			var res *domain.BinaryResolution
			if tt.err == nil {
				res = &domain.BinaryResolution{ContractID: id, Result: domain.ResultWin}
			}
			d.settlement.EXPECT().ResolveBinary(gomock.Any(), id).Return(res, tt.err)

			err := d.svc.HandleJob(context.Background(), job)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.retryable, apperror.IsRetryable(err))
		})
	}
}

func TestSchedulerService_HandleJob_UnknownKind(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	err := d.svc.HandleJob(context.Background(), domain.Job{ID: "x", Kind: "resolve-margin"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
	assert.False(t, apperror.IsRetryable(err))
}

// ==================== Sweep Tests ====================

func TestSchedulerService_Sweep(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	live, orphan := uuid.New(), uuid.New()
	d.binaryRepo.EXPECT().ListExpiredUnresolved(gomock.Any(), d.now, 500).Return([]domain.BinaryTrade{
		{ID: live}, {ID: orphan},
	}, nil)
	d.queue.EXPECT().Exists(gomock.Any(), domain.BinaryJobID(live)).Return(true, nil)
	d.queue.EXPECT().Exists(gomock.Any(), domain.BinaryJobID(orphan)).Return(false, nil)
	d.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job *domain.Job) (bool, error) {
			assert.Equal(t, orphan, job.ContractID)
			assert.Equal(t, d.now, job.RunAt)
			return true, nil
		},
	)

	report, err := d.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Requeued)
}

func TestSchedulerService_Sweep_Empty(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	d.binaryRepo.EXPECT().ListExpiredUnresolved(gomock.Any(), d.now, 500).Return(nil, nil)
	report, err := d.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SweepReport{}, *report)
}

func TestSchedulerService_Sweep_RepoError(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	d.binaryRepo.EXPECT().ListExpiredUnresolved(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
	_, err := d.svc.Sweep(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))
}

func TestSchedulerService_QueueStats(t *testing.T) {
	d := setupSchedulerService(t)
	defer d.ctrl.Finish()

	want := domain.QueueStats{Waiting: 2, Delayed: 5, Active: 1, Completed: 10, Failed: 1}
	d.queue.EXPECT().Stats(gomock.Any()).Return(want, nil)

	got, err := d.svc.QueueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
