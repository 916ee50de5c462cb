package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobKind identifies the handler a queued job is dispatched to.
type JobKind string

const JobKindResolveBinary JobKind = "resolve-binary"

// ErrJobClaimLost is returned when a worker finishes a job whose claim
// expired and was handed to another worker.
var ErrJobClaimLost = errors.New("job claim lost")

// Job is a deferred unit of work in the resolution queue.
type Job struct {
	ID          string    `json:"id"`
	Kind        JobKind   `json:"kind"`
	ContractID  uuid.UUID `json:"contract_id"`
	RunAt       time.Time `json:"run_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BinaryJobID is the unique job id for a contract's resolution.
func BinaryJobID(contractID uuid.UUID) string {
	return "binary-" + contractID.String()
}

// Exhausted reports whether no retries remain after the current attempt.
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// BackoffDelay returns base * 2^(attempt-1), the delay before the next try.
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// QueueStats is a point-in-time snapshot of the resolution queue.
type QueueStats struct {
	Waiting   int64 `json:"waiting"`
	Delayed   int64 `json:"delayed"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// SweepReport summarizes one recovery sweep.
type SweepReport struct {
	Scanned  int `json:"scanned"`
	Requeued int `json:"requeued"`
}
