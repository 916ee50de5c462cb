package domain

// LockOutcome is the result of a non-blocking lock acquisition.
// Contention is an expected outcome, not an error.
type LockOutcome int

const (
	LockBackendError LockOutcome = iota
	LockAcquired
	LockContended
)

func (o LockOutcome) String() string {
	switch o {
	case LockAcquired:
		return "acquired"
	case LockContended:
		return "contended"
	default:
		return "backend_error"
	}
}
