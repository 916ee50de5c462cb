package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes referenced outside this package (job runner, handlers, tests).
const (
	CodeContractNotFound      = "TRD_001"
	CodeAlreadyResolved       = "TRD_002"
	CodeLockContention        = "TRD_003"
	CodeInvalidState          = "TRD_004"
	CodeInvalidDirection      = "TRD_005"
	CodeMarketDataUnavailable = "MKT_001"
	CodeStalePrice            = "MKT_002"
	CodeExpiryInPast          = "SCH_001"
	CodeInsufficientFunds     = "ACC_001"
	CodeWalletLocked          = "ACC_002"
	CodeNotFound              = "ACC_003"
	CodeInvalidAmount         = "ACC_004"
	CodeAccountFrozen         = "ACC_005"
	CodePayoutRateOutOfRange  = "SET_001"
	CodeInvalidToken          = "AUTH_001"
	CodeForbidden             = "AUTH_002"
	CodeRateLimitExceeded     = "RATE_001"
	CodePayloadTooLarge       = "RATE_002"
	CodeDatabase              = "SYS_001"
	CodeLockBackend           = "SYS_002"
	CodePublish               = "SYS_003"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsRetryable reports whether a settlement attempt that failed with err may be
// repeated later. Unknown (non-AppError) errors are treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return true
	}
	switch appErr.Code {
	case CodeMarketDataUnavailable, CodeStalePrice, CodeDatabase, CodeLockBackend, CodePublish:
		return true
	}
	return false
}

// ---- Contract lifecycle (TRD) ----

func ErrContractNotFound(kind string) *AppError {
	return New(CodeContractNotFound, fmt.Sprintf("%s not found", kind), http.StatusNotFound)
}

func ErrAlreadyResolved() *AppError {
	return New(CodeAlreadyResolved, "Contract already resolved", http.StatusConflict)
}

// ErrLockContention means another resolver holds the contract; callers must not
// repeat the effect.
func ErrLockContention() *AppError {
	return New(CodeLockContention, "Contract is being settled elsewhere", http.StatusConflict)
}

func ErrInvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusConflict)
}

func ErrInvalidDirection() *AppError {
	return New(CodeInvalidDirection, "Invalid direction", http.StatusBadRequest)
}

// ---- Market data (MKT) ----

func ErrMarketDataUnavailable(symbol string) *AppError {
	return New(CodeMarketDataUnavailable, fmt.Sprintf("No market data for %s", symbol), http.StatusServiceUnavailable)
}

func ErrStalePrice(symbol string) *AppError {
	return New(CodeStalePrice, fmt.Sprintf("Market data for %s is stale", symbol), http.StatusServiceUnavailable)
}

// ---- Scheduling (SCH) ----

func ErrExpiryInPast() *AppError {
	return New(CodeExpiryInPast, "Expiry time is in the past", http.StatusBadRequest)
}

// ---- Accounts & wallets (ACC) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrWalletLocked() *AppError {
	return New(CodeWalletLocked, "Wallet is locked", http.StatusLocked)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAccountFrozen() *AppError {
	return New(CodeAccountFrozen, "Account is frozen pending compliance review", http.StatusForbidden)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest)
}

// ---- Settings (SET) ----

func ErrPayoutRateOutOfRange(min, max string) *AppError {
	return New(CodePayoutRateOutOfRange, fmt.Sprintf("Binary payout rate must be between %s and %s", min, max), http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Insufficient role for this action", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

func ErrPayloadTooLarge(limit int64) *AppError {
	return New(CodePayloadTooLarge, fmt.Sprintf("Request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeDatabase, "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockBackend(err error) *AppError {
	return Wrap(CodeLockBackend, "Lock backend unavailable", http.StatusServiceUnavailable, err)
}

func ErrPublishFailure(err error) *AppError {
	return Wrap(CodePublish, "Event publish failed", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeDatabase, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an ACC_004-style validation error.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}
