package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("ACC_001", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[ACC_001] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("ACC_001", "test", http.StatusBadRequest).Unwrap())
}

func TestSettlementErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"ContractNotFound", ErrContractNotFound("binary trade"), CodeContractNotFound, 404},
		{"AlreadyResolved", ErrAlreadyResolved(), CodeAlreadyResolved, 409},
		{"LockContention", ErrLockContention(), CodeLockContention, 409},
		{"MarketDataUnavailable", ErrMarketDataUnavailable("BTC/USDT"), CodeMarketDataUnavailable, 503},
		{"StalePrice", ErrStalePrice("BTC/USDT"), CodeStalePrice, 503},
		{"ExpiryInPast", ErrExpiryInPast(), CodeExpiryInPast, 400},
		{"InsufficientFunds", ErrInsufficientFunds(), CodeInsufficientFunds, 402},
		{"WalletLocked", ErrWalletLocked(), CodeWalletLocked, 423},
		{"PayoutRate", ErrPayoutRateOutOfRange("0.7", "0.95"), CodePayoutRateOutOfRange, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", ErrLockContention())

	assert.True(t, HasCode(wrapped, CodeLockContention))
	assert.False(t, HasCode(wrapped, CodeAlreadyResolved))
	assert.False(t, HasCode(errors.New("plain"), CodeLockContention))
	assert.False(t, HasCode(nil, CodeLockContention))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"market data gap", ErrMarketDataUnavailable("ETH/USDT"), true},
		{"stale price", fmt.Errorf("exit price: %w", ErrStalePrice("ETH/USDT")), true},
		{"ledger failure", ErrDatabaseError(errors.New("conn reset")), true},
		{"lock backend", ErrLockBackend(errors.New("dial tcp")), true},
		{"unknown error", errors.New("boom"), true},
		{"contention", ErrLockContention(), false},
		{"already resolved", ErrAlreadyResolved(), false},
		{"not found", ErrContractNotFound("binary trade"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
