package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// SettingsStore implements ports.SettingsStore using Redis.
// Values have no TTL; they live until changed by an admin.
type SettingsStore struct {
	client *goredis.Client
	prefix string
}

// NewSettingsStore creates a new Redis-backed settings store.
func NewSettingsStore(client *goredis.Client) *SettingsStore {
	return &SettingsStore{
		client: client,
		prefix: "settings:",
	}
}

// GetPayoutRate returns the stored binary payout rate.
// Returns ok=false if no rate has been set.
func (s *SettingsStore) GetPayoutRate(ctx context.Context) (decimal.Decimal, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+"binary_payout_rate").Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis settings get: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse payout rate %q: %w", val, err)
	}
	return rate, true, nil
}

// SetPayoutRate stores the binary payout rate.
func (s *SettingsStore) SetPayoutRate(ctx context.Context, rate decimal.Decimal) error {
	if err := s.client.Set(ctx, s.prefix+"binary_payout_rate", rate.String(), 0).Err(); err != nil {
		return fmt.Errorf("redis settings set: %w", err)
	}
	return nil
}
