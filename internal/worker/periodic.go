package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Every runs fn immediately and then once per interval until ctx is done.
// Errors are logged and the loop carries on.
func Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error, log zerolog.Logger) {
	log = log.With().Str("component", name).Logger()
	log.Info().Dur("interval", interval).Msg("periodic task started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("periodic task failed")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("periodic task stopped")
			return
		case <-ticker.C:
		}
	}
}
