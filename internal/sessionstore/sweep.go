package sessionstore

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweep periodically drops sessions idle longer than ttl. A ttl of zero
// disables expiry entirely. Blocks until ctx is cancelled.
func Sweep(ctx context.Context, store Store, ttl, interval time.Duration, log zerolog.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.DeleteExpired(ctx, time.Now().Add(-ttl))
			if err != nil {
				log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("expired sessions swept")
			}
		}
	}
}
