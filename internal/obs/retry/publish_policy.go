package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultPublishPolicy bounds feed-event publishes to a few quick attempts.
// A dispatch run is sequential, so long backoffs here would stall the whole
// batch.
func DefaultPublishPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "feed_publish",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 100 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.2},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("feed publish retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("feed publish retries exhausted", zap.Error(err))
			}
		},
	}
}
