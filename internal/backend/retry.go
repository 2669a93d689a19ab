// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// backoffBase controls the first retry delay. Tests override this to avoid
// real sleeps.
var backoffBase = 200 * time.Millisecond

const (
	backoffFactor      = 3
	defaultMaxAttempts = 3
)

// CallWithRetry invokes fn up to maxAttempts times. Only transient failures
// are retried; the delay before each retry grows exponentially from
// backoffBase with factor 3 (200ms, 600ms, 1800ms at the defaults). A
// non-transient failure is returned immediately. If the context is cancelled
// during a backoff wait the context error is returned.
func CallWithRetry(ctx context.Context, log *zap.Logger, maxAttempts int, fn func() (string, error)) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	delay := backoffBase
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Info("backend retry",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= backoffFactor
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrExhausted, maxAttempts, lastErr)
}
