package acquire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"syllaread/internal/source"
)

// retryConfig bounds the robust retrieval primitive wrapped around every
// network call.
type retryConfig struct {
	timeout     time.Duration
	retries     int
	backoffBase time.Duration
}

// withRetry runs fn with a per-attempt timeout and up to cfg.retries
// additional attempts, doubling the backoff delay between attempts. On
// exhaustion the last error is wrapped as ErrTimeout or ErrTransport so
// callers can distinguish the failure kind. ErrNotFound short-circuits:
// retrying a missing page cannot help.
func withRetry[T any](ctx context.Context, cfg retryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.retries; attempt++ {
		if attempt > 0 {
			backoff := cfg.backoffBase << (attempt - 1)
			logrus.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
			}).Debug("Retrying retrieval")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
		v, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, source.ErrNotFound) {
			return zero, err
		}
		lastErr = err
	}

	if isTimeout(lastErr) {
		return zero, fmt.Errorf("%w after %d attempts: %w", ErrTimeout, cfg.retries+1, lastErr)
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrTransport, cfg.retries+1, lastErr)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
