package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobtrend/internal/model"
)

// Policy bounds how often an operation is attempted and how long to wait
// between failed attempts.
type Policy struct {
	Attempts int           // total attempts including the first, minimum 1
	Backoff  time.Duration // wait after each failed attempt
}

// DefaultPolicy is three attempts two seconds apart.
var DefaultPolicy = Policy{Attempts: 3, Backoff: 2 * time.Second}

// permanentError marks a failure that another attempt cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, the policy is exhausted, or ctx is done.
// attempt is 1-based. The last error is returned on exhaustion.
func Do(ctx context.Context, p Policy, logger *slog.Logger, fn func(ctx context.Context, attempt int) error) error {
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		// Only the caller's context ends the loop; an attempt that timed out
		// on its own deadline is retried like any transient failure.
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled: %w (last error: %v)", ctx.Err(), err)
		}
		if !isRetryable(err) {
			return err
		}

		logger.Warn("attempt failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)

		if attempt == attempts {
			break
		}

		delay := backoffDelay(p, err)
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return lastErr
}

// backoffDelay is the fixed policy backoff, stretched to the server's
// Retry-After when that is longer.
func backoffDelay(p Policy, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > p.Backoff {
		return httpErr.RetryAfter
	}
	return p.Backoff
}

// isRetryable returns true if another attempt could plausibly succeed.
// Transport failures, per-request timeouts and every non-2xx status qualify.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var perm *permanentError
	return !errors.As(err, &perm)
}
