package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobtrend/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingOp fails for the first failures calls, then succeeds.
type countingOp struct {
	calls    int
	failures int
	err      error
}

func (o *countingOp) run(_ context.Context, attempt int) error {
	o.calls++
	if attempt <= o.failures {
		return o.err
	}
	return nil
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	op := &countingOp{}

	err := Do(context.Background(), Policy{Attempts: 3, Backoff: time.Millisecond}, discardLogger(), op.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.calls != 1 {
		t.Fatalf("expected 1 call, got %d", op.calls)
	}
}

func TestDo_FailsTwiceThenSucceeds(t *testing.T) {
	op := &countingOp{failures: 2, err: errors.New("connection reset")}

	err := Do(context.Background(), Policy{Attempts: 3, Backoff: time.Millisecond}, discardLogger(), op.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", op.calls)
	}
}

func TestDo_RetriesOn4xx(t *testing.T) {
	op := &countingOp{failures: 1, err: &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}}

	err := Do(context.Background(), Policy{Attempts: 2, Backoff: time.Millisecond}, discardLogger(), op.run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", op.calls)
	}
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	op := &countingOp{failures: 10, err: &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}}

	err := Do(context.Background(), Policy{Attempts: 3, Backoff: time.Millisecond}, discardLogger(), op.run)
	if err == nil {
		t.Fatal("expected error after max attempts, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 500 {
		t.Fatalf("expected HTTPError with status 500, got %v", err)
	}
	if op.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", op.calls)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	op := &countingOp{failures: 10, err: Permanent(errors.New("bad request url"))}

	err := Do(context.Background(), Policy{Attempts: 3, Backoff: time.Millisecond}, discardLogger(), op.run)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if op.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", op.calls)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	op := &countingOp{}

	if err := Do(context.Background(), Policy{}, discardLogger(), op.run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.calls != 1 {
		t.Fatalf("expected 1 call, got %d", op.calls)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	op := &countingOp{failures: 10, err: errors.New("timeout")}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	err := Do(ctx, Policy{Attempts: 3, Backoff: time.Second}, discardLogger(), op.run)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if op.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", op.calls)
	}
}

func TestDo_RetriesAttemptDeadline(t *testing.T) {
	// An attempt-level timeout wraps DeadlineExceeded while the caller's
	// context is still live; it must be retried.
	attemptErr := fmt.Errorf("Get \"http://example\": %w", context.DeadlineExceeded)
	op := &countingOp{failures: 2, err: attemptErr}

	if err := Do(context.Background(), Policy{Attempts: 3}, discardLogger(), op.run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", op.calls)
	}
}

func TestDo_StopsWhenCallerContextExpires(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	op := &countingOp{failures: 10, err: errors.New("boom")}
	err := Do(ctx, Policy{Attempts: 3}, discardLogger(), op.run)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if op.calls != 1 {
		t.Fatalf("expected 1 call, got %d", op.calls)
	}
}

func TestBackoffDelay_HonorsLongerRetryAfter(t *testing.T) {
	p := Policy{Attempts: 3, Backoff: 2 * time.Second}

	got := backoffDelay(p, &model.HTTPError{StatusCode: 429, RetryAfter: 30 * time.Second})
	if got != 30*time.Second {
		t.Errorf("delay = %v, want 30s", got)
	}

	got = backoffDelay(p, &model.HTTPError{StatusCode: 429, RetryAfter: time.Second})
	if got != 2*time.Second {
		t.Errorf("delay = %v, want 2s (backoff floor)", got)
	}

	got = backoffDelay(p, errors.New("dial tcp: refused"))
	if got != 2*time.Second {
		t.Errorf("delay = %v, want 2s", got)
	}
}
