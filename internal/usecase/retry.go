package usecase

import (
	"context"
	"time"
)

// RetryPolicy parameterises Retry for one result type.
type RetryPolicy[T any] struct {
	MaxAttempts int
	Delay       time.Duration
	// Succeeded reports whether an error-free result is acceptable.
	Succeeded func(T) bool
	// Exhausted maps the last result onto what the caller receives when every attempt failed.
	// A nil Exhausted returns the last result unchanged.
	Exhausted func(last T) T

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Outcome is what Retry produced.
type Outcome[T any] struct {
	Value     T
	Attempts  int
	Succeeded bool
	// LastErr is the error of the final failed attempt, if it reported one.
	LastErr error
}

// AttemptFunc runs one attempt. attempt starts at 1.
type AttemptFunc[T any] func(ctx context.Context, attempt int) (T, error)

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn up to MaxAttempts times, strictly one after another, with a
// fixed Delay between attempts and none after the last. It never returns an
// error; failure is carried in the Outcome.
func Retry[T any](ctx context.Context, policy RetryPolicy[T], fn AttemptFunc[T]) Outcome[T] {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := policy.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var out Outcome[T]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := fn(ctx, attempt)
		out.Value = value
		out.Attempts = attempt
		out.LastErr = err
		if err == nil && (policy.Succeeded == nil || policy.Succeeded(value)) {
			out.Succeeded = true
			return out
		}
		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, policy.Delay); err != nil {
			break
		}
	}

	if policy.Exhausted != nil {
		out.Value = policy.Exhausted(out.Value)
	}
	return out
}
