package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure. After, when positive, is the wait
// the server asked for (Retry-After) and replaces the backoff delay.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff describes how an operation is retried.
type Backoff struct {
	Attempts int           // total attempts; values below 1 mean one
	Delay    time.Duration // first wait, doubled after every failure
	Max      time.Duration // upper bound for a single wait, 0 for none
}

// DefaultBackoff is used for idempotent backend reads.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 30 * time.Second}

// Retry calls fn until it succeeds, fails with an error that is not a
// [RetryableError], or the attempts are used up. The last error is returned
// with its retry marker removed. Cancelling ctx aborts the wait.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if attempt >= b.Attempts {
			return re.Err
		}

		if err := sleep(ctx, b.wait(delay, re.After)); err != nil {
			return err
		}
		delay *= 2
	}
}

func (b Backoff) wait(delay, after time.Duration) time.Duration {
	if after > 0 {
		delay = after
	}
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Final strips the retry marker from err, for errors that never went
// through [Backoff.Retry].
func Final(err error) error {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
