package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout reports that the whole attempt sequence exceeded Policy.Timeout.
var ErrTimeout = errors.New("operation timed out")

// Policy bounds a retried remote call: number of attempts, fixed delay between
// them, and a hard deadline for the whole sequence.
type Policy struct {
	Attempts int           // default 3
	Delay    time.Duration // fixed backoff between attempts, default 200ms
	Timeout  time.Duration // 0 = no envelope-level deadline
}

// DefaultPolicy is the envelope applied to remote calls unless a caller
// overrides it.
var DefaultPolicy = Policy{
	Attempts: 3,
	Delay:    200 * time.Millisecond,
}

func (p Policy) normalized() Policy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultPolicy.Attempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultPolicy.Delay
	}
	return p
}

// Do executes op under the policy. Failed attempts are retried after a fixed
// delay. Cancelling ctx aborts the in-flight sleep and skips remaining
// attempts; no retry runs after cancellation. If the policy timeout elapses the
// result is ErrTimeout regardless of which attempt was in flight.
//
// The operation must be idempotent from the caller's perspective, or the caller
// must dedupe by a stable client-generated id.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that return a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	p = p.normalized()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, p.Timeout, ErrTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return zero, envelopeErr(ctx)
			}
		}

		if err := ctx.Err(); err != nil {
			return zero, envelopeErr(ctx)
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if ctx.Err() != nil {
			return zero, envelopeErr(ctx)
		}
		lastErr = err
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", p.Attempts, lastErr)
}

// Permanent marks err as not worth retrying; Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// envelopeErr distinguishes the envelope's own deadline from caller
// cancellation.
func envelopeErr(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil && errors.Is(cause, ErrTimeout) {
		return ErrTimeout
	}
	return ctx.Err()
}
