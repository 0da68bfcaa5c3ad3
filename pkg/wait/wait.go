// Package wait provides bounded, cancellable polling for eventually
// consistent chain state.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

var (
	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("wait timed out")
	// ErrCancelled is returned when the caller's context ends first.
	ErrCancelled = errors.New("wait cancelled")
)

// Policy bounds a wait. Zero MaxAttempts or Timeout means unbounded on that
// axis; at least one should be set.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

const defaultInterval = time.Second

// TimeoutError reports an exhausted wait.
type TimeoutError struct {
	Attempts int
	Elapsed  time.Duration
	LastErr  error // last tolerated poll error, if any
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("wait timed out after %d attempts (%s)", e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.LastErr != nil {
		msg += ": last error: " + e.LastErr.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrTimeout) hold. LastErr is not unwrapped: a
// timeout never matches its last poll failure.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks a poll error that must end the wait immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Until polls immediately and then every p.Interval until done reports true,
// a permanent error is returned, the policy is exhausted or ctx ends. Other
// poll errors are tolerated and counted as attempts.
func Until[T any](ctx context.Context, p Policy, poll func(context.Context) (T, error), done func(T) bool) (T, error) {
	var zero T
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	pctx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var (
		attempts int
		lastErr  error
	)
	timeout := func() error {
		return &TimeoutError{Attempts: attempts, Elapsed: time.Since(start), LastErr: lastErr}
	}

	for {
		attempts++
		v, err := poll(pctx)
		switch {
		case err == nil && done(v):
			return v, nil
		case err != nil:
			var perm *permanentError
			if errors.As(err, &perm) {
				return zero, perm.err
			}
			if ctx.Err() != nil {
				return zero, cancelled(ctx)
			}
			lastErr = err
		}

		// The caller's context wins over the wait's own budget, also when
		// both ended while the poll was in flight.
		if ctx.Err() != nil {
			return zero, cancelled(ctx)
		}
		if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
			return zero, timeout()
		}

		select {
		case <-ctx.Done():
			return zero, cancelled(ctx)
		case <-pctx.Done():
			if ctx.Err() != nil {
				return zero, cancelled(ctx)
			}
			return zero, timeout()
		case <-ticker.C:
		}
	}
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}

// ParentHeightAtLeast waits until read reports a height >= target. Equality
// satisfies the wait.
func ParentHeightAtLeast(ctx context.Context, read func(context.Context) (int64, error), target int64, p Policy) (int64, error) {
	return Until(ctx, p, read, func(h int64) bool { return h >= target })
}

// TransactionReader reads transaction results.
type TransactionReader interface {
	TransactionResult(ctx context.Context, txID string) (*ledger.TransactionOutcome, error)
}

// TransactionFinal waits until txID is MINED or FAILED and returns the final
// outcome. A FAILED outcome is returned without error; callers decide.
func TransactionFinal(ctx context.Context, r TransactionReader, txID string, p Policy) (*ledger.TransactionOutcome, error) {
	return Until(ctx, p,
		func(ctx context.Context) (*ledger.TransactionOutcome, error) {
			return r.TransactionResult(ctx, txID)
		},
		func(o *ledger.TransactionOutcome) bool {
			return o != nil && o.Status.IsFinal()
		})
}
