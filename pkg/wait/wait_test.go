package wait

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/ledgertest"
)

func TestParentHeightAtLeast_EqualitySatisfies(t *testing.T) {
	heights := []int64{98, 99, 100, 101}
	var calls int32
	read := func(context.Context) (int64, error) {
		i := atomic.AddInt32(&calls, 1) - 1
		return heights[i], nil
	}

	h, err := ParentHeightAtLeast(context.Background(), read, 100, Policy{Interval: time.Millisecond, MaxAttempts: 10})
	if err != nil {
		t.Fatalf("ParentHeightAtLeast: %v", err)
	}
	if h != 100 {
		t.Fatalf("height = %d, want 100", h)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestParentHeightAtLeast_AlreadyReached(t *testing.T) {
	var calls int32
	read := func(context.Context) (int64, error) {
		atomic.AddInt32(&calls, 1)
		return 500, nil
	}
	if _, err := ParentHeightAtLeast(context.Background(), read, 100, Policy{Interval: time.Hour, MaxAttempts: 1}); err != nil {
		t.Fatalf("ParentHeightAtLeast: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single immediate poll, got %d", calls)
	}
}

func TestUntil_CancelWithinOneInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := ParentHeightAtLeast(ctx, func(context.Context) (int64, error) { return 1, nil }, 100,
		Policy{Interval: 200 * time.Millisecond, Timeout: time.Minute})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected wrapped context.Canceled, got %v", err)
	}
	if elapsed >= 200*time.Millisecond {
		t.Fatalf("cancellation observed after %s, want within one interval", elapsed)
	}
}

func TestUntil_CancelDuringPoll(t *testing.T) {
	policies := map[string]Policy{
		"with timeout":    {Interval: time.Millisecond, Timeout: time.Minute},
		"without timeout": {Interval: time.Millisecond, MaxAttempts: 5},
		"last attempt":    {Interval: time.Millisecond, MaxAttempts: 1, Timeout: time.Minute},
	}
	for name, p := range policies {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				ctx, cancel := context.WithCancel(context.Background())
				// The read finishes after the caller has gone away and
				// returns a height below the target.
				read := func(context.Context) (int64, error) {
					cancel()
					return 1, nil
				}
				_, err := ParentHeightAtLeast(ctx, read, 100, p)
				if !errors.Is(err, ErrCancelled) || errors.Is(err, ErrTimeout) {
					t.Fatalf("iteration %d: expected ErrCancelled, got %v", i, err)
				}
			}
		})
	}
}

func TestUntil_TimeoutCarriesLastError(t *testing.T) {
	boom := errors.New("node unavailable")
	_, err := Until(context.Background(), Policy{Interval: time.Millisecond, MaxAttempts: 3},
		func(context.Context) (int, error) { return 0, boom },
		func(int) bool { return true })

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TimeoutError, got %T", err)
	}
	if te.Attempts != 3 || te.LastErr != boom {
		t.Fatalf("unexpected timeout details %+v", te)
	}
	if errors.Is(err, boom) {
		t.Fatal("timeout must not unwrap to the last poll error")
	}
}

func TestUntil_TimeoutByDuration(t *testing.T) {
	_, err := Until(context.Background(), Policy{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond},
		func(context.Context) (bool, error) { return false, nil },
		func(v bool) bool { return v })
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if errors.Is(err, ErrCancelled) {
		t.Fatal("policy timeout must not be reported as cancellation")
	}
}

func TestUntil_PermanentStops(t *testing.T) {
	fatal := errors.New("rejected")
	var calls int32
	_, err := Until(context.Background(), Policy{Interval: time.Millisecond, MaxAttempts: 10},
		func(context.Context) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 0, Permanent(fatal)
		},
		func(int) bool { return false })

	if err != fatal {
		t.Fatalf("expected the permanent error itself, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestTransactionFinal(t *testing.T) {
	statuses := []ledger.TxStatus{ledger.TxStatusPending, ledger.TxStatusPending, ledger.TxStatusFailed}
	var calls int32
	client := &ledgertest.MockClient{
		TransactionResultFunc: func(_ context.Context, txID string) (*ledger.TransactionOutcome, error) {
			i := atomic.AddInt32(&calls, 1) - 1
			if i == 0 {
				return nil, ledger.ErrTransactionNotFound
			}
			return &ledger.TransactionOutcome{TransactionID: txID, Status: statuses[i-1]}, nil
		},
	}

	out, err := TransactionFinal(context.Background(), client, "tx", Policy{Interval: time.Millisecond, MaxAttempts: 10})
	if err != nil {
		t.Fatalf("TransactionFinal: %v", err)
	}
	if out.Status != ledger.TxStatusFailed {
		t.Fatalf("status = %s, want FAILED", out.Status)
	}
	if calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
}
