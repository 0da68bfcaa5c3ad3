package balance

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/ledgertest"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

var owner = aelf.EncodeAddress(bytes.Repeat([]byte{0x07}, 32))

type staticResolver struct{ err error }

func (r staticResolver) Resolve(_ context.Context, chain *ledger.Chain, name string) (contracts.Handle, error) {
	if r.err != nil {
		return contracts.Handle{}, r.err
	}
	return contracts.Handle{ChainID: chain.Ref.ChainID, Name: name, Address: "token"}, nil
}

func balanceOutput(symbol string, amount int64) []byte {
	var b []byte
	b = aelf.AppendString(b, 1, symbol)
	b = aelf.AppendInt64(b, 3, amount)
	return b
}

// newChain routes each read by symbol: the signer stores the symbol in the
// transaction id and read answers for it.
func newChain(t *testing.T, read func(symbol string) ([]byte, error)) *ledger.Chain {
	t.Helper()
	signer := &ledgertest.MockSigner{
		SignFunc: func(_ context.Context, call ledger.Call) (*ledger.SignedTransaction, error) {
			if _, err := call.Params.Marshal(); err != nil {
				return nil, err
			}
			in := call.Params.(token.GetBalanceInput)
			return &ledger.SignedTransaction{TransactionID: in.Symbol}, nil
		},
	}
	client := &ledgertest.MockClient{
		CallReadOnlyFunc: func(_ context.Context, tx *ledger.SignedTransaction) ([]byte, error) {
			return read(tx.TransactionID)
		},
	}
	chain, err := ledger.NewChain(ledger.ChainRef{Name: "tDVW", ChainID: 1931928}, client, signer)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	return chain
}

func TestAggregate_PartialFailure(t *testing.T) {
	errB := errors.New("node timeout")
	chain := newChain(t, func(symbol string) ([]byte, error) {
		switch symbol {
		case "A":
			return balanceOutput("A", 5), nil
		case "B":
			return nil, errB
		default:
			return balanceOutput("C", 0), nil
		}
	})

	res, err := NewAggregator(chain, staticResolver{}).Aggregate(context.Background(), []string{"A", "B", "C"}, owner)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(res.Successes) != 2 || res.Successes[0].Symbol != "A" || res.Successes[1].Symbol != "C" {
		t.Fatalf("successes = %+v, want [A C]", res.Successes)
	}
	if res.Successes[0].Balance != 5 || res.Successes[1].Balance != 0 {
		t.Fatalf("balances = %+v", res.Successes)
	}
	if len(res.Failures) != 1 || res.Failures[0].Symbol != "B" {
		t.Fatalf("failures = %+v, want [B]", res.Failures)
	}

	var pf *PartialFailureError
	if !errors.As(res.Err(), &pf) {
		t.Fatalf("expected PartialFailureError, got %v", res.Err())
	}
	if !errors.Is(res.Err(), errB) {
		t.Fatal("partial failure should wrap the read error")
	}
}

func TestAggregate_AllSucceed(t *testing.T) {
	chain := newChain(t, func(symbol string) ([]byte, error) {
		return balanceOutput(symbol, 1), nil
	})
	res, err := NewAggregator(chain, staticResolver{}).Aggregate(context.Background(), []string{"X-1", "X-2"}, "ELF_"+owner+"_tDVW")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.Err() != nil {
		t.Fatalf("unexpected failures: %v", res.Err())
	}
	if res.Successes[0].Owner != owner {
		t.Fatalf("owner not normalized: %s", res.Successes[0].Owner)
	}
}

func TestAggregate_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	chain := newChain(t, func(symbol string) ([]byte, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return balanceOutput(symbol, 1), nil
	})

	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	res, err := NewAggregator(chain, staticResolver{}, WithConcurrency(2)).Aggregate(context.Background(), symbols, owner)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Successes) != len(symbols) {
		t.Fatalf("got %d successes", len(res.Successes))
	}
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds limit", peak.Load())
	}
}

func TestAggregate_InvalidOwner(t *testing.T) {
	chain := newChain(t, func(string) ([]byte, error) { return nil, nil })
	_, err := NewAggregator(chain, staticResolver{}).Aggregate(context.Background(), []string{"A"}, "nope")
	if !errors.Is(err, aelf.ErrInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
}

func TestAggregate_ResolverFailure(t *testing.T) {
	chain := newChain(t, func(string) ([]byte, error) { return nil, nil })
	_, err := NewAggregator(chain, staticResolver{err: contracts.ErrContractNotFound}).Aggregate(context.Background(), []string{"A"}, owner)
	if !errors.Is(err, contracts.ErrContractNotFound) {
		t.Fatalf("expected contract not found, got %v", err)
	}
}

func TestBalance_Single(t *testing.T) {
	chain := newChain(t, func(symbol string) ([]byte, error) {
		return balanceOutput(symbol, 42), nil
	})
	got, err := NewAggregator(chain, staticResolver{}).Balance(context.Background(), "ART-1", owner)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got != 42 {
		t.Fatalf("Balance = %d, want 42", got)
	}
}
