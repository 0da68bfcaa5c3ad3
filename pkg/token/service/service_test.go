package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/pkg/balance"
	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/indexer"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/ledgertest"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

var (
	wallet    = aelf.EncodeAddress(bytes.Repeat([]byte{0x01}, 32))
	recipient = aelf.EncodeAddress(bytes.Repeat([]byte{0x02}, 32))
)

type fakeBalances struct {
	BalanceFunc   func(ctx context.Context, symbol, owner string) (int64, error)
	AggregateFunc func(ctx context.Context, symbols []string, owner string) (*balance.Result, error)
}

func (f *fakeBalances) Balance(ctx context.Context, symbol, owner string) (int64, error) {
	return f.BalanceFunc(ctx, symbol, owner)
}

func (f *fakeBalances) Aggregate(ctx context.Context, symbols []string, owner string) (*balance.Result, error) {
	return f.AggregateFunc(ctx, symbols, owner)
}

type fakeHoldings []indexer.Item

func (f fakeHoldings) Holdings(context.Context, string) ([]indexer.Item, error) { return f, nil }

type resolver struct{}

func (resolver) Resolve(_ context.Context, _ *ledger.Chain, name string) (contracts.Handle, error) {
	return contracts.Handle{Name: name, Address: "token"}, nil
}

func newService(t *testing.T, client *ledgertest.MockClient, signer *ledgertest.MockSigner, b Balances, h HoldingsSource) *TokenService {
	t.Helper()
	chain, err := ledger.NewChain(ledger.ChainRef{Name: "tDVW", ChainID: 1931928}, client, signer)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	policy := wait.Policy{Interval: time.Millisecond, MaxAttempts: 5}
	return NewTokenService(chain, resolver{}, b, h, policy, zap.NewNop())
}

func TestTransfer_Succeeds(t *testing.T) {
	signer := &ledgertest.MockSigner{AddressValue: wallet}
	b := &fakeBalances{BalanceFunc: func(_ context.Context, symbol, owner string) (int64, error) {
		if symbol != "ART-1" || owner != wallet {
			t.Errorf("balance read for %s/%s", symbol, owner)
		}
		return 3, nil
	}}
	svc := newService(t, &ledgertest.MockClient{}, signer, b, nil)

	res, err := svc.Transfer(context.Background(), &TransferRequest{To: "ELF_" + recipient + "_tDVW", Symbol: "art-1", Amount: "3"})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if res.To != recipient || res.Symbol != "ART-1" || res.Amount != 3 || res.From != wallet {
		t.Fatalf("unexpected result %+v", res)
	}

	calls := signer.Calls()
	if len(calls) != 1 || calls[0].Method != token.MethodTransfer {
		t.Fatalf("calls = %+v", calls)
	}
	in := calls[0].Params.(token.TransferInput)
	if in.To != recipient || in.Amount != 3 {
		t.Fatalf("transfer input = %+v", in)
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	signer := &ledgertest.MockSigner{AddressValue: wallet}
	b := &fakeBalances{BalanceFunc: func(context.Context, string, string) (int64, error) { return 1, nil }}
	svc := newService(t, &ledgertest.MockClient{}, signer, b, nil)

	_, err := svc.Transfer(context.Background(), &TransferRequest{To: recipient, Symbol: "ART-1", Amount: "2"})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if len(signer.Calls()) != 0 {
		t.Fatal("nothing should be signed")
	}
}

func TestTransfer_InvalidInput(t *testing.T) {
	signer := &ledgertest.MockSigner{AddressValue: wallet}
	b := &fakeBalances{BalanceFunc: func(context.Context, string, string) (int64, error) { return 10, nil }}
	svc := newService(t, &ledgertest.MockClient{}, signer, b, nil)

	tests := []struct {
		name string
		req  TransferRequest
		want error
	}{
		{"bad address", TransferRequest{To: "nope", Symbol: "A", Amount: "1"}, ErrInvalidAddress},
		{"self", TransferRequest{To: wallet, Symbol: "A", Amount: "1"}, ErrSelfTransfer},
		{"no symbol", TransferRequest{To: recipient, Amount: "1"}, ErrInvalidSymbol},
		{"zero amount", TransferRequest{To: recipient, Symbol: "A", Amount: "0"}, token.ErrInvalidAmount},
		{"fraction", TransferRequest{To: recipient, Symbol: "A", Amount: "1.5"}, token.ErrAmountPrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Transfer(context.Background(), &req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTransfer_FailedOnChain(t *testing.T) {
	signer := &ledgertest.MockSigner{AddressValue: wallet}
	client := &ledgertest.MockClient{
		TransactionResultFunc: func(_ context.Context, txID string) (*ledger.TransactionOutcome, error) {
			return &ledger.TransactionOutcome{TransactionID: txID, Status: ledger.TxStatusFailed, Error: "Insufficient balance"}, nil
		},
	}
	b := &fakeBalances{BalanceFunc: func(context.Context, string, string) (int64, error) { return 10, nil }}
	svc := newService(t, client, signer, b, nil)

	_, err := svc.Transfer(context.Background(), &TransferRequest{To: recipient, Symbol: "A", Amount: "1"})
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected transfer failed, got %v", err)
	}
	var rej *ledger.RejectionError
	if !errors.As(err, &rej) || rej.Message != "Insufficient balance" {
		t.Fatalf("expected ledger rejection, got %v", err)
	}
}

func TestHoldings_KeepsUnknownBalancesUnset(t *testing.T) {
	b := &fakeBalances{AggregateFunc: func(_ context.Context, symbols []string, _ string) (*balance.Result, error) {
		if len(symbols) != 2 {
			t.Errorf("symbols = %v", symbols)
		}
		return &balance.Result{
			Successes: []balance.Holding{{Symbol: "ART-1", Balance: 0}},
			Failures:  []balance.Failure{{Symbol: "ART-2", Err: errors.New("timeout")}},
		}, nil
	}}
	h := fakeHoldings{{Symbol: "ART-1"}, {Symbol: "ART-2"}}
	svc := newService(t, &ledgertest.MockClient{}, &ledgertest.MockSigner{AddressValue: wallet}, b, h)

	res, err := svc.Holdings(context.Background(), recipient)
	if err != nil {
		t.Fatalf("Holdings: %v", err)
	}
	if res.Items[0].Balance == nil || *res.Items[0].Balance != 0 {
		t.Fatalf("ART-1 balance = %v", res.Items[0].Balance)
	}
	if res.Items[1].Balance != nil {
		t.Fatalf("ART-2 balance should be unset, got %d", *res.Items[1].Balance)
	}
	if len(res.Unavailable) != 1 || res.Unavailable[0] != "ART-2" {
		t.Fatalf("unavailable = %v", res.Unavailable)
	}
}

func TestHoldings_NoIndexer(t *testing.T) {
	svc := newService(t, &ledgertest.MockClient{}, &ledgertest.MockSigner{AddressValue: wallet}, &fakeBalances{}, nil)
	if _, err := svc.Holdings(context.Background(), recipient); !errors.Is(err, ErrNoIndexer) {
		t.Fatalf("expected ErrNoIndexer, got %v", err)
	}
}
