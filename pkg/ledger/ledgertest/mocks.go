// Package ledgertest provides function-field fakes of the ledger capabilities.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

// MockClient is a mock implementation of ledger.Client
type MockClient struct {
	ChainStatusFunc       func(ctx context.Context) (*ledger.ChainStatus, error)
	CallReadOnlyFunc      func(ctx context.Context, tx *ledger.SignedTransaction) ([]byte, error)
	SubmitFunc            func(ctx context.Context, tx *ledger.SignedTransaction) (string, error)
	TransactionResultFunc func(ctx context.Context, txID string) (*ledger.TransactionOutcome, error)
	MerklePathFunc        func(ctx context.Context, txID string) (ledger.MerklePath, error)
}

var _ ledger.Client = (*MockClient)(nil)

func (m *MockClient) ChainStatus(ctx context.Context) (*ledger.ChainStatus, error) {
	if m.ChainStatusFunc != nil {
		return m.ChainStatusFunc(ctx)
	}
	return &ledger.ChainStatus{}, nil
}

func (m *MockClient) CallReadOnly(ctx context.Context, tx *ledger.SignedTransaction) ([]byte, error) {
	if m.CallReadOnlyFunc != nil {
		return m.CallReadOnlyFunc(ctx, tx)
	}
	return nil, nil
}

func (m *MockClient) Submit(ctx context.Context, tx *ledger.SignedTransaction) (string, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, tx)
	}
	return tx.TransactionID, nil
}

func (m *MockClient) TransactionResult(ctx context.Context, txID string) (*ledger.TransactionOutcome, error) {
	if m.TransactionResultFunc != nil {
		return m.TransactionResultFunc(ctx, txID)
	}
	return &ledger.TransactionOutcome{TransactionID: txID, Status: ledger.TxStatusMined}, nil
}

func (m *MockClient) MerklePath(ctx context.Context, txID string) (ledger.MerklePath, error) {
	if m.MerklePathFunc != nil {
		return m.MerklePathFunc(ctx, txID)
	}
	return ledger.MerklePath{}, nil
}

// MockSigner is a mock implementation of ledger.Signer. Without SignFunc it
// returns a transaction whose id is "<method>-<n>" and whose raw bytes are the
// marshalled params, so tests can inspect what was sent.
type MockSigner struct {
	AddressValue string
	SignFunc     func(ctx context.Context, call ledger.Call) (*ledger.SignedTransaction, error)

	mu    sync.Mutex
	calls []ledger.Call
}

var _ ledger.Signer = (*MockSigner)(nil)

func (m *MockSigner) Address() string {
	return m.AddressValue
}

func (m *MockSigner) Sign(ctx context.Context, call ledger.Call) (*ledger.SignedTransaction, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	n := len(m.calls)
	m.mu.Unlock()

	if m.SignFunc != nil {
		return m.SignFunc(ctx, call)
	}
	var raw []byte
	if call.Params != nil {
		b, err := call.Params.Marshal()
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &ledger.SignedTransaction{
		TransactionID: fmt.Sprintf("%s-%d", call.Method, n),
		Raw:           raw,
	}, nil
}

// Calls returns the calls signed so far, in order.
func (m *MockSigner) Calls() []ledger.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Call, len(m.calls))
	copy(out, m.calls)
	return out
}
