package aelf

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{Chain: ledger.ChainRef{Name: "AELF", RPCURL: srv.URL + "/", ChainID: 9992731}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClient_ChainStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathChainStatus {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ChainId":"AELF","GenesisContractAddress":"genesis","BestChainHeight":120,"BestChainHash":"abcd1234","LastIrreversibleBlockHeight":100}`))
	}))

	st, err := c.ChainStatus(context.Background())
	if err != nil {
		t.Fatalf("ChainStatus: %v", err)
	}
	if st.RegistryAddress != "genesis" || st.BestChainHeight != 120 || st.LastIrreversibleHeight != 100 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestClient_SubmitAndCall(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body rawTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.RawTransaction != "0a0b" {
			t.Errorf("RawTransaction = %q", body.RawTransaction)
		}
		switch r.URL.Path {
		case pathSendTransaction:
			_, _ = w.Write([]byte(`{"TransactionId":"tx-1"}`))
		case pathExecuteTransaction:
			_, _ = w.Write([]byte(`"0801"`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	tx := &ledger.SignedTransaction{Raw: []byte{0x0a, 0x0b}}
	id, err := c.Submit(context.Background(), tx)
	if err != nil || id != "tx-1" {
		t.Fatalf("Submit = %q, %v", id, err)
	}

	out, err := c.CallReadOnly(context.Background(), tx)
	if err != nil {
		t.Fatalf("CallReadOnly: %v", err)
	}
	v, err := DecodeInt64Value(out)
	if err != nil || v != 1 {
		t.Fatalf("decoded = %d, %v", v, err)
	}
}

func TestClient_TransactionResult(t *testing.T) {
	responses := map[string]string{
		"mined":   `{"Status":"MINED","BlockNumber":77,"Transaction":{"RefBlockNumber":70}}`,
		"failed":  `{"Status":"FAILED","Error":"Cross chain verification failed."}`,
		"pending": `{"Status":"PENDING"}`,
		"missing": `{"Status":"NOTEXISTED"}`,
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responses[r.URL.Query().Get("transactionId")]))
	}))
	ctx := context.Background()

	out, err := c.TransactionResult(ctx, "mined")
	if err != nil {
		t.Fatalf("mined: %v", err)
	}
	if out.Status != ledger.TxStatusMined || out.BlockNumber != 77 || out.RefBlockNumber != 70 {
		t.Fatalf("unexpected outcome %+v", out)
	}

	out, err = c.TransactionResult(ctx, "failed")
	if err != nil || out.Status != ledger.TxStatusFailed || out.Error == "" {
		t.Fatalf("failed: %+v, %v", out, err)
	}

	out, err = c.TransactionResult(ctx, "pending")
	if err != nil || out.Status != ledger.TxStatusPending {
		t.Fatalf("pending: %+v, %v", out, err)
	}

	if _, err = c.TransactionResult(ctx, "missing"); !errors.Is(err, ledger.ErrTransactionNotFound) {
		t.Fatalf("missing: expected ErrTransactionNotFound, got %v", err)
	}
}

func TestClient_MerklePath(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"MerklePathNodes":[{"Hash":"aa","IsLeftChildNode":true},{"Hash":"bb","IsLeftChildNode":false}]}`))
	}))

	path, err := c.MerklePath(context.Background(), "tx")
	if err != nil {
		t.Fatalf("MerklePath: %v", err)
	}
	want := ledger.MerklePath{{Hash: "aa", IsLeftSibling: true}, {Hash: "bb"}}
	if len(path) != len(want) {
		t.Fatalf("len = %d, want %d", len(path), len(want))
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("node %d = %+v, want %+v", i, path[i], want[i])
		}
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name:   "rejection",
			status: http.StatusInternalServerError,
			body:   `{"Error":{"Code":"20001","Message":"Token already exists."}}`,
			check:  func(err error) bool { return errors.Is(err, ledger.ErrDuplicateSymbol) },
		},
		{
			name:   "verification",
			status: http.StatusBadRequest,
			body:   `{"Error":{"Code":"","Message":"Cross chain verification failed."}}`,
			check:  func(err error) bool { return errors.Is(err, ledger.ErrCrossChainVerification) },
		},
		{
			name:   "bad gateway",
			status: http.StatusBadGateway,
			body:   `upstream down`,
			check:  func(err error) bool { return errors.Is(err, ledger.ErrTransport) },
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `nope`,
			check:  func(err error) bool { return err != nil && !ledger.IsTransient(err) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			_, err := c.Submit(context.Background(), &ledger.SignedTransaction{Raw: []byte{1}})
			if !tt.check(err) {
				t.Fatalf("unexpected error classification: %v", err)
			}
		})
	}
}

func TestClient_ConnectionRefusedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{Chain: ledger.ChainRef{Name: "tDVW", RPCURL: url}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.ChainStatus(context.Background())
	if !errors.Is(err, ledger.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ChainStatus(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
