package issuer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/pkg/auth"
	"github.com/chainsafe/crosschain-issuer/pkg/config"
	"github.com/chainsafe/crosschain-issuer/pkg/issuance/service/mocks"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/ledgertest"
	tokenservice "github.com/chainsafe/crosschain-issuer/pkg/token/service"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testComponents(t *testing.T, mainClient *ledgertest.MockClient) *Components {
	t.Helper()
	signer := &ledgertest.MockSigner{AddressValue: "issuer"}
	main, err := ledger.NewChain(ledger.ChainRef{Name: "AELF", ChainID: 9992731}, mainClient, signer)
	if err != nil {
		t.Fatalf("NewChain() failed: %v", err)
	}
	side, err := ledger.NewChain(ledger.ChainRef{Name: "tDVW", ChainID: 1931928}, &ledgertest.MockClient{}, signer)
	if err != nil {
		t.Fatalf("NewChain() failed: %v", err)
	}
	return &Components{
		Main:   main,
		Side:   side,
		Tokens: tokenservice.NewTokenService(side, nil, nil, nil, wait.Policy{}, nil),
		logger: zap.NewNop(),
	}
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := NewServer(&config.Config{})
	r := s.setupRouter(testComponents(t, &ledgertest.MockClient{}), mocks.NewService(t), nil, zap.NewNop())

	if rec := do(t, r, http.MethodGet, "/health", ""); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
	rec := do(t, r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "issuer_active_issuances") {
		t.Fatal("expected issuer metrics to be exported")
	}
}

func TestRouter_Ready(t *testing.T) {
	s := NewServer(&config.Config{})

	r := s.setupRouter(testComponents(t, &ledgertest.MockClient{}), mocks.NewService(t), nil, zap.NewNop())
	if rec := do(t, r, http.MethodGet, "/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	down := &ledgertest.MockClient{
		ChainStatusFunc: func(context.Context) (*ledger.ChainStatus, error) {
			return nil, errors.New("connection refused")
		},
	}
	r = s.setupRouter(testComponents(t, down), mocks.NewService(t), nil, zap.NewNop())
	if rec := do(t, r, http.MethodGet, "/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_ProtectedWrites(t *testing.T) {
	s := NewServer(&config.Config{Auth: config.AuthConfig{JWTSecret: testSecret, Issuer: "crosschain-issuer", Leeway: time.Second}})
	protect, err := s.authMiddleware(zap.NewNop())
	if err != nil {
		t.Fatalf("authMiddleware() failed: %v", err)
	}

	svc := mocks.NewService(t)
	svc.EXPECT().CancelIssuance(mock.Anything, "run-1").Return(nil).Once()
	r := s.setupRouter(testComponents(t, &ledgertest.MockClient{}), svc, protect, zap.NewNop())

	if rec := do(t, r, http.MethodPost, "/api/v1/issuances/run-1/cancel", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/v1/transfers", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on transfers without token, got %d", rec.Code)
	}

	v, err := auth.NewJWTValidator(testSecret, "crosschain-issuer", time.Second)
	if err != nil {
		t.Fatalf("NewJWTValidator() failed: %v", err)
	}
	token, err := v.Issue("operator", "", time.Minute)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if rec := do(t, r, http.MethodPost, "/api/v1/issuances/run-1/cancel", token); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	s := NewServer(&config.Config{})
	protect, err := s.authMiddleware(zap.NewNop())
	if err != nil {
		t.Fatalf("authMiddleware() failed: %v", err)
	}
	if protect != nil {
		t.Fatal("expected no middleware without a secret")
	}

	s = NewServer(&config.Config{Auth: config.AuthConfig{JWTSecret: "short"}})
	if _, err := s.authMiddleware(zap.NewNop()); err == nil {
		t.Fatal("expected error for a short secret")
	}
}

func TestOrchestratorConfig(t *testing.T) {
	got := OrchestratorConfig(config.IssuanceConfig{
		ParentSync:           config.PollConfig{Interval: time.Second, Timeout: time.Minute},
		TxFinal:              config.PollConfig{Interval: 2 * time.Second, MaxAttempts: 5},
		CrossChainBackoff:    3 * time.Second,
		CrossChainMaxRetries: 7,
		CrossChainTimeout:    time.Hour,
	})
	if got.ParentSync.Interval != time.Second || got.ParentSync.Timeout != time.Minute {
		t.Fatalf("unexpected parent sync policy %+v", got.ParentSync)
	}
	if got.TxFinal.MaxAttempts != 5 || got.CrossChainMaxRetries != 7 || got.CrossChainBackoff != 3*time.Second || got.CrossChainTimeout != time.Hour {
		t.Fatalf("unexpected config %+v", got)
	}
}

func TestNewComponents_RequiresKey(t *testing.T) {
	cfg := &config.Config{
		MainChain: config.ChainConfig{Name: "AELF", RPCURL: "http://127.0.0.1:1", ChainID: 9992731},
		SideChain: config.ChainConfig{Name: "tDVW", RPCURL: "http://127.0.0.1:2", ChainID: 1931928},
	}
	if _, err := NewComponents(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error without a signing key")
	}
}
