package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/crosschain-issuer/pkg/app/errors"
	apphttp "github.com/chainsafe/crosschain-issuer/pkg/app/http"
	"github.com/chainsafe/crosschain-issuer/pkg/balance"
	"github.com/chainsafe/crosschain-issuer/pkg/indexer"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

// Service is the token API served over HTTP.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error)
	Holdings(ctx context.Context, owner string) (*HoldingsResult, error)
	Balances(ctx context.Context, owner string, symbols []string) (*balance.Result, error)
}

var _ Service = (*TokenService)(nil)

type handler struct {
	svc    Service
	logger *zap.Logger
}

// RegisterRoutes mounts the token endpoints. protect wraps endpoints that
// move funds; nil leaves them open.
func RegisterRoutes(r chi.Router, svc Service, protect func(http.Handler) http.Handler, logger *zap.Logger) {
	h := &handler{svc: svc, logger: logger}

	r.Get("/balances/{owner}", h.wrap(h.balances))
	r.Get("/holdings/{owner}", h.wrap(h.holdingsList))
	r.Group(func(r chi.Router) {
		if protect != nil {
			r.Use(protect)
		}
		r.Post("/transfers", h.wrap(h.transfer))
	})
}

func (h *handler) wrap(fn apphttp.HandlerFunc) http.HandlerFunc {
	return apphttp.HandleErrorWithLogger(fn, h.logger)
}

// BalanceEntry is one symbol in a balances response. Balance is absent
// when the read failed.
type BalanceEntry struct {
	Symbol  string `json:"symbol"`
	Balance *int64 `json:"balance,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BalancesResponse lists balances in request order.
type BalancesResponse struct {
	Owner    string         `json:"owner"`
	Balances []BalanceEntry `json:"balances"`
	Partial  bool           `json:"partial"`
}

func (h *handler) balances(w http.ResponseWriter, r *http.Request) error {
	owner := chi.URLParam(r, "owner")
	var symbols []string
	for _, v := range r.URL.Query()["symbol"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	if len(symbols) == 0 {
		return apperrors.BadRequestError(nil, "at least one symbol is required")
	}

	res, err := h.svc.Balances(r.Context(), owner, symbols)
	if err != nil {
		return mapError(err)
	}

	entries := make(map[string]BalanceEntry, len(symbols))
	resp := BalancesResponse{Owner: owner, Partial: len(res.Failures) > 0}
	for _, s := range res.Successes {
		v := s.Balance
		resp.Owner = s.Owner
		entries[s.Symbol] = BalanceEntry{Symbol: s.Symbol, Balance: &v}
	}
	for _, f := range res.Failures {
		entries[f.Symbol] = BalanceEntry{Symbol: f.Symbol, Error: f.Err.Error()}
	}
	resp.Balances = make([]BalanceEntry, 0, len(symbols))
	for _, sym := range symbols {
		if e, ok := entries[sym]; ok {
			resp.Balances = append(resp.Balances, e)
		}
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *handler) holdingsList(w http.ResponseWriter, r *http.Request) error {
	res, err := h.svc.Holdings(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		return mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *handler) transfer(w http.ResponseWriter, r *http.Request) error {
	var req TransferRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := token.Validator().Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "to, symbol and amount are required")
	}
	res, err := h.svc.Transfer(r.Context(), &req)
	if err != nil {
		return mapError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAddress):
		return apperrors.BadRequestError(err, "invalid address")
	case errors.Is(err, ErrInvalidSymbol):
		return apperrors.BadRequestError(err, "invalid symbol")
	case errors.Is(err, ErrSelfTransfer):
		return apperrors.BadRequestError(err, "cannot transfer to the sending wallet")
	case errors.Is(err, token.ErrInvalidAmount), errors.Is(err, token.ErrAmountPrecision):
		return apperrors.BadRequestError(err, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return apperrors.ConflictError(err, "insufficient funds")
	case errors.Is(err, ErrTransferFailed):
		return apperrors.ConflictError(err, err.Error())
	case errors.Is(err, ErrNoIndexer):
		return apperrors.ResourceNotFoundError(err, "holdings are not available")
	case errors.Is(err, indexer.ErrUnavailable):
		return apperrors.DependencyError(err, "holdings indexer unavailable")
	case errors.Is(err, ledger.ErrTransport):
		return apperrors.DependencyError(err, "chain node unavailable")
	case errors.Is(err, wait.ErrTimeout):
		return apperrors.TimeoutError(err, "timed out waiting for the chain")
	default:
		return apperrors.GeneralError(err)
	}
}
