// Package service holds token operations that are not part of the issuance
// workflow: listing an owner's holdings and moving NFTs on the side chain.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	"github.com/chainsafe/crosschain-issuer/pkg/balance"
	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/indexer"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrSelfTransfer      = errors.New("sender and recipient are the same")
	ErrTransferFailed    = errors.New("transfer failed")
	ErrNoIndexer         = errors.New("holdings indexer not configured")
)

// Balances reads token balances.
type Balances interface {
	Aggregate(ctx context.Context, symbols []string, owner string) (*balance.Result, error)
	Balance(ctx context.Context, symbol, owner string) (int64, error)
}

// HoldingsSource lists the NFTs an owner holds.
type HoldingsSource interface {
	Holdings(ctx context.Context, owner string) ([]indexer.Item, error)
}

// Resolver looks up system contracts on a chain.
type Resolver interface {
	Resolve(ctx context.Context, chain *ledger.Chain, name string) (contracts.Handle, error)
}

// TokenService provides holdings and transfers on one chain.
type TokenService struct {
	chain    *ledger.Chain
	resolver Resolver
	balances Balances
	holdings HoldingsSource // nil when no indexer is configured
	txFinal  wait.Policy
	logger   *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(
	chain *ledger.Chain,
	resolver Resolver,
	balances Balances,
	holdings HoldingsSource,
	txFinal wait.Policy,
	logger *zap.Logger,
) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		chain:    chain,
		resolver: resolver,
		balances: balances,
		holdings: holdings,
		txFinal:  txFinal,
		logger:   logger,
	}
}

// TransferRequest moves Amount of Symbol from the service wallet to To.
type TransferRequest struct {
	To       string `json:"to" validate:"required"`
	Symbol   string `json:"symbol" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
	Decimals int32  `json:"decimals" validate:"gte=0,lte=18"`
	Memo     string `json:"memo"`
}

// TransferResult represents the result of a transfer
type TransferResult struct {
	TransactionID string `json:"transactionId"`
	From          string `json:"from"`
	To            string `json:"to"`
	Symbol        string `json:"symbol"`
	Amount        int64  `json:"amount"`
}

// Transfer sends tokens from the service wallet after checking that the
// wallet holds at least the requested amount.
func (s *TokenService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	to := aelf.NormalizeAddress(req.To)
	if !aelf.ValidAddress(to) {
		return nil, ErrInvalidAddress
	}
	from := s.chain.Signer.Address()
	if to == from {
		return nil, ErrSelfTransfer
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	amount, err := token.ParseAmount(req.Amount, req.Decimals)
	if err != nil {
		return nil, err
	}

	held, err := s.balances.Balance(ctx, symbol, from)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if amount > held {
		s.logger.Info("Transfer rejected: insufficient balance",
			zap.String("symbol", symbol),
			zap.Int64("amount", amount),
			zap.Int64("balance", held))
		return nil, ErrInsufficientFunds
	}

	h, err := s.resolver.Resolve(ctx, s.chain, contracts.NameToken)
	if err != nil {
		return nil, fmt.Errorf("resolve token contract: %w", err)
	}
	tx, err := s.chain.Send(ctx, ledger.Call{
		Contract: h.Address,
		Method:   token.MethodTransfer,
		Params:   token.TransferInput{To: to, Symbol: symbol, Amount: amount, Memo: req.Memo},
	})
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(s.chain.Ref.Name, token.MethodTransfer, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	out, err := wait.TransactionFinal(ctx, s.chain.Client, tx.TransactionID, s.txFinal)
	if err != nil {
		return nil, fmt.Errorf("await transfer %s: %w", tx.TransactionID, err)
	}
	if out.Status == ledger.TxStatusFailed {
		metrics.TransactionsSent.WithLabelValues(s.chain.Ref.Name, token.MethodTransfer, "failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, ledger.Reject("", out.Error))
	}
	metrics.TransactionsSent.WithLabelValues(s.chain.Ref.Name, token.MethodTransfer, "mined").Inc()

	s.logger.Info("Transfer completed",
		zap.String("tx_id", tx.TransactionID),
		zap.String("to", to),
		zap.String("symbol", symbol),
		zap.Int64("amount", amount))

	return &TransferResult{
		TransactionID: tx.TransactionID,
		From:          from,
		To:            to,
		Symbol:        symbol,
		Amount:        amount,
	}, nil
}

// Holding is one indexed NFT with its balance. Balance is nil when the read
// failed; it is never reported as zero in that case.
type Holding struct {
	indexer.Item
	Balance *int64 `json:"balance"`
}

// HoldingsResult lists an owner's NFTs.
type HoldingsResult struct {
	Owner       string    `json:"owner"`
	Items       []Holding `json:"items"`
	Unavailable []string  `json:"unavailable,omitempty"`
}

// Holdings lists owner's NFTs from the indexer enriched with on-chain balances.
func (s *TokenService) Holdings(ctx context.Context, owner string) (*HoldingsResult, error) {
	if s.holdings == nil {
		return nil, ErrNoIndexer
	}
	owner = aelf.NormalizeAddress(owner)
	if !aelf.ValidAddress(owner) {
		return nil, ErrInvalidAddress
	}

	items, err := s.holdings.Holdings(ctx, owner)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(items))
	for i, it := range items {
		symbols[i] = it.Symbol
	}

	res, err := s.balances.Aggregate(ctx, symbols, owner)
	if err != nil {
		return nil, err
	}
	found := make(map[string]int64, len(res.Successes))
	for _, h := range res.Successes {
		found[h.Symbol] = h.Balance
	}

	out := &HoldingsResult{Owner: owner, Items: make([]Holding, len(items))}
	for i, it := range items {
		out.Items[i] = Holding{Item: it}
		if v, ok := found[it.Symbol]; ok {
			out.Items[i].Balance = &v
		}
	}
	for _, f := range res.Failures {
		out.Unavailable = append(out.Unavailable, f.Symbol)
	}
	return out, nil
}

// Balances reads owner's balance of each symbol.
func (s *TokenService) Balances(ctx context.Context, owner string, symbols []string) (*balance.Result, error) {
	owner = aelf.NormalizeAddress(owner)
	if !aelf.ValidAddress(owner) {
		return nil, ErrInvalidAddress
	}
	return s.balances.Aggregate(ctx, symbols, owner)
}
