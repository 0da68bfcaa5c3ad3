// Package balance reads token balances for one owner across many symbols.
package balance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

const defaultConcurrency = 8

// Resolver looks up system contracts on a chain.
type Resolver interface {
	Resolve(ctx context.Context, chain *ledger.Chain, name string) (contracts.Handle, error)
}

// Holding is one successful balance read.
type Holding struct {
	Symbol  string `json:"symbol"`
	Owner   string `json:"owner"`
	Balance int64  `json:"balance"`
}

// Failure is one balance read that did not complete.
type Failure struct {
	Symbol string `json:"symbol"`
	Err    error  `json:"-"`
}

// Result holds the outcome of every requested symbol, each in request order.
// A symbol appears in exactly one of the two lists.
type Result struct {
	Successes []Holding
	Failures  []Failure
}

// Err returns a *PartialFailureError when any read failed, nil otherwise.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialFailureError{Failures: r.Failures}
}

// PartialFailureError reports the symbols whose balance could not be read.
type PartialFailureError struct {
	Failures []Failure
}

func (e *PartialFailureError) Error() string {
	symbols := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		symbols[i] = f.Symbol
	}
	return fmt.Sprintf("balance unavailable for %d symbol(s): %s", len(e.Failures), strings.Join(symbols, ", "))
}

// Unwrap exposes the individual read errors.
func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger. If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithConcurrency caps the number of balance reads in flight.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// Aggregator fans balance reads out against one chain's token contract.
type Aggregator struct {
	chain       *ledger.Chain
	resolver    Resolver
	concurrency int
	logger      *zap.Logger
}

// NewAggregator creates an Aggregator reading from chain.
func NewAggregator(chain *ledger.Chain, resolver Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		chain:       chain,
		resolver:    resolver,
		concurrency: defaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Aggregate reads owner's balance of every symbol. It returns an error only
// when no read could be attempted; individual failures land in the Result.
func (a *Aggregator) Aggregate(ctx context.Context, symbols []string, owner string) (*Result, error) {
	owner = aelf.NormalizeAddress(owner)
	if !aelf.ValidAddress(owner) {
		return nil, fmt.Errorf("owner %q: %w", owner, aelf.ErrInvalidAddress)
	}
	if len(symbols) == 0 {
		return &Result{}, nil
	}

	h, err := a.resolver.Resolve(ctx, a.chain, contracts.NameToken)
	if err != nil {
		return nil, fmt.Errorf("resolve token contract: %w", err)
	}

	// Each goroutine writes only its own slot.
	balances := make([]int64, len(symbols))
	errs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			balances[i], errs[i] = a.read(gctx, h, symbol, owner)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{}
	for i, symbol := range symbols {
		if errs[i] != nil {
			metrics.BalanceQueries.WithLabelValues("failed").Inc()
			a.logger.Warn("balance read failed",
				zap.String("symbol", symbol),
				zap.String("owner", owner),
				zap.Error(errs[i]))
			res.Failures = append(res.Failures, Failure{Symbol: symbol, Err: errs[i]})
			continue
		}
		metrics.BalanceQueries.WithLabelValues("ok").Inc()
		res.Successes = append(res.Successes, Holding{Symbol: symbol, Owner: owner, Balance: balances[i]})
	}
	return res, nil
}

// Balance reads a single balance.
func (a *Aggregator) Balance(ctx context.Context, symbol, owner string) (int64, error) {
	res, err := a.Aggregate(ctx, []string{symbol}, owner)
	if err != nil {
		return 0, err
	}
	if len(res.Failures) > 0 {
		return 0, res.Failures[0].Err
	}
	return res.Successes[0].Balance, nil
}

func (a *Aggregator) read(ctx context.Context, h contracts.Handle, symbol, owner string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out, err := a.chain.View(ctx, ledger.Call{
		Contract: h.Address,
		Method:   token.MethodGetBalance,
		Params:   token.GetBalanceInput{Symbol: symbol, Owner: owner},
	})
	if err != nil {
		return 0, err
	}
	bal, err := token.DecodeBalance(out)
	if err != nil {
		return 0, err
	}
	if bal.Symbol != "" && bal.Symbol != symbol {
		return 0, errors.New("balance returned for " + bal.Symbol)
	}
	return bal.Balance, nil
}
