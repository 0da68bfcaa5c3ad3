package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

const defaultIssueMemo = "We are issuing nftToken"

// Resolver looks up system contracts on a chain.
type Resolver interface {
	Resolve(ctx context.Context, chain *ledger.Chain, name string) (contracts.Handle, error)
}

// Config bounds the waits and retries of a run.
type Config struct {
	// ParentSync bounds the wait for the side chain to index the main chain
	// up to the validation transaction's reference block.
	ParentSync wait.Policy
	// TxFinal bounds each wait for a transaction to be mined or failed.
	TxFinal wait.Policy

	// CrossChainBackoff is the pause between side chain create attempts.
	CrossChainBackoff time.Duration
	// CrossChainMaxRetries caps resubmissions after the first attempt.
	CrossChainMaxRetries int
	// CrossChainTimeout caps the whole SideChainCreate stage. Zero disables.
	CrossChainTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ParentSync:           wait.Policy{Interval: 5 * time.Second, Timeout: 20 * time.Minute},
		TxFinal:              wait.Policy{Interval: 2 * time.Second, Timeout: 5 * time.Minute},
		CrossChainBackoff:    10 * time.Second,
		CrossChainMaxRetries: 30,
		CrossChainTimeout:    15 * time.Minute,
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithObserver sets the progress observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// Orchestrator runs issuance workflows between one main chain and one side
// chain. A single Orchestrator may serve concurrent runs; each Run owns its
// own workflow state. Running two workflows for the same symbol at once is a
// caller error.
type Orchestrator struct {
	main     *ledger.Chain
	side     *ledger.Chain
	resolver Resolver
	cfg      Config
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an Orchestrator.
func New(main, side *ledger.Chain, resolver Resolver, cfg Config, opts ...Option) (*Orchestrator, error) {
	if main == nil || side == nil {
		return nil, errors.New("main and side chains are required")
	}
	if resolver == nil {
		return nil, errors.New("contract resolver is required")
	}
	if cfg.CrossChainBackoff <= 0 {
		cfg.CrossChainBackoff = DefaultConfig().CrossChainBackoff
	}
	if cfg.CrossChainMaxRetries < 0 {
		return nil, fmt.Errorf("cross chain max retries must be >= 0, got %d", cfg.CrossChainMaxRetries)
	}
	o := &Orchestrator{
		main:     main,
		side:     side,
		resolver: resolver,
		cfg:      cfg,
		observer: Observers(nil),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// Run executes req to completion, failure or cancellation. The returned
// Outcome is non-nil whenever the request was accepted and reports the last
// completed stage even when err is non-nil. Errors are *Error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := req.Definition.Validate(req.Mode); err != nil {
		e := &Error{Kind: KindInvalidRequest, Err: err}
		o.emit(req.ID, "", LevelError, "Invalid issuance request", e)
		return nil, e
	}

	r := &run{
		o:     o,
		req:   req,
		state: &workflowState{},
		outcome: &Outcome{
			RunID:        req.ID,
			Transactions: make(map[Stage]string),
		},
	}

	start := o.now()
	mode := string(req.Mode)
	err := r.execute(ctx)
	metrics.IssuanceDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IssuancesTotal.WithLabelValues(mode, string(KindOf(err))).Inc()
		return r.outcome, err
	}
	metrics.IssuancesTotal.WithLabelValues(mode, "success").Inc()
	return r.outcome, nil
}

func (o *Orchestrator) emit(runID string, stage Stage, level Level, msg string, err error) {
	o.observer.Notify(Event{
		RunID:   runID,
		Stage:   stage,
		Message: msg,
		Level:   level,
		Time:    o.now(),
		Err:     err,
	})
}

// run is the per-request execution context.
type run struct {
	o       *Orchestrator
	req     Request
	state   *workflowState
	outcome *Outcome
}

type stageFunc func(context.Context) error

func (r *run) stages() map[Stage]stageFunc {
	return map[Stage]stageFunc{
		StageMainChainCreate: r.mainChainCreate,
		StageValidate:        r.validate,
		StageAwaitParentSync: r.awaitParentSync,
		StageFetchProof:      r.fetchProof,
		StageSideChainCreate: r.sideChainCreate,
		StageSideChainIssue:  r.sideChainIssue,
	}
}

func (r *run) execute(ctx context.Context) error {
	fns := r.stages()
	r.o.logger.Info("issuance started",
		zap.String("run_id", r.req.ID),
		zap.String("symbol", r.req.Definition.Symbol),
		zap.String("mode", string(r.req.Mode)))

	for _, stage := range Stages(r.req.Mode) {
		if ctx.Err() != nil {
			return r.fail(stage, &Error{Stage: stage, Kind: KindCancelled, Err: fmt.Errorf("%w: %w", wait.ErrCancelled, ctx.Err())})
		}

		if err := r.state.require(stage); err != nil {
			return r.fail(stage, classify(ctx, stage, err))
		}

		r.state.stage = stage
		started := r.o.now()
		err := fns[stage](ctx)
		metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(started).Seconds())
		if err != nil {
			return r.fail(stage, classify(ctx, stage, err))
		}
		r.outcome.StageReached = stage
	}

	r.o.emit(r.req.ID, "", LevelSuccess, successMessage(r.req.Mode), nil)
	r.o.logger.Info("issuance completed",
		zap.String("run_id", r.req.ID),
		zap.String("symbol", r.req.Definition.Symbol),
		zap.String("final_tx", r.outcome.FinalTransactionID))
	return nil
}

func (r *run) fail(stage Stage, e *Error) error {
	r.state.failed = e
	r.o.emit(r.req.ID, stage, LevelError, fmt.Sprintf("%s failed", stage), e)
	r.o.logger.Error("issuance failed",
		zap.String("run_id", r.req.ID),
		zap.String("symbol", r.req.Definition.Symbol),
		zap.String("stage", string(stage)),
		zap.String("kind", string(e.Kind)),
		zap.Error(e.Err))
	return e
}

// record stores the transaction a stage produced.
func (r *run) record(stage Stage, txID string) {
	if txID == "" {
		return
	}
	r.outcome.Transactions[stage] = txID
	r.outcome.FinalTransactionID = txID
}

func (r *run) notify(stage Stage, level Level, msg string) {
	r.o.emit(r.req.ID, stage, level, msg, nil)
}

func successMessage(mode Mode) string {
	if mode == ModeCreateToken {
		return "NFT Issue Successfully Executed"
	}
	return "Collection was Created Successfully On SideChain"
}
