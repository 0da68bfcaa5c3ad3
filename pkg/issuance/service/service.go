// Package service runs issuance workflows in the background on behalf of API
// callers and records their history.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	apperrors "github.com/chainsafe/crosschain-issuer/pkg/app/errors"
	"github.com/chainsafe/crosschain-issuer/pkg/issuance"
	"github.com/chainsafe/crosschain-issuer/pkg/issuancestore"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

const (
	defaultMaxConcurrent = 4
	storeWriteTimeout    = 10 * time.Second
	interruptedMessage   = "interrupted by service restart"
)

var (
	ErrRunInProgress  = errors.New("an issuance for this symbol is already in progress")
	ErrTooManyRuns    = errors.New("too many issuances in progress")
	ErrRunFinished    = errors.New("issuance already finished")
	ErrShuttingDown   = errors.New("service is shutting down")
	ErrInvalidRequest = errors.New("invalid issuance request")
)

// Runner executes one issuance workflow.
type Runner interface {
	Run(ctx context.Context, req issuance.Request) (*issuance.Outcome, error)
}

// StartRequest asks for a new issuance run.
type StartRequest struct {
	Definition token.Definition `json:"definition"`
	Mode       token.Mode       `json:"mode"`
	Memo       string           `json:"memo,omitempty"`
	Resume     bool             `json:"resume,omitempty"`
}

// ListRequest filters the run history.
type ListRequest struct {
	Symbol string
	Status string
	Limit  int
}

// RunDetails is a run with its progress events.
type RunDetails struct {
	Run    *issuancestore.Run     `json:"run"`
	Events []*issuancestore.Event `json:"events"`
}

// Service defines the issuance API
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	StartIssuance(ctx context.Context, req *StartRequest) (*issuancestore.Run, error)
	GetIssuance(ctx context.Context, id string) (*RunDetails, error)
	ListIssuances(ctx context.Context, req *ListRequest) ([]*issuancestore.Run, error)
	CancelIssuance(ctx context.Context, id string) error
}

type activeRun struct {
	symbol string
	cancel context.CancelFunc
}

// Manager starts runs on their own goroutines, enforces one in-flight run per
// symbol and keeps the run history current.
type Manager struct {
	runner        Runner
	store         issuancestore.Store
	logger        *zap.Logger
	maxConcurrent int
	newID         func() string
	now           func() time.Time

	mu       sync.Mutex
	active   map[string]*activeRun // by run id
	bySymbol map[string]string     // symbol -> run id
	closed   bool

	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
}

var _ Service = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMaxConcurrent caps runs in flight across all symbols.
func WithMaxConcurrent(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxConcurrent = n
		}
	}
}

// NewManager creates a run manager.
func NewManager(runner Runner, store issuancestore.Store, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		runner:        runner,
		store:         store,
		logger:        zap.NewNop(),
		maxConcurrent: defaultMaxConcurrent,
		newID:         uuid.NewString,
		now:           func() time.Time { return time.Now().UTC() },
		active:        make(map[string]*activeRun),
		bySymbol:      make(map[string]string),
		baseCtx:       ctx,
		cancelBase:    cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// StartIssuance records a new run and starts it in the background.
func (m *Manager) StartIssuance(ctx context.Context, req *StartRequest) (*issuancestore.Run, error) {
	if err := req.Definition.Validate(req.Mode); err != nil {
		return nil, apperrors.BadRequestError(fmt.Errorf("%w: %w", ErrInvalidRequest, err), err.Error())
	}
	symbol := req.Definition.Symbol

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, apperrors.UnavailableError(ErrShuttingDown, "service is shutting down")
	}
	if id, ok := m.bySymbol[symbol]; ok {
		return nil, apperrors.ConflictError(ErrRunInProgress, fmt.Sprintf("issuance %s for %s is already in progress", id, symbol))
	}
	if len(m.active) >= m.maxConcurrent {
		return nil, apperrors.UnavailableError(ErrTooManyRuns, "too many issuances in progress, retry later")
	}

	run := &issuancestore.Run{
		ID:         m.newID(),
		Symbol:     symbol,
		Mode:       req.Mode,
		Definition: req.Definition,
		Resume:     req.Resume,
		Status:     issuancestore.StatusRunning,
	}
	if err := m.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	runCtx, cancel := context.WithCancel(m.baseCtx)
	m.active[run.ID] = &activeRun{symbol: symbol, cancel: cancel}
	m.bySymbol[symbol] = run.ID
	metrics.ActiveIssuances.Inc()

	// The background run records its result on its own copy; the caller
	// keeps the snapshot taken at start.
	m.wg.Add(1)
	go m.execute(runCtx, cancel, run.Clone(), issuance.Request{
		ID:         run.ID,
		Definition: req.Definition,
		Mode:       req.Mode,
		Memo:       req.Memo,
		Resume:     req.Resume,
	})

	m.logger.Info("issuance started",
		zap.String("run_id", run.ID),
		zap.String("symbol", symbol),
		zap.String("mode", string(req.Mode)))
	return run, nil
}

func (m *Manager) execute(ctx context.Context, cancel context.CancelFunc, run *issuancestore.Run, req issuance.Request) {
	defer m.wg.Done()
	defer cancel()

	outcome, err := m.runner.Run(ctx, req)
	m.finish(run, outcome, err)

	m.mu.Lock()
	delete(m.active, run.ID)
	if m.bySymbol[run.Symbol] == run.ID {
		delete(m.bySymbol, run.Symbol)
	}
	m.mu.Unlock()
	metrics.ActiveIssuances.Dec()
}

func (m *Manager) finish(run *issuancestore.Run, outcome *issuance.Outcome, err error) {
	done := m.now()
	run.CompletedAt = &done
	run.Status = issuancestore.StatusSucceeded

	if outcome != nil {
		run.StageReached = string(outcome.StageReached)
		run.FinalTransactionID = outcome.FinalTransactionID
		run.Transactions = make(map[string]string, len(outcome.Transactions))
		for stage, tx := range outcome.Transactions {
			run.Transactions[string(stage)] = tx
		}
	}
	if err != nil {
		run.Status = issuancestore.StatusFailed
		if issuance.KindOf(err) == issuance.KindCancelled {
			run.Status = issuancestore.StatusCancelled
		}
		run.FailedStage = string(issuance.StageOf(err))
		run.ErrorKind = string(issuance.KindOf(err))
		run.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()
	if uerr := m.store.UpdateRun(ctx, run); uerr != nil {
		m.logger.Error("failed to record run result", zap.String("run_id", run.ID), zap.Error(uerr))
	}

	fields := []zap.Field{
		zap.String("run_id", run.ID),
		zap.String("symbol", run.Symbol),
		zap.String("status", string(run.Status)),
		zap.String("stage_reached", run.StageReached),
	}
	if err != nil {
		m.logger.Warn("issuance ended", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Info("issuance ended", fields...)
}

// GetIssuance returns a run and its events.
func (m *Manager) GetIssuance(ctx context.Context, id string) (*RunDetails, error) {
	run, err := m.store.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, issuancestore.ErrRunNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "issuance not found")
		}
		return nil, err
	}
	events, err := m.store.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RunDetails{Run: run, Events: events}, nil
}

// ListIssuances returns recent runs, newest first.
func (m *Manager) ListIssuances(ctx context.Context, req *ListRequest) ([]*issuancestore.Run, error) {
	var opts []issuancestore.QueryOption
	if req.Symbol != "" {
		opts = append(opts, issuancestore.WithSymbol(req.Symbol))
	}
	if req.Status != "" {
		status := issuancestore.Status(req.Status)
		if !status.Terminal() && status != issuancestore.StatusRunning {
			return nil, apperrors.BadRequestError(nil, "unknown status "+req.Status)
		}
		opts = append(opts, issuancestore.WithStatus(status))
	}
	if req.Limit > 0 {
		opts = append(opts, issuancestore.WithLimit(req.Limit))
	}
	return m.store.ListRuns(ctx, opts...)
}

// CancelIssuance cancels an in-flight run. The run records its cancellation
// once the workflow observes it.
func (m *Manager) CancelIssuance(ctx context.Context, id string) error {
	m.mu.Lock()
	a, ok := m.active[id]
	m.mu.Unlock()
	if ok {
		a.cancel()
		m.logger.Info("issuance cancel requested", zap.String("run_id", id))
		return nil
	}

	if _, err := m.store.GetRun(ctx, id); err != nil {
		if errors.Is(err, issuancestore.ErrRunNotFound) {
			return apperrors.ResourceNotFoundError(err, "issuance not found")
		}
		return err
	}
	return apperrors.ConflictError(ErrRunFinished, "issuance already finished")
}

// RecoverInterrupted marks runs left running by a previous process as failed.
// Call it once at startup before accepting requests.
func (m *Manager) RecoverInterrupted(ctx context.Context) (int, error) {
	runs, err := m.store.ListRuns(ctx, issuancestore.WithStatus(issuancestore.StatusRunning))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, run := range runs {
		m.mu.Lock()
		_, live := m.active[run.ID]
		m.mu.Unlock()
		if live {
			continue
		}
		done := m.now()
		run.Status = issuancestore.StatusFailed
		run.ErrorKind = string(issuance.KindCancelled)
		run.Error = interruptedMessage
		run.CompletedAt = &done
		if err := m.store.UpdateRun(ctx, run); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		m.logger.Warn("marked interrupted issuances as failed", zap.Int("count", n))
	}
	return n, nil
}

// Close stops accepting runs, cancels those in flight and waits for them to
// record their result or for ctx to end.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancelBase()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
