// Package issuancestore keeps the history of issuance runs and their progress
// events for operators. The workflow itself never reads it back.
package issuancestore

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

// ErrRunNotFound is returned when a run lookup finds no matching record.
var ErrRunNotFound = errors.New("run not found")

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// Run is one issuance run as recorded for operators.
type Run struct {
	ID                 string            `json:"id"`
	Symbol             string            `json:"symbol"`
	Mode               token.Mode        `json:"mode"`
	Definition         token.Definition  `json:"definition"`
	Resume             bool              `json:"resume"`
	Status             Status            `json:"status"`
	StageReached       string            `json:"stageReached,omitempty"`
	FailedStage        string            `json:"failedStage,omitempty"`
	ErrorKind          string            `json:"errorKind,omitempty"`
	Error              string            `json:"error,omitempty"`
	FinalTransactionID string            `json:"finalTransactionId,omitempty"`
	Transactions       map[string]string `json:"transactions,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	CompletedAt        *time.Time        `json:"completedAt,omitempty"`
}

// Clone returns a copy that shares no mutable state with r.
func (r *Run) Clone() *Run {
	c := *r
	c.Transactions = maps.Clone(r.Transactions)
	c.Definition.ExternalInfo = maps.Clone(r.Definition.ExternalInfo)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Event is one progress notification of a run.
type Event struct {
	RunID     string    `json:"runId"`
	Seq       int64     `json:"seq"`
	Stage     string    `json:"stage,omitempty"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store defines the interface for run-history persistence
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, opts ...QueryOption) ([]*Run, error)
	AppendEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, runID string) ([]*Event, error)
}

// QueryOptions defines options for listing runs
type QueryOptions struct {
	Symbol *string
	Status *Status
	Limit  int
}

// QueryOption is a functional option for listing runs
type QueryOption func(*QueryOptions)

// WithSymbol filters runs by token symbol
func WithSymbol(symbol string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Symbol = &symbol
	}
}

// WithStatus filters runs by status
func WithStatus(status Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithLimit caps the number of runs returned
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}

const defaultListLimit = 100

func buildOptions(opts []QueryOption) *QueryOptions {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Limit <= 0 {
		options.Limit = defaultListLimit
	}
	return options
}
