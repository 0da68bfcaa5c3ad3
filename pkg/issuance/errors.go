package issuance

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

// Kind classifies a run failure.
type Kind string

const (
	// KindSubmissionFailed is the ledger rejecting a transaction.
	KindSubmissionFailed Kind = "submission_failed"
	// KindContractNotFound is a registry lookup returning no address.
	KindContractNotFound Kind = "contract_not_found"
	// KindTimeout is a wait exhausting its budget.
	KindTimeout Kind = "timeout"
	// KindCancelled is the caller cancelling the run.
	KindCancelled Kind = "cancelled"
	// KindCrossChainSyncTimeout is the side chain still failing cross-chain
	// verification after the retry budget is spent.
	KindCrossChainSyncTimeout Kind = "cross_chain_sync_timeout"
	// KindLedgerUnavailable is a node that could not be reached.
	KindLedgerUnavailable Kind = "ledger_unavailable"
	// KindInvalidRequest is a request rejected before anything was submitted.
	KindInvalidRequest Kind = "invalid_request"
)

// Error is a run failure tagged with the stage it happened in.
type Error struct {
	Stage Stage
	Kind  Kind
	TxID  string // transaction involved, when there is one
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed (%s)", e.Stage, e.Kind)
	if e.Stage == "" {
		msg = string(e.Kind)
	}
	if e.TxID != "" {
		msg += " tx " + e.TxID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a run error, or "" when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StageOf returns the failed stage of a run error, or "".
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// IsCreateFailed reports whether the main chain rejected the Create transaction.
func IsCreateFailed(err error) bool {
	return StageOf(err) == StageMainChainCreate && KindOf(err) == KindSubmissionFailed
}

// classify tags err with stage, preserving an existing tag.
func classify(ctx context.Context, stage Stage, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	kind := KindSubmissionFailed
	var rej *ledger.RejectionError
	switch {
	case errors.Is(err, wait.ErrCancelled),
		ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		kind = KindCancelled
	case errors.Is(err, wait.ErrTimeout):
		kind = KindTimeout
	case errors.Is(err, contracts.ErrContractNotFound):
		kind = KindContractNotFound
	case errors.As(err, &rej):
		kind = KindSubmissionFailed
	case errors.Is(err, ledger.ErrTransport):
		kind = KindLedgerUnavailable
	}
	return &Error{Stage: stage, Kind: kind, TxID: txIDOf(err), Err: err}
}
