package issuance

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

// workflowState is owned by exactly one run and discarded when it returns.
type workflowState struct {
	stage Stage

	mainToken  contracts.Handle
	created    bool
	createTxID string

	validationTx      *ledger.SignedTransaction
	parentSynced      bool
	parentHeight      int64
	validationOutcome *ledger.TransactionOutcome
	merklePath        ledger.MerklePath

	sideCreated    bool
	sideCreateTxID string
	issueTxID      string

	failed *Error
}

// require checks that the outputs stage depends on are populated.
func (s *workflowState) require(stage Stage) error {
	var missing string
	switch stage {
	case StageValidate:
		if !s.created {
			missing = "a created main chain token"
		}
	case StageAwaitParentSync:
		if s.validationTx == nil {
			missing = "a validation transaction"
		}
	case StageFetchProof:
		if s.validationTx == nil || !s.parentSynced {
			missing = "a synced parent chain height"
		}
	case StageSideChainCreate:
		if s.validationOutcome == nil || s.merklePath == nil {
			missing = "a validation proof"
		}
	case StageSideChainIssue:
		if !s.sideCreated {
			missing = "a side chain token"
		}
	}
	if missing != "" {
		return &Error{Stage: stage, Kind: KindInvalidRequest, Err: fmt.Errorf("stage started without %s", missing)}
	}
	return nil
}

// txError attaches the id of an accepted transaction to its failure.
type txError struct {
	txID string
	err  error
}

func (e *txError) Error() string { return fmt.Sprintf("transaction %s: %v", e.txID, e.err) }
func (e *txError) Unwrap() error { return e.err }

func txIDOf(err error) string {
	var te *txError
	if errors.As(err, &te) {
		return te.txID
	}
	return ""
}

// submitAndAwait sends call and waits for it to become final. A FAILED
// transaction is returned as a ledger rejection carrying the node's message.
func (r *run) submitAndAwait(ctx context.Context, chain *ledger.Chain, call ledger.Call) (string, error) {
	tx, err := chain.Send(ctx, call)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(chain.Ref.Name, call.Method, "rejected").Inc()
		return "", err
	}
	out, err := wait.TransactionFinal(ctx, chain.Client, tx.TransactionID, r.o.cfg.TxFinal)
	if err != nil {
		return tx.TransactionID, &txError{txID: tx.TransactionID, err: err}
	}
	if out.Status == ledger.TxStatusFailed {
		metrics.TransactionsSent.WithLabelValues(chain.Ref.Name, call.Method, "failed").Inc()
		return tx.TransactionID, &txError{txID: tx.TransactionID, err: ledger.Reject("", out.Error)}
	}
	metrics.TransactionsSent.WithLabelValues(chain.Ref.Name, call.Method, "mined").Inc()
	return tx.TransactionID, nil
}

func (r *run) mainChainCreate(ctx context.Context) error {
	h, err := r.o.resolver.Resolve(ctx, r.o.main, contracts.NameToken)
	if err != nil {
		return err
	}
	r.state.mainToken = h

	r.notify(StageMainChainCreate, LevelInfo, onMainChain(r.req.Mode, "Creating"))
	txID, err := r.submitAndAwait(ctx, r.o.main, ledger.Call{
		Contract: h.Address,
		Method:   token.MethodCreate,
		Params:   token.NewCreateInput(r.req.Definition, r.req.Mode),
	})
	if err != nil {
		if r.req.Resume && errors.Is(err, ledger.ErrDuplicateSymbol) {
			r.state.created = true
			r.notify(StageMainChainCreate, LevelWarn, r.req.Definition.Symbol+" already exists on MainChain, resuming")
			return nil
		}
		return err
	}

	r.state.created = true
	r.state.createTxID = txID
	r.record(StageMainChainCreate, txID)
	r.notify(StageMainChainCreate, LevelSuccess, onMainChain(r.req.Mode, "Created"))
	return nil
}

func (r *run) validate(ctx context.Context) error {
	r.notify(StageValidate, LevelInfo, "Validating Token Info")
	tx, err := r.o.main.Send(ctx, ledger.Call{
		Contract: r.state.mainToken.Address,
		Method:   token.MethodValidateTokenInfoExists,
		Params:   token.NewValidateInput(r.req.Definition, r.req.Mode),
	})
	if err != nil {
		metrics.TransactionsSent.WithLabelValues(r.o.main.Ref.Name, token.MethodValidateTokenInfoExists, "rejected").Inc()
		return err
	}
	metrics.TransactionsSent.WithLabelValues(r.o.main.Ref.Name, token.MethodValidateTokenInfoExists, "submitted").Inc()

	r.state.validationTx = tx
	r.record(StageValidate, tx.TransactionID)
	r.notify(StageValidate, LevelSuccess, fmt.Sprintf("Validation submitted at reference block %d", tx.RefBlockNumber))
	return nil
}

func (r *run) awaitParentSync(ctx context.Context) error {
	cc, err := r.o.resolver.Resolve(ctx, r.o.side, contracts.NameCrossChain)
	if err != nil {
		return err
	}

	target := r.state.validationTx.RefBlockNumber
	r.notify(StageAwaitParentSync, LevelInfo, fmt.Sprintf("Waiting for SideChain to index MainChain height %d", target))
	height, err := wait.ParentHeightAtLeast(ctx,
		func(ctx context.Context) (int64, error) {
			return contracts.ParentChainHeight(ctx, r.o.side, cc)
		},
		target, r.o.cfg.ParentSync)
	if err != nil {
		return err
	}

	r.state.parentSynced = true
	r.state.parentHeight = height
	r.notify(StageAwaitParentSync, LevelSuccess, fmt.Sprintf("SideChain indexed MainChain height %d", height))
	return nil
}

func (r *run) fetchProof(ctx context.Context) error {
	txID := r.state.validationTx.TransactionID
	out, err := wait.TransactionFinal(ctx, r.o.main.Client, txID, r.o.cfg.TxFinal)
	if err != nil {
		return err
	}
	if out.Status != ledger.TxStatusMined {
		return &Error{Stage: StageValidate, Kind: KindSubmissionFailed, TxID: txID, Err: ledger.Reject("", out.Error)}
	}
	r.state.validationOutcome = out

	path, err := r.o.main.Client.MerklePath(ctx, txID)
	if err != nil {
		return fmt.Errorf("merkle path of %s: %w", txID, err)
	}
	if path == nil {
		path = ledger.MerklePath{}
	}
	r.state.merklePath = path
	r.notify(StageFetchProof, LevelSuccess, fmt.Sprintf("Fetched inclusion proof at block %d", out.BlockNumber))
	return nil
}

func (r *run) sideChainCreate(ctx context.Context) error {
	h, err := r.o.resolver.Resolve(ctx, r.o.side, contracts.NameToken)
	if err != nil {
		return err
	}
	call := ledger.Call{
		Contract: h.Address,
		Method:   token.MethodCrossChainCreateToken,
		Params: token.CrossChainCreateInput{
			FromChainID:       r.o.main.Ref.ChainID,
			ParentChainHeight: r.state.validationOutcome.BlockNumber,
			TransactionBytes:  r.state.validationTx.Raw,
			MerklePath:        r.state.merklePath,
		},
	}

	sctx := ctx
	if r.o.cfg.CrossChainTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, r.o.cfg.CrossChainTimeout)
		defer cancel()
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.o.cfg.CrossChainBackoff), uint64(r.o.cfg.CrossChainMaxRetries)),
		sctx)

	var (
		attempts      int
		lastTransient error
	)
	op := func() error {
		if err := sctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		r.notify(StageSideChainCreate, LevelInfo, onSideChain(r.req.Mode, "Creating"))

		txID, err := r.submitAndAwait(sctx, r.o.side, call)
		switch {
		case err == nil:
			r.state.sideCreateTxID = txID
			r.record(StageSideChainCreate, txID)
			return nil
		case r.req.Resume && errors.Is(err, ledger.ErrDuplicateSymbol):
			r.notify(StageSideChainCreate, LevelWarn, r.req.Definition.Symbol+" already exists on SideChain, resuming")
			return nil
		case ledger.IsTransient(err):
			lastTransient = err
			reason := "transport"
			if errors.Is(err, ledger.ErrCrossChainVerification) {
				reason = "verification"
			}
			metrics.CrossChainRetries.WithLabelValues(reason).Inc()
			r.o.emit(r.req.ID, StageSideChainCreate, LevelWarn,
				fmt.Sprintf("SideChain not ready (attempt %d), retrying in %s", attempts, r.o.cfg.CrossChainBackoff), err)
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	err = backoff.Retry(op, policy)
	switch {
	case err == nil:
		r.state.sideCreated = true
		r.notify(StageSideChainCreate, LevelSuccess, onSideChain(r.req.Mode, "Created"))
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", wait.ErrCancelled, ctx.Err())
	case sctx.Err() != nil || (lastTransient != nil && ledger.IsTransient(err)):
		cause := lastTransient
		if cause == nil {
			cause = err
		}
		return &Error{
			Stage: StageSideChainCreate,
			Kind:  KindCrossChainSyncTimeout,
			TxID:  txIDOf(cause),
			Err:   fmt.Errorf("gave up after %d attempts: %w", attempts, cause),
		}
	default:
		return err
	}
}

func (r *run) sideChainIssue(ctx context.Context) error {
	h, err := r.o.resolver.Resolve(ctx, r.o.side, contracts.NameToken)
	if err != nil {
		return err
	}
	memo := r.req.Memo
	if memo == "" {
		memo = defaultIssueMemo
	}

	r.notify(StageSideChainIssue, LevelInfo, "Issuing NFT on SideChain")
	txID, err := r.submitAndAwait(ctx, r.o.side, ledger.Call{
		Contract: h.Address,
		Method:   token.MethodIssue,
		Params: token.IssueInput{
			Symbol: r.req.Definition.Symbol,
			Amount: r.req.Definition.TotalSupply,
			Memo:   memo,
			To:     r.req.Definition.Owner,
		},
	})
	if err != nil {
		return err
	}
	r.state.issueTxID = txID
	r.record(StageSideChainIssue, txID)
	r.notify(StageSideChainIssue, LevelSuccess, "NFT issued on SideChain")
	return nil
}

func onMainChain(mode Mode, verb string) string {
	if mode == ModeCreateToken {
		return verb + " NFT on MainChain"
	}
	return verb + " Collection on MainChain"
}

func onSideChain(mode Mode, verb string) string {
	if mode == ModeCreateToken {
		return verb + " NFT on SideChain"
	}
	return verb + " Collection on SideChain"
}
