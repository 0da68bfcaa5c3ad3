package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Chain binds a client and a signer to one ledger.
type Chain struct {
	Ref    ChainRef
	Client Client
	Signer Signer
}

// NewChain validates and returns a chain binding.
func NewChain(ref ChainRef, client Client, signer Signer) (*Chain, error) {
	if client == nil {
		return nil, errors.New("nil ledger client")
	}
	if signer == nil {
		return nil, errors.New("nil signer")
	}
	return &Chain{Ref: ref, Client: client, Signer: signer}, nil
}

// View signs the call and executes it read-only.
func (c *Chain) View(ctx context.Context, call Call) ([]byte, error) {
	tx, err := c.Signer.Sign(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("sign %s.%s: %w", call.Contract, call.Method, err)
	}
	out, err := c.Client.CallReadOnly(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", call.Method, err)
	}
	return out, nil
}

// Send signs the call and submits it. The returned transaction is the one the
// node accepted; its id is authoritative.
func (c *Chain) Send(ctx context.Context, call Call) (*SignedTransaction, error) {
	tx, err := c.Signer.Sign(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("sign %s.%s: %w", call.Contract, call.Method, err)
	}
	txID, err := c.Client.Submit(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", call.Method, err)
	}
	if txID != "" {
		tx.TransactionID = txID
	}
	return tx, nil
}
