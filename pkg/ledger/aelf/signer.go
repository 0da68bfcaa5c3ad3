package aelf

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

// StatusReader is the subset of ledger.Client the signer needs to pick a
// reference block.
type StatusReader interface {
	ChainStatus(ctx context.Context) (*ledger.ChainStatus, error)
}

// TransactionSigner signs transactions for one chain with a secp256k1 key.
// Each Sign call references the chain's current best block.
type TransactionSigner struct {
	key     *ecdsa.PrivateKey
	from    []byte
	address string
	status  StatusReader
}

var _ ledger.Signer = (*TransactionSigner)(nil)

// NewTransactionSigner binds key to the chain that status reads from.
func NewTransactionSigner(key *ecdsa.PrivateKey, status StatusReader) (*TransactionSigner, error) {
	if key == nil {
		return nil, errors.New("nil signing key")
	}
	if status == nil {
		return nil, errors.New("nil status reader")
	}
	from := addressBytes(crypto.FromECDSAPub(&key.PublicKey))
	return &TransactionSigner{
		key:     key,
		from:    from,
		address: EncodeAddress(from),
		status:  status,
	}, nil
}

// Address returns the signer's base58check address.
func (s *TransactionSigner) Address() string {
	return s.address
}

// Sign builds, hashes and signs a transaction for call.
func (s *TransactionSigner) Sign(ctx context.Context, call ledger.Call) (*ledger.SignedTransaction, error) {
	to, err := DecodeAddress(call.Contract)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}

	var params []byte
	if call.Params != nil {
		params, err = call.Params.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", call.Method, err)
		}
	}

	status, err := s.status.ChainStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("reference block: %w", err)
	}
	prefix, err := refBlockPrefix(status.BestChainHash)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		From:           s.from,
		To:             to,
		RefBlockNumber: status.BestChainHeight,
		RefBlockPrefix: prefix,
		MethodName:     call.Method,
		Params:         params,
	}
	id := tx.ID()
	sig, err := crypto.Sign(id, s.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	tx.Signature = sig

	return &ledger.SignedTransaction{
		TransactionID:  hex.EncodeToString(id),
		Raw:            tx.Marshal(),
		RefBlockNumber: status.BestChainHeight,
	}, nil
}

func refBlockPrefix(blockHash string) ([]byte, error) {
	h, err := hex.DecodeString(strings.TrimPrefix(blockHash, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode block hash %q: %w", blockHash, err)
	}
	if len(h) < 4 {
		return nil, fmt.Errorf("block hash %q too short", blockHash)
	}
	return h[:4], nil
}
