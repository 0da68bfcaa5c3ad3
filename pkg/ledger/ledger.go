// Package ledger defines the chain-agnostic capabilities the issuance workflow
// consumes: reading chain status, executing read-only calls, submitting signed
// transactions and reading their results and Merkle inclusion paths.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ChainRef identifies a ledger. It is built once from configuration.
type ChainRef struct {
	Name    string // chain symbol, e.g. "AELF" or "tDVW"
	RPCURL  string
	ChainID int32
}

func (c ChainRef) String() string {
	return fmt.Sprintf("%s(%d)", c.Name, c.ChainID)
}

// ChainStatus is the subset of node status the workflow needs.
type ChainStatus struct {
	ChainID                string
	RegistryAddress        string // genesis (zero) contract address
	BestChainHeight        int64
	BestChainHash          string
	LastIrreversibleHeight int64
}

// TxStatus is the lifecycle state of a submitted transaction.
type TxStatus string

const (
	TxStatusPending TxStatus = "PENDING"
	TxStatusMined   TxStatus = "MINED"
	TxStatusFailed  TxStatus = "FAILED"
)

// IsFinal reports whether the status can no longer change.
func (s TxStatus) IsFinal() bool {
	return s == TxStatusMined || s == TxStatusFailed
}

// SignedTransaction is a serialized, signed transaction ready for submission.
type SignedTransaction struct {
	TransactionID  string
	Raw            []byte
	RefBlockNumber int64
}

// RawHex returns the serialized transaction hex-encoded, as nodes expect it.
func (t *SignedTransaction) RawHex() string {
	return hex.EncodeToString(t.Raw)
}

// TransactionOutcome is a point-in-time read of a transaction's result.
type TransactionOutcome struct {
	TransactionID  string
	Status         TxStatus
	RefBlockNumber int64
	BlockNumber    int64
	Error          string
	ReturnValue    []byte
}

// MerklePathNode is one sibling hash on an inclusion path.
type MerklePathNode struct {
	Hash          string `json:"hash"`
	IsLeftSibling bool   `json:"isLeftChildNode"`
}

// MerklePath proves a transaction's membership in a block.
type MerklePath []MerklePathNode

// Message is a contract input that knows its own wire encoding.
type Message interface {
	Marshal() ([]byte, error)
}

// Call describes a contract method invocation.
type Call struct {
	Contract string
	Method   string
	Params   Message
}

// Client is the per-chain ledger capability.
type Client interface {
	ChainStatus(ctx context.Context) (*ChainStatus, error)
	// CallReadOnly executes a signed transaction without broadcasting it and
	// returns the method's raw return value.
	CallReadOnly(ctx context.Context, tx *SignedTransaction) ([]byte, error)
	// Submit broadcasts a signed transaction. It either returns the
	// transaction id accepted by the node or an error; nothing in between.
	Submit(ctx context.Context, tx *SignedTransaction) (string, error)
	TransactionResult(ctx context.Context, txID string) (*TransactionOutcome, error)
	MerklePath(ctx context.Context, txID string) (MerklePath, error)
}

// Signer turns a contract call into a signed transaction for one chain.
type Signer interface {
	Address() string
	Sign(ctx context.Context, call Call) (*SignedTransaction, error)
}

// HashName returns the registry key for a well-known contract name.
func HashName(name string) []byte {
	sum := sha256.Sum256([]byte(name))
	return sum[:]
}
