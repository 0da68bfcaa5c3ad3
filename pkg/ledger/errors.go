package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks failures to reach the node (connection errors, 5xx).
	// The ledger did not judge the request.
	ErrTransport = errors.New("ledger transport error")

	// ErrCrossChainVerification is the side chain rejecting a cross-chain proof
	// because its index of the parent chain has not caught up yet.
	ErrCrossChainVerification = errors.New("cross chain verification failed")

	// ErrDuplicateSymbol is the token contract refusing to create a symbol
	// that already exists.
	ErrDuplicateSymbol = errors.New("token already exists")

	// ErrTransactionNotFound is returned when the node has no record of a txID.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// RejectionError is a semantic rejection reported by the ledger.
type RejectionError struct {
	Code    string
	Message string
	kind    error
}

func (e *RejectionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("ledger rejected transaction (code %s): %s", e.Code, e.Message)
	}
	return "ledger rejected transaction: " + e.Message
}

// Unwrap exposes the classified sentinel, if any.
func (e *RejectionError) Unwrap() error {
	return e.kind
}

// Reject builds a RejectionError, classifying well-known messages.
func Reject(code, message string) error {
	return &RejectionError{Code: code, Message: message, kind: classify(message)}
}

func classify(message string) error {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "cross chain verification failed"):
		return ErrCrossChainVerification
	case strings.Contains(msg, "already exist"):
		return ErrDuplicateSymbol
	default:
		return nil
	}
}

// IsTransient reports whether retrying the same operation later may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrCrossChainVerification) || errors.Is(err, ErrTransport)
}
