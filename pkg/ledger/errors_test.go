package ledger

import (
	"errors"
	"fmt"
	"testing"
)

func TestReject_ClassifiesKnownMessages(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		want      error
		transient bool
	}{
		{"cross chain", "Cross chain verification failed.", ErrCrossChainVerification, true},
		{"duplicate", "Token already exists.", ErrDuplicateSymbol, false},
		{"other", "Insufficient balance", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reject("", tt.message)
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == nil && (errors.Is(err, ErrCrossChainVerification) || errors.Is(err, ErrDuplicateSymbol)) {
				t.Fatalf("unexpected classification for %q", tt.message)
			}
			if IsTransient(err) != tt.transient {
				t.Fatalf("IsTransient = %v, want %v", IsTransient(err), tt.transient)
			}
		})
	}
}

func TestIsTransient_Transport(t *testing.T) {
	err := fmt.Errorf("submit Create: %w", fmt.Errorf("%w: connection refused", ErrTransport))
	if !IsTransient(err) {
		t.Fatal("expected wrapped transport error to be transient")
	}
}

func TestRejectionError_Message(t *testing.T) {
	err := Reject("20001", "bad input")
	if got := err.Error(); got != "ledger rejected transaction (code 20001): bad input" {
		t.Fatalf("unexpected message %q", got)
	}
}
