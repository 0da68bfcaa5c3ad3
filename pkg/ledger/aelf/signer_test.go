package aelf

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

type fakeStatus struct {
	status *ledger.ChainStatus
	err    error
}

func (f fakeStatus) ChainStatus(context.Context) (*ledger.ChainStatus, error) {
	return f.status, f.err
}

func TestTransactionSigner_Sign(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	status := fakeStatus{status: &ledger.ChainStatus{
		BestChainHeight: 1234,
		BestChainHash:   "deadbeef00112233445566778899aabbccddeeff00112233445566778899aabb",
	}}
	signer, err := NewTransactionSigner(key, status)
	if err != nil {
		t.Fatalf("NewTransactionSigner: %v", err)
	}

	contractRaw := bytes.Repeat([]byte{0x07}, addressLength)
	call := ledger.Call{
		Contract: "ELF_" + EncodeAddress(contractRaw) + "_AELF",
		Method:   "GetBalance",
		Params:   HashValue([]byte{0x01, 0x02}),
	}

	signed, err := signer.Sign(context.Background(), call)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if signed.RefBlockNumber != 1234 {
		t.Errorf("RefBlockNumber = %d, want 1234", signed.RefBlockNumber)
	}

	tx, err := UnmarshalTransaction(signed.Raw)
	if err != nil {
		t.Fatalf("UnmarshalTransaction: %v", err)
	}
	if tx.MethodName != "GetBalance" {
		t.Errorf("MethodName = %q", tx.MethodName)
	}
	if !bytes.Equal(tx.To, contractRaw) {
		t.Errorf("To = %x, want %x", tx.To, contractRaw)
	}
	if hex.EncodeToString(tx.RefBlockPrefix) != "deadbeef" {
		t.Errorf("RefBlockPrefix = %x", tx.RefBlockPrefix)
	}
	if EncodeAddress(tx.From) != signer.Address() {
		t.Errorf("From = %s, want %s", EncodeAddress(tx.From), signer.Address())
	}

	id := tx.ID()
	if hex.EncodeToString(id) != signed.TransactionID {
		t.Fatalf("TransactionID = %s, want %x", signed.TransactionID, id)
	}
	pub, err := crypto.SigToPub(id, tx.Signature)
	if err != nil {
		t.Fatalf("recover signer: %v", err)
	}
	if AddressFromPublicKey(crypto.FromECDSAPub(pub)) != signer.Address() {
		t.Fatal("recovered key does not match signer address")
	}
}

func TestTransactionSigner_StatusError(t *testing.T) {
	key, _ := crypto.GenerateKey()
	boom := errors.New("node down")
	signer, err := NewTransactionSigner(key, fakeStatus{err: boom})
	if err != nil {
		t.Fatalf("NewTransactionSigner: %v", err)
	}
	_, err = signer.Sign(context.Background(), ledger.Call{
		Contract: EncodeAddress(bytes.Repeat([]byte{0x01}, addressLength)),
		Method:   "Create",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
}

func TestTransactionSigner_InvalidContract(t *testing.T) {
	key, _ := crypto.GenerateKey()
	signer, _ := NewTransactionSigner(key, fakeStatus{})
	_, err := signer.Sign(context.Background(), ledger.Call{Contract: "not-an-address", Method: "Create"})
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestTransaction_IDIgnoresSignature(t *testing.T) {
	tx := &Transaction{
		From:           bytes.Repeat([]byte{1}, addressLength),
		To:             bytes.Repeat([]byte{2}, addressLength),
		RefBlockNumber: 9,
		RefBlockPrefix: []byte{1, 2, 3, 4},
		MethodName:     "Issue",
		Params:         []byte{0x0a, 0x01, 0x41},
	}
	before := tx.ID()
	tx.Signature = bytes.Repeat([]byte{9}, 65)
	if !bytes.Equal(before, tx.ID()) {
		t.Fatal("transaction id must not depend on the signature")
	}

	decoded, err := UnmarshalTransaction(tx.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalTransaction: %v", err)
	}
	if !bytes.Equal(decoded.Signature, tx.Signature) || decoded.RefBlockNumber != 9 {
		t.Fatalf("decoded transaction mismatch: %+v", decoded)
	}
}
