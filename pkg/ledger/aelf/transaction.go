package aelf

import (
	"crypto/sha256"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Transaction field numbers.
const (
	txFieldFrom           protowire.Number = 1
	txFieldTo             protowire.Number = 2
	txFieldRefBlockNumber protowire.Number = 3
	txFieldRefBlockPrefix protowire.Number = 4
	txFieldMethodName     protowire.Number = 5
	txFieldParams         protowire.Number = 6
	txFieldSignature      protowire.Number = 10000
)

// Transaction is the aelf transaction envelope.
type Transaction struct {
	From           []byte // raw address
	To             []byte // raw address
	RefBlockNumber int64
	RefBlockPrefix []byte // first four bytes of the reference block hash
	MethodName     string
	Params         []byte
	Signature      []byte
}

func (t *Transaction) appendUnsigned(b []byte) []byte {
	b = AppendBytesValue(b, txFieldFrom, t.From)
	b = AppendBytesValue(b, txFieldTo, t.To)
	b = AppendInt64(b, txFieldRefBlockNumber, t.RefBlockNumber)
	b = AppendBytes(b, txFieldRefBlockPrefix, t.RefBlockPrefix)
	b = AppendString(b, txFieldMethodName, t.MethodName)
	b = AppendBytes(b, txFieldParams, t.Params)
	return b
}

// Marshal serializes the signed envelope.
func (t *Transaction) Marshal() []byte {
	b := t.appendUnsigned(nil)
	return AppendBytes(b, txFieldSignature, t.Signature)
}

// ID is the transaction hash: sha256 over the envelope without its signature.
func (t *Transaction) ID() []byte {
	sum := sha256.Sum256(t.appendUnsigned(nil))
	return sum[:]
}

// UnmarshalTransaction decodes a serialized envelope.
func UnmarshalTransaction(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	err := ForEachField(b, func(f Field) error {
		var err error
		switch f.Num {
		case txFieldFrom:
			tx.From, err = DecodeBytesValue(f.Bytes)
		case txFieldTo:
			tx.To, err = DecodeBytesValue(f.Bytes)
		case txFieldRefBlockNumber:
			tx.RefBlockNumber = int64(f.Varint)
		case txFieldRefBlockPrefix:
			tx.RefBlockPrefix = f.Bytes
		case txFieldMethodName:
			tx.MethodName = string(f.Bytes)
		case txFieldParams:
			tx.Params = f.Bytes
		case txFieldSignature:
			tx.Signature = f.Bytes
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return tx, nil
}
