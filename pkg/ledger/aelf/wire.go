package aelf

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field is one decoded protobuf field. Only varint and length-delimited values
// are surfaced; other wire types are skipped by ForEachField.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

// ForEachField walks the top-level fields of a protobuf message.
func ForEachField(b []byte, fn func(Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(n))
			}
			f.Varint = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(n))
			}
			f.Bytes = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// AppendBytesValue appends a wrapper message ({bytes value = 1}) as field num.
// Address and Hash both have this shape.
func AppendBytesValue(b []byte, num protowire.Number, value []byte) []byte {
	inner := protowire.AppendTag(nil, 1, protowire.BytesType)
	inner = protowire.AppendBytes(inner, value)
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

// AppendString appends a string field, omitting the empty string.
func AppendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// AppendBytes appends a bytes field, omitting empty values.
func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// AppendMessage appends an embedded message field, even when empty.
func AppendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// AppendInt64 appends an int64 field, omitting zero.
func AppendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// AppendInt32 appends an int32 field, omitting zero. Negative values are
// sign-extended to ten bytes as protobuf requires.
func AppendInt32(b []byte, num protowire.Number, v int32) []byte {
	return AppendInt64(b, num, int64(v))
}

// AppendBool appends a bool field, omitting false.
func AppendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// DecodeBytesValue unwraps a {bytes value = 1} message.
func DecodeBytesValue(b []byte) ([]byte, error) {
	var out []byte
	err := ForEachField(b, func(f Field) error {
		if f.Num == 1 && f.Type == protowire.BytesType {
			out = f.Bytes
		}
		return nil
	})
	return out, err
}

// DecodeInt64Value unwraps a google.protobuf.Int64Value.
func DecodeInt64Value(b []byte) (int64, error) {
	var out int64
	err := ForEachField(b, func(f Field) error {
		if f.Num == 1 && f.Type == protowire.VarintType {
			out = int64(f.Varint)
		}
		return nil
	})
	return out, err
}

// HashValue is an aelf Hash message used as a method parameter.
type HashValue []byte

// Marshal implements ledger.Message.
func (h HashValue) Marshal() ([]byte, error) {
	b := protowire.AppendTag(nil, 1, protowire.BytesType)
	return protowire.AppendBytes(b, h), nil
}
