package aelf

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for strings that are not base58check addresses.
var ErrInvalidAddress = errors.New("invalid address")

const addressLength = 32

// NormalizeAddress strips the wallet display affixes ("ELF_" prefix and
// "_<chain>" suffix) from an address. The base58 alphabet has no underscore,
// so the affixes are unambiguous.
func NormalizeAddress(s string) string {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "_")
	switch len(parts) {
	case 3:
		return parts[1]
	case 2:
		if parts[0] == "ELF" {
			return parts[1]
		}
		return parts[0]
	default:
		return s
	}
}

// AddressFromPublicKey derives the address of an uncompressed secp256k1 key.
func AddressFromPublicKey(pub []byte) string {
	return EncodeAddress(addressBytes(pub))
}

func addressBytes(pub []byte) []byte {
	first := sha256.Sum256(pub)
	second := sha256.Sum256(first[:])
	return second[:]
}

// EncodeAddress base58check-encodes raw address bytes.
func EncodeAddress(raw []byte) string {
	sum := checksum(raw)
	buf := make([]byte, 0, len(raw)+4)
	buf = append(buf, raw...)
	buf = append(buf, sum...)
	return base58.Encode(buf)
}

// DecodeAddress normalizes s and returns the raw address bytes after
// verifying the checksum.
func DecodeAddress(s string) ([]byte, error) {
	s = NormalizeAddress(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	buf, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(buf) != addressLength+4 {
		return nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidAddress, len(buf))
	}
	raw, sum := buf[:addressLength], buf[addressLength:]
	if !bytes.Equal(sum, checksum(raw)) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	return raw, nil
}

// ValidAddress reports whether s decodes to an address.
func ValidAddress(s string) bool {
	_, err := DecodeAddress(s)
	return err == nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}
