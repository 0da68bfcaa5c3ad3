package aelf

import (
	"bytes"
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ELF_2Xg6cKcp_AELF", "2Xg6cKcp"},
		{"ELF_2Xg6cKcp", "2Xg6cKcp"},
		{"2Xg6cKcp_tDVW", "2Xg6cKcp"},
		{"2Xg6cKcp", "2Xg6cKcp"},
		{"  2Xg6cKcp ", "2Xg6cKcp"},
	}
	for _, tt := range tests {
		if got := NormalizeAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeDecodeAddress(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, addressLength)
	addr := EncodeAddress(raw)

	for _, form := range []string{addr, "ELF_" + addr + "_AELF", addr + "_tDVW"} {
		got, err := DecodeAddress(form)
		if err != nil {
			t.Fatalf("DecodeAddress(%q): %v", form, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("DecodeAddress(%q) = %x, want %x", form, got, raw)
		}
	}
}

func TestDecodeAddress_Invalid(t *testing.T) {
	raw := bytes.Repeat([]byte{0x01}, addressLength)
	addr := []byte(EncodeAddress(raw))
	// flip the last character to break the checksum
	if addr[len(addr)-1] == '2' {
		addr[len(addr)-1] = '3'
	} else {
		addr[len(addr)-1] = '2'
	}

	for _, in := range []string{"", "0OIl", "abc", string(addr)} {
		if _, err := DecodeAddress(in); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("DecodeAddress(%q) err = %v, want ErrInvalidAddress", in, err)
		}
	}
}

func TestAddressFromPublicKey_Deterministic(t *testing.T) {
	pub := bytes.Repeat([]byte{0x04}, 65)
	a, b := AddressFromPublicKey(pub), AddressFromPublicKey(pub)
	if a != b {
		t.Fatalf("address not deterministic: %s != %s", a, b)
	}
	if !ValidAddress(a) {
		t.Fatalf("derived address %s does not validate", a)
	}
}
