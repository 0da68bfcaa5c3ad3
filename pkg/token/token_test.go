package token

import (
	"bytes"
	"errors"
	"testing"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
)

var (
	testIssuer = aelf.EncodeAddress(bytes.Repeat([]byte{0x11}, 32))
	testOwner  = aelf.EncodeAddress(bytes.Repeat([]byte{0x22}, 32))
)

func validDefinition() Definition {
	return Definition{
		Symbol:         "ART-0",
		DisplayName:    "Art Collection",
		TotalSupply:    100,
		Decimals:       0,
		Issuer:         testIssuer,
		Owner:          testOwner,
		IsBurnable:     true,
		IssuingChainID: 1931928,
	}
}

func TestDefinition_Validate(t *testing.T) {
	if err := validDefinition().Validate(ModeCreateCollection); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"empty symbol", func(d *Definition) { d.Symbol = "" }},
		{"lowercase symbol", func(d *Definition) { d.Symbol = "art-1" }},
		{"zero supply", func(d *Definition) { d.TotalSupply = 0 }},
		{"too many decimals", func(d *Definition) { d.Decimals = 19 }},
		{"missing owner", func(d *Definition) { d.Owner = "" }},
		{"missing chain", func(d *Definition) { d.IssuingChainID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefinition()
			tt.mutate(&d)
			if err := d.Validate(ModeCreateToken); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := validDefinition().Validate(Mode("other")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestNewCreateInput_TokenModeDropsDecimalsAndInfo(t *testing.T) {
	d := validDefinition()
	d.Decimals = 4
	d.ExternalInfo = map[string]string{"__nft_image_url": "https://example.org/a.png"}

	coll := NewCreateInput(d, ModeCreateCollection)
	if coll.Decimals != 4 || len(coll.ExternalInfo) != 1 {
		t.Fatalf("collection input lost fields: %+v", coll)
	}

	item := NewCreateInput(d, ModeCreateToken)
	if item.Decimals != 0 || item.ExternalInfo != nil {
		t.Fatalf("token input must carry no decimals or external info: %+v", item)
	}
	if d.Decimals != 4 {
		t.Fatal("definition was mutated")
	}
}

func TestCreateInput_Marshal(t *testing.T) {
	b, err := NewCreateInput(validDefinition(), ModeCreateCollection).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var symbol string
	var supply int64
	var owner []byte
	err = aelf.ForEachField(b, func(f aelf.Field) error {
		switch f.Num {
		case 1:
			symbol = string(f.Bytes)
		case 3:
			supply = int64(f.Varint)
		case 10:
			v, err := aelf.DecodeBytesValue(f.Bytes)
			owner = v
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if symbol != "ART-0" || supply != 100 || aelf.EncodeAddress(owner) != testOwner {
		t.Fatalf("unexpected fields symbol=%s supply=%d owner=%s", symbol, supply, aelf.EncodeAddress(owner))
	}
}

func TestInputs_RejectBadAddress(t *testing.T) {
	_, err := IssueInput{Symbol: "ART-1", Amount: 1, To: "nope"}.Marshal()
	if !errors.Is(err, aelf.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestCrossChainCreateInput_Marshal(t *testing.T) {
	in := CrossChainCreateInput{
		FromChainID:       9992731,
		ParentChainHeight: 500,
		TransactionBytes:  []byte{0xca, 0xfe},
		MerklePath:        ledger.MerklePath{{Hash: "aabb", IsLeftSibling: true}},
	}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var height int64
	var nodes int
	err = aelf.ForEachField(b, func(f aelf.Field) error {
		switch f.Num {
		case 2:
			height = int64(f.Varint)
		case 4:
			return aelf.ForEachField(f.Bytes, func(aelf.Field) error {
				nodes++
				return nil
			})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if height != 500 || nodes != 1 {
		t.Fatalf("height=%d nodes=%d", height, nodes)
	}

	in.MerklePath = ledger.MerklePath{{Hash: "zz"}}
	if _, err := in.Marshal(); err == nil {
		t.Fatal("expected error for non-hex merkle hash")
	}
}

func TestDecodeBalance(t *testing.T) {
	raw := bytes.Repeat([]byte{0x22}, 32)
	var b []byte
	b = aelf.AppendString(b, 1, "ART-1")
	b = aelf.AppendBytesValue(b, 2, raw)
	b = aelf.AppendInt64(b, 3, 7)

	bal, err := DecodeBalance(b)
	if err != nil {
		t.Fatalf("DecodeBalance: %v", err)
	}
	if bal.Symbol != "ART-1" || bal.Owner != testOwner || bal.Balance != 7 {
		t.Fatalf("unexpected balance %+v", bal)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		decimals int32
		want     int64
		wantErr  error
	}{
		{"1.5", 2, 150, nil},
		{"10", 0, 10, nil},
		{"0.001", 2, 0, ErrAmountPrecision},
		{"-1", 0, 0, ErrInvalidAmount},
		{"abc", 0, 0, ErrInvalidAmount},
		{"99999999999999999999", 0, 0, ErrInvalidAmount},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in, tt.decimals)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseAmount(%q) err = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAmount(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}

	if got := FormatAmount(150, 2); got != "1.5" {
		t.Errorf("FormatAmount = %s", got)
	}
}
