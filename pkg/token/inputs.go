package token

import (
	"encoding/hex"
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
)

// Token contract methods.
const (
	MethodCreate                  = "Create"
	MethodValidateTokenInfoExists = "ValidateTokenInfoExists"
	MethodCrossChainCreateToken   = "CrossChainCreateToken"
	MethodIssue                   = "Issue"
	MethodTransfer                = "Transfer"
	MethodGetBalance              = "GetBalance"
)

// CreateInput is the token contract's Create parameter.
type CreateInput struct {
	Symbol       string
	TokenName    string
	TotalSupply  int64
	Decimals     int32
	Issuer       string
	IsBurnable   bool
	IssueChainID int32
	ExternalInfo map[string]string
	Owner        string
}

// NewCreateInput copies d into a Create input. Token mode creates an NFT
// item, which carries no decimals and no external info.
func NewCreateInput(d Definition, mode Mode) CreateInput {
	in := CreateInput{
		Symbol:       d.Symbol,
		TokenName:    d.DisplayName,
		TotalSupply:  d.TotalSupply,
		Decimals:     d.Decimals,
		Issuer:       d.Issuer,
		IsBurnable:   d.IsBurnable,
		IssueChainID: d.IssuingChainID,
		ExternalInfo: d.ExternalInfo,
		Owner:        d.Owner,
	}
	if mode == ModeCreateToken {
		in.Decimals = 0
		in.ExternalInfo = nil
	}
	return in
}

// Marshal implements ledger.Message.
func (in CreateInput) Marshal() ([]byte, error) {
	issuer, err := aelf.DecodeAddress(in.Issuer)
	if err != nil {
		return nil, fmt.Errorf("issuer: %w", err)
	}
	owner, err := aelf.DecodeAddress(in.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	var b []byte
	b = aelf.AppendString(b, 1, in.Symbol)
	b = aelf.AppendString(b, 2, in.TokenName)
	b = aelf.AppendInt64(b, 3, in.TotalSupply)
	b = aelf.AppendInt32(b, 4, in.Decimals)
	b = aelf.AppendBytesValue(b, 5, issuer)
	b = aelf.AppendBool(b, 6, in.IsBurnable)
	b = aelf.AppendInt32(b, 8, in.IssueChainID)
	if len(in.ExternalInfo) > 0 {
		// ExternalInfo { map<string, string> value = 1 }
		b = aelf.AppendMessage(b, 9, appendStringMap(nil, 1, in.ExternalInfo))
	}
	b = aelf.AppendBytesValue(b, 10, owner)
	return b, nil
}

// ValidateInput is the token contract's ValidateTokenInfoExists parameter.
// It mirrors CreateInput so the side chain can check the created token.
type ValidateInput CreateInput

// NewValidateInput builds the validation input matching NewCreateInput.
func NewValidateInput(d Definition, mode Mode) ValidateInput {
	return ValidateInput(NewCreateInput(d, mode))
}

// Marshal implements ledger.Message.
func (in ValidateInput) Marshal() ([]byte, error) {
	issuer, err := aelf.DecodeAddress(in.Issuer)
	if err != nil {
		return nil, fmt.Errorf("issuer: %w", err)
	}
	owner, err := aelf.DecodeAddress(in.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	var b []byte
	b = aelf.AppendString(b, 1, in.Symbol)
	b = aelf.AppendString(b, 2, in.TokenName)
	b = aelf.AppendInt64(b, 3, in.TotalSupply)
	b = aelf.AppendInt32(b, 4, in.Decimals)
	b = aelf.AppendBytesValue(b, 5, issuer)
	b = aelf.AppendBool(b, 6, in.IsBurnable)
	b = aelf.AppendInt32(b, 7, in.IssueChainID)
	b = appendStringMap(b, 8, in.ExternalInfo)
	b = aelf.AppendBytesValue(b, 9, owner)
	return b, nil
}

// CrossChainCreateInput replays a main-chain validation on the side chain.
type CrossChainCreateInput struct {
	FromChainID       int32
	ParentChainHeight int64
	TransactionBytes  []byte
	MerklePath        ledger.MerklePath
}

// Marshal implements ledger.Message.
func (in CrossChainCreateInput) Marshal() ([]byte, error) {
	var path []byte
	for i, node := range in.MerklePath {
		hash, err := hex.DecodeString(node.Hash)
		if err != nil {
			return nil, fmt.Errorf("merkle node %d: %w", i, err)
		}
		var n []byte
		n = aelf.AppendBytesValue(n, 1, hash)
		n = aelf.AppendBool(n, 2, node.IsLeftSibling)
		path = aelf.AppendMessage(path, 1, n)
	}

	var b []byte
	b = aelf.AppendInt32(b, 1, in.FromChainID)
	b = aelf.AppendInt64(b, 2, in.ParentChainHeight)
	b = aelf.AppendBytes(b, 3, in.TransactionBytes)
	b = aelf.AppendMessage(b, 4, path)
	return b, nil
}

// IssueInput is the token contract's Issue parameter.
type IssueInput struct {
	Symbol string
	Amount int64
	Memo   string
	To     string
}

// Marshal implements ledger.Message.
func (in IssueInput) Marshal() ([]byte, error) {
	to, err := aelf.DecodeAddress(in.To)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	var b []byte
	b = aelf.AppendString(b, 1, in.Symbol)
	b = aelf.AppendInt64(b, 2, in.Amount)
	b = aelf.AppendString(b, 3, in.Memo)
	b = aelf.AppendBytesValue(b, 4, to)
	return b, nil
}

// TransferInput is the token contract's Transfer parameter.
type TransferInput struct {
	To     string
	Symbol string
	Amount int64
	Memo   string
}

// Marshal implements ledger.Message.
func (in TransferInput) Marshal() ([]byte, error) {
	to, err := aelf.DecodeAddress(in.To)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	var b []byte
	b = aelf.AppendBytesValue(b, 1, to)
	b = aelf.AppendString(b, 2, in.Symbol)
	b = aelf.AppendInt64(b, 3, in.Amount)
	b = aelf.AppendString(b, 4, in.Memo)
	return b, nil
}

// GetBalanceInput is the token contract's GetBalance parameter.
type GetBalanceInput struct {
	Symbol string
	Owner  string
}

// Marshal implements ledger.Message.
func (in GetBalanceInput) Marshal() ([]byte, error) {
	owner, err := aelf.DecodeAddress(in.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	var b []byte
	b = aelf.AppendString(b, 1, in.Symbol)
	b = aelf.AppendBytesValue(b, 2, owner)
	return b, nil
}

// Balance is a decoded GetBalance result.
type Balance struct {
	Symbol  string
	Owner   string
	Balance int64
}

// DecodeBalance decodes a GetBalanceOutput.
func DecodeBalance(b []byte) (*Balance, error) {
	out := &Balance{}
	err := aelf.ForEachField(b, func(f aelf.Field) error {
		switch f.Num {
		case 1:
			out.Symbol = string(f.Bytes)
		case 2:
			raw, err := aelf.DecodeBytesValue(f.Bytes)
			if err != nil {
				return err
			}
			out.Owner = aelf.EncodeAddress(raw)
		case 3:
			out.Balance = int64(f.Varint)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	return out, nil
}

// appendStringMap encodes a map<string, string> field with entries in key order.
func appendStringMap(b []byte, num protowire.Number, m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = aelf.AppendString(entry, 1, k)
		entry = aelf.AppendString(entry, 2, m[k])
		b = aelf.AppendMessage(b, num, entry)
	}
	return b
}
