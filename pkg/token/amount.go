package token

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountPrecision = errors.New("amount has more fractional digits than the token allows")
)

// ParseAmount converts a human-readable amount into base units for a token
// with the given decimals. "1.5" with 2 decimals is 150.
func ParseAmount(s string, decimals int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	units := d.Shift(decimals)
	if !units.Equal(units.Truncate(0)) {
		return 0, ErrAmountPrecision
	}
	if units.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: overflows int64", ErrInvalidAmount)
	}
	return units.IntPart(), nil
}

// FormatAmount renders base units as a decimal string.
func FormatAmount(units int64, decimals int32) string {
	return decimal.New(units, -decimals).String()
}
