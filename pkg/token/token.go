// Package token holds the token definition the issuer creates and the token
// contract messages built from it.
package token

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Mode selects which workflow variant a run executes.
type Mode string

const (
	// ModeCreateCollection creates an NFT collection; it is never issued.
	ModeCreateCollection Mode = "collection"
	// ModeCreateToken creates an NFT item and issues its whole supply.
	ModeCreateToken Mode = "token"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeCreateCollection || m == ModeCreateToken
}

// Definition describes a token to create. It is copied into contract inputs
// and never mutated.
type Definition struct {
	Symbol         string            `json:"symbol" validate:"required,symbol"`
	DisplayName    string            `json:"tokenName" validate:"required,max=80"`
	TotalSupply    int64             `json:"totalSupply" validate:"gt=0"`
	Decimals       int32             `json:"decimals" validate:"gte=0,lte=18"`
	Issuer         string            `json:"issuer" validate:"required"`
	Owner          string            `json:"owner" validate:"required"`
	IsBurnable     bool              `json:"isBurnable"`
	IssuingChainID int32             `json:"issueChainId" validate:"required"`
	ExternalInfo   map[string]string `json:"externalInfo,omitempty"`
}

// symbolPattern accepts collection symbols (ABC-0) and item symbols (ABC-12)
// as well as plain fungible symbols.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,28}(-[0-9]{1,10})?$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the token tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
			return symbolPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate checks d for the given mode.
func (d Definition) Validate(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err := Validator().Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid token definition: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid token definition: %w", err)
	}
	return nil
}

// IsCollectionSymbol reports whether symbol names an NFT collection (suffix "-0").
func IsCollectionSymbol(symbol string) bool {
	return strings.HasSuffix(symbol, "-0")
}
