package payout

import (
	"github.com/shopspring/decimal"
)

// Mode is how the seller asked to be paid.
type Mode string

const (
	ModeNormal Mode = "requested"
	ModeEarly  Mode = "expedited_requested"
	ModeCrypto Mode = "crypto"
)

// Valid reports whether m is a known payout mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeEarly, ModeCrypto:
		return true
	}
	return false
}

// MethodConfig is the per-country fee pair for one payout mode, plus the
// discounted pair unlocked by seller tier.
type MethodConfig struct {
	Method               Mode            `json:"method" yaml:"method"`
	FeePercent           decimal.Decimal `json:"fee_percent" yaml:"fee_percent"`
	FeeFixed             decimal.Decimal `json:"fee_fixed" yaml:"fee_fixed"`
	FeePercentDiscounted decimal.Decimal `json:"fee_percent_discounted" yaml:"fee_percent_discounted"`
	FeeFixedDiscounted   decimal.Decimal `json:"fee_fixed_discounted" yaml:"fee_fixed_discounted"`
	AdminOnly            bool            `json:"admin_only,omitempty" yaml:"admin_only"`
}

// Config indexes method configs by mode.
type Config map[Mode]MethodConfig

// NewConfig builds a Config from a country's method list. Later entries for the
// same method win.
func NewConfig(methods []MethodConfig) Config {
	cfg := make(Config, len(methods))
	for _, m := range methods {
		cfg[m.Method] = m
	}
	return cfg
}

// Token is a crypto asset a payout can be estimated in.
type Token struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// CryptoConfig bounds crypto payouts in base currency.
type CryptoConfig struct {
	Min     decimal.Decimal `json:"min" yaml:"min"`
	Balance decimal.Decimal `json:"balance" yaml:"balance"`
	// Spread is the fractional haircut applied to the estimate, e.g. 0.008.
	Spread decimal.Decimal `json:"spread" yaml:"spread"`
	Tokens []Token         `json:"tokens" yaml:"tokens"`
}

// TokenByName finds a configured token by its display name or code.
func (c CryptoConfig) TokenByName(name string) (Token, bool) {
	for _, t := range c.Tokens {
		if t.Name == name || t.Code == name {
			return t, true
		}
	}
	return Token{}, false
}
