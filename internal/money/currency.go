// Package money holds currency reference data and the conversion and rounding
// rules every fee computation goes through.
//
// Amounts are decimal.Decimal end to end. Rounding is applied where a fee or
// total is finalized, never on intermediate products.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/errors"
)

// Currency is immutable reference data for one display/settlement currency.
// Rate is the amount of this currency per one unit of the base currency.
type Currency struct {
	ID              int             `json:"id" yaml:"id"`
	Code            string          `json:"code" yaml:"code"`
	Symbol          string          `json:"symbol" yaml:"symbol"`
	Locale          string          `json:"locale" yaml:"locale"`
	Rate            decimal.Decimal `json:"rate" yaml:"rate"`
	Precision       decimal.Decimal `json:"precision" yaml:"precision"`
	PayoutPrecision decimal.Decimal `json:"payout_precision" yaml:"payout_precision"`
	MaxDecimals     int             `json:"max_decimals" yaml:"max_decimals"`
	MinOfferPrice   decimal.Decimal `json:"min_offer_price" yaml:"min_offer_price"`
	MinListPrice    decimal.Decimal `json:"min_list_price" yaml:"min_list_price"`
	OfferStep       decimal.Decimal `json:"offer_step" yaml:"offer_step"`
	ListStep        decimal.Decimal `json:"list_step" yaml:"list_step"`
}

// Validate rejects currencies that would make conversion or rounding undefined.
func (c Currency) Validate() error {
	if c.Code == "" {
		return errors.ErrConfiguration("currency", "code is required")
	}
	if !c.Rate.IsPositive() {
		return errors.ErrConfiguration(c.Code, "rate must be positive")
	}
	if !c.Precision.IsPositive() {
		return errors.ErrConfiguration(c.Code, "precision must be positive")
	}
	if !c.PayoutPrecision.IsPositive() {
		return errors.ErrConfiguration(c.Code, "payout precision must be positive")
	}
	return nil
}

// Money is an amount tagged with its currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New returns a Money in the given currency.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// ClampZero returns m with a negative amount replaced by zero.
func (m Money) ClampZero() Money {
	if m.Amount.IsNegative() {
		return Money{Amount: decimal.Zero, Currency: m.Currency}
	}
	return m
}
