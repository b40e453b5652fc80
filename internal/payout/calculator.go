// Package payout computes seller payout fees for normal, early and crypto
// payouts, and the advisory crypto amount a payout converts to.
package payout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/fees"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/money"
)

const cryptoEstimatePlaces = 8

var hundred = decimal.NewFromInt(100)

// Request bundles everything a payout fee depends on. Amount is in Currency.
type Request struct {
	Amount   decimal.Decimal
	Mode     Mode
	Schedule fees.Schedule
	Config   Config
	// Tier is the seller's power-seller tier, e.g. "Tier 3".
	Tier string
	// Admin may use methods configured as admin only.
	Admin bool
	// Thresholds maps a tier to the minimum payout amount that unlocks the
	// discounted fee pair for that tier.
	Thresholds map[string]decimal.Decimal
	Currency   money.Currency
}

// Result is a finalized payout fee.
type Result struct {
	Mode            Mode            `json:"mode"`
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	FeePercent      decimal.Decimal `json:"fee_percent"`
	FeeFixed        decimal.Decimal `json:"fee_fixed"`
	Fee             decimal.Decimal `json:"fee"`
	Net             decimal.Decimal `json:"net_amount"`
	DiscountApplied bool            `json:"discount_applied"`
	FeeFree         bool            `json:"fee_free"`
}

// DiscountApplies reports whether tier unlocks the discounted fee for amount.
func DiscountApplies(tier string, amount decimal.Decimal, thresholds map[string]decimal.Decimal) bool {
	if tier == "" {
		return false
	}
	threshold, ok := thresholds[tier]
	if !ok {
		return false
	}
	return amount.GreaterThanOrEqual(threshold)
}

// ComputePayout returns the fee and net amount for req.
//
// The fee is fixed + amount × percent / 100 rounded up to the currency's payout
// precision, forced to zero when the seller's schedule waives payout fees.
func ComputePayout(req Request) (Result, error) {
	if !req.Mode.Valid() {
		return Result{}, errors.ErrValidation("mode", fmt.Sprintf("unknown payout mode '%s'", req.Mode))
	}
	if err := req.Currency.Validate(); err != nil {
		return Result{}, err
	}
	method, ok := req.Config[req.Mode]
	if !ok {
		return Result{}, errors.ErrConfiguration("payout_config", fmt.Sprintf("no fee configured for '%s'", req.Mode))
	}
	if method.AdminOnly && !req.Admin {
		return Result{}, errors.ErrValidation("mode", fmt.Sprintf("'%s' payouts are not available", req.Mode))
	}

	discounted := DiscountApplies(req.Tier, req.Amount, req.Thresholds)
	percent, fixed := method.FeePercent, method.FeeFixed
	if discounted {
		percent, fixed = method.FeePercentDiscounted, method.FeeFixedDiscounted
	}

	feeFree := !req.Schedule.PayoutFeeApplicable
	fee := decimal.Zero
	if !feeFree && req.Amount.IsPositive() {
		raw := fixed.Add(req.Amount.Mul(percent).Div(hundred))
		fee = money.RoundUpTo(raw, req.Currency.PayoutPrecision)
	}

	net := req.Amount.Sub(fee)
	if net.IsNegative() {
		net = decimal.Zero
	}

	result := Result{
		Mode:            req.Mode,
		Currency:        req.Currency.Code,
		Amount:          req.Amount,
		FeePercent:      percent,
		FeeFixed:        fixed,
		Fee:             fee,
		Net:             net,
		DiscountApplied: discounted,
		FeeFree:         feeFree,
	}

	logger.Debug("Payout fee calculated", logger.Fields{
		"mode":             req.Mode,
		"amount":           req.Amount.String(),
		"fee":              fee.String(),
		"net_amount":       net.String(),
		"discount_applied": discounted,
		"fee_free":         feeFree,
	})

	return result, nil
}

// EstimateCrypto converts a net local payout into a token amount using the
// token's price in base currency, less the configured spread. The estimate is
// advisory; settlement uses the rate at confirmation time.
func EstimateCrypto(net decimal.Decimal, c money.Currency, tokenPriceBase, spread decimal.Decimal) (decimal.Decimal, error) {
	if !tokenPriceBase.IsPositive() {
		return decimal.Zero, errors.ErrConfiguration("crypto_rate", "token price must be positive")
	}
	if err := c.Validate(); err != nil {
		return decimal.Zero, err
	}
	keep := decimal.NewFromInt(1).Sub(spread)
	estimate := money.ToBase(net, c).Div(tokenPriceBase).Mul(keep)
	return estimate.Round(cryptoEstimatePlaces), nil
}

// CryptoAvailable reports whether amount (in c) is inside the crypto payout window.
func CryptoAvailable(amount decimal.Decimal, c money.Currency, cfg CryptoConfig) bool {
	base := money.ToBase(amount, c)
	if base.LessThan(cfg.Min) {
		return false
	}
	return base.LessThanOrEqual(cfg.Balance)
}
