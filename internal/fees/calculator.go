package fees

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/money"
	"github.com/yourusername/resale-pricing/internal/promotions"
)

// ShippingFeeMode is the seller-tier rule for charging the regular shipping fee.
type ShippingFeeMode string

const (
	ShippingAuto ShippingFeeMode = "auto"
	ShippingFree ShippingFeeMode = "free"
	ShippingHalf ShippingFeeMode = "half"
)

// Valid reports whether m is a known shipping fee mode.
func (m ShippingFeeMode) Valid() bool {
	switch m {
	case ShippingAuto, ShippingFree, ShippingHalf:
		return true
	}
	return false
}

// defaultHalfMultiplier applies when a half-shipping schedule carries no multiplier.
var defaultHalfMultiplier = decimal.RequireFromString("0.5")

var hundred = decimal.NewFromInt(100)

// Schedule is a seller's currently assigned fee record. Value is a percentage.
type Schedule struct {
	ID                    int             `json:"id" yaml:"id"`
	Level                 int             `json:"level" yaml:"level"`
	Name                  string          `json:"name" yaml:"name"`
	Value                 decimal.Decimal `json:"value" yaml:"value"`
	Sales                 decimal.Decimal `json:"sales" yaml:"sales"`
	PromotionsApplicable  bool            `json:"promotions_applicable" yaml:"promotions_applicable"`
	ShippingFeeMode       ShippingFeeMode `json:"shipping_fee" yaml:"shipping_fee"`
	ShippingFeeMultiplier decimal.Decimal `json:"shipping_fee_multiplier" yaml:"shipping_fee_multiplier"`
	PayoutFeeApplicable   bool            `json:"payout_fee_applicable" yaml:"payout_fee_applicable"`
}

// Validate rejects schedules that would price with an unknown shipping mode or
// a fee outside 0-100%.
func (s Schedule) Validate() error {
	subject := fmt.Sprintf("fee schedule level %d", s.Level)
	if !s.ShippingFeeMode.Valid() {
		return errors.ErrConfiguration(subject, fmt.Sprintf("unknown shipping fee mode '%s'", s.ShippingFeeMode))
	}
	if s.Value.IsNegative() || s.Value.GreaterThan(hundred) {
		return errors.ErrConfiguration(subject, fmt.Sprintf("fee value %s is outside 0-100", s.Value))
	}
	if s.ShippingFeeMultiplier.IsNegative() {
		return errors.ErrConfiguration(subject, "shipping fee multiplier must not be negative")
	}
	return nil
}

// DefaultSchedule is the schedule new sellers start on.
func DefaultSchedule() Schedule {
	return Schedule{
		Value:                 decimal.NewFromInt(9),
		PromotionsApplicable:  true,
		ShippingFeeMode:       ShippingAuto,
		ShippingFeeMultiplier: decimal.NewFromInt(1),
		PayoutFeeApplicable:   true,
	}
}

// ZeroSchedule charges nothing. It exists for tests and previews only and must
// not back a submitted transaction.
func ZeroSchedule() Schedule {
	return Schedule{
		ShippingFeeMode:       ShippingAuto,
		ShippingFeeMultiplier: decimal.NewFromInt(1),
	}
}

// SellingPromotion reports whether promotions may reduce this schedule's selling fee.
func (s Schedule) SellingPromotion(applied *promotions.Applied) *promotions.Applied {
	if !s.PromotionsApplicable {
		return nil
	}
	return applied
}

// ResolveSellingFee returns the selling fee percent: the promotional fee when a
// selling promotion applies and is lower, otherwise the schedule value unmodified.
func ResolveSellingFee(schedule Schedule, applied *promotions.Applied) decimal.Decimal {
	percent := promotions.FeeAfter(schedule.Value, schedule.SellingPromotion(applied))

	logger.Debug("Selling fee resolved", logger.Fields{
		"schedule_level":  schedule.Level,
		"schedule_value":  schedule.Value.String(),
		"promotion_apply": applied != nil && schedule.PromotionsApplicable,
		"percent":         percent.String(),
	})
	return percent
}

// ResolveShippingFee applies the schedule's shipping mode to the regular fee.
// Half shipping is rounded up to precision.
func ResolveShippingFee(schedule Schedule, regular, precision decimal.Decimal) decimal.Decimal {
	switch schedule.ShippingFeeMode {
	case ShippingFree:
		return decimal.Zero
	case ShippingHalf:
		multiplier := schedule.ShippingFeeMultiplier
		if !multiplier.IsPositive() {
			multiplier = defaultHalfMultiplier
		}
		return money.RoundUpTo(regular.Mul(multiplier), precision)
	default:
		return regular
	}
}

// FeeForPercent returns amount × percent / 100 rounded up to precision.
func FeeForPercent(amount, percent, precision decimal.Decimal) decimal.Decimal {
	return money.RoundUpTo(amount.Mul(percent).Div(hundred), precision)
}
