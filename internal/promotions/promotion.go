// Package promotions selects the single platform promotion that applies to a
// fee scope (shipping, selling, delivery) and computes the promotional fee it yields.
package promotions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/money"
)

// Scope is the fee a promotion discounts.
type Scope string

const (
	ScopeShipping Scope = "shipping"
	ScopeSelling  Scope = "selling"
	ScopeDelivery Scope = "delivery"
)

// DiscountType controls how Discount is applied to the regular fee.
type DiscountType string

const (
	// DiscountFixed replaces the regular fee with Discount when that is lower.
	DiscountFixed DiscountType = "fixed"
	// DiscountFixedReduction subtracts Discount from the regular fee.
	DiscountFixedReduction DiscountType = "fixed-reduction"
	// DiscountPercentage takes Discount percent off the regular fee.
	DiscountPercentage DiscountType = "percentage"
)

// Promotion is read-only reference data. Optional restrictions are zero when unset.
type Promotion struct {
	ID           int64           `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Scope        Scope           `json:"scope" yaml:"scope"`
	DiscountType DiscountType    `json:"discount_type" yaml:"discount_type"`
	Discount     decimal.Decimal `json:"discount" yaml:"discount"`
	// ListingDiscount replaces Discount for selling-fee promotions priced in list mode.
	ListingDiscount decimal.Decimal `json:"listing_discount" yaml:"listing_discount"`
	// MinimumValue is the minimum purchase (delivery) or sale (shipping, selling) price.
	MinimumValue        decimal.Decimal `json:"minimum_value" yaml:"minimum_value"`
	CountryID           int             `json:"country_id,omitempty" yaml:"country_id"`
	ProductCollectionID int             `json:"product_collection_id,omitempty" yaml:"product_collection_id"`
	UserGroup           string          `json:"user_group,omitempty" yaml:"user_group"`
	// StorageOnly restricts the promotion to sales fulfilled from platform storage.
	StorageOnly bool      `json:"storage_only,omitempty" yaml:"storage_only"`
	StartAt     time.Time `json:"start_at" yaml:"start_at"`
	EndAt       time.Time `json:"end_at" yaml:"end_at"`
}

// Applied is the outcome of resolving a promotion against a regular fee.
type Applied struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Scope    Scope           `json:"scope"`
	Type     DiscountType    `json:"type"`
	Discount decimal.Decimal `json:"discount"`
	Fee      decimal.Decimal `json:"fee"`
}

var (
	hundred         = decimal.NewFromInt(100)
	percentRounding = decimal.RequireFromString("0.1")
)

// DiscountFor returns the discount figure used for the given pricing mode.
func (p Promotion) DiscountFor(listing bool) decimal.Decimal {
	if listing && p.Scope == ScopeSelling && p.ListingDiscount.IsPositive() {
		return p.ListingDiscount
	}
	return p.Discount
}

// Fee returns the fee after applying this promotion's discount to regular.
// Percentage discounts are rounded up to one decimal place; the result is never negative.
func (p Promotion) Fee(regular decimal.Decimal, listing bool) decimal.Decimal {
	discount := p.DiscountFor(listing)
	switch p.DiscountType {
	case DiscountPercentage:
		reduced := regular.Sub(regular.Mul(discount).Div(hundred))
		return money.RoundUpTo(reduced, percentRounding)
	case DiscountFixedReduction:
		if regular.GreaterThan(discount) {
			return regular.Sub(discount)
		}
		return decimal.Zero
	default:
		return decimal.Min(discount, regular)
	}
}

// active reports whether now falls within [StartAt, EndAt). Zero bounds are open.
func (p Promotion) active(now time.Time) bool {
	if !p.StartAt.IsZero() && now.Before(p.StartAt) {
		return false
	}
	if !p.EndAt.IsZero() && !now.Before(p.EndAt) {
		return false
	}
	return true
}
