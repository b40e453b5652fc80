package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/money"
)

var (
	hundred             = decimal.NewFromInt(100)
	loyaltyBonus        = decimal.NewFromInt(50)
	loyaltyRatePerValue = decimal.RequireFromString("0.05")
)

// PromocodeType is how a promocode's Value is read.
type PromocodeType string

const (
	PromocodeFixed      PromocodeType = "fixed"
	PromocodePercentage PromocodeType = "percentage"
)

// Rejection reasons reported back to the client.
const (
	ReasonExpired           = "expired"
	ReasonMinBuy            = "min_buy_not_met"
	ReasonPaymentMethod     = "payment_method_not_allowed"
	ReasonFirstPurchaseOnly = "first_purchase_only"
)

// Promocode is a buyer-entered discount code. Fixed values, MinBuy and
// MaxDiscount are in Currency; a zero Currency means the checkout currency.
type Promocode struct {
	Code              string          `json:"code"`
	Type              PromocodeType   `json:"type"`
	Value             decimal.Decimal `json:"value"`
	MaxDiscount       decimal.Decimal `json:"max_discount"`
	MinBuy            decimal.Decimal `json:"min_buy"`
	Currency          money.Currency  `json:"currency"`
	ShippingOnly      bool            `json:"shipping_only"`
	PaymentMethods    []string        `json:"payment_methods,omitempty"`
	FirstPurchaseOnly bool            `json:"first_purchase_only"`
	ExpiresAt         time.Time       `json:"expires_at"`
}

// PromocodeRejection is the recoverable outcome of a code that does not apply.
type PromocodeRejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// RefereePromocode is the fixed first-purchase discount a referred buyer gets.
// It returns false when the currency has no referee discount configured.
func RefereePromocode(code string, k catalog.CurrencyConstants, c money.Currency) (Promocode, bool) {
	if !k.RefereeDiscountValue.IsPositive() {
		return Promocode{}, false
	}
	return Promocode{
		Code:              code,
		Type:              PromocodeFixed,
		Value:             k.RefereeDiscountValue,
		MinBuy:            k.RefereeDiscountMinBuy,
		Currency:          c,
		FirstPurchaseOnly: true,
	}, true
}

func (p Promocode) currencyOr(c money.Currency) money.Currency {
	if p.Currency.Code == "" {
		return c
	}
	return p.Currency
}

// ValidatePromocode checks a code against the purchase. price is in c.
func ValidatePromocode(p Promocode, price decimal.Decimal, c money.Currency, paymentMethod string, firstPurchase bool, now time.Time) *PromocodeRejection {
	reject := func(reason string) *PromocodeRejection {
		return &PromocodeRejection{Code: p.Code, Reason: reason}
	}

	if !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt) {
		return reject(ReasonExpired)
	}
	if p.MinBuy.IsPositive() {
		inCodeCurrency := money.Convert(price, c, p.currencyOr(c))
		if inCodeCurrency.LessThan(p.MinBuy) {
			return reject(ReasonMinBuy)
		}
	}
	if len(p.PaymentMethods) > 0 && !containsString(p.PaymentMethods, paymentMethod) {
		return reject(ReasonPaymentMethod)
	}
	if p.FirstPurchaseOnly && !firstPurchase {
		return reject(ReasonFirstPurchaseOnly)
	}
	return nil
}

// PromocodeDiscount returns the discount in c for a validated code. Percentage
// codes apply to the item price; shipping-only codes never exceed the delivery
// fee. The result is rounded down to c's precision and never exceeds subtotal.
func PromocodeDiscount(p Promocode, price, deliveryFee, subtotal decimal.Decimal, c money.Currency) decimal.Decimal {
	codeCurrency := p.currencyOr(c)

	var discount decimal.Decimal
	switch p.Type {
	case PromocodePercentage:
		discount = price.Mul(p.Value).Div(hundred)
	default:
		discount = money.Convert(p.Value, codeCurrency, c)
	}

	if p.MaxDiscount.IsPositive() {
		discount = decimal.Min(discount, money.Convert(p.MaxDiscount, codeCurrency, c))
	}
	if p.ShippingOnly {
		discount = decimal.Min(discount, deliveryFee)
	}

	discount = money.RoundToPrecision(discount, c.Precision, money.RoundDown)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, subtotal)
}

// LoyaltyPoints is the points a purchase earns: 0.05 per base unit paid on the
// item after discount, plus a one-time bonus of 50, rounded up.
func LoyaltyPoints(priceBase, discountBase decimal.Decimal, bonusEligible bool) int64 {
	points := priceBase.Sub(discountBase).Mul(loyaltyRatePerValue)
	if bonusEligible {
		points = points.Add(loyaltyBonus)
	}
	points = points.Ceil()
	if points.IsNegative() {
		return 0
	}
	return points.IntPart()
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
