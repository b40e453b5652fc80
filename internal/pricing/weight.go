package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/money"
)

var (
	weightStepLight = decimal.NewFromInt(500)
	weightStepHeavy = decimal.NewFromInt(1000)
	heavyFrom       = decimal.NewFromInt(5000)
	gramsPerKg      = decimal.NewFromInt(1000)
)

// Product is the priced item's catalog record. Weights are in grams.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	CollectionIDs []int           `json:"collection_ids"`
	Weight        decimal.Decimal `json:"weight"`
	VolumeWeight  decimal.Decimal `json:"volume_weight"`
}

// AddOn is an optional extra sold alongside the product, priced in base currency.
type AddOn struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	PriceBase decimal.Decimal `json:"price_base"`
	Weight    decimal.Decimal `json:"weight"`
	Quantity  int             `json:"quantity"`
}

func (a *AddOn) validate() error {
	switch {
	case a == nil:
		return nil
	case a.PriceBase.IsNegative():
		return errors.ErrValidation("add_on.price_base", "must not be negative")
	case a.Weight.IsNegative():
		return errors.ErrValidation("add_on.weight", "must not be negative")
	case a.Quantity < 0:
		return errors.ErrValidation("add_on.quantity", "must not be negative")
	}
	return nil
}

// EffectiveWeight returns the chargeable weight in grams: the greater of actual
// and volumetric product weight plus the add-on weight, rounded up to 500 g
// below 5 kg and to 1 kg from there.
func EffectiveWeight(p Product, addOn *AddOn) decimal.Decimal {
	weight := decimal.Max(p.Weight, p.VolumeWeight)
	if addOn != nil && addOn.Quantity > 0 {
		weight = weight.Add(addOn.Weight.Mul(decimal.NewFromInt(int64(addOn.Quantity))))
	}
	if !weight.IsPositive() {
		return decimal.Zero
	}
	step := weightStepLight
	if weight.GreaterThanOrEqual(heavyFrom) {
		step = weightStepHeavy
	}
	return money.RoundUpTo(weight, step)
}

// RegularDeliveryFee is the buyer delivery fee before promotions, converted from
// the destination country's currency into to. Each component is rounded up to
// to's precision separately.
func RegularDeliveryFee(fees catalog.DeliveryFees, weightGrams decimal.Decimal, remote bool, from, to money.Currency) decimal.Decimal {
	kg := weightGrams.Div(gramsPerKg)

	distance := convertUp(fees.Base.Add(fees.Increment.Mul(kg)), from, to, to.Precision)
	surcharge := convertUp(fees.Surcharge.Mul(kg), from, to, to.Precision)
	total := distance.Add(surcharge)
	if remote {
		total = total.Add(convertUp(fees.SurchargeRemote, from, to, to.Precision))
	}
	return total
}

// RegularShippingFee is the seller shipping fee before the fee schedule and
// promotions, converted from the origin country's currency into to and rounded
// up to to's payout precision.
func RegularShippingFee(fees catalog.ShippingFees, weightGrams decimal.Decimal, from, to money.Currency) decimal.Decimal {
	kg := weightGrams.Div(gramsPerKg)
	amount := fees.Base.Add(fees.Increment.Mul(kg)).Add(fees.Surcharge.Mul(kg))
	return convertUp(amount, from, to, to.PayoutPrecision)
}

func convertUp(amount decimal.Decimal, from, to money.Currency, precision decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	return money.RoundUpTo(money.Convert(amount, from, to), precision)
}
