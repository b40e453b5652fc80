package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundMode selects how RoundToPrecision resolves a remainder.
type RoundMode string

const (
	// RoundUp rounds away from zero. Fees use it so the platform never under-charges.
	RoundUp RoundMode = "up"
	// RoundDown rounds toward zero.
	RoundDown RoundMode = "down"
	// RoundNearest rounds half away from zero.
	RoundNearest RoundMode = "nearest"
)

var one = decimal.NewFromInt(1)

// ToLocal converts an amount in base currency into c.
func ToLocal(amountBase decimal.Decimal, c Currency) decimal.Decimal {
	return amountBase.Mul(c.Rate)
}

// ToBase converts an amount in c into base currency.
func ToBase(amountLocal decimal.Decimal, c Currency) decimal.Decimal {
	return amountLocal.Div(c.Rate)
}

// Convert moves an amount from one currency to another through the base currency.
func Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from.Code == to.Code && from.Rate.Equal(to.Rate) {
		return amount
	}
	return ToLocal(ToBase(amount, from), to)
}

// RoundToPrecision rounds amount to a multiple of precision.
//
// A non-positive precision is a programmer error and panics; currencies are
// validated when the catalog is loaded so runtime data never reaches it.
func RoundToPrecision(amount, precision decimal.Decimal, mode RoundMode) decimal.Decimal {
	if !precision.IsPositive() {
		panic(fmt.Sprintf("money: precision must be positive, got %s", precision))
	}
	steps := amount.Div(precision)
	switch mode {
	case RoundUp:
		if steps.IsNegative() {
			steps = steps.Floor()
		} else {
			steps = steps.Ceil()
		}
	case RoundDown:
		steps = steps.Truncate(0)
	default:
		steps = steps.Round(0)
	}
	return steps.Mul(precision)
}

// RoundUpTo is shorthand for RoundToPrecision(amount, precision, RoundUp).
func RoundUpTo(amount, precision decimal.Decimal) decimal.Decimal {
	return RoundToPrecision(amount, precision, RoundUp)
}

// OfferPrice is the local price a seller receives when accepting an offer
// quoted in base currency: converted once, rounded down to a whole unit.
func OfferPrice(amountBase decimal.Decimal, c Currency) decimal.Decimal {
	return RoundToPrecision(ToLocal(amountBase, c), one, RoundDown)
}

// ListPrice is the local price a buyer pays for a list quoted in base
// currency: converted once, rounded up to a whole unit.
func ListPrice(amountBase decimal.Decimal, c Currency) decimal.Decimal {
	return RoundToPrecision(ToLocal(amountBase, c), one, RoundUp)
}
