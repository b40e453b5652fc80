package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/money"
)

var wideSpreadSteps = decimal.NewFromInt(10)

// SuggestedOfferPrice is the UI default for a new offer given the market's
// highest offer and lowest list in c. It is never enforced.
//
// A narrow spread suggests meeting the list; otherwise the suggestion outbids
// the highest offer by one step, or by ten steps when the spread is wide.
func SuggestedOfferPrice(highestOffer, lowestList decimal.NullDecimal, c money.Currency) decimal.NullDecimal {
	step := c.OfferStep
	switch {
	case !highestOffer.Valid && !lowestList.Valid:
		return decimal.NullDecimal{}
	case !highestOffer.Valid:
		return lowestList
	case !lowestList.Valid:
		return valid(highestOffer.Decimal.Add(step.Mul(wideSpreadSteps)))
	}

	diff := lowestList.Decimal.Sub(highestOffer.Decimal)
	switch {
	case diff.LessThanOrEqual(step):
		return lowestList
	case diff.LessThanOrEqual(step.Mul(wideSpreadSteps)):
		return valid(highestOffer.Decimal.Add(step))
	default:
		return valid(highestOffer.Decimal.Add(step.Mul(wideSpreadSteps)))
	}
}

// SuggestedListPrice mirrors SuggestedOfferPrice for sellers, undercutting the
// lowest list. No suggestion is made below the currency's minimum list price.
func SuggestedListPrice(highestOffer, lowestList decimal.NullDecimal, c money.Currency) decimal.NullDecimal {
	step := c.ListStep
	var suggested decimal.Decimal
	switch {
	case !highestOffer.Valid && !lowestList.Valid:
		return decimal.NullDecimal{}
	case !lowestList.Valid:
		suggested = highestOffer.Decimal
	case !highestOffer.Valid:
		suggested = lowestList.Decimal.Sub(step.Mul(wideSpreadSteps))
	default:
		diff := lowestList.Decimal.Sub(highestOffer.Decimal)
		switch {
		case diff.LessThanOrEqual(step):
			suggested = highestOffer.Decimal
		case diff.LessThanOrEqual(step.Mul(wideSpreadSteps)):
			suggested = lowestList.Decimal.Sub(step)
		default:
			suggested = lowestList.Decimal.Sub(step.Mul(wideSpreadSteps))
		}
	}

	if suggested.LessThan(c.MinListPrice) {
		return decimal.NullDecimal{}
	}
	return valid(suggested)
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
