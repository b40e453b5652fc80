package promotions

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Context describes the calculation a promotion is resolved for.
type Context struct {
	Scope                Scope
	CountryID            int
	ProductCollectionIDs []int
	UserGroups           []string
	Now                  time.Time
	// Price is compared against Promotion.MinimumValue.
	Price decimal.Decimal
	// RegularFee is the fee before any promotion; a promotion must lower it to apply.
	RegularFee  decimal.Decimal
	Listing     bool
	FromStorage bool
}

// Applicable reports whether p passes every predicate for ctx: scope, time
// window, country, product collection, user group, minimum value and storage.
func Applicable(p Promotion, ctx Context) bool {
	if p.Scope != ctx.Scope {
		return false
	}
	if !p.active(ctx.Now) {
		return false
	}
	if p.CountryID != 0 && p.CountryID != ctx.CountryID {
		return false
	}
	if p.ProductCollectionID != 0 && !containsInt(ctx.ProductCollectionIDs, p.ProductCollectionID) {
		return false
	}
	if p.UserGroup != "" && !containsString(ctx.UserGroups, p.UserGroup) {
		return false
	}
	if p.MinimumValue.IsPositive() && ctx.Price.LessThan(p.MinimumValue) {
		return false
	}
	if p.StorageOnly && !ctx.FromStorage {
		return false
	}
	return true
}

type candidate struct {
	promotion Promotion
	fee       decimal.Decimal
	discount  decimal.Decimal
}

// Resolve returns the one promotion that applies to ctx, or nil when none lowers
// the regular fee. Ties are broken by collection specificity, then the larger
// discount, then the lowest id.
func Resolve(promotions []Promotion, ctx Context) *Applied {
	candidates := make([]candidate, 0, len(promotions))
	for _, p := range promotions {
		if !Applicable(p, ctx) {
			continue
		}
		fee := p.Fee(ctx.RegularFee, ctx.Listing)
		if !fee.LessThan(ctx.RegularFee) {
			continue
		}
		candidates = append(candidates, candidate{
			promotion: p,
			fee:       fee,
			discount:  ctx.RegularFee.Sub(fee),
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aSpecific, bSpecific := a.promotion.ProductCollectionID != 0, b.promotion.ProductCollectionID != 0
		if aSpecific != bSpecific {
			return aSpecific
		}
		if !a.discount.Equal(b.discount) {
			return a.discount.GreaterThan(b.discount)
		}
		return a.promotion.ID < b.promotion.ID
	})

	best := candidates[0]
	return &Applied{
		ID:       best.promotion.ID,
		Name:     best.promotion.Name,
		Scope:    best.promotion.Scope,
		Type:     best.promotion.DiscountType,
		Discount: best.promotion.DiscountFor(ctx.Listing),
		Fee:      best.fee,
	}
}

// FeeAfter returns the fee to charge given an optional applied promotion.
func FeeAfter(regular decimal.Decimal, applied *Applied) decimal.Decimal {
	if applied == nil {
		return regular
	}
	return decimal.Min(regular, applied.Fee)
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
