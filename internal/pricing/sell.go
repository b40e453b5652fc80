package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/fees"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/money"
	"github.com/yourusername/resale-pricing/internal/promotions"
)

// Seller is the selling user and their currently assigned fee schedule.
type Seller struct {
	ID         int64         `json:"id"`
	UserGroups []string      `json:"user_groups,omitempty"`
	Schedule   fees.Schedule `json:"schedule"`
}

// SellContext is everything a sell or list breakdown depends on. Currency is
// the seller's payout currency; Country and CountryCurrency describe where the
// item ships from.
type SellContext struct {
	Product    Product
	Size       string
	Expiration int
	// FromStorage sells an item already held in platform storage; it ships free.
	FromStorage bool
	Seller      Seller

	Currency        money.Currency
	Country         catalog.Country
	CountryCurrency money.Currency

	ProcessingSellPercent decimal.Decimal
	Promotions            []promotions.Promotion
	Now                   time.Time
}

// ComputeSell prices accepting an offer quoted in base currency.
func ComputeSell(ctx SellContext, offerPriceBase decimal.Decimal) (*Breakdown, error) {
	if err := ctx.Currency.Validate(); err != nil {
		return nil, err
	}
	if !offerPriceBase.IsPositive() {
		return nil, errors.ErrValidation("price", "offer price must be positive")
	}
	return computeSellSide(KindSell, ctx, money.OfferPrice(offerPriceBase, ctx.Currency), offerPriceBase)
}

// ComputeList prices an ask at price, in the seller's currency.
func ComputeList(ctx SellContext, price decimal.Decimal) (*Breakdown, error) {
	if err := ctx.Currency.Validate(); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, errors.ErrValidation("price", "list price must be positive")
	}
	if ctx.Currency.MinListPrice.IsPositive() && price.LessThan(ctx.Currency.MinListPrice) {
		return nil, errors.ErrValidation("price", fmt.Sprintf("list price must be at least %s", ctx.Currency.MinListPrice))
	}
	return computeSellSide(KindList, ctx, price, money.ToBase(price, ctx.Currency))
}

func computeSellSide(kind Kind, ctx SellContext, price, priceBase decimal.Decimal) (*Breakdown, error) {
	if err := ctx.CountryCurrency.Validate(); err != nil {
		return nil, err
	}
	cur := ctx.Currency
	schedule := ctx.Seller.Schedule
	weight := EffectiveWeight(ctx.Product, nil)
	listing := kind == KindList

	b := &Breakdown{
		Kind:        kind,
		Currency:    cur.Code,
		ProductID:   ctx.Product.ID,
		Size:        ctx.Size,
		Expiration:  ctx.Expiration,
		WeightGrams: weight,
		Price:       price,
		PriceBase:   priceBase,
	}

	promoCtx := promotions.Context{
		CountryID:            ctx.Country.ID,
		ProductCollectionIDs: ctx.Product.CollectionIDs,
		UserGroups:           ctx.Seller.UserGroups,
		Now:                  ctx.Now,
		Price:                price,
		Listing:              listing,
		FromStorage:          ctx.FromStorage,
	}

	shippingRegular, shipping := decimal.Zero, decimal.Zero
	if !ctx.FromStorage {
		shippingRegular = RegularShippingFee(ctx.Country.Shipping, weight, ctx.CountryCurrency, cur)
		shipping = fees.ResolveShippingFee(schedule, shippingRegular, cur.PayoutPrecision)

		shippingCtx := promoCtx
		shippingCtx.Scope = promotions.ScopeShipping
		shippingCtx.RegularFee = shippingRegular
		if applied := promotions.Resolve(ctx.Promotions, shippingCtx); applied != nil && applied.Fee.LessThan(shipping) {
			shipping = money.RoundUpTo(applied.Fee, cur.PayoutPrecision)
			b.Promotions = append(b.Promotions, *applied)
		}
	}

	sellingCtx := promoCtx
	sellingCtx.Scope = promotions.ScopeSelling
	sellingCtx.RegularFee = schedule.Value
	sellingPromotion := schedule.SellingPromotion(promotions.Resolve(ctx.Promotions, sellingCtx))
	sellingPercent := fees.ResolveSellingFee(schedule, sellingPromotion)
	selling := fees.FeeForPercent(price, sellingPercent, cur.Precision)
	if sellingPromotion != nil {
		b.Promotions = append(b.Promotions, *sellingPromotion)
	}

	processingBase := price.Sub(shipping)
	if processingBase.IsNegative() {
		processingBase = decimal.Zero
	}
	processing := fees.FeeForPercent(processingBase, ctx.ProcessingSellPercent, cur.Precision)

	var lines lineBuilder
	lines.add(LinePrice, price)
	lines.add(LineShippingFee, shipping.Neg())
	lines.add(LineSellingFee, selling.Neg())
	lines.add(LineProcessingFee, processing.Neg())

	total := price.Sub(shipping).Sub(selling).Sub(processing)
	if total.IsNegative() {
		lines.add(LineAdjustment, total.Neg())
		total = decimal.Zero
	}

	b.Lines = lines.lines
	b.Fees = Fees{
		ShippingRegular:   shippingRegular,
		Shipping:          shipping,
		SellingPercent:    sellingPercent,
		Selling:           selling,
		ProcessingPercent: ctx.ProcessingSellPercent,
		Processing:        processing,
	}
	b.Total = total

	logger.Debug("Sell breakdown computed", logger.Fields{
		"kind":       kind,
		"product_id": ctx.Product.ID,
		"currency":   cur.Code,
		"price":      price.String(),
		"shipping":   shipping.String(),
		"selling":    selling.String(),
		"processing": processing.String(),
		"payout":     total.String(),
	})

	return b, nil
}
