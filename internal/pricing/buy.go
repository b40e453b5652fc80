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

// Buyer is the purchasing user as the calculators see them.
type Buyer struct {
	ID         int64    `json:"id"`
	UserGroups []string `json:"user_groups,omitempty"`
	// FirstPurchase is true until the buyer completes a transaction.
	FirstPurchase bool `json:"first_purchase"`
	// LoyaltyBonus grants the one-time loyalty bonus on this purchase.
	LoyaltyBonus bool `json:"loyalty_bonus"`
}

// BuyContext is everything a buy or offer breakdown depends on. Currency is the
// buyer's; Country and CountryCurrency describe the delivery destination.
type BuyContext struct {
	Product    Product
	Size       string
	Expiration int
	// Instant marks a list held in platform storage that ships immediately.
	Instant   bool
	DeliverTo DeliverTo
	Remote    bool
	Buyer     Buyer

	Currency        money.Currency
	Country         catalog.Country
	CountryCurrency money.Currency
	Constants       catalog.CurrencyConstants

	PaymentMethod             string
	PaymentFees               []catalog.BuyPaymentFee
	DeliveryProtectionPercent decimal.Decimal
	DeclaredValue             decimal.Decimal

	Promotions []promotions.Promotion
	Promocode  *Promocode
	AddOn      *AddOn
	Now        time.Time
}

// ComputeBuy prices accepting a list quoted in base currency.
func ComputeBuy(ctx BuyContext, listPriceBase decimal.Decimal) (*Breakdown, error) {
	if err := ctx.Currency.Validate(); err != nil {
		return nil, err
	}
	if !listPriceBase.IsPositive() {
		return nil, errors.ErrValidation("price", "list price must be positive")
	}
	return computeBuySide(KindBuy, ctx, money.ListPrice(listPriceBase, ctx.Currency), listPriceBase)
}

// ComputeOffer prices a bid at price, in the buyer's currency. Offers never pay
// the instant fee.
func ComputeOffer(ctx BuyContext, price decimal.Decimal) (*Breakdown, error) {
	if err := ctx.Currency.Validate(); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, errors.ErrValidation("price", "offer price must be positive")
	}
	if ctx.Currency.MinOfferPrice.IsPositive() && price.LessThan(ctx.Currency.MinOfferPrice) {
		return nil, errors.ErrValidation("price", fmt.Sprintf("offer price must be at least %s", ctx.Currency.MinOfferPrice))
	}
	if ctx.Constants.OfferPriceMax.IsPositive() && price.GreaterThan(ctx.Constants.OfferPriceMax) {
		return nil, errors.ErrValidation("price", fmt.Sprintf("offer price must be at most %s", ctx.Constants.OfferPriceMax))
	}
	return computeBuySide(KindOffer, ctx, price, money.ToBase(price, ctx.Currency))
}

func computeBuySide(kind Kind, ctx BuyContext, price, priceBase decimal.Decimal) (*Breakdown, error) {
	if err := ctx.CountryCurrency.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.AddOn.validate(); err != nil {
		return nil, err
	}
	cur := ctx.Currency
	storage := ctx.DeliverTo == DeliverToStorage
	weight := EffectiveWeight(ctx.Product, ctx.AddOn)

	b := &Breakdown{
		Kind:        kind,
		Currency:    cur.Code,
		ProductID:   ctx.Product.ID,
		Size:        ctx.Size,
		Expiration:  ctx.Expiration,
		DeliverTo:   ctx.DeliverTo,
		WeightGrams: weight,
		Price:       price,
		PriceBase:   priceBase,
	}

	instant := decimal.Zero
	if kind == KindBuy && ctx.Instant && !storage {
		instant = convertUp(ctx.Country.Delivery.Instant, ctx.CountryCurrency, cur, cur.Precision)
	}

	deliveryRegular, delivery := decimal.Zero, decimal.Zero
	if !storage {
		deliveryRegular = RegularDeliveryFee(ctx.Country.Delivery, weight, ctx.Remote, ctx.CountryCurrency, cur)
		applied := promotions.Resolve(ctx.Promotions, promotions.Context{
			Scope:                promotions.ScopeDelivery,
			CountryID:            ctx.Country.ID,
			ProductCollectionIDs: ctx.Product.CollectionIDs,
			UserGroups:           ctx.Buyer.UserGroups,
			Now:                  ctx.Now,
			Price:                price,
			RegularFee:           deliveryRegular,
			FromStorage:          ctx.Instant,
		})
		delivery = money.RoundUpTo(promotions.FeeAfter(deliveryRegular, applied), cur.Precision)
		if applied != nil {
			b.Promotions = append(b.Promotions, *applied)
		}
	}

	processingPercent := BuyProcessingPercent(ctx.PaymentFees, ctx.Country.ID, ctx.PaymentMethod, string(kind))
	processing := fees.FeeForPercent(price.Add(instant).Add(delivery), processingPercent, cur.Precision)

	protection := DeliveryProtectionFee(ctx.DeclaredValue, ctx.Constants, ctx.DeliveryProtectionPercent, cur)

	addOn := decimal.Zero
	if ctx.AddOn != nil && ctx.AddOn.Quantity > 0 {
		unit := money.RoundUpTo(money.ToLocal(ctx.AddOn.PriceBase, cur), cur.Precision)
		addOn = unit.Mul(decimal.NewFromInt(int64(ctx.AddOn.Quantity)))
	}

	subtotal := price.Add(instant).Add(delivery).Add(processing).Add(protection).Add(addOn)

	discount := decimal.Zero
	if ctx.Promocode != nil {
		b.Promocode = ctx.Promocode.Code
		rejection := ValidatePromocode(*ctx.Promocode, price, cur, ctx.PaymentMethod, ctx.Buyer.FirstPurchase, ctx.Now)
		if rejection != nil {
			b.PromocodeRejection = rejection
		} else {
			discount = PromocodeDiscount(*ctx.Promocode, price, delivery, subtotal, cur)
		}
	}

	var lines lineBuilder
	lines.add(LinePrice, price)
	lines.add(LineInstantFee, instant)
	lines.add(LineDeliveryFee, delivery)
	lines.add(LineProcessingFee, processing)
	lines.add(LineDeliveryProtection, protection)
	lines.add(LineAddOn, addOn)
	lines.add(LinePromocode, discount.Neg())

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		lines.add(LineAdjustment, total.Neg())
		total = decimal.Zero
	}

	b.Lines = lines.lines
	b.Fees = Fees{
		Instant:            instant,
		DeliveryRegular:    deliveryRegular,
		Delivery:           delivery,
		ProcessingPercent:  processingPercent,
		Processing:         processing,
		DeliveryProtection: protection,
		AddOn:              addOn,
		Promocode:          discount,
	}
	b.Total = total
	b.LoyaltyPoints = LoyaltyPoints(priceBase, money.ToBase(discount, cur), ctx.Buyer.LoyaltyBonus)

	logger.Debug("Buy breakdown computed", logger.Fields{
		"kind":       kind,
		"product_id": ctx.Product.ID,
		"currency":   cur.Code,
		"price":      price.String(),
		"delivery":   delivery.String(),
		"processing": processing.String(),
		"discount":   discount.String(),
		"total":      b.Total.String(),
	})

	return b, nil
}

// BuyProcessingPercent returns the largest fee among the rules matching the
// purchase, or zero when none match.
func BuyProcessingPercent(rules []catalog.BuyPaymentFee, countryID int, paymentMethod, mode string) decimal.Decimal {
	percent := decimal.Zero
	for _, r := range rules {
		if r.Matches(countryID, paymentMethod, mode) && r.Fee.GreaterThan(percent) {
			percent = r.Fee
		}
	}
	return percent
}

// DeliveryProtectionFee charges percent of the declared value above the
// currency's free allowance, rounded up to the insurance precision.
func DeliveryProtectionFee(declared decimal.Decimal, k catalog.CurrencyConstants, percent decimal.Decimal, c money.Currency) decimal.Decimal {
	if !declared.GreaterThan(k.DeliveryInsuranceMaxFree) {
		return decimal.Zero
	}
	precision := k.DeliveryInsurancePrecision
	if !precision.IsPositive() {
		precision = c.Precision
	}
	return fees.FeeForPercent(declared.Sub(k.DeliveryInsuranceMaxFree), percent, precision)
}
