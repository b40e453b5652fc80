// Package pricing composes currency conversion, fee schedules, promotions and
// promocodes into itemized buy-side and sell-side price breakdowns.
//
// Every Compute function is pure: it reads its context, never mutates it, and
// returns a fresh Breakdown whose lines sum to its total.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/promotions"
)

// Kind is the checkout intent a breakdown was computed for.
type Kind string

const (
	// KindBuy accepts an existing list at its price.
	KindBuy Kind = "buy"
	// KindOffer places a bid at a buyer-chosen price.
	KindOffer Kind = "offer"
	// KindSell accepts an existing offer at its price.
	KindSell Kind = "sell"
	// KindList places an ask at a seller-chosen price.
	KindList Kind = "list"
)

// BuySide reports whether k is paid by a buyer.
func (k Kind) BuySide() bool {
	return k == KindBuy || k == KindOffer
}

// DeliverTo is where a buyer's item goes after authentication.
type DeliverTo string

const (
	DeliverToAddress DeliverTo = "address"
	DeliverToStorage DeliverTo = "storage"
)

// LineKind names one itemized breakdown row.
type LineKind string

const (
	LinePrice              LineKind = "price"
	LineInstantFee         LineKind = "instant_fee"
	LineDeliveryFee        LineKind = "delivery_fee"
	LineProcessingFee      LineKind = "processing_fee"
	LineDeliveryProtection LineKind = "delivery_protection"
	LineAddOn              LineKind = "add_on"
	LinePromocode          LineKind = "promocode"
	LineShippingFee        LineKind = "shipping_fee"
	LineSellingFee         LineKind = "selling_fee"
	// LineAdjustment brings a total that would be negative back to zero.
	LineAdjustment LineKind = "adjustment"
)

// Line is a signed amount: charges to a buyer are positive, deductions from a
// seller's payout are negative.
type Line struct {
	Kind   LineKind        `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// Fees holds the unsigned, finalized fee figures behind the lines, plus the
// regular amounts before promotions for display.
type Fees struct {
	Instant            decimal.Decimal `json:"instant"`
	DeliveryRegular    decimal.Decimal `json:"delivery_regular"`
	Delivery           decimal.Decimal `json:"delivery"`
	ProcessingPercent  decimal.Decimal `json:"processing_percent"`
	Processing         decimal.Decimal `json:"processing"`
	DeliveryProtection decimal.Decimal `json:"delivery_protection"`
	AddOn              decimal.Decimal `json:"add_on"`
	Promocode          decimal.Decimal `json:"promocode"`
	ShippingRegular    decimal.Decimal `json:"shipping_regular"`
	Shipping           decimal.Decimal `json:"shipping"`
	SellingPercent     decimal.Decimal `json:"selling_percent"`
	Selling            decimal.Decimal `json:"selling"`
}

// Breakdown is an immutable priced snapshot of one checkout intent. Amounts are
// in Currency unless suffixed Base.
type Breakdown struct {
	Kind       Kind      `json:"kind"`
	Currency   string    `json:"currency"`
	ProductID  int64     `json:"product_id"`
	Size       string    `json:"size,omitempty"`
	Expiration int       `json:"expiration,omitempty"`
	DeliverTo  DeliverTo `json:"deliver_to,omitempty"`
	// WeightGrams is the effective shipping weight the distance fees were charged on.
	WeightGrams        decimal.Decimal      `json:"weight_grams"`
	Price              decimal.Decimal      `json:"price"`
	PriceBase          decimal.Decimal      `json:"price_base"`
	Lines              []Line               `json:"lines"`
	Fees               Fees                 `json:"fees"`
	Total              decimal.Decimal      `json:"total"`
	LoyaltyPoints      int64                `json:"loyalty_points,omitempty"`
	Promotions         []promotions.Applied `json:"promotions,omitempty"`
	Promocode          string               `json:"promocode,omitempty"`
	PromocodeRejection *PromocodeRejection  `json:"promocode_rejection,omitempty"`
}

// LinesTotal sums the signed lines.
func (b *Breakdown) LinesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range b.Lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// Line returns the amount of the first line of kind k, or zero.
func (b *Breakdown) Line(k LineKind) decimal.Decimal {
	for _, l := range b.Lines {
		if l.Kind == k {
			return l.Amount
		}
	}
	return decimal.Zero
}

type lineBuilder struct {
	lines []Line
}

// add appends amount under kind; zero amounts are skipped except the price line.
func (lb *lineBuilder) add(kind LineKind, amount decimal.Decimal) {
	if amount.IsZero() && kind != LinePrice {
		return
	}
	lb.lines = append(lb.lines, Line{Kind: kind, Amount: amount})
}
