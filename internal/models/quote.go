package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInput is the priced product as supplied by the catalog service.
type ProductInput struct {
	ID            int64           `json:"id" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"max=200"`
	CollectionIDs []int           `json:"collection_ids" validate:"dive,gt=0"`
	Weight        decimal.Decimal `json:"weight"`
	VolumeWeight  decimal.Decimal `json:"volume_weight"`
}

// AddOnInput is an add-on selection on a buy or offer.
type AddOnInput struct {
	ID        int64           `json:"id" validate:"required,gt=0"`
	Name      string          `json:"name"`
	PriceBase decimal.Decimal `json:"price_base"`
	Weight    decimal.Decimal `json:"weight"`
	Quantity  int             `json:"quantity" validate:"gte=1,lte=10"`
}

// PromocodeInput is a buyer-entered code as resolved by the promotions service.
type PromocodeInput struct {
	Code              string          `json:"code" validate:"required,max=64"`
	Type              string          `json:"type" validate:"omitempty,oneof=fixed percentage"`
	Value             decimal.Decimal `json:"value"`
	MaxDiscount       decimal.Decimal `json:"max_discount"`
	MinBuy            decimal.Decimal `json:"min_buy"`
	Currency          string          `json:"currency" validate:"omitempty,len=3"`
	ShippingOnly      bool            `json:"shipping_only"`
	PaymentMethods    []string        `json:"payment_methods"`
	FirstPurchaseOnly bool            `json:"first_purchase_only"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
}

// MarketEntryInput is one open offer or list used for suggested prices.
type MarketEntryInput struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Size      string          `json:"size"`
	Side      string          `json:"side" validate:"required,oneof=offer list"`
	PriceBase decimal.Decimal `json:"price_base"`
	Instant   bool            `json:"instant"`
	CreatedAt time.Time       `json:"created_at"`
}

// BuyQuoteRequest prices a buy (Price is the list price in base currency) or
// an offer (Price is the bid in the buyer's currency).
type BuyQuoteRequest struct {
	Product       ProductInput       `json:"product" validate:"required"`
	Size          string             `json:"size" validate:"required,max=20"`
	Price         decimal.Decimal    `json:"price"`
	Expiration    int                `json:"expiration" validate:"omitempty,oneof=1 3 7 14 30 60"`
	Instant       bool               `json:"instant"`
	DeliverTo     string             `json:"deliver_to" validate:"omitempty,oneof=address storage"`
	Remote        bool               `json:"remote"`
	BuyerID       int64              `json:"buyer_id" validate:"required,gt=0"`
	UserGroups    []string           `json:"user_groups"`
	FirstPurchase bool               `json:"first_purchase"`
	LoyaltyBonus  bool               `json:"loyalty_bonus"`
	Currency      string             `json:"currency" validate:"required,len=3"`
	CountryID     int                `json:"country_id" validate:"required,gt=0"`
	PaymentMethod string             `json:"payment_method" validate:"required,max=32"`
	DeclaredValue decimal.Decimal    `json:"declared_value"`
	Promocode     *PromocodeInput    `json:"promocode,omitempty" validate:"omitempty"`
	RefereeCode   string             `json:"referee_code,omitempty" validate:"max=64"`
	AddOn         *AddOnInput        `json:"add_on,omitempty" validate:"omitempty"`
	Market        []MarketEntryInput `json:"market,omitempty" validate:"dive"`
}

// SellQuoteRequest prices a sell (Price is the offer price in base currency)
// or a list (Price is the ask in the seller's currency).
type SellQuoteRequest struct {
	Product     ProductInput       `json:"product" validate:"required"`
	Size        string             `json:"size" validate:"required,max=20"`
	Price       decimal.Decimal    `json:"price"`
	Expiration  int                `json:"expiration" validate:"omitempty,oneof=1 3 7 14 30 60"`
	FromStorage bool               `json:"from_storage"`
	SellerID    int64              `json:"seller_id" validate:"required,gt=0"`
	SellerLevel int                `json:"seller_level" validate:"gte=0"`
	UserGroups  []string           `json:"user_groups"`
	Currency    string             `json:"currency" validate:"required,len=3"`
	CountryID   int                `json:"country_id" validate:"required,gt=0"`
	Market      []MarketEntryInput `json:"market,omitempty" validate:"dive"`
}

// PayoutQuoteRequest prices a payout request.
type PayoutQuoteRequest struct {
	SellerID    int64           `json:"seller_id" validate:"required,gt=0"`
	SellerLevel int             `json:"seller_level" validate:"gte=0"`
	Tier        string          `json:"tier" validate:"max=32"`
	Amount      decimal.Decimal `json:"amount"`
	Mode        string          `json:"mode" validate:"required,oneof=requested expedited_requested crypto"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	CountryID   int             `json:"country_id" validate:"required,gt=0"`
	// Token picks the crypto estimate; empty estimates every configured token.
	Token string `json:"token,omitempty" validate:"omitempty,max=32"`
	// Admin unlocks payout methods configured as admin only.
	Admin bool `json:"admin,omitempty"`
}
