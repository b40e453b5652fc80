package quotes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/money"
	"github.com/yourusername/resale-pricing/internal/payout"
	"github.com/yourusername/resale-pricing/internal/pricing"
)

// Type is what a quote prices.
type Type string

const (
	TypeBuy    Type = "buy"
	TypeOffer  Type = "offer"
	TypeSell   Type = "sell"
	TypeList   Type = "list"
	TypePayout Type = "payout"
)

// Quote is an expiring snapshot of a priced breakdown or payout. Exactly one of
// Breakdown and Payout is set.
type Quote struct {
	QuoteID string      `json:"quote_id"`
	Type    Type        `json:"type"`
	Total   money.Money `json:"total"`
	// TotalDisplay is Total formatted for the currency's locale.
	TotalDisplay string             `json:"total_display"`
	Breakdown    *pricing.Breakdown `json:"breakdown,omitempty"`
	Payout       *PayoutQuote       `json:"payout,omitempty"`
	// SuggestedPrice is the UI default for a new offer or list; null when the
	// market gives no basis for one.
	SuggestedPrice  decimal.NullDecimal `json:"suggested_price"`
	CreatedAt       time.Time           `json:"created_at"`
	ExpiresAt       time.Time           `json:"expires_at"`
	ValidForSeconds int                 `json:"valid_for_seconds"`
}

// Expired reports whether the quote can no longer be submitted at now.
func (q *Quote) Expired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// PayoutQuote is a payout fee plus the advisory crypto estimate.
type PayoutQuote struct {
	payout.Result
	Token string `json:"token,omitempty"`
	// TokenAmount is the estimated token count for a crypto payout; null when
	// no rate could be fetched.
	TokenAmount decimal.NullDecimal `json:"token_amount"`
	// Estimates holds the estimate per token code when no token was chosen.
	Estimates map[string]decimal.Decimal `json:"estimates,omitempty"`
	// CryptoAvailable reports whether the amount is within crypto payout bounds.
	CryptoAvailable bool `json:"crypto_available"`
}
