// Package quotes turns validated requests into priced, expiring quotes and
// persists them for later submission.
package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/market"
	"github.com/yourusername/resale-pricing/internal/models"
	"github.com/yourusername/resale-pricing/internal/money"
	"github.com/yourusername/resale-pricing/internal/payout"
	"github.com/yourusername/resale-pricing/internal/pricing"
	"github.com/yourusername/resale-pricing/internal/validator"
)

// DefaultTTL is how long a quote stays submittable when none is configured.
const DefaultTTL = 5 * time.Minute

// Store persists quotes. GetQuote returns a QUOTE_NOT_FOUND AppError for
// unknown ids.
type Store interface {
	SaveQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, quoteID string) (*Quote, error)
}

// RateSource prices crypto tokens in base currency. TokenPrices returns the
// prices it could fetch, keyed by token code, alongside the first failure.
type RateSource interface {
	TokenPrice(ctx context.Context, token payout.Token) (decimal.Decimal, error)
	TokenPrices(ctx context.Context, tokens []payout.Token) (map[string]decimal.Decimal, error)
}

// Service prices requests against a catalog and stores the resulting quotes.
type Service struct {
	cat   *catalog.Catalog
	store Store
	rates RateSource
	ttl   time.Duration
	now   func() time.Time
}

// NewService creates a quote service. rates may be nil, in which case crypto
// payouts are quoted without a token estimate.
func NewService(cat *catalog.Catalog, store Store, rates RateSource, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		cat:   cat,
		store: store,
		rates: rates,
		ttl:   ttl,
		now:   time.Now,
	}
}

// QuoteBuy prices accepting a list; req.Price is the list price in base currency.
func (s *Service) QuoteBuy(ctx context.Context, req *models.BuyQuoteRequest) (*Quote, error) {
	bctx, err := s.buyContext(req)
	if err != nil {
		return nil, err
	}
	b, err := pricing.ComputeBuy(bctx, req.Price)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, TypeBuy, bctx.Currency, b, decimal.NullDecimal{})
}

// QuoteOffer prices a bid; req.Price is in the buyer's currency.
func (s *Service) QuoteOffer(ctx context.Context, req *models.BuyQuoteRequest) (*Quote, error) {
	bctx, err := s.buyContext(req)
	if err != nil {
		return nil, err
	}
	b, err := pricing.ComputeOffer(bctx, req.Price)
	if err != nil {
		return nil, err
	}
	offer, list := marketPrices(req.Market, req.BuyerID, req.Size, bctx.Currency)
	return s.save(ctx, TypeOffer, bctx.Currency, b, pricing.SuggestedOfferPrice(offer, list, bctx.Currency))
}

// QuoteSell prices accepting an offer; req.Price is the offer price in base currency.
func (s *Service) QuoteSell(ctx context.Context, req *models.SellQuoteRequest) (*Quote, error) {
	sctx, err := s.sellContext(req)
	if err != nil {
		return nil, err
	}
	b, err := pricing.ComputeSell(sctx, req.Price)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, TypeSell, sctx.Currency, b, decimal.NullDecimal{})
}

// QuoteList prices an ask; req.Price is in the seller's currency.
func (s *Service) QuoteList(ctx context.Context, req *models.SellQuoteRequest) (*Quote, error) {
	sctx, err := s.sellContext(req)
	if err != nil {
		return nil, err
	}
	b, err := pricing.ComputeList(sctx, req.Price)
	if err != nil {
		return nil, err
	}
	offer, list := marketPrices(req.Market, req.SellerID, req.Size, sctx.Currency)
	return s.save(ctx, TypeList, sctx.Currency, b, pricing.SuggestedListPrice(offer, list, sctx.Currency))
}

// QuotePayout prices a payout request. A crypto payout also carries the token
// estimate when a rate is available; a rate failure only drops the estimate.
func (s *Service) QuotePayout(ctx context.Context, req *models.PayoutQuoteRequest) (*Quote, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	cur, err := s.cat.CurrencyByCode(req.Currency)
	if err != nil {
		return nil, err
	}
	country, err := s.cat.Country(req.CountryID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.cat.Schedule(req.SellerLevel)
	if err != nil {
		return nil, err
	}

	mode := payout.Mode(req.Mode)
	result, err := payout.ComputePayout(payout.Request{
		Amount:     req.Amount,
		Mode:       mode,
		Schedule:   schedule,
		Config:     country.Payout(),
		Tier:       req.Tier,
		Admin:      req.Admin,
		Thresholds: s.cat.ConstantsFor(cur.ID).PayoutTierThresholds,
		Currency:   cur,
	})
	if err != nil {
		return nil, err
	}

	pq := &PayoutQuote{Result: result}
	if mode == payout.ModeCrypto {
		pq.CryptoAvailable = payout.CryptoAvailable(req.Amount, cur, s.cat.Crypto)
		if req.Token == "" {
			pq.Estimates = s.estimateAll(ctx, result.Net, cur)
		} else {
			token, ok := s.cat.Crypto.TokenByName(req.Token)
			if !ok {
				return nil, errors.ErrValidation("token", fmt.Sprintf("'%s' is not supported", req.Token))
			}
			pq.Token = token.Code
			pq.TokenAmount = s.estimate(ctx, token, result.Net, cur)
		}
	}

	q := s.newQuote(TypePayout, cur, result.Net)
	q.Payout = pq
	if err := s.persist(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Get returns a stored quote. Expired quotes are reported as QUOTE_EXPIRED.
func (s *Service) Get(ctx context.Context, quoteID string) (*Quote, error) {
	q, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q.Expired(s.now()) {
		return nil, errors.ErrQuoteExpired(quoteID)
	}
	return q, nil
}

func (s *Service) estimate(ctx context.Context, token payout.Token, net decimal.Decimal, cur money.Currency) decimal.NullDecimal {
	if s.rates == nil {
		return decimal.NullDecimal{}
	}
	price, err := s.rates.TokenPrice(ctx, token)
	if err != nil {
		logger.Warn("Crypto estimate skipped", logger.Fields{
			"token": token.Code,
			"error": err.Error(),
		})
		return decimal.NullDecimal{}
	}
	amount, err := payout.EstimateCrypto(net, cur, price, s.cat.Crypto.Spread)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: amount, Valid: true}
}

// estimateAll estimates net in every configured token. Tokens without a rate
// are left out.
func (s *Service) estimateAll(ctx context.Context, net decimal.Decimal, cur money.Currency) map[string]decimal.Decimal {
	if s.rates == nil || len(s.cat.Crypto.Tokens) == 0 {
		return nil
	}
	prices, err := s.rates.TokenPrices(ctx, s.cat.Crypto.Tokens)
	if err != nil {
		logger.Warn("Some crypto estimates skipped", logger.Fields{"error": err.Error()})
	}

	estimates := make(map[string]decimal.Decimal, len(prices))
	for code, price := range prices {
		amount, err := payout.EstimateCrypto(net, cur, price, s.cat.Crypto.Spread)
		if err != nil {
			continue
		}
		estimates[code] = amount
	}
	if len(estimates) == 0 {
		return nil
	}
	return estimates
}

func (s *Service) buyContext(req *models.BuyQuoteRequest) (pricing.BuyContext, error) {
	if err := validator.Struct(req); err != nil {
		return pricing.BuyContext{}, err
	}
	cur, err := s.cat.CurrencyByCode(req.Currency)
	if err != nil {
		return pricing.BuyContext{}, err
	}
	country, err := s.cat.Country(req.CountryID)
	if err != nil {
		return pricing.BuyContext{}, err
	}
	countryCur, err := s.cat.CountryCurrency(country)
	if err != nil {
		return pricing.BuyContext{}, err
	}
	constants := s.cat.ConstantsFor(cur.ID)

	bctx := pricing.BuyContext{
		Product:    product(req.Product),
		Size:       req.Size,
		Expiration: req.Expiration,
		Instant:    req.Instant,
		DeliverTo:  pricing.DeliverToAddress,
		Remote:     req.Remote,
		Buyer: pricing.Buyer{
			ID:            req.BuyerID,
			UserGroups:    req.UserGroups,
			FirstPurchase: req.FirstPurchase,
			LoyaltyBonus:  req.LoyaltyBonus,
		},
		Currency:                  cur,
		Country:                   country,
		CountryCurrency:           countryCur,
		Constants:                 constants,
		PaymentMethod:             req.PaymentMethod,
		PaymentFees:               s.cat.BuyPaymentFees,
		DeliveryProtectionPercent: s.cat.DeliveryProtectionPercent,
		DeclaredValue:             req.DeclaredValue,
		Promotions:                s.cat.Promotions,
		Now:                       s.now(),
	}
	if req.DeliverTo != "" {
		bctx.DeliverTo = pricing.DeliverTo(req.DeliverTo)
	}
	if req.AddOn != nil {
		bctx.AddOn = &pricing.AddOn{
			ID:        req.AddOn.ID,
			Name:      req.AddOn.Name,
			PriceBase: req.AddOn.PriceBase,
			Weight:    req.AddOn.Weight,
			Quantity:  req.AddOn.Quantity,
		}
	}

	switch {
	case req.Promocode != nil:
		code, err := s.promocode(req.Promocode)
		if err != nil {
			return pricing.BuyContext{}, err
		}
		bctx.Promocode = &code
	case req.RefereeCode != "":
		if code, ok := pricing.RefereePromocode(req.RefereeCode, constants, cur); ok {
			bctx.Promocode = &code
		}
	}
	return bctx, nil
}

func (s *Service) promocode(in *models.PromocodeInput) (pricing.Promocode, error) {
	code := pricing.Promocode{
		Code:              in.Code,
		Type:              pricing.PromocodeType(in.Type),
		Value:             in.Value,
		MaxDiscount:       in.MaxDiscount,
		MinBuy:            in.MinBuy,
		ShippingOnly:      in.ShippingOnly,
		PaymentMethods:    in.PaymentMethods,
		FirstPurchaseOnly: in.FirstPurchaseOnly,
	}
	if code.Type == "" {
		code.Type = pricing.PromocodeFixed
	}
	if in.ExpiresAt != nil {
		code.ExpiresAt = *in.ExpiresAt
	}
	if in.Currency != "" {
		cur, err := s.cat.CurrencyByCode(in.Currency)
		if err != nil {
			return pricing.Promocode{}, err
		}
		code.Currency = cur
	}
	return code, nil
}

func (s *Service) sellContext(req *models.SellQuoteRequest) (pricing.SellContext, error) {
	if err := validator.Struct(req); err != nil {
		return pricing.SellContext{}, err
	}
	cur, err := s.cat.CurrencyByCode(req.Currency)
	if err != nil {
		return pricing.SellContext{}, err
	}
	country, err := s.cat.Country(req.CountryID)
	if err != nil {
		return pricing.SellContext{}, err
	}
	countryCur, err := s.cat.CountryCurrency(country)
	if err != nil {
		return pricing.SellContext{}, err
	}
	schedule, err := s.cat.Schedule(req.SellerLevel)
	if err != nil {
		return pricing.SellContext{}, err
	}

	return pricing.SellContext{
		Product:     product(req.Product),
		Size:        req.Size,
		Expiration:  req.Expiration,
		FromStorage: req.FromStorage,
		Seller: pricing.Seller{
			ID:         req.SellerID,
			UserGroups: req.UserGroups,
			Schedule:   schedule,
		},
		Currency:              cur,
		Country:               country,
		CountryCurrency:       countryCur,
		ProcessingSellPercent: s.cat.ProcessingSellPercent,
		Promotions:            s.cat.Promotions,
		Now:                   s.now(),
	}, nil
}

func (s *Service) save(ctx context.Context, t Type, cur money.Currency, b *pricing.Breakdown, suggested decimal.NullDecimal) (*Quote, error) {
	q := s.newQuote(t, cur, b.Total)
	q.Breakdown = b
	q.SuggestedPrice = suggested
	if err := s.persist(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) newQuote(t Type, cur money.Currency, total decimal.Decimal) *Quote {
	createdAt := s.now().UTC()
	amount := money.New(total, cur.Code).ClampZero()
	return &Quote{
		QuoteID:         fmt.Sprintf("quote_%s", uuid.New().String()),
		Type:            t,
		Total:           amount,
		TotalDisplay:    money.Format(amount.Amount, cur, cur.MaxDecimals, money.Front),
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(s.ttl),
		ValidForSeconds: int(s.ttl / time.Second),
	}
}

func (s *Service) persist(ctx context.Context, q *Quote) error {
	if err := s.store.SaveQuote(ctx, q); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("Quote generated", logger.Fields{
		"quote_id":   q.QuoteID,
		"type":       string(q.Type),
		"currency":   q.Total.Currency,
		"total":      q.Total.Amount.String(),
		"expires_at": q.ExpiresAt.Format(time.RFC3339),
	})
	return nil
}

func product(in models.ProductInput) pricing.Product {
	return pricing.Product{
		ID:            in.ID,
		Name:          in.Name,
		CollectionIDs: in.CollectionIDs,
		Weight:        in.Weight,
		VolumeWeight:  in.VolumeWeight,
	}
}

// marketPrices returns the highest offer and lowest list for size in c, leaving
// out the viewer's own entries. Offers round down and lists round up on
// conversion, as they are displayed.
func marketPrices(in []models.MarketEntryInput, viewerID int64, size string, c money.Currency) (decimal.NullDecimal, decimal.NullDecimal) {
	if len(in) == 0 {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	entries := make([]market.Entry, 0, len(in))
	for _, e := range in {
		entries = append(entries, market.Entry{
			ID:        e.ID,
			UserID:    e.UserID,
			Size:      e.Size,
			Side:      market.Side(e.Side),
			PriceBase: e.PriceBase,
			Instant:   e.Instant,
			CreatedAt: e.CreatedAt,
		})
	}
	quote := market.Aggregate(entries, viewerID).Size(size)

	var offer, list decimal.NullDecimal
	if quote.HighestOffer != nil {
		offer = decimal.NullDecimal{Decimal: money.OfferPrice(quote.HighestOffer.PriceBase, c), Valid: true}
	}
	if best := quote.BestList(); best != nil {
		list = decimal.NullDecimal{Decimal: money.ListPrice(best.PriceBase, c), Valid: true}
	}
	return offer, list
}
