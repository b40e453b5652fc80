package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/payout"
)

// Provider serves token prices in base currency, caching each for a TTL.
type Provider struct {
	source       *HTTPSource
	baseCurrency string
	ttl          time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedPrice
}

type cachedPrice struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// NewProvider creates a cached provider over source quoting in baseCurrency.
func NewProvider(source *HTTPSource, baseCurrency string, ttl time.Duration) *Provider {
	return &Provider{
		source:       source,
		baseCurrency: baseCurrency,
		ttl:          ttl,
		now:          time.Now,
		cache:        make(map[string]cachedPrice),
	}
}

// CoinID is the price API identifier for a token.
func CoinID(t payout.Token) string {
	return strings.ToLower(strings.ReplaceAll(t.Name, " ", "-"))
}

// TokenPrice returns the price of one token unit in base currency.
func (p *Provider) TokenPrice(ctx context.Context, token payout.Token) (decimal.Decimal, error) {
	id := CoinID(token)

	p.mu.RLock()
	cached, ok := p.cache[id]
	p.mu.RUnlock()
	if ok && p.now().Sub(cached.fetchedAt) < p.ttl {
		return cached.price, nil
	}

	prices, err := p.source.SimplePrices(ctx, []string{id}, p.baseCurrency)
	if err != nil {
		logger.Warn("Token price fetch failed", logger.Fields{
			"token": token.Code,
			"error": err.Error(),
		})
		return decimal.Zero, errors.ErrRateUnavailable(token.Code, err)
	}
	price, ok := prices[id]
	if !ok || !price.IsPositive() {
		return decimal.Zero, errors.ErrRateUnavailable(token.Code, fmt.Errorf("no %s price for %s", p.baseCurrency, id))
	}

	p.mu.Lock()
	p.cache[id] = cachedPrice{price: price, fetchedAt: p.now()}
	p.mu.Unlock()

	logger.Debug("Token price fetched", logger.Fields{
		"token": token.Code,
		"price": price.String(),
		"base":  p.baseCurrency,
	})
	return price, nil
}

// TokenPrices fetches every token concurrently. Tokens whose price is
// unavailable are left out; the error reports the first failure.
func (p *Provider) TokenPrices(ctx context.Context, tokens []payout.Token) (map[string]decimal.Decimal, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	prices := make(map[string]decimal.Decimal, len(tokens))

	for _, token := range tokens {
		wg.Add(1)
		go func(t payout.Token) {
			defer wg.Done()
			price, err := p.TokenPrice(ctx, t)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			prices[t.Code] = price
		}(token)
	}
	wg.Wait()

	return prices, firstErr
}
