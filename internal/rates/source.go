// Package rates fetches crypto token prices in the platform's base currency
// for advisory payout estimates.
package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const apiKeyHeader = "x-cg-pro-api-key"

// HTTPSource is a JSON price API client.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPSource creates a price source against baseURL. apiKey may be empty.
func NewHTTPSource(baseURL, apiKey string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchJSON issues a GET for endpoint and decodes the JSON body into result.
func (h *HTTPSource) FetchJSON(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set(apiKeyHeader, h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// simplePriceResponse is keyed by coin id, then by quote currency.
type simplePriceResponse map[string]map[string]decimal.Decimal

// SimplePrices fetches prices for coinIDs quoted in vsCurrency.
func (h *HTTPSource) SimplePrices(ctx context.Context, coinIDs []string, vsCurrency string) (map[string]decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(coinIDs, ","))
	query.Set("vs_currencies", strings.ToLower(vsCurrency))

	var resp simplePriceResponse
	if err := h.FetchJSON(ctx, "/api/v3/simple/price?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(coinIDs))
	for _, id := range coinIDs {
		quoted, ok := resp[id]
		if !ok {
			continue
		}
		if price, ok := quoted[strings.ToLower(vsCurrency)]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}
