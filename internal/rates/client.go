package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
)

// Client fetches exchange rates from a cbr-style daily quotes document.
// All quotes are expressed relative to the base currency, which itself
// has an implicit rate of 1.0 and never requires an upstream call.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type quotesResponse struct {
	Valute map[string]struct {
		Value float64 `json:"Value"`
	} `json:"Valute"`
}

func (c *Client) GetRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	if currency == domain.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("GetRate: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("GetRate: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("GetRate: unexpected status %d: %w", resp.StatusCode, domain.ErrRateUnavailable)
	}

	var quotes quotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return decimal.Zero, fmt.Errorf("GetRate: decode: %w", err)
	}

	info, ok := quotes.Valute[string(currency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("GetRate: no quote for %s: %w", currency, domain.ErrRateUnavailable)
	}

	return decimal.NewFromFloat(info.Value), nil
}
