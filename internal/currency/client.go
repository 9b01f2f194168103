// Package currency fetches exchange rates for the store base currency and
// caches them in redis. Cart amounts never convert here; rates serve the
// presentation layer only.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

const errorBodyReadLimit int64 = 512

// Rates is one published rate table: every listed currency per one unit of
// the base currency.
type Rates struct {
	Base      string                     `json:"base"`
	FetchedAt time.Time                  `json:"fetched_at"`
	Table     map[string]decimal.Decimal `json:"table"`
}

// Client fetches the latest rate table over REST.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures optional client behavior.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("currency base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type latestResponse struct {
	Result   string                     `json:"result"`
	BaseCode string                     `json:"base_code"`
	Rates    map[string]decimal.Decimal `json:"rates"`
}

// Latest fetches the current rate table for the given base currency.
func (c *Client) Latest(ctx context.Context, base string) (Rates, error) {
	url := fmt.Sprintf("%s/latest/%s", c.baseURL, strings.ToUpper(strings.TrimSpace(base)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build rates request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rates{}, pkgerrors.Passthrough(pkgerrors.CodeDependency, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return Rates{}, pkgerrors.Passthrough(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rates{}, pkgerrors.Passthrough(pkgerrors.CodeDependency, fmt.Errorf("decode rates response: %w", err))
	}
	if payload.Result != "" && payload.Result != "success" {
		return Rates{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("rates provider returned %q", payload.Result))
	}
	if len(payload.Rates) == 0 {
		return Rates{}, pkgerrors.New(pkgerrors.CodeDependency, "rates provider returned an empty table")
	}

	return Rates{
		Base:      payload.BaseCode,
		FetchedAt: time.Now().UTC(),
		Table:     payload.Rates,
	}, nil
}
