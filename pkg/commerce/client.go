// Package commerce wraps the storefront GraphQL API: cart mutations, cart
// lookup, and catalog queries. Every operation is a single request/response
// round trip; failures carry the transport error through unchanged.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

const (
	accessTokenHeader         = "X-Storefront-Access-Token"
	buyerTokenHeader          = "Authorization"
	errorBodyReadLimit  int64 = 1024
	defaultLinePageSize       = 50
)

var errEndpointRequired = errors.New("commerce endpoint is required")

// Client issues GraphQL calls against the commerce backend.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	storefrontKey string
	linePageSize  int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLinePageSize overrides how many cart lines are requested per snapshot.
func WithLinePageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.linePageSize = size
		}
	}
}

// NewClient builds the commerce client for the given GraphQL endpoint.
func NewClient(endpoint, storefrontKey string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errEndpointRequired
	}

	client := &Client{
		endpoint:      trimmed,
		storefrontKey: strings.TrimSpace(storefrontKey),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		linePageSize:  defaultLinePageSize,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return client, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// execute posts one GraphQL document and decodes the data payload into dest.
// buyerToken is forwarded as a bearer credential when present.
func (c *Client) execute(ctx context.Context, buyerToken, query string, variables map[string]any, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "commerce client not configured")
	}

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal graphql request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build graphql request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.storefrontKey != "" {
		httpReq.Header.Set(accessTokenHeader, c.storefrontKey)
	}
	if token := strings.TrimSpace(buyerToken); token != "" {
		httpReq.Header.Set(buyerTokenHeader, "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Passthrough(pkgerrors.CodeDependency, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Passthrough(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var envelope graphqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Passthrough(pkgerrors.CodeDependency, fmt.Errorf("decode graphql response: %w", err))
	}
	if len(envelope.Errors) > 0 {
		return pkgerrors.Passthrough(pkgerrors.CodeDependency, errors.New(envelope.Errors[0].Message))
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return pkgerrors.Passthrough(pkgerrors.CodeDependency, fmt.Errorf("decode graphql data: %w", err))
	}
	return nil
}
