// Package shopify implements the Admin REST API client used by the
// enricher. All calls authenticate with a static access token header;
// errors are mapped into the model error taxonomy so callers can decide
// which failures degrade output and which fail the request.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"order-enricher/internal/metrics"
	"order-enricher/internal/model"
	"order-enricher/internal/transport"
)

// accessTokenHeader carries the Admin API token on every request.
const accessTokenHeader = "X-Shopify-Access-Token"

// userAgent identifies this client to upstream servers.
// Shopify's CDN rate-limits requests without a User-Agent.
const userAgent = "order-enricher/1.0"

// collectsPageLimit caps collection membership listings. 250 is the
// Admin API maximum page size.
const collectsPageLimit = 250

// Config holds Shopify client configuration.
type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string

	// BaseURL overrides the https://{StoreDomain} default. Used by tests
	// to point the client at a local server.
	BaseURL string

	// Metrics records upstream request latency when set.
	Metrics *metrics.Registry
}

// Client talks to the Shopify Admin REST API for a single store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	apiVersion string
	metrics    *metrics.Registry
}

// New creates a Shopify Admin API client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.StoreDomain == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("store domain is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2023-10"
	}

	baseURL := cfg.BaseURL
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if baseURL == "" {
		baseURL = "https://" + cfg.StoreDomain
		// Use a browser TLS fingerprint against the real API.
		// See internal/transport for rationale.
		httpClient.Transport = transport.NewBrowserTransport(30 * time.Second)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      cfg.AccessToken,
		apiVersion: apiVersion,
		metrics:    cfg.Metrics,
	}, nil
}

// ListOrders returns every order of the customer regardless of status.
// Note that the list includes the order that triggered the current
// webhook: Shopify persists the order before firing orders/create.
func (c *Client) ListOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	var env ordersEnvelope
	path := fmt.Sprintf("/orders.json?customer_id=%d&status=any", customerID)
	if err := c.get(ctx, "list orders", path, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// GetProductMetafields returns all metadata entries of a product.
func (c *Client) GetProductMetafields(ctx context.Context, productID int64) ([]model.Metafield, error) {
	var env metafieldsEnvelope
	path := fmt.Sprintf("/products/%d/metafields.json", productID)
	if err := c.get(ctx, "get metafields", path, &env); err != nil {
		return nil, err
	}
	return env.Metafields, nil
}

// GetProductCollections returns the collections a product belongs to.
func (c *Client) GetProductCollections(ctx context.Context, productID int64) ([]model.Collection, error) {
	var env collectionsEnvelope
	path := fmt.Sprintf("/products/%d/collections.json", productID)
	if err := c.get(ctx, "get collections", path, &env); err != nil {
		return nil, err
	}
	return env.Collections, nil
}

// ListCollects returns membership records of a collection, capped at the
// API page maximum. Membership beyond one page is ignored: the sample
// recommender only ever looks at the top candidates anyway.
func (c *Client) ListCollects(ctx context.Context, collectionID int64) ([]model.Collect, error) {
	var env collectsEnvelope
	path := fmt.Sprintf("/collects.json?collection_id=%d&limit=%d", collectionID, collectsPageLimit)
	if err := c.get(ctx, "list collects", path, &env); err != nil {
		return nil, err
	}
	return env.Collects, nil
}

// GetProduct returns a product detail record.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var env productEnvelope
	path := fmt.Sprintf("/products/%d.json", productID)
	if err := c.get(ctx, "get product", path, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// UpdateOrderNote replaces the order's note field.
func (c *Client) UpdateOrderNote(ctx context.Context, orderID int64, note string) error {
	body := orderNoteUpdate{Order: orderNotePatch{ID: orderID, Note: note}}
	path := fmt.Sprintf("/orders/%d.json", orderID)
	return c.put(ctx, "update order note", path, body)
}

// === Request plumbing ===

// get issues a GET request and decodes the JSON envelope into out.
func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: parsing response: %w", op, err)
	}
	return nil
}

// put issues a PUT request with a JSON body, discarding the response.
func (c *Client) put(ctx context.Context, op, path string, payload interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", op, err)
	}
	_, err = c.do(ctx, op, http.MethodPut, path, bytes.NewReader(jsonBody))
	return err
}

// do executes one Admin API request and returns the raw response body.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader) ([]byte, error) {
	url := fmt.Sprintf("%s/admin/api/%s%s", c.baseURL, c.apiVersion, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(accessTokenHeader, c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.UpstreamSeconds.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, model.NewUpstreamError(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", op, err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.parseErrorResponse(op, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// parseErrorResponse converts a Shopify error response to an APIError.
func (c *Client) parseErrorResponse(op string, statusCode int, body []byte) error {
	var env apiErrorEnvelope
	json.Unmarshal(body, &env) // Best effort parse

	switch statusCode {
	case 401, 403:
		return model.NewUnauthorizedError("Shopify authentication failed")
	case 404:
		return model.NewNotFoundError(op + " resource")
	case 429:
		return model.NewRateLimitError(op)
	case 400, 422:
		detail := strings.TrimSpace(string(env.Errors))
		if detail == "" {
			detail = "invalid request"
		}
		return model.NewValidationError(op, detail)
	default:
		detail := strings.TrimSpace(string(env.Errors))
		if detail == "" {
			detail = fmt.Sprintf("status %d", statusCode)
		}
		return model.NewUpstreamError(op, fmt.Errorf("status %d: %s", statusCode, detail))
	}
}
