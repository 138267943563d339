// ABOUTME: HTTP client for the fakestoreapi.com product feed
// ABOUTME: Fetches, decodes and validates the full catalog with retry on transient failures
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/util"
)

// DefaultURL is the public demo catalog
const DefaultURL = "https://fakestoreapi.com/products"

// FakeStoreClient reads products from a fakestoreapi-compatible endpoint
type FakeStoreClient struct {
	url        string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewFakeStoreClient creates a client for url. A nil httpClient uses a 30 second timeout.
func NewFakeStoreClient(url string, httpClient *http.Client) *FakeStoreClient {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &FakeStoreClient{
		url:        url,
		httpClient: httpClient,
		maxRetries: 2,
		retryDelay: time.Second,
	}
}

// WithRetry sets the retry policy for transient failures
func (c *FakeStoreClient) WithRetry(maxRetries int, delay time.Duration) *FakeStoreClient {
	c.maxRetries = maxRetries
	c.retryDelay = delay
	return c
}

// URL returns the endpoint the client reads from
func (c *FakeStoreClient) URL() string {
	return c.url
}

// Products fetches and validates the catalog
func (c *FakeStoreClient) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return util.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := fmt.Errorf("catalog returned %s: %s", resp.Status, body)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return statusErr
			}
			return util.Permanent(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
			return util.Permanent(fmt.Errorf("decode catalog: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog from %s: %w", c.url, err)
	}

	if err := Validate(products); err != nil {
		return nil, err
	}
	return products, nil
}
