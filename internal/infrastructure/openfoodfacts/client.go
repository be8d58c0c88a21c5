package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds the product payload read from the API
const maxBodyBytes = 8 << 20

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// ClientConfig holds Open Food Facts client settings
type ClientConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewClient creates a new Open Food Facts API client
func NewClient(cfg ClientConfig, logger *zerolog.Logger) *Client {
	// Open Food Facts asks for at most 100 product reads per minute
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 10) // burst of 10 requests

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "NutriScan/1.0"
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, err)
	}

	return resp, nil
}

// FetchProduct looks a barcode up. A single request is made; there is no retry.
// Non-200 responses return domain.ErrProductAPIFailure and a payload whose
// status is not 1 returns domain.ErrProductNotFound.
func (c *Client) FetchProduct(ctx context.Context, barcode string) (*domain.RawProductRecord, error) {
	c.logger.Debug().Str("barcode", barcode).Msg("[OFF] FetchProduct called")

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("barcode", barcode).Msg("[OFF] request error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Str("barcode", barcode).Msg("[OFF] API error")
		return nil, fmt.Errorf("%w: status %d", domain.ErrProductAPIFailure, resp.StatusCode)
	}

	var record domain.RawProductRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProductAPIFailure, err)
	}

	if !record.Found() {
		c.logger.Info().Str("barcode", barcode).Str("status", string(record.StatusVerbose)).Msg("[OFF] product not found")
		return nil, domain.ErrProductNotFound
	}

	c.logger.Debug().Str("barcode", barcode).Str("product", string(record.Product.ProductName)).Msg("[OFF] product found")
	return &record, nil
}
