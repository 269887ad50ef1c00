package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
}

// NewClient creates a new USDA API client
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// USDA allows 1000 requests per hour
	// rate.Limit is requests per second, so 1000/3600 ≈ 0.278 requests/sec
	limiter := rate.NewLimiter(rate.Limit(0.278), 10) // burst of 10 requests

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// SearchByName searches foods by free text
func (c *Client) SearchByName(ctx context.Context, query string, limit int) ([]domain.RawFood, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Add("query", query)
	params.Add("dataType", "Survey (FNDDS),Foundation,Branded")
	params.Add("pageSize", strconv.Itoa(limit))

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	foods := make([]domain.RawFood, 0, len(resp.Foods))
	for i := range resp.Foods {
		foods = append(foods, ToRawFood(&resp.Foods[i]))
	}
	log.Debug().Str("component", "usda").Str("query", query).Int("count", len(foods)).Msg("search done")
	return foods, nil
}

// GetByBarcode finds a branded food by its GTIN/UPC. A miss is (nil, nil).
func (c *Client) GetByBarcode(ctx context.Context, barcode string) (*domain.RawFood, error) {
	params := url.Values{}
	params.Add("query", barcode)
	params.Add("dataType", "Branded")
	params.Add("pageSize", "10")

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	for i := range resp.Foods {
		if sameBarcode(resp.Foods[i].GtinUpc, barcode) {
			raw := ToRawFood(&resp.Foods[i])
			return &raw, nil
		}
	}
	return nil, nil
}

// search calls /v1/foods/search, retrying transport errors, 429 and 5xx
func (c *Client) search(ctx context.Context, params url.Values) (*SearchResponse, error) {
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Warn().Err(err).Str("component", "usda").Int("attempt", attempt).Msg("request failed")
			lastErr = err
			continue
		}

		if status != http.StatusOK {
			lastErr = fmt.Errorf("%w: usda status %d", domain.ErrExternalUnavailable, status)
			if status == http.StatusTooManyRequests || status >= 500 {
				log.Warn().Str("component", "usda").Int("attempt", attempt).Int("status", status).Msg("retrying")
				continue
			}
			return nil, lastErr
		}

		var resp SearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: decode usda response: %v", domain.ErrExternalUnavailable, err)
		}
		return &resp, nil
	}

	log.Error().Err(lastErr).Str("component", "usda").Msg("all retries failed")
	return nil, lastErr
}

// doRequest executes an HTTP GET request and reads the body
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "NutriDiary/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrExternalUnavailable, err)
	}
	return body, resp.StatusCode, nil
}
