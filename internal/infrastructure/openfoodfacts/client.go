package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Open Food Facts instance
const DefaultBaseURL = "https://world.openfoodfacts.org"

const productFields = "code,product_name,product_name_en,brands,categories,nutriments,serving_quantity,serving_quantity_unit"

// Client reads products from the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Open Food Facts client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		// Search is limited to 10 requests per minute per IP
		rateLimiter: rate.NewLimiter(rate.Every(6*time.Second), 5),
	}
}

// SearchByName runs a full-text product search
func (c *Client) SearchByName(ctx context.Context, query string, limit int) ([]domain.RawFood, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("fields", productFields)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var resp SearchResponse
	if _, err := c.getJSON(ctx, c.baseURL+"/cgi/search.pl?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	foods := make([]domain.RawFood, 0, len(resp.Products))
	for i := range resp.Products {
		if raw, ok := ToRawFood(&resp.Products[i]); ok {
			foods = append(foods, raw)
		}
	}
	log.Debug().Str("component", "openfoodfacts").Str("query", query).Int("count", len(foods)).Msg("search done")
	return foods, nil
}

// GetByBarcode fetches one product. A miss is (nil, nil).
func (c *Client) GetByBarcode(ctx context.Context, barcode string) (*domain.RawFood, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s?fields=%s", c.baseURL, url.PathEscape(barcode), productFields)

	var resp ProductResponse
	status, err := c.getJSON(ctx, reqURL, &resp)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.Status != 1 || resp.Product == nil {
		return nil, nil
	}
	if resp.Product.Code == "" {
		resp.Product.Code = barcode
	}

	raw, ok := ToRawFood(resp.Product)
	if !ok {
		return nil, nil
	}
	return &raw, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "NutriDiary/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w: openfoodfacts status %d: %s",
			domain.ErrExternalUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode openfoodfacts response: %v", domain.ErrExternalUnavailable, err)
	}
	return resp.StatusCode, nil
}
