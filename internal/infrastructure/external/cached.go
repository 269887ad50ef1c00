package external

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL applies when no TTL is configured
const DefaultCacheTTL = 24 * time.Hour

var (
	nonWordRegex        = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// barcodeEntry records hits and misses so repeated unknown codes stay offline
type barcodeEntry struct {
	Found bool            `json:"found"`
	Food  *domain.RawFood `json:"food,omitempty"`
}

// Cached memoizes an external database in a cache repository. Errors are
// never cached.
type Cached struct {
	next  domain.ExternalFoodDatabase
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewCached wraps next with cache
func NewCached(next domain.ExternalFoodDatabase, cache domain.CacheRepository, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// SearchByName serves repeated queries from the cache
func (c *Cached) SearchByName(ctx context.Context, query string, limit int) ([]domain.RawFood, error) {
	key := fmt.Sprintf("search:%s:%d", normalizeForCacheKey(query), limit)

	var foods []domain.RawFood
	if c.load(ctx, key, &foods) {
		return foods, nil
	}

	foods, err := c.next.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, foods)
	return foods, nil
}

// GetByBarcode serves repeated lookups, including misses, from the cache
func (c *Cached) GetByBarcode(ctx context.Context, barcode string) (*domain.RawFood, error) {
	key := "barcode:" + strings.TrimSpace(barcode)

	var entry barcodeEntry
	if c.load(ctx, key, &entry) {
		if !entry.Found {
			return nil, nil
		}
		return entry.Food, nil
	}

	food, err := c.next.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, barcodeEntry{Found: food != nil, Food: food})
	return food, nil
}

// load decodes a cached JSON payload into out
func (c *Cached) load(ctx context.Context, key string, out interface{}) bool {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("component", "external").Str("key", key).Msg("dropping undecodable cache entry")
		_ = c.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("component", "external").Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		log.Warn().Err(err).Str("component", "external").Str("key", key).Msg("cache write failed")
	}
}

// normalizeForCacheKey lowercases, strips punctuation and collapses spaces
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonWordRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
