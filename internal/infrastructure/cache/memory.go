// Package cache keeps encoded external responses in process memory.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Defaults applied by NewMemoryCache
const (
	DefaultCleanupInterval = 10 * time.Minute
	DefaultMaxEntries      = 10000
)

// Options configures a MemoryCache
type Options struct {
	CleanupInterval time.Duration
	MaxEntries      int
}

// Stats is a snapshot of cache counters
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

type entry struct {
	payload []byte
	expires time.Time
}

// MemoryCache is a size-bounded TTL store for byte payloads. When full, the
// entry closest to expiry is evicted first.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	now       func() time.Time
	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache starts the background sweeper. Call Close to stop it.
func NewMemoryCache(opts Options) *MemoryCache {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	c := &MemoryCache{
		entries:    make(map[string]entry),
		maxEntries: opts.MaxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go c.sweepLoop(opts.CleanupInterval)
	return c
}

// Get returns a copy of the payload or domain.ErrCacheMiss
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expires) {
		c.misses.Add(1)
		return nil, domain.ErrCacheMiss
	}
	c.hits.Add(1)
	return append([]byte(nil), e.payload...), nil
}

// Set stores a copy of payload for ttl. A non-positive ttl deletes the key.
func (c *MemoryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return nil
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.makeRoomLocked()
	}
	c.entries[key] = entry{payload: append([]byte(nil), payload...), expires: c.now().Add(ttl)}
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Stats returns current counters
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Entries:   n,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Close stops the sweeper; safe to call more than once
func (c *MemoryCache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if n := c.sweep(); n > 0 {
				log.Debug().Str("component", "cache").Int("expired", n).Msg("cache swept")
			}
		}
	}
}

// sweep drops expired entries and reports how many were removed
func (c *MemoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropExpiredLocked()
}

func (c *MemoryCache) dropExpiredLocked() int {
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// makeRoomLocked frees one slot, preferring expired entries
func (c *MemoryCache) makeRoomLocked() {
	if c.dropExpiredLocked() > 0 {
		return
	}
	var victim string
	var soonest time.Time
	for key, e := range c.entries {
		if victim == "" || e.expires.Before(soonest) {
			victim, soonest = key, e.expires
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.evictions.Add(1)
	}
}
