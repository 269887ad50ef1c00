package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, maxEntries int) (*MemoryCache, *fakeClock) {
	c := NewMemoryCache(Options{CleanupInterval: time.Hour, MaxEntries: maxEntries})
	t.Cleanup(c.Close)
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "json object", payload: []byte(`{"name":"Гречка","calories":110}`)},
		{name: "json array", payload: []byte(`[{"name":"Apple"}]`)},
		{name: "empty payload", payload: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, tt.name, tt.payload, time.Minute))

			got, err := c.Get(ctx, tt.name)
			require.NoError(t, err)
			assert.Equal(t, string(tt.payload), string(got))
		})
	}
}

func TestMemoryCache_PayloadIsCopied(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	payload := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", payload, time.Minute))
	payload[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_Expiration(t *testing.T) {
	c, clock := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))

	clock.Advance(59 * time.Second)
	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.Equal(t, 1, c.sweep())
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestMemoryCache_MissAndDelete(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "b", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("1"), 0))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "non-positive ttl deletes")
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()

	t.Run("expired entries go first", func(t *testing.T) {
		c, clock := newTestCache(t, 2)
		require.NoError(t, c.Set(ctx, "stale", []byte("1"), time.Second))
		require.NoError(t, c.Set(ctx, "fresh", []byte("2"), time.Hour))
		clock.Advance(2 * time.Second)

		require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Hour))

		_, err := c.Get(ctx, "fresh")
		assert.NoError(t, err)
		_, err = c.Get(ctx, "new")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), c.Stats().Evictions)
	})

	t.Run("otherwise the soonest to expire", func(t *testing.T) {
		c, _ := newTestCache(t, 2)
		require.NoError(t, c.Set(ctx, "soon", []byte("1"), time.Minute))
		require.NoError(t, c.Set(ctx, "later", []byte("2"), time.Hour))

		require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Hour))

		_, err := c.Get(ctx, "soon")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		_, err = c.Get(ctx, "later")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), c.Stats().Evictions)
		assert.Equal(t, 2, c.Stats().Entries)
	})

	t.Run("overwriting an existing key never evicts", func(t *testing.T) {
		c, _ := newTestCache(t, 1)
		require.NoError(t, c.Set(ctx, "only", []byte("1"), time.Minute))
		require.NoError(t, c.Set(ctx, "only", []byte("2"), time.Minute))

		got, err := c.Get(ctx, "only")
		require.NoError(t, err)
		assert.Equal(t, "2", string(got))
		assert.Equal(t, int64(0), c.Stats().Evictions)
	})
}

func TestMemoryCache_Stats(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")

	assert.Equal(t, Stats{Entries: 1, Hits: 2, Misses: 1}, c.Stats())
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(Options{CleanupInterval: time.Millisecond})

	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(Options{})
	t.Cleanup(c.Close)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			_ = c.Set(ctx, key, []byte(key), time.Minute)
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Stats().Entries)
}
