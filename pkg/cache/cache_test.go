package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, maxSize int, ttl time.Duration, clock *fakeClock) *Cache[string] {
	t.Helper()
	c, err := New[string](maxSize, ttl, WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func TestCache_BasicOperations(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, 10, time.Minute, clock)

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set("key1", "value1")

		val, ok := c.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set("key2", "original")
		c.Set("key2", "updated")

		val, ok := c.Get("key2")
		assert.True(t, ok)
		assert.Equal(t, "updated", val)
		assert.Equal(t, 2, c.Size())
	})

	t.Run("Delete", func(t *testing.T) {
		assert.True(t, c.Delete("key1"))
		assert.False(t, c.Delete("key1"))

		_, ok := c.Get("key1")
		assert.False(t, ok)
	})

	t.Run("Clear", func(t *testing.T) {
		c.Clear()
		assert.Equal(t, 0, c.Size())

		_, ok := c.Get("key2")
		assert.False(t, ok)
	})
}

func TestCache_Defaults(t *testing.T) {
	c, err := New[int](0, 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxSize, c.maxSize)
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestCache_TTL(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		elapsed time.Duration
		found   bool
	}{
		{name: "fresh", ttl: time.Minute, elapsed: 0, found: true},
		{name: "just before expiry", ttl: time.Minute, elapsed: time.Minute - time.Millisecond, found: true},
		{name: "exactly ttl is still valid", ttl: time.Minute, elapsed: time.Minute, found: true},
		{name: "after expiry", ttl: time.Minute, elapsed: time.Minute + time.Millisecond, found: false},
		{name: "long after expiry", ttl: time.Second, elapsed: time.Hour, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := newTestCache(t, 10, tt.ttl, clock)

			c.Set("k", "v")
			clock.Advance(tt.elapsed)

			_, ok := c.Get("k")
			assert.Equal(t, tt.found, ok)

			if !tt.found {
				assert.Equal(t, 0, c.Size(), "expired entry must be removed on read")
			}
		})
	}
}

func TestCache_TTLNotExtendedByGet(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, 10, time.Minute, clock)

	c.Set("k", "v")
	clock.Advance(40 * time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	clock.Advance(40 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "TTL is measured from insertion, reads do not extend it")
}

func TestCache_SetRefreshesInsertionTime(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, 10, time.Minute, clock)

	c.Set("k", "v1")
	clock.Advance(50 * time.Second)
	c.Set("k", "v2")
	clock.Advance(50 * time.Second)

	val, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", val)
}

func TestCache_EvictsLeastRecentlyInserted(t *testing.T) {
	clock := newFakeClock()
	const maxSize = 5
	c := newTestCache(t, maxSize, time.Hour, clock)

	for i := 0; i <= maxSize; i++ {
		c.Set(fmt.Sprintf("key%d", i), fmt.Sprintf("value%d", i))
		clock.Advance(time.Millisecond)
	}

	assert.Equal(t, maxSize, c.Size())

	_, ok := c.Get("key0")
	assert.False(t, ok, "first inserted key must be evicted")

	for i := 1; i <= maxSize; i++ {
		_, ok := c.Get(fmt.Sprintf("key%d", i))
		assert.True(t, ok, "key%d must survive", i)
	}
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, 2, time.Hour, clock)

	c.Set("k1", "v1")
	clock.Advance(time.Millisecond)
	c.Set("k2", "v2")
	clock.Advance(time.Millisecond)

	_, ok := c.Get("k1")
	require.True(t, ok)
	clock.Advance(time.Millisecond)

	c.Set("k3", "v3")

	_, ok = c.Get("k2")
	assert.False(t, ok, "k2 is the least recently used")

	_, ok = c.Get("k1")
	assert.True(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
}

func TestCache_UpdateExistingDoesNotEvict(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, 2, time.Hour, clock)

	c.Set("k1", "v1")
	c.Set("k2", "v2")
	c.Set("k1", "v1b")

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("k2")
	assert.True(t, ok)
}

func TestCache_SizeNeverExceedsMax(t *testing.T) {
	c, err := New[int](16, time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*100+j)%64)
				c.Set(key, j)
				c.Get(key)
				if j%10 == 0 {
					c.Delete(key)
				}
				assert.LessOrEqual(t, c.Size(), 16)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 16)
}

func TestCache_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	clock := newFakeClock()

	c, err := New[string](1, time.Minute, WithClock(clock.Now), WithMetrics(reg, "test"))
	require.NoError(t, err)

	c.Set("a", "1")
	c.Get("a")
	c.Get("b")
	c.Set("b", "2")
	clock.Advance(2 * time.Minute)
	c.Get("b")

	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.hits))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.metrics.misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.expired))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.evictions))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.metrics.size))

	_, err = New[string](1, time.Minute, WithMetrics(reg, "test"))
	assert.Error(t, err, "duplicate registration must fail")
}
