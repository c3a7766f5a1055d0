package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/edutrack/storage/cache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_expiry(t *testing.T) {
	clk := &clock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	store := cache.New[string](10*time.Minute, cache.WithClock[string](clk.Now))

	_, ok := store.Get("news:java:5")
	assert.False(t, ok, "empty store")

	store.Set("news:java:5", "articles")
	v, ok := store.Get("news:java:5")
	assert.True(t, ok)
	assert.Equal(t, "articles", v)

	clk.Advance(10*time.Minute - time.Second)
	_, ok = store.Get("news:java:5")
	assert.True(t, ok, "still fresh just before the TTL")

	clk.Advance(time.Second)
	_, ok = store.Get("news:java:5")
	assert.False(t, ok, "expired at the TTL")
	assert.Equal(t, 1, store.Len(), "expired entries are not purged")

	store.Set("news:java:5", "fresh articles")
	v, ok = store.Get("news:java:5")
	assert.True(t, ok)
	assert.Equal(t, "fresh articles", v)
	assert.Equal(t, 1, store.Len())
}

func TestStore_keysAreIndependent(t *testing.T) {
	clk := &clock{now: time.Now()}
	store := cache.New[int](time.Minute, cache.WithClock[int](clk.Now))

	store.Set("a", 1)
	clk.Advance(30 * time.Second)
	store.Set("b", 2)
	clk.Advance(30 * time.Second)

	_, ok := store.Get("a")
	assert.False(t, ok)
	v, ok := store.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStore_concurrentAccess(t *testing.T) {
	store := cache.New[int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			store.Set(key, i)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, store.Len())
}
