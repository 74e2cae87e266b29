package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/storage/cache"
	"github.com/stretchr/testify/assert"
)

// memCache is a minimal in-process CacheInterface for tests.
type memCache struct {
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Connect(url string) error { return nil }
func (c *memCache) Disconnect() error        { return nil }

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Clear(ctx context.Context) error {
	c.data = make(map[string]string)
	return nil
}

func TestDaily(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Quote{Quote: "One day at a time.", Author: "Anon"})
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, nil)
	q, err := client.Daily(context.Background(), "2024-01-01")
	assert.NoError(t, err)
	assert.Equal(t, "One day at a time.", q.Quote)
	assert.Equal(t, "Anon", q.Author)
}

func TestDailyUsesCache(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(Quote{Quote: "Fetched.", Author: "Provider"})
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, newMemCache())

	for i := 0; i < 3; i++ {
		q, err := client.Daily(context.Background(), "2024-01-01")
		assert.NoError(t, err)
		assert.Equal(t, "Fetched.", q.Quote)
	}
	assert.Equal(t, 1, calls, "the provider should be hit once per day")

	// A new day misses the cache.
	_, err := client.Daily(context.Background(), "2024-01-02")
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDailyFillsMissingFields(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"quote": "No author here."})
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, nil)
	q, err := client.Daily(context.Background(), "2024-01-01")
	assert.NoError(t, err)
	assert.Equal(t, "No author here.", q.Quote)
	assert.Equal(t, "Unknown", q.Author)
}

func TestDailyUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, nil)
	_, err := client.Daily(context.Background(), "2024-01-01")
	assert.ErrorIs(t, err, ErrUpstream)
}
