package queue

import (
	"context"
	"testing"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/models"
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

func TestMilestoneFor(t *testing.T) {
	tests := []struct {
		streak   int
		expected bool
	}{
		{1, false},
		{6, false},
		{7, true},
		{8, false},
		{30, true},
		{100, true},
		{365, true},
		{366, false},
	}

	for _, tt := range tests {
		ev := &models.CheckInEvent{Name: "Run", Streak: tt.streak, Points: tt.streak}
		msg := milestoneFor(ev)
		if tt.expected {
			assert.NotEmpty(t, msg, "streak %d should be a milestone", tt.streak)
			assert.Contains(t, msg, `"Run"`)
		} else {
			assert.Empty(t, msg, "streak %d should not be a milestone", tt.streak)
		}
	}
}

func TestHandleEventDeduplicates(t *testing.T) {
	c := newMemCache()
	consumer := &CheckInConsumer{cache: c}

	ev := &models.CheckInEvent{
		ID:      "abc123",
		HabitID: "h1",
		Name:    "Run",
		Date:    "2024-01-07",
		Streak:  7,
		Points:  7,
	}

	assert.NoError(t, consumer.handleEvent(context.Background(), ev))
	_, err := c.Get(context.Background(), "checkin_abc123")
	assert.NoError(t, err, "processed events are marked in the cache")

	// A redelivery of the same event is dropped without error.
	assert.NoError(t, consumer.handleEvent(context.Background(), ev))
}

func TestHandleEventWithoutCache(t *testing.T) {
	consumer := &CheckInConsumer{}

	ev := &models.CheckInEvent{ID: "no-cache", Name: "Run", Streak: 2}
	assert.NoError(t, consumer.handleEvent(context.Background(), ev))
}
