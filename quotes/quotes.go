package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/storage/cache"
)

// DefaultProviderURL is the motivational quote provider the tracker ships
// against.
const DefaultProviderURL = "https://motivational-spark-api.vercel.app/api/quotes/random"

// ErrUpstream is returned when the provider is unreachable or responds
// with something that is not a quote. Callers fall back to a static
// message rather than surfacing this to the user.
var ErrUpstream = errors.New("quote provider unavailable")

// Fallback is shown when the provider cannot be reached.
var Fallback = Quote{Quote: "Unable to fetch quote. Try again later."}

// Quote is the provider's response shape.
type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Client fetches motivational quotes, caching one per calendar day so the
// provider is hit at most once a day per instance.
type Client struct {
	url    string
	http   *http.Client
	cache  cache.CacheInterface
	keyTTL time.Duration
}

// NewClient creates a quote client for the given provider URL. An empty
// URL selects the default provider. The cache may be nil to disable the
// daily cache.
func NewClient(url string, c cache.CacheInterface) *Client {
	if url == "" {
		url = DefaultProviderURL
	}
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: 5 * time.Second},
		cache:  c,
		keyTTL: 24 * time.Hour,
	}
}

// Daily returns the quote of the given day (YYYY-MM-DD), fetching from the
// provider on a cache miss.
func (c *Client) Daily(ctx context.Context, day string) (*Quote, error) {
	key := "quote_" + day

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			q := &Quote{}
			if err := json.Unmarshal([]byte(cached), q); err == nil {
				return q, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("quote cache read failed: %v", err)
		}
	}

	q, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if body, err := json.Marshal(q); err == nil {
			if err := c.cache.Set(ctx, key, string(body), c.keyTTL); err != nil {
				log.Printf("quote cache write failed: %v", err)
			}
		}
	}
	return q, nil
}

// fetch asks the provider for a random quote.
func (c *Client) fetch(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %s", ErrUpstream, resp.Status)
	}

	q := &Quote{}
	if err := json.NewDecoder(resp.Body).Decode(q); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}

	if q.Quote == "" {
		q.Quote = "No quote found."
	}
	if q.Author == "" {
		q.Author = "Unknown"
	}
	return q, nil
}
