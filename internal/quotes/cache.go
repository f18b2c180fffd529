package quotes

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// CachedProvider memoizes prices with a TTL so repeated plan requests
// inside one conversation don't hammer the upstream API. Errors are
// never cached; the next call retries the source.
type CachedProvider struct {
	source Provider
	cache  *ristretto.Cache
	ttl    time.Duration
}

// NewCachedProvider wraps source with a ristretto TTL cache.
func NewCachedProvider(source Provider, ttl time.Duration) (*CachedProvider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000, // ~10x expected live tickers
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedProvider{source: source, cache: cache, ttl: ttl}, nil
}

func (c *CachedProvider) Price(ticker string) (float64, error) {
	if v, ok := c.cache.Get(ticker); ok {
		if price, ok := v.(float64); ok {
			return price, nil
		}
	}

	price, err := c.source.Price(ticker)
	if err != nil {
		return 0, err
	}

	c.cache.SetWithTTL(ticker, price, 1, c.ttl)
	return price, nil
}

// Close releases the cache's background goroutines.
func (c *CachedProvider) Close() {
	c.cache.Close()
}
