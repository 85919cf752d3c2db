package hibp

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// CachedRanges keeps range bodies in memory so repeated prefixes are not fetched again.
// Ranges change rarely, a TTL of a few hours is plenty.
type CachedRanges struct {
	next  RangeFetcher
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedRanges caches up to maxBytes of range bodies from next.
func NewCachedRanges(next RangeFetcher, maxBytes int64, ttl time.Duration) (*CachedRanges, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		// A range body is ~30KiB, 10x the expected entries as ristretto recommends.
		NumCounters: 10 * (maxBytes/(30*1024) + 1),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CachedRanges{next: next, cache: cache, ttl: ttl}, nil
}

func (c *CachedRanges) Range(ctx context.Context, prefix string) ([]byte, error) {
	if v, ok := c.cache.Get(prefix); ok {
		log.Debug().Msgf("range %s served from cache", prefix)
		return v.([]byte), nil
	}

	body, err := c.next.Range(ctx, prefix)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(prefix, body, int64(len(body)), c.ttl)
	return body, nil
}

// Wait blocks until pending cache writes are applied.
func (c *CachedRanges) Wait() {
	c.cache.Wait()
}

func (c *CachedRanges) Close() {
	c.cache.Close()
}
