package remote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long cached fetch results live.
const DefaultCacheTTL = 5 * time.Minute

// cacheKeyPrefix namespaces cache entries in a shared redis.
const cacheKeyPrefix = "frond:remote:"

// CachedSource is a read-through cache decorator over any Source, backed by
// redis. A hit skips the inner source entirely; a miss fetches, stores the
// JSON-encoded result with a TTL, and returns it.
type CachedSource struct {
	inner  Source
	client redis.UniversalClient
	ttl    time.Duration
}

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithTTL sets the cache entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSource) {
		c.ttl = ttl
	}
}

// NewCachedSource wraps inner with a redis read-through cache.
func NewCachedSource(inner Source, client redis.UniversalClient, opts ...CacheOption) *CachedSource {
	c := &CachedSource{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements Source.
func (c *CachedSource) Fetch(ctx context.Context, d Directive) (any, error) {
	key := cacheKeyPrefix + d.Raw()

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var value any
		if jsonErr := json.Unmarshal(data, &value); jsonErr == nil {
			return value, nil
		}
		// Corrupt entry: fall through to a real fetch and overwrite it.
	}

	value, err := c.inner.Fetch(ctx, d)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(value); jsonErr == nil {
		// Cache write failures are not fetch failures.
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}

	return value, nil
}

// Evict drops the cached entry for a directive.
func (c *CachedSource) Evict(ctx context.Context, d Directive) error {
	return c.client.Del(ctx, cacheKeyPrefix+d.Raw()).Err()
}
