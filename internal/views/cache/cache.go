// Package cache is a short-TTL redis cache in front of the query façade.
// A nil *Cache is valid and disables caching, so callers never branch on
// whether redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	platformredis "circ/internal/platform/redis"
)

const keyPrefix = "circ:views:"

type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

// New returns nil when no redis client is configured.
func New(client *platformredis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// Get unmarshals a cached view into dst. A miss, an expired key or a decode
// failure all report false; cache contents are never authoritative.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false
	}
	return true
}

// Set stores a view for the configured TTL. Failures are swallowed; the next
// read just falls through to the stores.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err()
}
