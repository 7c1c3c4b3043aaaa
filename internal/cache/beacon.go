package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// shortcodePrefix is the Redis key prefix for shortcode lookups.
	shortcodePrefix = "beacon:code:"
	// negativePrefix is the Redis key prefix for negative shortcode cache.
	negativePrefix = "beacon:code:neg:"
	// negativeTTL is the time-to-live for negative cache entries.
	negativeTTL = 30 * time.Second
)

// ErrCacheMiss indicates the key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// GetShortcode resolves a shortcode to a beacon id from cache.
func (c *Cache) GetShortcode(ctx context.Context, shortcode string) (string, error) {
	beaconID, err := c.client.Get(ctx, shortcodePrefix+shortcode).Result()
	if err != nil {
		return "", ErrCacheMiss
	}
	return beaconID, nil
}

// SetShortcode caches a shortcode to beacon id mapping until the beacon
// expires. The TTL keeps stale mappings from outliving the session, so a
// reused shortcode never resolves to an expired beacon.
func (c *Cache) SetShortcode(ctx context.Context, shortcode, beaconID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, shortcodePrefix+shortcode, beaconID, ttl).Err(); err != nil {
		return fmt.Errorf("set shortcode: %w", err)
	}
	return nil
}

// DeleteShortcode removes a cached shortcode mapping.
func (c *Cache) DeleteShortcode(ctx context.Context, shortcode string) error {
	return c.client.Del(ctx, shortcodePrefix+shortcode).Err()
}

// IsNegativelyCached reports whether the shortcode recently failed lookup.
func (c *Cache) IsNegativelyCached(ctx context.Context, shortcode string) (bool, error) {
	n, err := c.client.Exists(ctx, negativePrefix+shortcode).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetNegativeCache marks a shortcode as recently not found.
func (c *Cache) SetNegativeCache(ctx context.Context, shortcode string) error {
	return c.client.Set(ctx, negativePrefix+shortcode, "1", negativeTTL).Err()
}
