package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// sessionPrefix is the Redis key prefix for verified token claims.
	sessionPrefix = "session:claims:"
	// sessionTTL caps how long verified claims are reused without
	// re-verifying the token signature.
	sessionTTL = 5 * time.Minute
)

// CachedSession represents verified token claims stored in Redis.
type CachedSession struct {
	UserID    string `json:"user_id"`
	Anonymous bool   `json:"anonymous"`
	Email     string `json:"email,omitempty"`
}

// GetSession retrieves cached claims by token hash.
// Returns nil on miss (a miss is not an error).
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*CachedSession, error) {
	data, err := c.client.Get(ctx, sessionPrefix+tokenHash).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetSession caches verified claims keyed by token hash.
// The TTL never exceeds the token's remaining lifetime.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, session *CachedSession, tokenExpiry time.Time) error {
	ttl := sessionTTL
	if remaining := time.Until(tokenExpiry); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, sessionPrefix+tokenHash, data, ttl).Err()
}
