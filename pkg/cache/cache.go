// Package cache provides a small key/value cache with time-based expiry and
// a read-through loader on top of it.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values under string keys until their TTL elapses.
type Cache interface {
	// Get decodes the value under key into dst. It reports false on a miss or an expired entry.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
