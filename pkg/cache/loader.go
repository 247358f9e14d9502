package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader reads through a Cache. Concurrent misses on the same key share one load.
type Loader struct {
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewLoader creates a read-through loader with a fixed ttl.
func NewLoader(c Cache, ttl time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cache: c, ttl: ttl, logger: logger}
}

// Cache returns the underlying cache.
func (l *Loader) Cache() Cache { return l.cache }

// TTL returns the lifetime of loaded entries.
func (l *Loader) TTL() time.Duration { return l.ttl }

// Invalidate deletes keys. Errors are logged; a failed delete leaves the entry to expire by ttl.
func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	for _, k := range keys {
		l.group.Forget(k)
	}
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.logger.Error("cache invalidate", zap.Strings("keys", keys), zap.Error(err))
	}
}

// loadTimeout bounds a shared load once it is detached from its first caller.
const loadTimeout = 30 * time.Second

// Load returns the cached value for key, or calls load and caches its result.
// Errors from load are returned and never cached. Cache backend errors degrade to a direct load.
// The shared load ignores the cancellation of whichever caller started it; a cancelled
// caller stops waiting and gets ctx.Err() while the others still receive the value.
func Load[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := l.cache.Get(ctx, key, &cached)
	if err != nil {
		l.logger.Warn("cache get", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	ch := l.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		fresh, err := load(lctx)
		if err != nil {
			return fresh, err
		}
		if err := l.cache.Set(lctx, key, fresh, l.ttl); err != nil {
			l.logger.Warn("cache set", zap.String("key", key), zap.Error(err))
		}
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		out, _ := res.Val.(T)
		return out, res.Err
	}
}
