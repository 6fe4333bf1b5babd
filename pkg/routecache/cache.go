// Package routecache keeps the data rendered at a page route in redis so that
// reads skip the database until a mutation invalidates the route.
package routecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Store is the subset of the redis client used by the cache.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RouteKey(path string) string
}

// Cache is safe to use as a nil pointer: every read goes to the loader and
// invalidation does nothing.
type Cache struct {
	store Store
	ttl   time.Duration
	logg  *logger.Logger
}

func New(store Store, ttl time.Duration, logg *logger.Logger) *Cache {
	if store == nil {
		return nil
	}
	return &Cache{store: store, ttl: ttl, logg: logg}
}

// Invalidate drops the cached data for each route path.
func (c *Cache) Invalidate(ctx context.Context, paths ...string) error {
	if c == nil || len(paths) == 0 {
		return nil
	}
	keys := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		keys = append(keys, c.store.RouteKey(path))
	}
	return c.store.Del(ctx, keys...)
}

// Load returns the value cached for path, calling load and populating the cache on a miss.
// Cache failures are logged and fall through to load.
func Load[T any](ctx context.Context, c *Cache, path string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	key := c.store.RouteKey(path)
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		decodeErr := json.Unmarshal([]byte(raw), &cached)
		if decodeErr == nil {
			return cached, nil
		}
		c.warn(ctx, path, "route cache entry undecodable", decodeErr)
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, path, "route cache read failed", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, path, "route cache encode failed", err)
		return value, nil
	}
	if err := c.store.Set(ctx, key, string(encoded), c.ttl); err != nil {
		c.warn(ctx, path, "route cache write failed", err)
	}
	return value, nil
}

func (c *Cache) warn(ctx context.Context, path, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"route": path, "error": err.Error()})
	c.logg.Warn(ctx, msg)
}
