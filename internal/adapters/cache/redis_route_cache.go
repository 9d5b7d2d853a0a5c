package cache

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores optimized routes as JSON strings with a TTL.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *ports.OptimizedRoute, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route cache %q: %w", key, err)
	}

	return decodeRoute(b)
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, route *ports.OptimizedRoute) error {
	if route == nil {
		return errors.New("put route cache: route is nil")
	}

	b, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("put route cache %q: %w", key, err)
	}

	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache %q: %w", key, err)
	}
	return nil
}
