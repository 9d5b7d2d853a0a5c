package routing

import (
	"context"
	"fleet-route-tracker/internal/adapters/cache"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"log"
)

// CachedOptimizer consults a RouteCache before calling the wrapped optimizer.
// Cache failures are logged and never fail a lookup.
type CachedOptimizer struct {
	next  ports.RouteOptimizer
	cache ports.RouteCache
}

func NewCachedOptimizer(next ports.RouteOptimizer, c ports.RouteCache) *CachedOptimizer {
	return &CachedOptimizer{next: next, cache: c}
}

func (c *CachedOptimizer) FetchOptimizedRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (*ports.OptimizedRoute, error) {
	points := dedupeWaypoints(waypoints)
	if len(points) < 2 {
		return nil, nil
	}

	key := cache.RouteKey(points)

	hit, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Printf("route cache read failed: key=%s err=%v", key, err)
	} else if hit != nil {
		return hit, nil
	}

	route, err := c.next.FetchOptimizedRoute(ctx, points)
	if err != nil || route == nil {
		return route, err
	}

	if err := c.cache.Put(ctx, key, route); err != nil {
		log.Printf("route cache write failed: key=%s err=%v", key, err)
	}

	return route, nil
}
