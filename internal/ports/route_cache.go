package ports

import "context"

// Contract for storing optimized routes keyed by their waypoint set.
type RouteCache interface {
	// Return the cached route for key; (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*OptimizedRoute, error)
	Put(ctx context.Context, key string, route *OptimizedRoute) error
}
