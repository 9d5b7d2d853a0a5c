package ports

import (
	"context"
	"fleet-route-tracker/internal/domain"
)

// Normalized response of the external multi-stop route service.
type OptimizedRoute struct {
	Coordinates []domain.Coordinates
	DistanceKm  float64
	DurationMin float64
}

// Contract for fetching a road geometry through an ordered set of waypoints.
type RouteOptimizer interface {
	// Return the route through waypoints. A nil route with a nil error means the
	// service had nothing to offer (too few distinct points, empty geometry).
	FetchOptimizedRoute(ctx context.Context, waypoints []domain.Coordinates) (*OptimizedRoute, error)
}
