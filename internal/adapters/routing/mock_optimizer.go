package routing

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/geo"
	"fleet-route-tracker/internal/ports"
	"sync"
)

// MockOptimizer returns the deduplicated waypoints as the route geometry, with
// haversine distance and a fixed speed. Calls are recorded.
type MockOptimizer struct {
	mu    sync.Mutex
	calls [][]domain.Coordinates
	fail  bool
	empty bool
}

func NewMockOptimizer() *MockOptimizer { return &MockOptimizer{} }

// Fail makes subsequent calls return an error.
func (m *MockOptimizer) Fail(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = v
}

// Empty makes subsequent calls return no route.
func (m *MockOptimizer) Empty(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.empty = v
}

func (m *MockOptimizer) Calls() [][]domain.Coordinates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.Coordinates(nil), m.calls...)
}

func (m *MockOptimizer) FetchOptimizedRoute(ctx context.Context, waypoints []domain.Coordinates) (*ports.OptimizedRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	points := dedupeWaypoints(waypoints)
	m.calls = append(m.calls, points)

	if m.fail {
		return nil, errors.New("mock optimizer: unavailable")
	}
	if m.empty || len(points) < 2 {
		return nil, nil
	}

	km := geo.PathLengthKm(points)
	return &ports.OptimizedRoute{
		Coordinates: points,
		DistanceKm:  km,
		DurationMin: km / 0.5,
	}, nil
}
