package cache

import (
	"context"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisRouteCache(client, time.Minute)
	ctx := context.Background()

	route := &ports.OptimizedRoute{
		Coordinates: []domain.Coordinates{{Lon: 77.59, Lat: 12.97}, {Lon: 77.61, Lat: 12.93}},
		DistanceKm:  5.2,
		DurationMin: 14,
	}
	key := RouteKey(route.Coordinates)

	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error on miss: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}

	if err := c.Put(ctx, key, route); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || len(got.Coordinates) != 2 || got.Coordinates[1] != route.Coordinates[1] {
		t.Fatalf("unexpected cached route: %+v", got)
	}
	if got.DistanceKm != 5.2 || got.DurationMin != 14 {
		t.Fatalf("unexpected totals: %+v", got)
	}

	mr.FastForward(2 * time.Minute)

	got, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expiry, got %+v", got)
	}
}

func TestRedisRouteCacheUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	c := NewRedisRouteCache(client, time.Minute)
	mr.Close()

	if _, err := c.Get(context.Background(), "route:x"); err == nil {
		t.Fatalf("expected error with redis down")
	}
}

func TestRouteKey(t *testing.T) {
	a := domain.Coordinates{Lon: 77.5946, Lat: 12.9716}
	b := domain.Coordinates{Lon: 76.6394, Lat: 12.2958}

	ab := RouteKey([]domain.Coordinates{a, b})
	ba := RouteKey([]domain.Coordinates{b, a})
	if ab == ba {
		t.Fatalf("key must depend on waypoint order")
	}
	if ab != RouteKey([]domain.Coordinates{a, b}) {
		t.Fatalf("key must be deterministic")
	}
	if len(ab) != len("route:")+2*keyPrecision+1 {
		t.Fatalf("unexpected key %q", ab)
	}
}
