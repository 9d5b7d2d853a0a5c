package cache

import (
	"context"
	"database/sql"
	"errors"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"strings"
	"time"
)

// SQLRouteCache is a Postgres-backed cache for optimized routes.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl}
}

// Fetch a cached route that has not expired yet.
func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ *ports.OptimizedRoute, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT payload
	FROM route_cache
	WHERE route_key = $1
		AND expires_at > now();
	`

	var payload []byte
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return decodeRoute(payload)
}

// Store or refresh a cached route.
func (s *SQLRouteCache) Put(ctx context.Context, key string, route *ports.OptimizedRoute) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}
	if route == nil {
		return errors.New("insert route cache: route is nil")
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT INTO route_cache (route_key, payload, distance_km, duration_min, expires_at)
	VALUES ($1, $2, $3, $4, now() + make_interval(secs => $5))
	ON CONFLICT (route_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		distance_km = EXCLUDED.distance_km,
		duration_min = EXCLUDED.duration_min,
		expires_at = EXCLUDED.expires_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, key, payload, route.DistanceKm, route.DurationMin, s.TTL.Seconds()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
