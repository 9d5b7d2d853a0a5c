package cache

import (
	"encoding/json"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// Nine geohash characters resolve to cells of roughly 5 m.
const keyPrecision = 9

// RouteKey identifies a waypoint sequence. Order matters: the same stops in a
// different order are a different route.
func RouteKey(waypoints []domain.Coordinates) string {
	cells := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		cells = append(cells, geohash.EncodeWithPrecision(w.Lat, w.Lon, keyPrecision))
	}
	return "route:" + strings.Join(cells, ";")
}

// storedRoute is the serialized form shared by the cache backends.
type storedRoute struct {
	Coordinates [][2]float64 `json:"coordinates"`
	DistanceKm  float64      `json:"distance_km"`
	DurationMin float64      `json:"duration_min"`
}

func encodeRoute(r *ports.OptimizedRoute) ([]byte, error) {
	s := storedRoute{
		Coordinates: make([][2]float64, 0, len(r.Coordinates)),
		DistanceKm:  r.DistanceKm,
		DurationMin: r.DurationMin,
	}
	for _, c := range r.Coordinates {
		s.Coordinates = append(s.Coordinates, [2]float64{c.Lon, c.Lat})
	}

	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return b, nil
}

func decodeRoute(b []byte) (*ports.OptimizedRoute, error) {
	var s storedRoute
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}

	r := &ports.OptimizedRoute{
		Coordinates: make([]domain.Coordinates, 0, len(s.Coordinates)),
		DistanceKm:  s.DistanceKm,
		DurationMin: s.DurationMin,
	}
	for _, c := range s.Coordinates {
		r.Coordinates = append(r.Coordinates, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}
	return r, nil
}
