package routing

import (
	"encoding/json"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
)

// GeoJSON FeatureCollection as returned by the directions endpoint.
type featureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// parseFeatureCollection reads the first feature's LineString and summary.
// It returns nil for malformed bodies or an empty geometry.
func parseFeatureCollection(body []byte) *ports.OptimizedRoute {
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil
	}
	if len(fc.Features) == 0 {
		return nil
	}

	f := fc.Features[0]
	coords := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
	for _, p := range f.Geometry.Coordinates {
		if len(p) < 2 {
			continue
		}
		coords = append(coords, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}
	if len(coords) == 0 {
		return nil
	}

	return &ports.OptimizedRoute{
		Coordinates: coords,
		DistanceKm:  f.Properties.Summary.Distance / 1000,
		DurationMin: f.Properties.Summary.Duration / 60,
	}
}

// dedupeWaypoints drops repeated points, keeping the first occurrence.
func dedupeWaypoints(waypoints []domain.Coordinates) []domain.Coordinates {
	seen := make(map[string]struct{}, len(waypoints))
	out := make([]domain.Coordinates, 0, len(waypoints))
	for _, w := range waypoints {
		k := w.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}
