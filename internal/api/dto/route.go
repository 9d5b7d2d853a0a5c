package dto

import "fleet-route-tracker/internal/ports"

// GeoJSON FeatureCollection with a single LineString feature, the same shape
// the directions service returns.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   LineString        `json:"geometry"`
}

type FeatureProperties struct {
	Summary RouteSummary `json:"summary"`
}

// Meters and seconds.
type RouteSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type LineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

func FromOptimizedRoute(r *ports.OptimizedRoute) FeatureCollection {
	line := LineString{Type: "LineString", Coordinates: make([][2]float64, 0, len(r.Coordinates))}
	for _, c := range r.Coordinates {
		line.Coordinates = append(line.Coordinates, [2]float64{c.Lon, c.Lat})
	}

	return FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{{
			Type: "Feature",
			Properties: FeatureProperties{Summary: RouteSummary{
				Distance: r.DistanceKm * 1000,
				Duration: r.DurationMin * 60,
			}},
			Geometry: line,
		}},
	}
}
