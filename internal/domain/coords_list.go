package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeCoords renders waypoints as "lon,lat;lon,lat".
func EncodeCoords(waypoints []Coordinates) string {
	parts := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		parts = append(parts, w.Key())
	}
	return strings.Join(parts, ";")
}

// ParseCoords reads "lon,lat;lon,lat". Empty segments are ignored.
func ParseCoords(s string) ([]Coordinates, error) {
	var out []Coordinates
	for i, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lonStr, latStr, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("parse coords: segment %d %q: want lon,lat", i+1, part)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("parse coords: segment %d longitude: %w", i+1, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("parse coords: segment %d latitude: %w", i+1, err)
		}
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("parse coords: segment %d out of range: %q", i+1, part)
		}
		out = append(out, Coordinates{Lon: lon, Lat: lat})
	}
	return out, nil
}
