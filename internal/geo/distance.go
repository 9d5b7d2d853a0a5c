package geo

import (
	"fleet-route-tracker/internal/domain"
	"math"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points using the
// haversine formula. Any zero or NaN input yields +Inf so that callers comparing
// against a threshold treat unknown positions as out of range.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	for _, v := range [...]float64{lat1, lon1, lat2, lon2} {
		if v == 0 || math.IsNaN(v) {
			return math.Inf(1)
		}
	}

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Between is DistanceKm for two coordinate values.
func Between(a, b domain.Coordinates) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
