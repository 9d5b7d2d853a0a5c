package domain

import (
	"math"
	"strconv"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether both components are usable for routing.
// Zero is treated as "not set", matching how fleet records store unknown positions.
func (c Coordinates) Valid() bool {
	return isSet(c.Lon) && isSet(c.Lat)
}

// Key renders "lon,lat" with full precision; used for deduplication and wire formats.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// ResolveCoordinates returns coordinates from nullable fields, or nil if either is unset.
func ResolveCoordinates(lat, lon *float64) *Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	c := Coordinates{Lon: *lon, Lat: *lat}
	if !c.Valid() {
		return nil
	}
	return &c
}

func isSet(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}
