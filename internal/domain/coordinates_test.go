package domain

import (
	"math"
	"testing"
)

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"both set", Coordinates{Lon: 77.59, Lat: 12.97}, true},
		{"zero lon", Coordinates{Lon: 0, Lat: 12.97}, false},
		{"zero lat", Coordinates{Lon: 77.59, Lat: 0}, false},
		{"nan", Coordinates{Lon: math.NaN(), Lat: 12.97}, false},
		{"negative", Coordinates{Lon: -112.1, Lat: -33.4}, true},
	}

	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveCoordinates(t *testing.T) {
	lat, lon, zero := 12.97, 77.59, 0.0

	if c := ResolveCoordinates(&lat, &lon); c == nil || c.Lat != lat || c.Lon != lon {
		t.Fatalf("expected resolved coordinates, got %+v", c)
	}
	if c := ResolveCoordinates(nil, &lon); c != nil {
		t.Fatalf("expected nil for missing latitude, got %+v", c)
	}
	if c := ResolveCoordinates(&zero, &lon); c != nil {
		t.Fatalf("expected nil for zero latitude, got %+v", c)
	}
}

func TestCoordinatesKey(t *testing.T) {
	c := Coordinates{Lon: 77.5946, Lat: 12.9716}
	if got := c.Key(); got != "77.5946,12.9716" {
		t.Fatalf("Key() = %q", got)
	}
}

func TestParseCoords(t *testing.T) {
	a := Coordinates{Lon: 77.59, Lat: 12.97}
	b := Coordinates{Lon: 77.61, Lat: 12.93}

	got, err := ParseCoords("77.59,12.97; 77.61,12.93;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected coordinates: %+v", got)
	}
	if EncodeCoords(got) != "77.59,12.97;77.61,12.93" {
		t.Fatalf("encode mismatch: %q", EncodeCoords(got))
	}

	for _, bad := range []string{"77.59", "x,12.9", "77.5,y", "200,10"} {
		if _, err := ParseCoords(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}
