package main

import (
	"fleet-route-tracker/internal/domain"
	"math"
	"testing"
)

func TestStartPositionsFallback(t *testing.T) {
	loc := domain.Coordinates{Lon: 77.59, Lat: 12.97}
	snap := domain.NewSnapshot([]domain.Agent{
		{ID: 2},
		{ID: 1, Location: &loc},
	}, nil, nil, nil)

	got := startPositions(snap)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected positions: %+v", got)
	}
	if got[0].Latitude != 12.97 || got[0].Longitude != 77.59 {
		t.Fatalf("agent 1 should start at its stored location: %+v", got[0])
	}
	if got[1].Latitude != fallbackStart.Lat || got[1].Longitude != fallbackStart.Lon {
		t.Fatalf("agent 2 should start at the fallback: %+v", got[1])
	}
}

func TestJitterStaysWithinBound(t *testing.T) {
	positions := []position{{ID: 1, Latitude: 12.97, Longitude: 77.59}}

	for i := 0; i < 100; i++ {
		prev := positions[0]
		jitter(positions)
		if d := math.Abs(positions[0].Latitude - prev.Latitude); d > jitterDeg {
			t.Fatalf("latitude moved %v, max %v", d, jitterDeg)
		}
		if d := math.Abs(positions[0].Longitude - prev.Longitude); d > jitterDeg {
			t.Fatalf("longitude moved %v, max %v", d, jitterDeg)
		}
	}
}
