package tracking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fmt"
	"sync/atomic"
)

// LiveLocations caches the most recent pushed position per agent.
// Writers swap in a fresh map; readers never block.
type LiveLocations struct {
	current atomic.Pointer[map[int64]domain.Coordinates]
}

func NewLiveLocations() *LiveLocations {
	l := &LiveLocations{}
	empty := map[int64]domain.Coordinates{}
	l.current.Store(&empty)
	return l
}

// Replace installs updates as the complete set of live positions.
// Each push from the location feed carries every known driver.
func (l *LiveLocations) Replace(updates []domain.LiveDriverUpdate) {
	next := make(map[int64]domain.Coordinates, len(updates))
	for _, u := range updates {
		if !u.Location.Valid() {
			continue
		}
		next[u.AgentID] = u.Location
	}
	l.current.Store(&next)
}

// Merge overlays updates on the current set.
func (l *LiveLocations) Merge(updates []domain.LiveDriverUpdate) {
	for {
		old := l.current.Load()
		next := make(map[int64]domain.Coordinates, len(*old)+len(updates))
		for k, v := range *old {
			next[k] = v
		}
		for _, u := range updates {
			if !u.Location.Valid() {
				continue
			}
			next[u.AgentID] = u.Location
		}
		if l.current.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (l *LiveLocations) Lookup(agentID int64) (domain.Coordinates, bool) {
	c, ok := (*l.current.Load())[agentID]
	return c, ok
}

func (l *LiveLocations) Len() int { return len(*l.current.Load()) }

type driverUpdatePayload struct {
	ID        int64    `json:"id"`
	AgentID   int64    `json:"agentId"`
	Latitude  *float64 `json:"latitude"`
	Lat       *float64 `json:"lat"`
	Longitude *float64 `json:"longitude"`
	Lng       *float64 `json:"lng"`
}

// DecodeDriverUpdates parses a push body holding one driver object or an array of them.
// Latitude is read from "latitude" or "lat" and longitude from "longitude" or "lng",
// taking the first non-zero value. Entries without an id are dropped.
func DecodeDriverUpdates(body []byte) ([]domain.LiveDriverUpdate, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("decode driver updates: empty body")
	}

	var payloads []driverUpdatePayload
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("decode driver updates: parse array: %w", err)
		}
	} else {
		var one driverUpdatePayload
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("decode driver updates: parse object: %w", err)
		}
		payloads = []driverUpdatePayload{one}
	}

	out := make([]domain.LiveDriverUpdate, 0, len(payloads))
	for _, p := range payloads {
		id := p.ID
		if id == 0 {
			id = p.AgentID
		}
		if id == 0 {
			continue
		}
		out = append(out, domain.LiveDriverUpdate{
			AgentID: id,
			Location: domain.Coordinates{
				Lat: firstSet(p.Latitude, p.Lat),
				Lon: firstSet(p.Longitude, p.Lng),
			},
		})
	}

	return out, nil
}

func firstSet(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}
