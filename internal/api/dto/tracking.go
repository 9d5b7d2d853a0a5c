package dto

import (
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/tracking"
	"fmt"
	"math"

	"github.com/mmcloughlin/geohash"
)

// Seven characters give cells of about 150 m, enough for map clustering.
const positionGeohashPrecision = 7

type PointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TrackingResponse struct {
	AgentID       int64           `json:"agent_id"`
	AgentName     string          `json:"agent_name"`
	Vehicle       string          `json:"vehicle"`
	Phase         string          `json:"phase"`
	Position      PointResponse   `json:"position"`
	Geohash       string          `json:"geohash"`
	LivePosition  *PointResponse  `json:"live_position"`
	Progress      int             `json:"progress"`
	LastIndex     int             `json:"last_index"`
	RemainingPath []PointResponse `json:"remaining_path"`
	RemainingKm   float64         `json:"remaining_km"`
	RemainingMin  float64         `json:"remaining_min"`
	TotalKm       float64         `json:"total_km"`
	TotalMin      float64         `json:"total_min"`
	Arrived       bool            `json:"arrived"`
	ETA           string          `json:"eta"`
	OrderIDs      []int64         `json:"order_ids"`
}

type ListTrackingResponse struct {
	Agents []TrackingResponse `json:"agents"`
}

func Point(c domain.Coordinates) PointResponse {
	return PointResponse{Lat: c.Lat, Lng: c.Lon}
}

// ETALabel renders the remaining time the way the dispatcher map shows it.
func ETALabel(remainingMin float64, arrived bool) string {
	if arrived {
		return "Arrived"
	}
	return fmt.Sprintf("%d min", int(math.Max(0, math.Round(remainingMin))))
}

func FromView(v tracking.AgentView) TrackingResponse {
	res := TrackingResponse{
		AgentID:       v.AgentID,
		AgentName:     v.AgentName,
		Vehicle:       string(v.Vehicle),
		Phase:         string(v.Phase),
		Position:      Point(v.Position),
		Geohash:       geohash.EncodeWithPrecision(v.Position.Lat, v.Position.Lon, positionGeohashPrecision),
		Progress:      v.Progress,
		LastIndex:     v.LastIndex,
		RemainingPath: make([]PointResponse, 0, len(v.RemainingPath)),
		RemainingKm:   round2(v.RemainingKm),
		RemainingMin:  round2(v.RemainingMin),
		TotalKm:       round2(v.TotalKm),
		TotalMin:      round2(v.TotalMin),
		Arrived:       v.Arrived,
		ETA:           ETALabel(v.RemainingMin, v.Arrived),
		OrderIDs:      v.OrderIDs,
	}
	if v.LivePosition != nil {
		p := Point(*v.LivePosition)
		res.LivePosition = &p
	}
	for _, c := range v.RemainingPath {
		res.RemainingPath = append(res.RemainingPath, Point(c))
	}
	if res.OrderIDs == nil {
		res.OrderIDs = []int64{}
	}
	return res
}

func FromViews(views []tracking.AgentView) ListTrackingResponse {
	res := ListTrackingResponse{Agents: make([]TrackingResponse, 0, len(views))}
	for _, v := range views {
		res.Agents = append(res.Agents, FromView(v))
	}
	return res
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
