package handlers

import (
	"fleet-route-tracker/internal/api/dto"
	"fleet-route-tracker/internal/tracking"
	"net/http"
)

// TrackingReader exposes the engine's read model.
type TrackingReader interface {
	Views() []tracking.AgentView
	View(agentID int64) (tracking.AgentView, bool)
}

type TrackingHandler struct {
	Tracking TrackingReader
}

func (h *TrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.FromViews(h.Tracking.Views()))
}

func (h *TrackingHandler) Get(w http.ResponseWriter, r *http.Request) {
	agentID, ok := pathID(w, r, "agentId")
	if !ok {
		return
	}

	v, found := h.Tracking.View(agentID)
	if !found {
		writeError(w, r, http.StatusNotFound, "agent has no active route")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromView(v))
}
