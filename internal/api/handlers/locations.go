package handlers

import (
	"fleet-route-tracker/internal/api/dto"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/tracking"
	"io"
	"net/http"
)

const maxLocationBody = 1 << 20

// LiveSink accepts pushed driver positions.
type LiveSink interface {
	Merge(updates []domain.LiveDriverUpdate)
}

type LocationHandler struct {
	Live LiveSink
}

// Ingest accepts one driver object or an array of them. Posted positions are
// merged into the live cache; drivers not mentioned keep their last position.
func (h *LocationHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLocationBody))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read body")
		return
	}

	updates, err := tracking.DecodeDriverUpdates(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	h.Live.Merge(updates)
	writeJSON(w, r, http.StatusAccepted, dto.LocationIngestResponse{Accepted: len(updates)})
}
