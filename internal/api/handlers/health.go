package handlers

import "net/http"

// Health is the liveness check. It does not touch the fleet store or the route service.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "service": "fleet-route-tracker"})
}
