package handlers

import (
	"fleet-route-tracker/internal/api/dto"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// RouteHandler proxies optimized-route requests to the route service.
type RouteHandler struct {
	Optimizer ports.RouteOptimizer
}

func (h *RouteHandler) Optimized(w http.ResponseWriter, r *http.Request) {
	raw, err := rawQueryValue(r.URL.RawQuery, "coords")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "coords is not valid query encoding")
		return
	}
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "coords is required")
		return
	}

	coords, err := domain.ParseCoords(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(coords) < 2 {
		writeError(w, r, http.StatusBadRequest, "at least two coordinates are required")
		return
	}

	route, err := h.Optimizer.FetchOptimizedRoute(r.Context(), coords)
	if err != nil {
		log.Printf("optimized route failed: coords=%q err=%v", raw, err)
		writeError(w, r, http.StatusBadGateway, "route service unavailable")
		return
	}
	if route == nil {
		writeError(w, r, http.StatusNotFound, "no route available")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromOptimizedRoute(route))
}

// rawQueryValue returns the first value of key in a raw query string.
// url.ParseQuery drops pairs containing ';', which the coords list is joined with.
func rawQueryValue(rawQuery, key string) (string, error) {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(k)
		if err != nil || name != key {
			continue
		}
		return url.QueryUnescape(v)
	}
	return "", nil
}
