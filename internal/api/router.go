package api

import (
	"fleet-route-tracker/internal/api/handlers"
	"fleet-route-tracker/internal/ports"
	"net/http"

	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Deps are the collaborators the HTTP layer needs. Feed may be nil.
type Deps struct {
	Tracking  handlers.TrackingReader
	Actions   handlers.OrderActions
	Live      handlers.LiveSink
	Optimizer ports.RouteOptimizer
	Refresh   func()
	Feed      http.HandlerFunc
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers only see the narrow interfaces in Deps.
func NewRouter(deps Deps) http.Handler {
	r := mux.NewRouter()

	trackingHandler := &handlers.TrackingHandler{Tracking: deps.Tracking}
	orderHandler := &handlers.OrderHandler{Actions: deps.Actions, Refresh: deps.Refresh}
	locationHandler := &handlers.LocationHandler{Live: deps.Live}
	routeHandler := &handlers.RouteHandler{Optimizer: deps.Optimizer}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tracking", trackingHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/tracking/{agentId}", trackingHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/orders/{orderId}/pickup", orderHandler.Pickup).Methods(http.MethodPut, http.MethodPost)
	api.HandleFunc("/orders/{orderId}/delivered", orderHandler.Delivered).Methods(http.MethodPut, http.MethodPost)
	api.HandleFunc("/drivers/locations", locationHandler.Ingest).Methods(http.MethodPost)
	api.HandleFunc("/routes/optimized", routeHandler.Optimized).Methods(http.MethodGet)

	if deps.Feed != nil {
		r.HandleFunc("/ws", deps.Feed).Methods(http.MethodGet)
	}

	cors := gh.CORS(
		gh.AllowedOrigins([]string{"*"}),
		gh.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gh.AllowedHeaders([]string{"Content-Type"}),
	)

	return loggingMiddleware(cors(r))
}
