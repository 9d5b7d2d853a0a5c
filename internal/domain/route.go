package domain

// Phase of an agent's route.
type Phase string

const (
	PhaseNone        Phase = "NONE"
	PhaseToWarehouse Phase = "TO_WAREHOUSE"
	PhaseMultiStop   Phase = "MULTI_STOP"
)

// Route is the path an agent is currently animated along.
// Waypoints is the geometry as built or returned by the route service; Path is its
// densified form. DistanceKm and DurationMin describe the sparse geometry.
// OrderIDs lists the orders served by a multi-stop route, in request order.
type Route struct {
	AgentID     int64
	Phase       Phase
	Waypoints   []Coordinates
	Path        []Coordinates
	DistanceKm  float64
	DurationMin float64
	OrderIDs    []int64
}

// LastIndex is the final valid progress value, or -1 for an empty path.
func (r *Route) LastIndex() int { return len(r.Path) - 1 }

// WithoutOrder returns a copy of r with orderID removed from OrderIDs.
// Geometry slices are shared; they are never mutated after construction.
func (r *Route) WithoutOrder(orderID int64) *Route {
	cp := *r
	cp.OrderIDs = make([]int64, 0, len(r.OrderIDs))
	for _, id := range r.OrderIDs {
		if id != orderID {
			cp.OrderIDs = append(cp.OrderIDs, id)
		}
	}
	return &cp
}

// LiveDriverUpdate is a pushed driver position. Last value wins.
type LiveDriverUpdate struct {
	AgentID  int64
	Location Coordinates
}
