package tracking

import "fleet-route-tracker/internal/domain"

type decisionKind int

const (
	decideSkip decisionKind = iota
	decideDelete
	decideToWarehouse
	decideMultiStop
)

// decision is the outcome of one agent evaluation, before any route is fetched.
type decision struct {
	kind   decisionKind
	reason string

	// to_warehouse: [source, warehouse]. multi_stop: warehouse followed by customers.
	waypoints []domain.Coordinates
	orderIDs  []int64

	// preserve keeps the current progress (clamped) when the route is replaced.
	preserve bool
}

// keepCurrent reports whether an in-progress route must not be rebuilt by a refresh.
// A leg toward the warehouse only changes through an explicit pickup or when the
// agent runs out of active orders.
func keepCurrent(current *domain.Route) bool {
	return current != nil && current.Phase == domain.PhaseToWarehouse
}

// selectRoute decides what route, if any, an agent should follow.
// best is the agent's best-known location; nil when neither a live nor a static
// position resolves.
func selectRoute(snap *domain.Snapshot, agentID int64, best *domain.Coordinates, current *domain.Route) decision {
	active := snap.ActiveOrders(agentID)
	if len(active) == 0 {
		return decision{kind: decideDelete, reason: "no active orders"}
	}

	if keepCurrent(current) {
		return decision{kind: decideSkip, reason: "heading to warehouse"}
	}

	var pickedUp, assigned int
	var firstAssigned *domain.Order
	for i := range active {
		switch active[i].Status {
		case domain.OrderPickedUp:
			pickedUp++
		case domain.OrderAssigned:
			assigned++
			if firstAssigned == nil {
				firstAssigned = &active[i]
			}
		}
	}

	switch {
	case pickedUp == len(active):
		return multiStopDecision(snap, active, current != nil)

	case pickedUp == 0 && assigned > 0:
		wh, ok := snap.WarehouseFor(*firstAssigned)
		if !ok {
			return decision{kind: decideSkip, reason: "warehouse not found"}
		}
		if best != nil && wh.Location != nil {
			return decision{
				kind:      decideToWarehouse,
				waypoints: []domain.Coordinates{*best, *wh.Location},
			}
		}
		return multiStopDecision(snap, active, false)

	default:
		return multiStopDecision(snap, active, current != nil)
	}
}

// multiStopDecision routes from the first active order's warehouse through each
// customer with a known location. Duplicate points are collapsed, first one wins.
func multiStopDecision(snap *domain.Snapshot, active []domain.Order, preserve bool) decision {
	wh, ok := snap.WarehouseFor(active[0])
	if !ok {
		return decision{kind: decideSkip, reason: "warehouse not found"}
	}

	waypoints := make([]domain.Coordinates, 0, len(active)+1)
	seen := make(map[string]struct{}, len(active)+1)
	add := func(c *domain.Coordinates) {
		if c == nil || !c.Valid() {
			return
		}
		k := c.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		waypoints = append(waypoints, *c)
	}

	add(wh.Location)
	ids := make([]int64, 0, len(active))
	for _, o := range active {
		ids = append(ids, o.ID)
		if c, ok := snap.Customer(o.CustomerID); ok {
			add(c.Location)
		}
	}

	if len(waypoints) < 2 {
		return decision{kind: decideSkip, reason: "fewer than two resolvable stops"}
	}

	return decision{
		kind:      decideMultiStop,
		waypoints: waypoints,
		orderIDs:  ids,
		preserve:  preserve,
	}
}

// bestLocation prefers the live position and falls back to the static one.
func bestLocation(agent *domain.Agent, live *LiveLocations) *domain.Coordinates {
	if live != nil {
		if c, ok := live.Lookup(agent.ID); ok && c.Valid() {
			return &c
		}
	}
	if agent.Location != nil && agent.Location.Valid() {
		c := *agent.Location
		return &c
	}
	return nil
}
