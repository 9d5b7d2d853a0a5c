package tracking

import (
	"context"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/geo"
	"fleet-route-tracker/internal/platform/obs"
	"fmt"
	"log"
)

// MarkPickedUp records that agentID collected orderID at its warehouse and
// switches the agent to a multi-stop route starting from the beginning.
//
// When a live position is known and lies further than the pickup radius from
// the warehouse, the call fails with ErrNotNearWarehouse and nothing changes.
func (e *Engine) MarkPickedUp(ctx context.Context, orderID, agentID int64) (err error) {
	defer obs.Time(ctx, "tracking.MarkPickedUp")(&err)

	snap := e.snap.Load()
	if snap == nil {
		return fmt.Errorf("mark picked up: %w", ErrNoSnapshot)
	}

	order, ok := snap.Order(orderID)
	if !ok {
		return fmt.Errorf("mark picked up: order %d: %w", orderID, ErrUnknownOrder)
	}
	if _, ok := snap.Agent(agentID); !ok {
		return fmt.Errorf("mark picked up: agent %d: %w", agentID, ErrUnknownAgent)
	}
	if !order.AssignedTo(agentID) {
		return fmt.Errorf("mark picked up: order %d agent %d: %w", orderID, agentID, ErrOrderNotAssigned)
	}
	wh, ok := snap.WarehouseFor(*order)
	if !ok {
		return fmt.Errorf("mark picked up: order %d: %w", orderID, ErrUnknownWarehouse)
	}

	if loc, ok := e.live.Lookup(agentID); ok {
		var whLoc domain.Coordinates
		if wh.Location != nil {
			whLoc = *wh.Location
		}
		if km := geo.Between(loc, whLoc); km > e.opts.PickupRadiusKm {
			return fmt.Errorf(
				"mark picked up: agent %d is %.2f km from warehouse %d (max %.1f): %w",
				agentID, km, wh.ID, e.opts.PickupRadiusKm, ErrNotNearWarehouse,
			)
		}
	}

	if err := e.actions.MarkPickedUp(ctx, orderID); err != nil {
		return fmt.Errorf("mark picked up: order %d: %w", orderID, err)
	}

	seq := e.Stamp()
	snap = snap.WithOrderStatus(orderID, domain.OrderPickedUp).Stamped(seq)
	e.storeSnapshot(snap)

	t := e.track(agentID)
	t.mu.Lock()
	t.recordApplied(orderID, domain.OrderPickedUp, seq)
	t.mu.Unlock()

	r, err := e.pickupRoute(ctx, snap, agentID)
	if err != nil || r == nil {
		// Drop the warehouse leg; the next refresh builds the delivery route.
		log.Printf("agent_id=%d op=pickup rebuild failed route=nil err=%v", agentID, err)
		e.install(t, agentID, nil, nil, false)
		return nil
	}

	e.install(t, agentID, nil, r, false)
	log.Printf("agent_id=%d op=pickup order_id=%d decision=multi_stop km=%.2f", agentID, orderID, r.DistanceKm)

	return nil
}

func (e *Engine) pickupRoute(ctx context.Context, snap *domain.Snapshot, agentID int64) (*domain.Route, error) {
	active := snap.ActiveOrders(agentID)
	if len(active) == 0 {
		return nil, nil
	}

	d := multiStopDecision(snap, active, false)
	if d.kind != decideMultiStop {
		return nil, nil
	}

	return e.optimizedRoute(ctx, agentID, d.waypoints, d.orderIDs)
}

// MarkDelivered records the delivery of orderID and removes it from the agent's
// multi-stop route. The path and progress stay as they are; a route left with
// no orders is deleted.
func (e *Engine) MarkDelivered(ctx context.Context, orderID, agentID int64) (err error) {
	defer obs.Time(ctx, "tracking.MarkDelivered")(&err)

	if err := e.actions.MarkDelivered(ctx, orderID); err != nil {
		return fmt.Errorf("mark delivered: order %d: %w", orderID, err)
	}

	seq := e.Stamp()
	if snap := e.snap.Load(); snap != nil {
		e.storeSnapshot(snap.WithOrderStatus(orderID, domain.OrderDelivered).Stamped(seq))
	}

	t, ok := e.lookup(agentID)
	if !ok {
		return nil
	}

	t.mu.Lock()
	t.recordApplied(orderID, domain.OrderDelivered, seq)
	current, version := t.route, t.version
	t.mu.Unlock()
	if current == nil {
		return nil
	}

	e.removeOrder(t, agentID, orderID, current, version)
	return nil
}

// removeOrder drops orderID from current and installs the result if the track
// is still at version. It reports whether the route changed; a route that was
// replaced in the meantime is left alone.
func (e *Engine) removeOrder(t *agentTrack, agentID, orderID int64, current *domain.Route, version uint64) bool {
	next := current.WithoutOrder(orderID)
	if len(next.OrderIDs) == 0 {
		if !e.install(t, agentID, &version, nil, false) {
			return false
		}
		log.Printf("agent_id=%d op=delivered order_id=%d decision=delete", agentID, orderID)
		return true
	}

	if !e.install(t, agentID, &version, next, true) {
		return false
	}
	log.Printf("agent_id=%d op=delivered order_id=%d remaining_orders=%d", agentID, orderID, len(next.OrderIDs))
	return true
}
