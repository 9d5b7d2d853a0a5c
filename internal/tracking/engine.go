package tracking

import (
	"context"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/geo"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Straight-line legs to the warehouse assume this speed (24 km/h).
const warehouseSpeedKmPerMin = 0.4

type Options struct {
	StepsPerSegment int
	WarehouseSteps  int
	PickupRadiusKm  float64
	TickInterval    time.Duration
}

func DefaultOptions() Options {
	return Options{
		StepsPerSegment: 20,
		WarehouseSteps:  80,
		PickupRadiusKm:  3,
		TickInterval:    120 * time.Millisecond,
	}
}

// agentTrack holds an agent's route and animation cursor.
// version increases on every route replacement; results and ticks carrying an
// older version are discarded.
type agentTrack struct {
	mu         sync.Mutex
	route      *domain.Route
	progress   int
	version    uint64
	evaluating bool

	// applied holds order transitions made through this engine that a refresh
	// has not confirmed yet. appliedSeq is the stamp taken when the last one
	// was committed.
	applied    map[int64]domain.OrderStatus
	appliedSeq uint64
}

// recordApplied must be called with t.mu held.
func (t *agentTrack) recordApplied(orderID int64, status domain.OrderStatus, seq uint64) {
	if t.applied == nil {
		t.applied = make(map[int64]domain.OrderStatus)
	}
	t.applied[orderID] = status
	t.appliedSeq = seq
}

// predates reports whether snap was read before a transition this track
// applied. A stamped snapshot is compared by sequence; an unstamped one by
// the statuses it reports. Once a snapshot confirms the transitions they are
// forgotten. Must be called with t.mu held.
func (t *agentTrack) predates(snap *domain.Snapshot) bool {
	if len(t.applied) == 0 {
		return false
	}

	if snap.Seq != 0 {
		if snap.Seq < t.appliedSeq {
			return true
		}
		t.applied = nil
		return false
	}

	for orderID, status := range t.applied {
		if o, ok := snap.Order(orderID); ok && o.Status != status {
			return true
		}
	}
	t.applied = nil
	return false
}

// Engine keeps one route and progress cursor per agent and rebuilds them from
// fleet snapshots.
//
// The engine is safe for concurrent use.
type Engine struct {
	optimizer ports.RouteOptimizer
	actions   ports.OrderActions
	live      *LiveLocations
	animator  *Animator
	opts      Options

	mu     sync.Mutex
	tracks map[int64]*agentTrack

	snap atomic.Pointer[domain.Snapshot]
	seq  atomic.Uint64
}

func NewEngine(
	optimizer ports.RouteOptimizer,
	actions ports.OrderActions,
	live *LiveLocations,
	opts Options,
) *Engine {
	if live == nil {
		live = NewLiveLocations()
	}
	return &Engine{
		optimizer: optimizer,
		actions:   actions,
		live:      live,
		animator:  NewAnimator(opts.TickInterval),
		opts:      opts,
		tracks:    make(map[int64]*agentTrack),
	}
}

func (e *Engine) Live() *LiveLocations { return e.live }

// Snapshot returns the newest snapshot seen by Evaluate or an order action, or nil.
func (e *Engine) Snapshot() *domain.Snapshot { return e.snap.Load() }

// Stamp returns the next snapshot sequence number. Take it before reading the
// fleet store and attach it with Snapshot.Stamped.
func (e *Engine) Stamp() uint64 { return e.seq.Add(1) }

// storeSnapshot keeps snap unless a stamped snapshot newer than it is already held.
func (e *Engine) storeSnapshot(snap *domain.Snapshot) {
	for {
		cur := e.snap.Load()
		if cur != nil && snap.Seq != 0 && snap.Seq < cur.Seq {
			return
		}
		if e.snap.CompareAndSwap(cur, snap) {
			return
		}
	}
}

// Evaluate re-decides every agent's route against snap. Agents are evaluated
// concurrently; Evaluate returns once all of them finished or were skipped.
// An agent is skipped when snap was read before an order transition applied
// to it by MarkPickedUp or MarkDelivered.
func (e *Engine) Evaluate(ctx context.Context, snap *domain.Snapshot) {
	e.storeSnapshot(snap)
	e.dropMissing(snap)

	var wg sync.WaitGroup
	for i := range snap.Agents {
		agent := &snap.Agents[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.evaluateAgent(ctx, snap, agent)
		}()
	}
	wg.Wait()
}

// Route returns the agent's current route and progress.
func (e *Engine) Route(agentID int64) (*domain.Route, int, bool) {
	t, ok := e.lookup(agentID)
	if !ok {
		return nil, 0, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.route == nil {
		return nil, 0, false
	}
	return t.route, t.progress, true
}

// Close stops every animation task.
func (e *Engine) Close() {
	e.animator.Close()
}

func (e *Engine) evaluateAgent(ctx context.Context, snap *domain.Snapshot, agent *domain.Agent) {
	t := e.track(agent.ID)

	t.mu.Lock()
	if t.evaluating {
		t.mu.Unlock()
		return
	}
	if t.predates(snap) {
		t.mu.Unlock()
		log.Printf("agent_id=%d op=evaluate decision=skip reason=%q seq=%d", agent.ID, "snapshot predates order action", snap.Seq)
		return
	}
	t.evaluating = true
	current, version := t.route, t.version
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.evaluating = false
		t.mu.Unlock()
	}()

	d := selectRoute(snap, agent.ID, bestLocation(agent, e.live), current)

	switch d.kind {
	case decideSkip:
		if d.reason != "" && current == nil {
			log.Printf("agent_id=%d op=evaluate decision=skip reason=%q", agent.ID, d.reason)
		}

	case decideDelete:
		if current != nil {
			e.install(t, agent.ID, &version, nil, false)
			log.Printf("agent_id=%d op=evaluate decision=delete", agent.ID)
		}

	case decideToWarehouse:
		r := e.straightRoute(agent.ID, d.waypoints)
		if e.install(t, agent.ID, &version, r, false) {
			log.Printf("agent_id=%d op=evaluate decision=to_warehouse km=%.2f", agent.ID, r.DistanceKm)
		}

	case decideMultiStop:
		r, err := e.optimizedRoute(ctx, agent.ID, d.waypoints, d.orderIDs)
		if err != nil {
			log.Printf("agent_id=%d op=evaluate decision=multi_stop err=%v", agent.ID, err)
			return
		}
		if r == nil {
			log.Printf("agent_id=%d op=evaluate decision=multi_stop no route available", agent.ID)
			return
		}
		if e.install(t, agent.ID, &version, r, d.preserve) {
			log.Printf("agent_id=%d op=evaluate decision=multi_stop stops=%d km=%.2f", agent.ID, len(d.waypoints), r.DistanceKm)
		}
	}
}

// straightRoute draws the warehouse leg as a WarehouseSteps-segment line and
// densifies that line like any route geometry.
func (e *Engine) straightRoute(agentID int64, waypoints []domain.Coordinates) *domain.Route {
	km := geo.Between(waypoints[0], waypoints[1])
	line := geo.Densify(waypoints, e.opts.WarehouseSteps)
	return &domain.Route{
		AgentID:     agentID,
		Phase:       domain.PhaseToWarehouse,
		Waypoints:   line,
		Path:        geo.Densify(line, e.opts.StepsPerSegment),
		DistanceKm:  km,
		DurationMin: math.Max(1, km/warehouseSpeedKmPerMin),
	}
}

// optimizedRoute returns (nil, nil) when the route service has no usable geometry.
func (e *Engine) optimizedRoute(
	ctx context.Context,
	agentID int64,
	waypoints []domain.Coordinates,
	orderIDs []int64,
) (*domain.Route, error) {
	if e.optimizer == nil {
		return nil, nil
	}

	res, err := e.optimizer.FetchOptimizedRoute(ctx, waypoints)
	if err != nil {
		return nil, fmt.Errorf("fetch optimized route: %w", err)
	}
	if res == nil {
		return nil, nil
	}

	path := geo.Densify(res.Coordinates, e.opts.StepsPerSegment)
	if len(path) == 0 {
		return nil, nil
	}

	return &domain.Route{
		AgentID:     agentID,
		Phase:       domain.PhaseMultiStop,
		Waypoints:   res.Coordinates,
		Path:        path,
		DistanceKm:  res.DistanceKm,
		DurationMin: res.DurationMin,
		OrderIDs:    append([]int64(nil), orderIDs...),
	}, nil
}

// install replaces the agent's route and restarts its animation. When expected
// is non-nil the replacement only happens if no other replacement happened since
// that version was read. A nil route removes the agent's route.
func (e *Engine) install(t *agentTrack, agentID int64, expected *uint64, r *domain.Route, preserve bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if expected != nil && t.version != *expected {
		log.Printf("agent_id=%d op=install discarded stale result", agentID)
		return false
	}

	t.version++
	if r == nil {
		t.route = nil
		t.progress = 0
		e.animator.Stop(agentID)
		return true
	}

	progress := 0
	if preserve && t.route != nil {
		progress = clamp(t.progress, 0, r.LastIndex())
	}
	t.route = r
	t.progress = progress
	e.animator.Restart(agentID, e.stepper(t, t.version))

	return true
}

// stepper advances progress by one per call while the route is current.
func (e *Engine) stepper(t *agentTrack, version uint64) func() bool {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.version != version || t.route == nil {
			return false
		}
		last := t.route.LastIndex()
		if t.progress >= last {
			return false
		}
		t.progress++
		return t.progress < last
	}
}

func (e *Engine) track(agentID int64) *agentTrack {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tracks[agentID]
	if !ok {
		t = &agentTrack{}
		e.tracks[agentID] = t
	}
	return t
}

func (e *Engine) lookup(agentID int64) (*agentTrack, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tracks[agentID]
	return t, ok
}

// dropMissing removes tracks of agents that no longer appear in snap.
func (e *Engine) dropMissing(snap *domain.Snapshot) {
	e.mu.Lock()
	var gone []int64
	for id := range e.tracks {
		if _, ok := snap.Agent(id); !ok {
			gone = append(gone, id)
		}
	}
	dropped := make([]*agentTrack, 0, len(gone))
	for _, id := range gone {
		dropped = append(dropped, e.tracks[id])
		delete(e.tracks, id)
	}
	e.mu.Unlock()

	for i, t := range dropped {
		t.mu.Lock()
		t.route = nil
		t.progress = 0
		t.version++
		e.animator.Stop(gone[i])
		t.mu.Unlock()
		log.Printf("agent_id=%d op=evaluate decision=drop reason=%q", gone[i], "agent no longer listed")
	}
}

func (e *Engine) agentIDs() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]int64, 0, len(e.tracks))
	for id := range e.tracks {
		ids = append(ids, id)
	}
	return ids
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
