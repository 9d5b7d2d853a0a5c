package tracking

import (
	"fleet-route-tracker/internal/domain"
	"sort"
)

// AgentView is the read model consumers render for one tracked agent.
type AgentView struct {
	AgentID       int64
	AgentName     string
	Vehicle       domain.VehicleClass
	Phase         domain.Phase
	Position      domain.Coordinates
	LivePosition  *domain.Coordinates
	Progress      int
	LastIndex     int
	RemainingPath []domain.Coordinates
	RemainingKm   float64
	RemainingMin  float64
	TotalKm       float64
	TotalMin      float64
	Arrived       bool
	OrderIDs      []int64
}

// Remaining scales the route totals by the unvisited share of the dense path.
func Remaining(r *domain.Route, progress int) (km, mins float64, arrived bool) {
	last := r.LastIndex()
	if last <= 0 || progress >= last {
		return 0, 0, true
	}

	ratio := float64(clamp(progress, 0, last)) / float64(last)
	return r.DistanceKm * (1 - ratio), r.DurationMin * (1 - ratio), false
}

func buildView(r *domain.Route, progress int, agent *domain.Agent, live *domain.Coordinates) AgentView {
	progress = clamp(progress, 0, r.LastIndex())
	km, mins, arrived := Remaining(r, progress)

	v := AgentView{
		AgentID:      r.AgentID,
		Phase:        r.Phase,
		LivePosition: live,
		Progress:     progress,
		LastIndex:    r.LastIndex(),
		RemainingKm:  km,
		RemainingMin: mins,
		TotalKm:      r.DistanceKm,
		TotalMin:     r.DurationMin,
		Arrived:      arrived,
		OrderIDs:     r.OrderIDs,
	}
	if len(r.Path) > 0 {
		v.Position = r.Path[progress]
		v.RemainingPath = r.Path[progress:]
	}
	if agent != nil {
		v.AgentName = agent.Name
		v.Vehicle = agent.Vehicle
	}

	return v
}

// View returns the tracking view of one agent, if it has a route.
func (e *Engine) View(agentID int64) (AgentView, bool) {
	r, progress, ok := e.Route(agentID)
	if !ok {
		return AgentView{}, false
	}
	return buildView(r, progress, e.agent(agentID), e.livePosition(agentID)), true
}

// Views returns every agent with a route, ordered by agent id.
func (e *Engine) Views() []AgentView {
	ids := e.agentIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]AgentView, 0, len(ids))
	for _, id := range ids {
		if v, ok := e.View(id); ok {
			out = append(out, v)
		}
	}
	return out
}

func (e *Engine) agent(agentID int64) *domain.Agent {
	snap := e.snap.Load()
	if snap == nil {
		return nil
	}
	a, _ := snap.Agent(agentID)
	return a
}

func (e *Engine) livePosition(agentID int64) *domain.Coordinates {
	if c, ok := e.live.Lookup(agentID); ok {
		return &c
	}
	return nil
}
