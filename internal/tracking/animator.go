package tracking

import (
	"context"
	"sync"
	"time"
)

// Animator runs one ticking task per agent. Each tick calls the task's step
// function until it returns false or the task is replaced.
type Animator struct {
	interval time.Duration

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewAnimator returns an animator ticking every interval. A non-positive
// interval disables ticking; progress then only changes through explicit calls.
func NewAnimator(interval time.Duration) *Animator {
	return &Animator{
		interval: interval,
		cancels:  make(map[int64]context.CancelFunc),
	}
}

// Restart cancels the agent's current task, if any, and starts a new one.
func (a *Animator) Restart(agentID int64, step func() bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cancel, ok := a.cancels[agentID]; ok {
		cancel()
		delete(a.cancels, agentID)
	}
	if a.interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancels[agentID] = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.finish(ctx, agentID)

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil || !step() {
					return
				}
			}
		}
	}()
}

// Stop cancels the agent's task.
func (a *Animator) Stop(agentID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cancel, ok := a.cancels[agentID]; ok {
		cancel()
		delete(a.cancels, agentID)
	}
}

// Running reports whether the agent currently has a live task.
func (a *Animator) Running(agentID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.cancels[agentID]
	return ok
}

// Close cancels every task and waits for them to exit.
func (a *Animator) Close() {
	a.mu.Lock()
	for id, cancel := range a.cancels {
		cancel()
		delete(a.cancels, id)
	}
	a.mu.Unlock()

	a.wg.Wait()
}

// finish removes the cancel handle of a task that ended on its own,
// unless a newer task already took its place.
func (a *Animator) finish(ctx context.Context, agentID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if cancel, ok := a.cancels[agentID]; ok {
		cancel()
		delete(a.cancels, agentID)
	}
}
