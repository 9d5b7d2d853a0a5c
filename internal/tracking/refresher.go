package tracking

import (
	"context"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"log"
	"time"
)

// Evaluator consumes fleet snapshots. Stamp yields the sequence number a
// snapshot is tagged with before it is read.
type Evaluator interface {
	Stamp() uint64
	Evaluate(ctx context.Context, snap *domain.Snapshot)
}

// Refresher periodically reads the fleet and hands the snapshot to an Evaluator.
type Refresher struct {
	source    ports.FleetSource
	evaluator Evaluator
	interval  time.Duration
	trigger   chan struct{}
}

func NewRefresher(source ports.FleetSource, evaluator Evaluator, interval time.Duration) *Refresher {
	return &Refresher{
		source:    source,
		evaluator: evaluator,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger requests an immediate refresh. Requests made while one is pending coalesce.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// RefreshOnce reads one snapshot and evaluates it. The snapshot is stamped
// with a sequence number taken before the read, so order actions committed
// while the read was in flight are not undone by it.
func (r *Refresher) RefreshOnce(ctx context.Context) (err error) {
	defer obs.Time(ctx, "tracking.Refresh")(&err)

	seq := r.evaluator.Stamp()
	snap, err := r.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh: read fleet snapshot: %w", err)
	}

	r.evaluator.Evaluate(ctx, snap.Stamped(seq))
	return nil
}

// Run refreshes immediately, then on every interval or trigger, until ctx ends.
// A failed refresh is logged and the previous routes stay in place.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.RefreshOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("refresh failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-r.trigger:
		}
	}
}
