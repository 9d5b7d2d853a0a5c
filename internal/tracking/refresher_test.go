package tracking

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
	"sync/atomic"
	"testing"
	"time"
)

type countingSource struct {
	calls int32
	fail  bool
}

func (s *countingSource) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	return fleet(order(1, 100, 10, domain.OrderAssigned)), nil
}

// gatedSource signals on read and blocks until released before returning snap.
type gatedSource struct {
	snap    *domain.Snapshot
	read    chan struct{}
	release chan struct{}
}

func (s *gatedSource) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	close(s.read)
	<-s.release
	return s.snap, nil
}

type countingEvaluator struct {
	calls   int32
	stamps  atomic.Uint64
	lastSeq atomic.Uint64
}

func (e *countingEvaluator) Stamp() uint64 { return e.stamps.Add(1) }

func (e *countingEvaluator) Evaluate(ctx context.Context, snap *domain.Snapshot) {
	e.lastSeq.Store(snap.Seq)
	atomic.AddInt32(&e.calls, 1)
}

func TestRefreshOnce(t *testing.T) {
	src := &countingSource{}
	ev := &countingEvaluator{}
	r := NewRefresher(src, ev, time.Hour)

	if err := r.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.calls != 1 {
		t.Fatalf("evaluations = %d, want 1", ev.calls)
	}

	src.fail = true
	if err := r.RefreshOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if ev.calls != 1 {
		t.Fatalf("failed refresh must not evaluate")
	}
}

func TestRefreshStampsSnapshots(t *testing.T) {
	src := &countingSource{}
	ev := &countingEvaluator{}
	r := NewRefresher(src, ev, time.Hour)

	for want := uint64(1); want <= 2; want++ {
		if err := r.RefreshOnce(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ev.lastSeq.Load(); got != want {
			t.Fatalf("refresh %d evaluated seq %d", want, got)
		}
	}
}

func TestRefreshedSnapshotPredatingPickupIsIgnored(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	src := &gatedSource{
		snap:    fleet(order(1, 100, 10, domain.OrderAssigned)),
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewRefresher(src, e, time.Hour)

	e.Evaluate(ctx, fleet(order(1, 100, 10, domain.OrderAssigned)))

	// The refresh reads ASSIGNED, then the pickup commits before it is evaluated.
	done := make(chan error, 1)
	go func() { done <- r.RefreshOnce(ctx) }()
	<-src.read
	if err := e.MarkPickedUp(ctx, 1, 1); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, _ := mustRoute(t, e, 1)
	if got.Phase != domain.PhaseMultiStop {
		t.Fatalf("phase = %s, want MULTI_STOP", got.Phase)
	}
	if o, _ := e.Snapshot().Order(1); o.Status != domain.OrderPickedUp {
		t.Fatalf("held snapshot reverted to %s", o.Status)
	}
}

func TestRefresherRunAndTrigger(t *testing.T) {
	src := &countingSource{}
	ev := &countingEvaluator{}
	r := NewRefresher(src, ev, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, func() bool { return atomic.LoadInt32(&ev.calls) >= 1 })
	r.Trigger()
	waitFor(t, func() bool { return atomic.LoadInt32(&ev.calls) >= 2 })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
