package fleetapi

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newFleetServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var mu sync.Mutex
	var puts []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/agents", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id": 1, "name": "Ravi", "vehicleCapacity": "FOUR_WHEELER", "latitude": 12.99, "longitude": 77.57}]`)
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id": 5, "customerId": 100, "deliveryAgentId": 1, "warehouseId": 10, "status": "PICKED_UP"}]`)
	})
	mux.HandleFunc("/api/customers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id": 100, "name": "B", "latitude": 12.93, "longitude": 77.61}]`)
	})
	mux.HandleFunc("/api/warehouses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id": 10, "name": "Central", "latitude": null, "longitude": null}]`)
	})
	mux.HandleFunc("/api/orders/5/pickup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		mu.Lock()
		puts = append(puts, r.URL.Path)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"id": 5, "status": "PICKED_UP"}`)
	})
	mux.HandleFunc("/api/orders/5/delivered", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		puts = append(puts, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &puts
}

func TestClientSnapshot(t *testing.T) {
	srv, _ := newFleetServer(t)
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := snap.Agent(1)
	if !ok || a.Vehicle != domain.FourWheeler || a.Location == nil {
		t.Fatalf("agent not decoded: %+v", a)
	}
	active := snap.ActiveOrders(1)
	if len(active) != 1 || active[0].Status != domain.OrderPickedUp {
		t.Fatalf("orders not decoded: %+v", active)
	}
	if w, ok := snap.Warehouse(10); !ok || w.Location != nil {
		t.Fatalf("null coordinates must decode to no location: %+v", w)
	}
}

func TestClientOrderActions(t *testing.T) {
	srv, puts := newFleetServer(t)
	c, _ := NewClient(srv.URL)
	ctx := context.Background()

	if err := c.MarkPickedUp(ctx, 5); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if err := c.MarkDelivered(ctx, 5); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(*puts) != 2 || (*puts)[0] != "/api/orders/5/pickup" || (*puts)[1] != "/api/orders/5/delivered" {
		t.Fatalf("unexpected calls: %v", *puts)
	}

	if err := c.MarkPickedUp(ctx, 6); !errors.Is(err, ports.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestClientSnapshotFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	c.client.Backoff = time.Millisecond
	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClientRetriesTransientFailures(t *testing.T) {
	fleet, _ := newFleetServer(t)

	var failures int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders" && atomic.AddInt32(&failures, 1) <= 2 {
			http.Error(w, "restarting", http.StatusServiceUnavailable)
			return
		}
		resp, err := http.Get(fleet.URL + r.URL.Path)
		if err != nil {
			t.Errorf("forward: %v", err)
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(w, resp.Body)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	c.client.Backoff = time.Millisecond

	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := snap.Order(5); !ok {
		t.Fatalf("orders missing after retry")
	}
	if got := atomic.LoadInt32(&failures); got != 3 {
		t.Fatalf("orders requests = %d, want 3", got)
	}
}
