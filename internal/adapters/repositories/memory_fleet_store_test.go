package repositories

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"os"
	"path/filepath"
	"testing"
)

const seedJSON = `{
	"agents": [
		{"id": 1, "name": "Ravi", "vehicleCapacity": "TWO_WHEELER", "status": "ASSIGNED", "latitude": 12.99, "longitude": 77.57},
		{"id": 2, "name": "Asha", "vehicleCapacity": "FOUR_WHEELER", "latitude": 0, "longitude": 0}
	],
	"customers": [{"id": 100, "name": "B", "latitude": 12.93, "longitude": 77.61}],
	"warehouses": [{"id": 10, "name": "Central", "latitude": 12.9716, "longitude": 77.5946}],
	"orders": [{"id": 1, "customerId": 100, "deliveryAgentId": 1, "warehouseId": 10, "status": "ASSIGNED"}]
}`

func writeSeed(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fleet.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed(writeSeed(t, seedJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := seed.Snapshot()
	a, ok := snap.Agent(1)
	if !ok || a.Location == nil || a.Vehicle != domain.TwoWheeler {
		t.Fatalf("agent 1 not decoded: %+v", a)
	}
	if b, _ := snap.Agent(2); b.Location != nil {
		t.Fatalf("zero coordinates must resolve to no location, got %+v", b.Location)
	}

	o, ok := snap.Order(1)
	if !ok || !o.AssignedTo(1) || o.WarehouseID == nil || *o.WarehouseID != 10 {
		t.Fatalf("order 1 not decoded: %+v", o)
	}
}

func TestLoadSeedRejectsInvalidRows(t *testing.T) {
	bodies := []string{
		`{"agents": [{"id": 0, "name": "x"}]}`,
		`{"agents": [{"id": 1, "name": " "}]}`,
		`{"orders": [{"id": 1, "status": "ASSIGNED"}]}`,
		`{"orders": [{"id": 1, "customerId": 2}]}`,
		`not json`,
	}
	for _, body := range bodies {
		if _, err := LoadSeed(writeSeed(t, body)); err == nil {
			t.Errorf("seed %s: expected error", body)
		}
	}
}

func TestMemoryFleetStoreStatusTransitions(t *testing.T) {
	store, err := NewMemoryFleetStoreFromSeed(writeSeed(t, seedJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	before, _ := store.Snapshot(ctx)

	if err := store.MarkPickedUp(ctx, 1); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	snap, _ := store.Snapshot(ctx)
	if o, _ := snap.Order(1); o.Status != domain.OrderPickedUp {
		t.Fatalf("status = %s, want PICKED_UP", o.Status)
	}
	if o, _ := before.Order(1); o.Status != domain.OrderAssigned {
		t.Fatalf("earlier snapshot changed: %s", o.Status)
	}

	if err := store.MarkDelivered(ctx, 1); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	snap, _ = store.Snapshot(ctx)
	if len(snap.ActiveOrders(1)) != 0 {
		t.Fatalf("delivered order still active")
	}

	if err := store.MarkDelivered(ctx, 99); !errors.Is(err, ports.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
