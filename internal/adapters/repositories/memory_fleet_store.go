package repositories

import (
	"context"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"sync"
)

// MemoryFleetStore keeps the fleet in process, loaded from a seed file.
// It backs local runs without a database and the API tests.
type MemoryFleetStore struct {
	mu   sync.RWMutex
	snap *domain.Snapshot
}

func NewMemoryFleetStore(snap *domain.Snapshot) *MemoryFleetStore {
	if snap == nil {
		snap = domain.NewSnapshot(nil, nil, nil, nil)
	}
	return &MemoryFleetStore{snap: snap}
}

func NewMemoryFleetStoreFromSeed(jsonPath string) (*MemoryFleetStore, error) {
	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return nil, err
	}
	return NewMemoryFleetStore(seed.Snapshot()), nil
}

func (m *MemoryFleetStore) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, nil
}

func (m *MemoryFleetStore) MarkPickedUp(ctx context.Context, orderID int64) error {
	return m.setOrderStatus(orderID, domain.OrderPickedUp)
}

func (m *MemoryFleetStore) MarkDelivered(ctx context.Context, orderID int64) error {
	return m.setOrderStatus(orderID, domain.OrderDelivered)
}

func (m *MemoryFleetStore) setOrderStatus(orderID int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snap.Order(orderID); !ok {
		return fmt.Errorf("set order status id=%d: %w", orderID, ports.ErrOrderNotFound)
	}
	m.snap = m.snap.WithOrderStatus(orderID, status)
	return nil
}
