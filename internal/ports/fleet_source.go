package ports

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
)

// ErrOrderNotFound is returned by OrderActions for an order the store does not know.
var ErrOrderNotFound = errors.New("order not found")

// Contract for reading the current fleet state.
type FleetSource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// Contract for recording order lifecycle transitions in the fleet store.
type OrderActions interface {
	MarkPickedUp(ctx context.Context, orderID int64) error
	MarkDelivered(ctx context.Context, orderID int64) error
}

// Fleet stores typically provide both.
type FleetStore interface {
	FleetSource
	OrderActions
}
