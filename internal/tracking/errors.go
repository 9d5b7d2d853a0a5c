package tracking

import "errors"

var (
	ErrNoSnapshot       = errors.New("fleet snapshot not loaded yet")
	ErrUnknownOrder     = errors.New("unknown order")
	ErrUnknownAgent     = errors.New("unknown agent")
	ErrUnknownWarehouse = errors.New("order has no known warehouse")
	ErrOrderNotAssigned = errors.New("order is not assigned to agent")
	ErrNotNearWarehouse = errors.New("agent is not near the warehouse")
)
