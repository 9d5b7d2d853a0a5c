package domain

type OrderStatus string

const (
	OrderPendingAssignment OrderStatus = "PENDING_ASSIGNMENT"
	OrderAssigned          OrderStatus = "ASSIGNED"
	OrderPickedUp          OrderStatus = "PICKED_UP"
	OrderOutForDelivery    OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered         OrderStatus = "DELIVERED"
	OrderCancelled         OrderStatus = "CANCELLED"
)

// Order links a customer, a warehouse, and (once assigned) an agent.
type Order struct {
	ID          int64
	CustomerID  int64
	AgentID     *int64
	WarehouseID *int64
	Status      OrderStatus
}

// Active orders still require work from their agent.
func (o Order) Active() bool { return o.Status != OrderDelivered }

// AssignedTo reports whether the order belongs to the given agent.
func (o Order) AssignedTo(agentID int64) bool {
	return o.AgentID != nil && *o.AgentID == agentID
}
