package domain

// Snapshot is a point-in-time read of the fleet store.
// It is built once per refresh and treated as immutable afterwards.
type Snapshot struct {
	// Seq orders snapshots against locally applied order transitions.
	// Zero means unstamped.
	Seq uint64

	Agents     []Agent
	Orders     []Order
	Customers  []Customer
	Warehouses []Warehouse

	agents     map[int64]*Agent
	orders     map[int64]*Order
	customers  map[int64]*Customer
	warehouses map[int64]*Warehouse
}

// NewSnapshot indexes the given lists by id.
func NewSnapshot(agents []Agent, orders []Order, customers []Customer, warehouses []Warehouse) *Snapshot {
	s := &Snapshot{
		Agents:     agents,
		Orders:     orders,
		Customers:  customers,
		Warehouses: warehouses,
		agents:     make(map[int64]*Agent, len(agents)),
		orders:     make(map[int64]*Order, len(orders)),
		customers:  make(map[int64]*Customer, len(customers)),
		warehouses: make(map[int64]*Warehouse, len(warehouses)),
	}
	for i := range s.Agents {
		s.agents[s.Agents[i].ID] = &s.Agents[i]
	}
	for i := range s.Orders {
		s.orders[s.Orders[i].ID] = &s.Orders[i]
	}
	for i := range s.Customers {
		s.customers[s.Customers[i].ID] = &s.Customers[i]
	}
	for i := range s.Warehouses {
		s.warehouses[s.Warehouses[i].ID] = &s.Warehouses[i]
	}
	return s
}

func (s *Snapshot) Agent(id int64) (*Agent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

func (s *Snapshot) Order(id int64) (*Order, bool) {
	o, ok := s.orders[id]
	return o, ok
}

func (s *Snapshot) Customer(id int64) (*Customer, bool) {
	c, ok := s.customers[id]
	return c, ok
}

func (s *Snapshot) Warehouse(id int64) (*Warehouse, bool) {
	w, ok := s.warehouses[id]
	return w, ok
}

// ActiveOrders returns the agent's non-delivered orders in snapshot order.
func (s *Snapshot) ActiveOrders(agentID int64) []Order {
	var out []Order
	for _, o := range s.Orders {
		if o.AssignedTo(agentID) && o.Active() {
			out = append(out, o)
		}
	}
	return out
}

// WarehouseFor resolves the warehouse of an order, if any.
func (s *Snapshot) WarehouseFor(o Order) (*Warehouse, bool) {
	if o.WarehouseID == nil {
		return nil, false
	}
	return s.Warehouse(*o.WarehouseID)
}

// WithOrderStatus returns a copy of s in which orderID has the given status.
// Used to reflect a confirmed transition before the next full refresh.
func (s *Snapshot) WithOrderStatus(orderID int64, status OrderStatus) *Snapshot {
	orders := make([]Order, len(s.Orders))
	copy(orders, s.Orders)
	for i := range orders {
		if orders[i].ID == orderID {
			orders[i].Status = status
		}
	}
	c := NewSnapshot(s.Agents, orders, s.Customers, s.Warehouses)
	c.Seq = s.Seq
	return c
}

// Stamped returns a shallow copy of s carrying seq. The indexes are shared.
func (s *Snapshot) Stamped(seq uint64) *Snapshot {
	c := *s
	c.Seq = seq
	return &c
}
