package domain

// Customer is a delivery destination. Location is nil when unknown.
type Customer struct {
	ID       int64
	Name     string
	Location *Coordinates
}

// Warehouse is a pickup origin. Location is nil when unknown.
type Warehouse struct {
	ID       int64
	Name     string
	Location *Coordinates
}
