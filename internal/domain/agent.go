package domain

// VehicleClass selects the map icon and nothing else in tracking.
type VehicleClass string

const (
	TwoWheeler  VehicleClass = "TWO_WHEELER"
	FourWheeler VehicleClass = "FOUR_WHEELER"
)

type AgentStatus string

const (
	AgentAvailable  AgentStatus = "AVAILABLE"
	AgentAssigned   AgentStatus = "ASSIGNED"
	AgentOnDelivery AgentStatus = "ON_DELIVERY"
	AgentPickedUp   AgentStatus = "PICKED_UP"
	AgentOffline    AgentStatus = "OFFLINE"
)

// Agent is a delivery driver as known to the fleet store.
// Location is the static fallback position; nil when unknown.
type Agent struct {
	ID       int64
	Name     string
	Phone    string
	Vehicle  VehicleClass
	Status   AgentStatus
	Location *Coordinates
}
