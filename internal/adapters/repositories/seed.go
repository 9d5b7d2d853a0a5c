package repositories

import (
	"encoding/json"
	"fleet-route-tracker/internal/domain"
	"fmt"
	"os"
	"strings"
)

// FleetSeed is the JSON layout of data/seeds/fleet.json. Field names follow the
// fleet backend's REST payloads.
type FleetSeed struct {
	Agents     []AgentSeed `json:"agents"`
	Customers  []PlaceSeed `json:"customers"`
	Warehouses []PlaceSeed `json:"warehouses"`
	Orders     []OrderSeed `json:"orders"`
}

type AgentSeed struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	VehicleCapacity string   `json:"vehicleCapacity"`
	Status          string   `json:"status"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

type PlaceSeed struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type OrderSeed struct {
	ID              int64  `json:"id"`
	CustomerID      int64  `json:"customerId"`
	DeliveryAgentID *int64 `json:"deliveryAgentId"`
	WarehouseID     *int64 `json:"warehouseId"`
	Status          string `json:"status"`
}

// LoadSeed reads and validates a fleet seed file.
func LoadSeed(jsonPath string) (*FleetSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}

	var seed FleetSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	return &seed, nil
}

func (s *FleetSeed) validate() error {
	for i, a := range s.Agents {
		if a.ID <= 0 {
			return fmt.Errorf("invalid agent id at index %d: %d", i+1, a.ID)
		}
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("agent %d: name cannot be empty", a.ID)
		}
	}
	for i, c := range s.Customers {
		if c.ID <= 0 {
			return fmt.Errorf("invalid customer id at index %d: %d", i+1, c.ID)
		}
	}
	for i, w := range s.Warehouses {
		if w.ID <= 0 {
			return fmt.Errorf("invalid warehouse id at index %d: %d", i+1, w.ID)
		}
	}
	for i, o := range s.Orders {
		if o.ID <= 0 {
			return fmt.Errorf("invalid order id at index %d: %d", i+1, o.ID)
		}
		if o.CustomerID <= 0 {
			return fmt.Errorf("order %d: customerId is required", o.ID)
		}
		if o.Status == "" {
			return fmt.Errorf("order %d: status is required", o.ID)
		}
	}
	return nil
}

// Snapshot converts the seed into domain values.
func (s *FleetSeed) Snapshot() *domain.Snapshot {
	agents := make([]domain.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		agents = append(agents, domain.Agent{
			ID:       a.ID,
			Name:     a.Name,
			Phone:    a.Phone,
			Vehicle:  domain.VehicleClass(a.VehicleCapacity),
			Status:   domain.AgentStatus(a.Status),
			Location: domain.ResolveCoordinates(a.Latitude, a.Longitude),
		})
	}

	customers := make([]domain.Customer, 0, len(s.Customers))
	for _, c := range s.Customers {
		customers = append(customers, domain.Customer{
			ID:       c.ID,
			Name:     c.Name,
			Location: domain.ResolveCoordinates(c.Latitude, c.Longitude),
		})
	}

	warehouses := make([]domain.Warehouse, 0, len(s.Warehouses))
	for _, w := range s.Warehouses {
		warehouses = append(warehouses, domain.Warehouse{
			ID:       w.ID,
			Name:     w.Name,
			Location: domain.ResolveCoordinates(w.Latitude, w.Longitude),
		})
	}

	orders := make([]domain.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		orders = append(orders, domain.Order{
			ID:          o.ID,
			CustomerID:  o.CustomerID,
			AgentID:     o.DeliveryAgentID,
			WarehouseID: o.WarehouseID,
			Status:      domain.OrderStatus(o.Status),
		})
	}

	return domain.NewSnapshot(agents, orders, customers, warehouses)
}
