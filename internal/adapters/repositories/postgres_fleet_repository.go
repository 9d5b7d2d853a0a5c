package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Postgres-backed implementation of the FleetStore port.
type PostgresFleetRepository struct{ DB *sql.DB }

func NewPostgresFleetRepository(db *sql.DB) *PostgresFleetRepository {
	return &PostgresFleetRepository{DB: db}
}

// Read all four fleet tables concurrently.
func (p *PostgresFleetRepository) Snapshot(ctx context.Context) (_ *domain.Snapshot, err error) {
	defer obs.Time(ctx, "fleet.postgres.Snapshot")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres fleet repository: DB is nil")
	}

	var (
		agents     []domain.Agent
		orders     []domain.Order
		customers  []domain.Customer
		warehouses []domain.Warehouse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		agents, err = p.listAgents(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = p.listOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = p.listCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		warehouses, err = p.listWarehouses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return domain.NewSnapshot(agents, orders, customers, warehouses), nil
}

func (p *PostgresFleetRepository) listAgents(ctx context.Context) ([]domain.Agent, error) {
	query := `
	SELECT id, name, phone, vehicle_capacity, status, latitude, longitude
	FROM agents
	ORDER BY id;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: query agents table: %w", err)
	}
	defer rows.Close()

	agents := make([]domain.Agent, 0, 32)
	for rows.Next() {
		var a domain.Agent
		var vehicle, status string
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &vehicle, &status, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list agents: scan row: %w", err)
		}
		a.Vehicle = domain.VehicleClass(vehicle)
		a.Status = domain.AgentStatus(status)
		a.Location = nullCoordinates(lat, lon)
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agents: row iteration: %w", err)
	}

	return agents, nil
}

func (p *PostgresFleetRepository) listOrders(ctx context.Context) ([]domain.Order, error) {
	query := `
	SELECT id, customer_id, delivery_agent_id, warehouse_id, status
	FROM orders
	ORDER BY id;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		var o domain.Order
		var agentID, warehouseID sql.NullInt64
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &agentID, &warehouseID, &status); err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		o.AgentID = nullID(agentID)
		o.WarehouseID = nullID(warehouseID)
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

func (p *PostgresFleetRepository) listCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := p.listPlaces(ctx, "customers")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Customer{ID: r.id, Name: r.name, Location: r.location})
	}
	return out, nil
}

func (p *PostgresFleetRepository) listWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := p.listPlaces(ctx, "warehouses")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Warehouse, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Warehouse{ID: r.id, Name: r.name, Location: r.location})
	}
	return out, nil
}

type placeRow struct {
	id       int64
	name     string
	location *domain.Coordinates
}

// table is one of the fixed place table names, never user input.
func (p *PostgresFleetRepository) listPlaces(ctx context.Context, table string) ([]placeRow, error) {
	query := fmt.Sprintf(`
	SELECT id, name, latitude, longitude
	FROM %s
	ORDER BY id;
	`, table)
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: query table: %w", table, err)
	}
	defer rows.Close()

	out := make([]placeRow, 0, 64)
	for rows.Next() {
		var r placeRow
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&r.id, &r.name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list %s: scan row: %w", table, err)
		}
		r.location = nullCoordinates(lat, lon)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: row iteration: %w", table, err)
	}

	return out, nil
}

func (p *PostgresFleetRepository) MarkPickedUp(ctx context.Context, orderID int64) error {
	return p.setOrderStatus(ctx, orderID, domain.OrderPickedUp)
}

func (p *PostgresFleetRepository) MarkDelivered(ctx context.Context, orderID int64) error {
	return p.setOrderStatus(ctx, orderID, domain.OrderDelivered)
}

func (p *PostgresFleetRepository) setOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (err error) {
	defer obs.Time(ctx, "fleet.postgres.setOrderStatus")(&err)

	if p.DB == nil {
		return errors.New("postgres fleet repository: DB is nil")
	}

	res, err := p.DB.ExecContext(ctx, `
	UPDATE orders
	SET status = $1, updated_at = now()
	WHERE id = $2;
	`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("set order status id=%d status=%s: %w", orderID, status, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set order status id=%d: rows affected: %w", orderID, err)
	}
	if n == 0 {
		return fmt.Errorf("set order status id=%d: %w", orderID, ports.ErrOrderNotFound)
	}

	return nil
}

func nullCoordinates(lat, lon sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return domain.ResolveCoordinates(&lat.Float64, &lon.Float64)
}

func nullID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
