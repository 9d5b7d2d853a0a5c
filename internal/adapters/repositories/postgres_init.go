package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema used by the tracker.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createAgentsQuery := `
	CREATE TABLE IF NOT EXISTS agents (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		vehicle_capacity TEXT NOT NULL DEFAULT 'TWO_WHEELER',
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	createWarehousesQuery := `
	CREATE TABLE IF NOT EXISTS warehouses (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		delivery_agent_id BIGINT REFERENCES agents(id),
		warehouse_id BIGINT REFERENCES warehouses(id),
		status TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createOrdersIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_agent_status
	ON orders(delivery_agent_id, status);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		route_key TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		duration_min DOUBLE PRECISION NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	statements := []string{
		createAgentsQuery,
		createCustomersQuery,
		createWarehousesQuery,
		createOrdersQuery,
		createOrdersIndexQuery,
		createRouteCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the fleet tables from a seed file. Existing rows are overwritten.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range seed.Agents {
		_, err := tx.Exec(`
		INSERT INTO agents (id, name, phone, vehicle_capacity, status, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			vehicle_capacity = EXCLUDED.vehicle_capacity,
			status = EXCLUDED.status,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude;
		`, a.ID, a.Name, a.Phone, orDefault(a.VehicleCapacity, "TWO_WHEELER"), orDefault(a.Status, "AVAILABLE"), a.Latitude, a.Longitude)
		if err != nil {
			return fmt.Errorf("seed fleet: insert agent id=%d: %w", a.ID, err)
		}
	}

	places := []struct {
		table string
		rows  []PlaceSeed
	}{
		{"customers", seed.Customers},
		{"warehouses", seed.Warehouses},
	}
	for _, p := range places {
		q := fmt.Sprintf(`
		INSERT INTO %s (id, name, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude;
		`, p.table)
		for _, row := range p.rows {
			if _, err := tx.Exec(q, row.ID, row.Name, row.Latitude, row.Longitude); err != nil {
				return fmt.Errorf("seed fleet: insert %s id=%d: %w", p.table, row.ID, err)
			}
		}
	}

	for _, o := range seed.Orders {
		_, err := tx.Exec(`
		INSERT INTO orders (id, customer_id, delivery_agent_id, warehouse_id, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
			delivery_agent_id = EXCLUDED.delivery_agent_id,
			warehouse_id = EXCLUDED.warehouse_id,
			status = EXCLUDED.status,
			updated_at = now();
		`, o.ID, o.CustomerID, o.DeliveryAgentID, o.WarehouseID, o.Status)
		if err != nil {
			return fmt.Errorf("seed fleet: insert order id=%d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
