package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fleet-route-tracker/internal/adapters/fleetapi"
	"fleet-route-tracker/internal/adapters/livepush"
	"fleet-route-tracker/internal/adapters/repositories"
	"fleet-route-tracker/internal/config"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/platform/db"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// locsim publishes jittered positions for every agent in the fleet so the
// tracker can be exercised without real devices.

const jitterDeg = 0.0008

// Agents without a stored location start here.
var fallbackStart = domain.Coordinates{Lon: 78.9629, Lat: 20.5937}

type position struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	snap, err := source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("locsim: read fleet: %w", err)
	}
	positions := startPositions(snap)
	if len(positions) == 0 {
		return errors.New("locsim: fleet has no agents")
	}

	conn, err := livepush.Dial(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	pub, err := livepush.NewPublisher(conn, cfg.LocationExchange)
	if err != nil {
		return err
	}
	defer pub.Close()

	log.Printf("locsim publishing agents=%d exchange=%s interval=%s", len(positions), cfg.LocationExchange, cfg.SimInterval)

	ticker := time.NewTicker(cfg.SimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			jitter(positions)
			body, err := json.Marshal(positions)
			if err != nil {
				return fmt.Errorf("locsim: encode positions: %w", err)
			}
			if err := pub.Publish(ctx, body); err != nil {
				log.Printf("locsim publish failed: %v", err)
			}
		}
	}
}

func openSource(ctx context.Context, cfg *config.Config) (ports.FleetSource, func(), error) {
	switch cfg.FleetSource {
	case "postgres":
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewPostgresFleetRepository(conn), func() { closeDB(conn) }, nil
	case "rest":
		c, err := fleetapi.NewClient(cfg.FleetAPIURL)
		return c, func() {}, err
	default:
		s, err := repositories.NewMemoryFleetStoreFromSeed(cfg.SeedPath)
		return s, func() {}, err
	}
}

func closeDB(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		log.Printf("locsim: close database: %v", err)
	}
}

func startPositions(snap *domain.Snapshot) []position {
	var out []position
	for _, a := range snap.Agents {
		start := fallbackStart
		if a.Location != nil && a.Location.Valid() {
			start = *a.Location
		}
		out = append(out, position{ID: a.ID, Latitude: start.Lat, Longitude: start.Lon})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func jitter(positions []position) {
	for i := range positions {
		positions[i].Latitude += (rand.Float64()*2 - 1) * jitterDeg
		positions[i].Longitude += (rand.Float64()*2 - 1) * jitterDeg
	}
}
