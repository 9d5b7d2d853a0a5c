package main

import (
	"context"
	"database/sql"
	"errors"
	"fleet-route-tracker/internal/adapters/cache"
	"fleet-route-tracker/internal/adapters/fleetapi"
	"fleet-route-tracker/internal/adapters/livepush"
	"fleet-route-tracker/internal/adapters/repositories"
	"fleet-route-tracker/internal/adapters/routing"
	"fleet-route-tracker/internal/adapters/wsfeed"
	"fleet-route-tracker/internal/api"
	"fleet-route-tracker/internal/api/dto"
	"fleet-route-tracker/internal/config"
	"fleet-route-tracker/internal/platform/db"
	"fleet-route-tracker/internal/ports"
	"fleet-route-tracker/internal/tracking"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires the fleet source, route provider and live feeds into the tracking engine and serves HTTP.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pg *sql.DB
	if cfg.FleetSource == "postgres" || cfg.RouteCache == "postgres" {
		pg, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
	}

	store, err := newFleetStore(cfg, pg)
	if err != nil {
		return err
	}

	optimizer, err := newOptimizer(ctx, cfg, pg)
	if err != nil {
		return err
	}

	engine := tracking.NewEngine(optimizer, store, tracking.NewLiveLocations(), tracking.Options{
		StepsPerSegment: cfg.StepsPerSegment,
		WarehouseSteps:  cfg.WarehouseSteps,
		PickupRadiusKm:  cfg.PickupRadiusKm,
		TickInterval:    cfg.TickInterval,
	})
	defer engine.Close()

	refresher := tracking.NewRefresher(store, engine, cfg.RefreshInterval)

	hub := wsfeed.NewHub()
	feed := wsfeed.NewFeed(hub, cfg.FeedInterval, "tracking", func() any {
		return dto.FromViews(engine.Views())
	})

	router := api.NewRouter(api.Deps{
		Tracking:  engine,
		Actions:   engine,
		Live:      engine.Live(),
		Optimizer: optimizer,
		Refresh:   refresher.Trigger,
		Feed:      hub.ServeWS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return ignoreCanceled(refresher.Run(gctx)) })
	g.Go(func() error { hub.Run(gctx); return nil })
	g.Go(func() error { feed.Run(gctx); return nil })

	if cfg.RabbitMQURL != "" {
		consumer := livepush.NewConsumer(cfg.LocationExchange, engine.Live())
		g.Go(func() error { return ignoreCanceled(consumer.Run(gctx, cfg.RabbitMQURL, 5*time.Second)) })
	} else {
		log.Println("RABBITMQ_URL not set; live positions come from POST /api/drivers/locations only")
	}

	g.Go(func() error {
		log.Printf("Server listening addr=:%s fleet_source=%s route_provider=%s route_cache=%s",
			cfg.Port, cfg.FleetSource, cfg.RouteProvider, cfg.RouteCache)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newFleetStore(cfg *config.Config, pg *sql.DB) (ports.FleetStore, error) {
	switch cfg.FleetSource {
	case "postgres":
		return repositories.NewPostgresFleetRepository(pg), nil
	case "rest":
		return fleetapi.NewClient(cfg.FleetAPIURL)
	case "memory":
		return repositories.NewMemoryFleetStoreFromSeed(cfg.SeedPath)
	default:
		return nil, fmt.Errorf("unknown fleet source %q", cfg.FleetSource)
	}
}

func newOptimizer(ctx context.Context, cfg *config.Config, pg *sql.DB) (ports.RouteOptimizer, error) {
	var (
		optimizer ports.RouteOptimizer
		err       error
	)

	switch cfg.RouteProvider {
	case "ors":
		optimizer, err = routing.NewORSClient(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.ORSProfile)
	case "proxy":
		optimizer, err = routing.NewProxyClient(cfg.RouteProxyURL)
	case "mock":
		optimizer = routing.NewMockOptimizer()
	default:
		err = fmt.Errorf("unknown route provider %q", cfg.RouteProvider)
	}
	if err != nil {
		return nil, err
	}

	switch cfg.RouteCache {
	case "postgres":
		return routing.NewCachedOptimizer(optimizer, cache.NewSQLRouteCache(pg, cfg.RouteCacheTTL)), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			// Lookups fail open, so a missing Redis only costs extra provider calls.
			log.Printf("redis ping failed addr=%s err=%v", cfg.RedisAddr, err)
		}
		return routing.NewCachedOptimizer(optimizer, cache.NewRedisRouteCache(client, cfg.RouteCacheTTL)), nil
	default:
		return optimizer, nil
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
