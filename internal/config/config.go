package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the tracker binaries.
// Values come from defaults, then an optional file named by CONFIG_FILE, then the environment.
type Config struct {
	Port string `mapstructure:"PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SeedPath    string `mapstructure:"SEED_PATH"`

	FleetSource string `mapstructure:"FLEET_SOURCE"`
	FleetAPIURL string `mapstructure:"FLEET_API_URL"`

	RouteProvider string `mapstructure:"ROUTE_PROVIDER"`
	ORSAPIKey     string `mapstructure:"ORS_API_KEY"`
	ORSBaseURL    string `mapstructure:"ORS_BASE_URL"`
	ORSProfile    string `mapstructure:"ORS_PROFILE"`
	RouteProxyURL string `mapstructure:"ROUTE_PROXY_URL"`

	RouteCache    string        `mapstructure:"ROUTE_CACHE"`
	RouteCacheTTL time.Duration `mapstructure:"ROUTE_CACHE_TTL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`

	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	LocationExchange string `mapstructure:"LOCATION_EXCHANGE"`

	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
	TickInterval    time.Duration `mapstructure:"TICK_INTERVAL"`
	StepsPerSegment int           `mapstructure:"STEPS_PER_SEGMENT"`
	WarehouseSteps  int           `mapstructure:"WAREHOUSE_STEPS"`
	PickupRadiusKm  float64       `mapstructure:"PICKUP_RADIUS_KM"`
	FeedInterval    time.Duration `mapstructure:"FEED_INTERVAL"`
	SimInterval     time.Duration `mapstructure:"SIM_INTERVAL"`
}

var defaults = map[string]any{
	"PORT":              "8080",
	"DATABASE_URL":      "",
	"SEED_PATH":         "data/seeds/fleet.json",
	"FLEET_SOURCE":      "postgres",
	"FLEET_API_URL":     "http://localhost:8081",
	"ROUTE_PROVIDER":    "ors",
	"ORS_API_KEY":       "",
	"ORS_BASE_URL":      "https://api.openrouteservice.org",
	"ORS_PROFILE":       "driving-car",
	"ROUTE_PROXY_URL":   "http://localhost:8081",
	"ROUTE_CACHE":       "none",
	"ROUTE_CACHE_TTL":   "30m",
	"REDIS_ADDR":        "localhost:6379",
	"RABBITMQ_URL":      "",
	"LOCATION_EXCHANGE": "location_fanout",
	"REFRESH_INTERVAL":  "5s",
	"TICK_INTERVAL":     "120ms",
	"STEPS_PER_SEGMENT": 20,
	"WAREHOUSE_STEPS":   80,
	"PICKUP_RADIUS_KM":  3.0,
	"FEED_INTERVAL":     "500ms",
	"SIM_INTERVAL":      "2s",
}

// Load reads .env (if present), CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.FleetSource {
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when FLEET_SOURCE=postgres")
		}
	case "rest":
		if strings.TrimSpace(c.FleetAPIURL) == "" {
			return errors.New("FLEET_API_URL is required when FLEET_SOURCE=rest")
		}
	case "memory":
		if strings.TrimSpace(c.SeedPath) == "" {
			return errors.New("SEED_PATH is required when FLEET_SOURCE=memory")
		}
	default:
		return fmt.Errorf("FLEET_SOURCE must be postgres, rest or memory, got %q", c.FleetSource)
	}

	switch c.RouteProvider {
	case "ors":
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return errors.New("ORS_API_KEY is required when ROUTE_PROVIDER=ors")
		}
	case "proxy":
		if strings.TrimSpace(c.RouteProxyURL) == "" {
			return errors.New("ROUTE_PROXY_URL is required when ROUTE_PROVIDER=proxy")
		}
	case "mock":
	default:
		return fmt.Errorf("ROUTE_PROVIDER must be ors, proxy or mock, got %q", c.RouteProvider)
	}

	switch c.RouteCache {
	case "none", "redis":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when ROUTE_CACHE=postgres")
		}
	default:
		return fmt.Errorf("ROUTE_CACHE must be none, postgres or redis, got %q", c.RouteCache)
	}

	if c.TickInterval <= 0 || c.RefreshInterval <= 0 || c.FeedInterval <= 0 {
		return errors.New("TICK_INTERVAL, REFRESH_INTERVAL and FEED_INTERVAL must be positive")
	}
	if c.StepsPerSegment < 1 || c.WarehouseSteps < 1 {
		return errors.New("STEPS_PER_SEGMENT and WAREHOUSE_STEPS must be at least 1")
	}
	if c.PickupRadiusKm <= 0 {
		return errors.New("PICKUP_RADIUS_KM must be positive")
	}

	return nil
}
