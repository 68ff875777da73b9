// Package config loads service configuration from an optional YAML file and
// environment variables. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the server and dbtool.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// DatabaseURL is the Postgres connection string. When empty the server
	// runs on the in-memory store.
	DatabaseURL string `yaml:"database_url"`

	// DBMigrate applies embedded migrations at server start.
	DBMigrate bool `yaml:"db_migrate"`

	// LogLevel is one of debug, info, warn, error. Defaults to "info".
	LogLevel string `yaml:"log_level"`

	// SeedPath is the reference data file used by dbtool and the memory store.
	SeedPath string `yaml:"seed_path"`

	GraphHopper GraphHopper `yaml:"graphhopper"`

	// RoutingCacheCapacity bounds the matrix response cache. Defaults to 100.
	RoutingCacheCapacity int `yaml:"routing_cache_capacity"`

	Redis Redis `yaml:"redis"`
	AMQP  AMQP  `yaml:"amqp"`
}

type GraphHopper struct {
	// APIKey may be empty; planning then proceeds without routing data.
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	RateBurst int           `yaml:"rate_burst"`
}

type Redis struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

type AMQP struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

func defaults() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		SeedPath: "data/seeds/reference.json",
		GraphHopper: GraphHopper{
			BaseURL:   "https://graphhopper.com/api/1",
			Timeout:   10 * time.Second,
			RateBurst: 1,
		},
		RoutingCacheCapacity: 100,
		Redis:                Redis{Channel: "route-plans"},
		AMQP:                 AMQP{Exchange: "route_plans_topic"},
	}
}

// Load builds a Config from defaults, the YAML file named by CONFIG_FILE (if
// any) and the environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	var errs []string

	cfg.Port = Get("PORT", cfg.Port)
	cfg.DatabaseURL = Get("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = strings.ToLower(Get("LOG_LEVEL", cfg.LogLevel))
	cfg.SeedPath = Get("SEED_PATH", cfg.SeedPath)
	cfg.GraphHopper.APIKey = Get("GRAPHHOPPER_API_KEY", cfg.GraphHopper.APIKey)
	cfg.GraphHopper.BaseURL = Get("GRAPHHOPPER_BASE_URL", cfg.GraphHopper.BaseURL)
	cfg.Redis.URL = Get("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Channel = Get("REDIS_CHANNEL", cfg.Redis.Channel)
	cfg.AMQP.URL = Get("AMQP_URL", cfg.AMQP.URL)
	cfg.AMQP.Exchange = Get("AMQP_EXCHANGE", cfg.AMQP.Exchange)

	if v := os.Getenv("DB_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, "DB_MIGRATE must be a boolean")
		}
		cfg.DBMigrate = b
	}
	if v := os.Getenv("GRAPHHOPPER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, "GRAPHHOPPER_TIMEOUT must be a duration such as 10s")
		}
		cfg.GraphHopper.Timeout = d
	}
	if v := os.Getenv("GRAPHHOPPER_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, "GRAPHHOPPER_RATE_LIMIT must be a number")
		}
		cfg.GraphHopper.RateLimit = f
	}
	if v := os.Getenv("GRAPHHOPPER_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, "GRAPHHOPPER_RATE_BURST must be an integer")
		}
		cfg.GraphHopper.RateBurst = n
	}
	if v := os.Getenv("ROUTING_CACHE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, "ROUTING_CACHE_CAPACITY must be an integer")
		}
		cfg.RoutingCacheCapacity = n
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func (c Config) validate() []string {
	var errs []string
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.GraphHopper.Timeout <= 0 {
		errs = append(errs, "GRAPHHOPPER_TIMEOUT must be positive")
	}
	if c.GraphHopper.RateLimit < 0 {
		errs = append(errs, "GRAPHHOPPER_RATE_LIMIT must not be negative")
	}
	if c.RoutingCacheCapacity <= 0 {
		errs = append(errs, "ROUTING_CACHE_CAPACITY must be positive")
	}
	return errs
}

// Get returns the trimmed value of the environment variable named by key,
// or fallback if it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
