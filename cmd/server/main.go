package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consolidation-route-service/internal/adapters/cache"
	"consolidation-route-service/internal/adapters/events"
	"consolidation-route-service/internal/adapters/repositories"
	"consolidation-route-service/internal/adapters/routing"
	"consolidation-route-service/internal/api"
	"consolidation-route-service/internal/config"
	"consolidation-route-service/internal/platform/db"
	"consolidation-route-service/internal/ports"
	"consolidation-route-service/internal/services"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or memory, GraphHopper, Redis/AMQP)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer closeStore.Close()

	if cfg.GraphHopper.APIKey == "" {
		logger.Warn("GRAPHHOPPER_API_KEY not set; plans will be stored without routing data")
	}
	provider := routing.NewGraphHopperClient(routing.Config{
		APIKey:    cfg.GraphHopper.APIKey,
		BaseURL:   cfg.GraphHopper.BaseURL,
		Timeout:   cfg.GraphHopper.Timeout,
		RateLimit: cfg.GraphHopper.RateLimit,
		RateBurst: cfg.GraphHopper.RateBurst,
	}, cache.NewResponseCache(cfg.RoutingCacheCapacity), logger)

	publisher, closePublisher, err := openPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Error("event publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer closePublisher.Close()

	planner := services.NewPlanner(store, provider, publisher, logger)
	router := api.NewRouter(store, planner, logger)

	// Timeouts leave room for two sequential provider calls per plan.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

// openStore returns the Postgres store when DATABASE_URL is set and an
// in-memory store seeded from SEED_PATH otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Store, io.Closer, error) {
	if cfg.DatabaseURL == "" {
		mem := repositories.NewMemory()
		seed, err := repositories.LoadSeed(cfg.SeedPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("seed file not found; starting with empty reference data", "path", cfg.SeedPath)
		case err != nil:
			return nil, nil, err
		default:
			repositories.SeedMemory(mem, seed)
			logger.Info("memory store seeded", "path", cfg.SeedPath)
		}
		return mem, noopCloser, nil
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DBMigrate {
		n, err := db.Migrate(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		logger.Info("migrations applied", "count", n)
	}

	return repositories.NewPostgres(conn), conn, nil
}

// openPublisher prefers AMQP, then Redis, then the log publisher.
func openPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.EventPublisher, io.Closer, error) {
	switch {
	case cfg.AMQP.URL != "":
		p, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("publishing route plan events to amqp", "exchange", cfg.AMQP.Exchange)
		return p, p, nil

	case cfg.Redis.URL != "":
		p, err := events.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel)
		if err != nil {
			return nil, nil, err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, nil, err
		}
		logger.Info("publishing route plan events to redis", "channel", cfg.Redis.Channel)
		return p, p, nil

	default:
		return events.LogPublisher{Logger: logger}, noopCloser, nil
	}
}
