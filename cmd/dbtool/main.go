package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"consolidation-route-service/internal/adapters/repositories"
	"consolidation-route-service/internal/config"
	"consolidation-route-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool applies migrations and loads reference data into Postgres.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/reference.json")
	if err := migrateAndSeed(context.Background(), logger, conn, seedPath); err != nil {
		logger.Error("dbtool failed", "error", err)
		conn.Close()
		os.Exit(1)
	}
}

func migrateAndSeed(ctx context.Context, logger *slog.Logger, conn *sql.DB, seedPath string) error {
	logger.Info("applying migrations")
	n, err := db.Migrate(ctx, conn)
	if err != nil {
		return fmt.Errorf("migrate and seed: %w", err)
	}
	logger.Info("schema ready", "applied", n)

	logger.Info("seeding database", "path", seedPath)
	seed, err := repositories.LoadSeed(seedPath)
	if err != nil {
		return fmt.Errorf("migrate and seed: %w", err)
	}
	if err := repositories.SeedPostgres(ctx, conn, seed); err != nil {
		return fmt.Errorf("migrate and seed: %w", err)
	}
	logger.Info("seeding complete",
		"addresses", len(seed.Addresses),
		"warehouses", len(seed.Warehouses),
		"shipments", len(seed.Shipments),
		"drivers", len(seed.Drivers),
	)

	return nil
}
