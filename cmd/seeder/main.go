package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"codeberg.org/appspec/server/appspec/analytics"
	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/internal/background"
	"codeberg.org/appspec/server/internal/config"
	"codeberg.org/appspec/server/internal/database"
	"codeberg.org/appspec/server/internal/logger"
)

func main() {
	flags, err := config.ParseSeedFlags(os.Args[1:])
	if err != nil {
		fmt.Println("Usage: seeder [--path <file-or-dir>] [--templates] [--clear]")
		os.Exit(1)
	}

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// connect to database
	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	defer db.Close(ctx) //nolint:errcheck // best-effort cleanup on exit

	if err := database.EnsureIndexes(ctx, db.Database()); err != nil {
		logger.Fatal("failed to ensure indexes", "error", err)
	}

	runner := background.NewRunner(cfg.BackgroundTaskTimeout, nil)
	aggregator := analytics.NewAggregator(db.Database())
	repo := projects.NewRepository(db.Database(),
		projects.WithBackground(runner),
		projects.WithCreationHook(aggregator.IngestCreationEvent),
	)

	seeded, err := Seed(ctx, repo, flags)
	if err != nil {
		logger.Fatal("failed to seed projects", "error", err)
	}

	// snapshot ingestion runs in the background; let it finish before disconnecting
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := runner.Wait(waitCtx); err != nil {
		logger.Warn("analytics ingestion did not finish", "error", err)
	}

	logger.Info("successfully seeded projects", "count", seeded)
}
