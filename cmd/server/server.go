package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/appspec/server/appspec/analytics"
	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/appspec/suggestions"
	"codeberg.org/appspec/server/internal/background"
	"codeberg.org/appspec/server/internal/buffer"
	"codeberg.org/appspec/server/internal/config"
	"codeberg.org/appspec/server/internal/database"
	"codeberg.org/appspec/server/internal/logger"
	"codeberg.org/appspec/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

const indexTimeout = 30 * time.Second

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if err := database.EnsureIndexes(indexCtx, db.Database()); err != nil {
		db.Close(ctx) //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	runner := background.NewRunner(cfg.BackgroundTaskTimeout, metrics.RecordBackgroundFailure)

	var (
		pageViewBuffer *buffer.PageViewBuffer
		flusher        *buffer.Flusher
		aggOpts        []analytics.Option
	)

	aggOpts = append(aggOpts, analytics.WithReadConcurrency(cfg.Mongo.AnalyticsReadConcurrency))

	// page views go straight to the store unless a Redis buffer is configured
	if cfg.RedisURL != "" {
		pageViewBuffer, err = buffer.NewPageViewBuffer(cfg.RedisURL)
		if err != nil {
			db.Close(ctx) //nolint:errcheck,gosec // best-effort cleanup on init failure
			return nil, fmt.Errorf("failed to initialize redis buffer: %w", err)
		}

		aggOpts = append(aggOpts, analytics.WithRecorder(pageViewBuffer))
	} else {
		logger.Info("REDIS_URL not set, page views are written directly")
	}

	aggregator := analytics.NewAggregator(db.Database(), aggOpts...)

	if pageViewBuffer != nil {
		flusher = buffer.NewFlusher(pageViewBuffer, aggregator, cfg.PageViewFlushInterval)
	}

	projectRepo := projects.NewRepository(db.Database(),
		projects.WithBackground(runner),
		projects.WithCreationHook(aggregator.IngestCreationEvent),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &Server{
		db:          db,
		config:      cfg,
		projectRepo: projectRepo,
		aggregator:  aggregator,
		suggestions: suggestions.NewService(db.Database()),
		runner:      runner,
		router:      router,
		buffer:      pageViewBuffer,
		flusher:     flusher,
	}

	RegisterRoutes(router, server)

	return server, nil
}
