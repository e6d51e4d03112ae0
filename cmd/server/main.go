package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/appspec/server/internal/config"
	"codeberg.org/appspec/server/internal/logger"
)

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Configure(cfg.Environment, cfg.LogLevel)
	logger.Info("starting appspec server", "environment", cfg.Environment)

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// start buffer flusher (Redis → MongoDB)
	if srv.flusher != nil {
		srv.flusher.Start()
	}

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// let in-flight analytics ingestion and view increments land
	if err := srv.runner.Wait(ctx); err != nil {
		logger.Warn("background tasks still running at shutdown", "error", err)
	}

	// stop flusher (flushes remaining data before stopping)
	if srv.flusher != nil {
		srv.flusher.Stop()
	}

	// close Redis connection
	if srv.buffer != nil {
		srv.buffer.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	// close database connection
	if err := srv.db.Close(ctx); err != nil {
		logger.ErrorErr(err, "failed to disconnect from mongodb")
	}

	logger.Info("server stopped")
}
