package database

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/appspec/server/internal/config"
	"codeberg.org/appspec/server/internal/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionProjects  = "projects"
	CollectionAnalytics = "analytics"
	CollectionPageViews = "pageviews"

	connectTimeout         = 10 * time.Second
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 30 * time.Second
)

// owns the process-wide mongo client; created once at startup and injected everywhere
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// connects to MongoDB, retrying with a fixed delay until the server answers a ping
func Connect(ctx context.Context, cfg config.Mongo) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(5 * time.Minute).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout).
		SetAppName("appspec-server")

	var client *mongo.Client

	err := retry(ctx, cfg.ConnectRetries, cfg.RetryDelay, func(attempt int) error {
		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			logger.Warn("mongo connect failed", "attempt", attempt, "error", err)
			return err
		}

		pingCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
		defer cancel()

		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background()) //nolint:errcheck // best-effort cleanup before retry
			logger.Warn("mongo ping failed", "attempt", attempt, "error", err)
			return err
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", cfg.ConnectRetries, err)
	}

	logger.Info("connected to mongodb", "database", cfg.Database, "max_pool_size", cfg.MaxPoolSize)

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

// checks that the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// disconnects the pool
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// runs fn up to attempts times, sleeping delay between failures
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
