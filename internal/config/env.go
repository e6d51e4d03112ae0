package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is required")
	}

	if cfg.Mongo.ConnectRetries < 1 {
		cfg.Mongo.ConnectRetries = 1
	}

	if cfg.Mongo.MaxPoolSize == 0 {
		return nil, fmt.Errorf("MONGODB_MAX_POOL_SIZE must be greater than zero")
	}

	return &cfg, nil
}
