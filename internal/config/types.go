package config

import "time"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"debug"`

	Mongo Mongo

	// optional; page views are buffered through Redis when set
	RedisURL              string        `envconfig:"REDIS_URL"`
	PageViewFlushInterval time.Duration `envconfig:"PAGEVIEW_FLUSH_INTERVAL" default:"5s"`

	CORSAllowedOrigins    []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	BackgroundTaskTimeout time.Duration `envconfig:"BACKGROUND_TASK_TIMEOUT" default:"10s"`
}

type Mongo struct {
	URI            string        `envconfig:"MONGODB_URI" required:"true"`
	Database       string        `envconfig:"MONGODB_DATABASE" default:"appspec"`
	MaxPoolSize    uint64        `envconfig:"MONGODB_MAX_POOL_SIZE" default:"50"`
	ConnectRetries int           `envconfig:"MONGODB_CONNECT_RETRIES" default:"5"`
	RetryDelay     time.Duration `envconfig:"MONGODB_RETRY_DELAY" default:"3s"`

	// concurrent reads per dashboard/summary request; 0 means unbounded
	AnalyticsReadConcurrency int `envconfig:"MONGODB_ANALYTICS_READ_CONCURRENCY" default:"0"`
}

// reports whether the process runs with production error sanitization and JSON logs
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

type Flags struct {
	Path      string
	Clear     bool
	Templates bool
}
