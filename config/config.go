package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port            string        `env:"PORT" envDefault:"5000"`
		CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}

	Database struct {
		// Driver is sqlite or postgres.
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
		URL    string `env:"DATABASE_URL" envDefault:"landmarket.db"`
	}

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET"`
		TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
		// AutoVerify marks self-registered accounts verified immediately.
		AutoVerify bool `env:"ACCOUNT_AUTO_VERIFY" envDefault:"false"`
	}

	Redis struct {
		// Addr empty disables the stats cache.
		Addr          string        `env:"REDIS_ADDR"`
		Password      string        `env:"REDIS_PASSWORD"`
		DB            int           `env:"REDIS_DB" envDefault:"0"`
		StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`
	}

	Storage struct {
		// Endpoint empty disables uploads.
		Endpoint      string `env:"MINIO_ENDPOINT"`
		AccessKey     string `env:"MINIO_ACCESS_KEY"`
		SecretKey     string `env:"MINIO_SECRET_KEY"`
		UseSSL        bool   `env:"MINIO_USE_SSL" envDefault:"false"`
		Bucket        string `env:"MINIO_BUCKET" envDefault:"landmarket"`
		PublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL"`
		MaxUploadSize int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	}

	// BatchProcessing tunes the moderation audit writer.
	BatchProcessing struct {
		// Maximum number of events to accumulate before writing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Maximum time to wait before writing a non-full batch (in seconds)
		MaxBatchWaitTime int `env:"BATCH_WAIT_TIME" envDefault:"30"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	Queue struct {
		BufferSize int `env:"QUEUE_BUFFER_SIZE" envDefault:"256"`
	}

	Scheduler struct {
		Interval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1m"`
		// PendingStaleAfter is how long a listing may wait for approval
		// before it counts as backlog.
		PendingStaleAfter time.Duration `env:"PENDING_STALE_AFTER" envDefault:"72h"`
	}

	Listing struct {
		FeaturedLimit int `env:"FEATURED_LIMIT" envDefault:"6"`
		MaxPageSize   int `env:"MAX_PAGE_SIZE" envDefault:"100"`
	}
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c *Config) ValidateServe() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
