package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Store backends understood by DocStoreConfig.Backend
const (
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3002"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Database settings
	Database DatabaseConfig

	// Document store selection
	DocStore DocStoreConfig

	// S3-compatible object storage (used by the s3 document store backend)
	Storage StorageConfig

	// Relation hydration
	Relations RelationsConfig

	// OpenTelemetry tracing
	Otel OtelConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// BodyLimit caps request bodies, hydrate payloads included (echo size syntax, e.g. "2M")
	BodyLimit string `env:"SERVER_BODY_LIMIT" envDefault:"2M"`
	// CORSOrigins lists allowed browser origins
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"emergent"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"emergent"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
	SlowQuery    time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"1s"`
	AutoMigrate  bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// DocStoreConfig selects and tunes the document store holding domain records
type DocStoreConfig struct {
	// Backend: "postgres" (default), "s3" or "memory"
	Backend string `env:"DOCSTORE_BACKEND" envDefault:"postgres"`
	// S3Prefix is prepended to every object key in the s3 backend
	S3Prefix string `env:"DOCSTORE_S3_PREFIX" envDefault:"records/"`
	// S3Concurrency bounds parallel GetObject calls within one batch read
	S3Concurrency int `env:"DOCSTORE_S3_CONCURRENCY" envDefault:"8"`
}

// StorageConfig holds S3/MinIO settings
type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT" envDefault:""`
	AccessKey string `env:"STORAGE_ACCESS_KEY" envDefault:""`
	SecretKey string `env:"STORAGE_SECRET_KEY" envDefault:""`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"STORAGE_BUCKET" envDefault:"records"`
}

// IsConfigured returns true if storage credentials and endpoint are set
func (s *StorageConfig) IsConfigured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// RelationsConfig tunes relation hydration and link building
type RelationsConfig struct {
	// APIPrefix is the path prefix of every computed api link
	APIPrefix string `env:"RELATIONS_API_PREFIX" envDefault:"/api"`
	// UIBaseURL is prepended to every computed ui link (empty keeps links relative)
	UIBaseURL string `env:"RELATIONS_UI_BASE_URL" envDefault:""`
	// MaxConcurrentFetches bounds per-request collection fetches (0 = one goroutine per collection)
	MaxConcurrentFetches int `env:"RELATIONS_MAX_CONCURRENT_FETCHES" envDefault:"0"`
	// FailOpen returns data with null relations when relation loading fails
	FailOpen bool `env:"RELATIONS_FAIL_OPEN" envDefault:"false"`
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.DocStore.validate(); err != nil {
		return nil, err
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("docstore_backend", cfg.DocStore.Backend),
		slog.String("db_host", cfg.Database.Host),
	)

	return cfg, nil
}

func (d *DocStoreConfig) validate() error {
	switch d.Backend {
	case BackendPostgres, BackendS3, BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown DOCSTORE_BACKEND %q", d.Backend)
	}
}
