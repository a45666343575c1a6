package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/masumislambadsha/zavisoft/internal/store"
	pkgconfig "github.com/masumislambadsha/zavisoft/pkg/config"
	"github.com/masumislambadsha/zavisoft/pkg/database"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Storage
	StorageBackend     string `env:"STORAGE_BACKEND" envDefault:"redis"`
	StorageFilePath    string `env:"STORAGE_FILE_PATH" envDefault:"data/storefront.yaml"`
	CorruptStatePolicy string `env:"CORRUPT_STATE_POLICY" envDefault:"reset"`
	SlowQueryMillis    int    `env:"STORAGE_SLOW_QUERY_MS" envDefault:"200"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass     string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Connection pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"1"`

	// Catalog API
	CatalogBaseURL  string        `env:"CATALOG_BASE_URL" envDefault:"https://api.escuelajs.co/api/v1"`
	CatalogTimeout  time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	CatalogRPS      float64       `env:"CATALOG_RPS" envDefault:"10"`
	CatalogBurst    int           `env:"CATALOG_BURST" envDefault:"20"`
	CatalogCacheTTL int           `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`

	// Pricing
	DeliveryFeeCents int64 `env:"DELIVERY_FEE_CENTS" envDefault:"699"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.StorageBackend {
	case BackendRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis backend")
		}
	case BackendPostgres:
		if c.PostgresHost == "" || c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_USER are required for the postgres backend")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case BackendFile:
		if c.StorageFilePath == "" {
			return fmt.Errorf("STORAGE_FILE_PATH is required for the file backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of redis, postgres, file, memory, got %q", c.StorageBackend)
	}

	if _, err := store.ParseRecoveryPolicy(c.CorruptStatePolicy); err != nil {
		return fmt.Errorf("CORRUPT_STATE_POLICY: %w", err)
	}

	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL must be an absolute http(s) URL, got %q", c.CatalogBaseURL)
	}
	if c.CatalogRPS < 0 {
		return fmt.Errorf("CATALOG_RPS must not be negative, got %f", c.CatalogRPS)
	}
	if c.DeliveryFeeCents < 0 {
		return fmt.Errorf("DELIVERY_FEE_CENTS must not be negative, got %d", c.DeliveryFeeCents)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// RecoveryPolicy returns the parsed CORRUPT_STATE_POLICY.
func (c *Config) RecoveryPolicy() store.RecoveryPolicy {
	p, _ := store.ParseRecoveryPolicy(c.CorruptStatePolicy)
	return p
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPass
	rc.DB = c.RedisDB
	rc.PoolSize = c.RedisPoolSize
	return rc
}

// Postgres returns the PostgreSQL pool settings.
func (c *Config) Postgres() *database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.PostgresHost
	pc.Port = c.PostgresPort
	pc.User = c.PostgresUser
	pc.Password = c.PostgresPass
	pc.DBName = c.PostgresDB
	pc.SSLMode = c.PostgresSSL
	pc.MaxConns = c.DBMaxConns
	pc.MinConns = c.DBMinConns
	return &pc
}

// SlowQueryThreshold is the duration above which storage operations are
// logged as slow. Zero disables the log.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMillis) * time.Millisecond
}
