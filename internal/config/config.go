package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/codedits/bitecheck/pkg/config"
)

// Config holds all configuration for the bitecheck API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"bitecheck"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"bitecheck_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"bitecheck_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Connection pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"10"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry string `env:"JWT_TOKEN_EXPIRY" envDefault:"15m"`

	// Reconciliation
	ReconcileInterval string `env:"RECONCILE_INTERVAL" envDefault:"10m"`

	// S3-compatible image storage. When the bucket is empty the API keeps
	// image metadata in memory, which is only useful for local development.
	S3Endpoint    string `env:"S3_ENDPOINT" envDefault:""`
	S3Region      string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket      string `env:"S3_BUCKET" envDefault:""`
	S3AccessKey   string `env:"S3_ACCESS_KEY_ID" envDefault:""`
	S3SecretKey   string `env:"S3_SECRET_ACCESS_KEY" envDefault:""`
	S3PublicURL   string `env:"S3_PUBLIC_BASE_URL" envDefault:"https://cdn.bitecheck.io"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if _, err := time.ParseDuration(cfg.JWTExpiry); err != nil {
		return nil, fmt.Errorf("invalid JWT_TOKEN_EXPIRY: %w", err)
	}
	if _, err := time.ParseDuration(cfg.ReconcileInterval); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// JWTExpiryDuration returns the parsed token expiry. Load validates the
// format, so errors here are impossible for a loaded config.
func (c *Config) JWTExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.JWTExpiry)
	return d
}

// ReconcileIntervalDuration returns the parsed reconciliation interval.
func (c *Config) ReconcileIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReconcileInterval)
	return d
}
