package pool

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds connection pool configuration: the target database plus
// the bounds the registry enforces on top of pgx's own pool (acquire
// timeout, idle timeout, max connection lifetime).
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	MaxConns int32
	MinConns int32

	AcquireTimeout time.Duration
	IdleTimeout    time.Duration
	MaxLifetime    time.Duration
}

// NewConfigFromEnv builds a Config from the REGISTRY_DB_* / POSTGRES_*
// environment variables, falling back to locally-sane defaults.
func NewConfigFromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnvOrDefault("POSTGRES_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_MAX_CONNS: %w", err)
	}

	minConns, err := strconv.ParseInt(getEnvOrDefault("POSTGRES_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_MIN_CONNS: %w", err)
	}

	acquireSecs, err := strconv.Atoi(getEnvOrDefault("REGISTRY_DB_ACQUIRE_TIMEOUT_SECS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_DB_ACQUIRE_TIMEOUT_SECS: %w", err)
	}

	idleSecs, err := strconv.Atoi(getEnvOrDefault("REGISTRY_DB_IDLE_TIMEOUT_SECS", "600"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_DB_IDLE_TIMEOUT_SECS: %w", err)
	}

	lifetimeSecs, err := strconv.Atoi(getEnvOrDefault("REGISTRY_DB_MAX_LIFETIME_SECS", "1800"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_DB_MAX_LIFETIME_SECS: %w", err)
	}

	return &Config{
		Host:           getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:           port,
		User:           getEnvOrDefault("POSTGRES_USER", "registry"),
		Password:       getEnvOrDefault("POSTGRES_PASSWORD", "registry"),
		Database:       getEnvOrDefault("POSTGRES_DB", "registry"),
		MaxConns:       int32(maxConns),
		MinConns:       int32(minConns),
		AcquireTimeout: time.Duration(acquireSecs) * time.Second,
		IdleTimeout:    time.Duration(idleSecs) * time.Second,
		MaxLifetime:    time.Duration(lifetimeSecs) * time.Second,
	}, nil
}

// ConnectionString returns a PostgreSQL connection string suitable for
// pgxpool.ParseConfig.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
