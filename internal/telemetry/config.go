package telemetry

import (
	"os"
	"strconv"
)

// Config holds the ambient observability settings: structured logging
// and the outer Prometheus layer. Export format and OTLP transport are
// out of scope for the core, so this carries no exporter endpoints.
type Config struct {
	ServiceName    string
	Environment    string
	ServiceVersion string

	LogLevel string

	EnableMetrics bool
}

// NewConfigFromEnv creates a new config from environment variables.
func NewConfigFromEnv() *Config {
	return &Config{
		ServiceName:    getEnv("SERVICE_NAME", "jsonregistry"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServiceVersion: getEnv("SERVICE_VERSION", "unknown"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		EnableMetrics:  getEnvBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
