package api

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the HTTP surface's own configuration: listen address,
// request/shutdown timeouts, and optional API key gating. Registry
// construction parameters (pool, cache, batch sizing) live in
// registry.Config instead.
type Config struct {
	Host string
	Port int

	APIKey          string
	RequestTimeout  int
	ShutdownTimeout int
}

// LoadConfig loads the HTTP surface's configuration from environment
// variables.
func LoadConfig() (*Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	requestTimeout, err := strconv.Atoi(getEnvOrDefault("REQUEST_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := strconv.Atoi(getEnvOrDefault("SHUTDOWN_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Host:            getEnvOrDefault("HOST", "0.0.0.0"),
		Port:            port,
		APIKey:          os.Getenv("API_KEY"),
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
