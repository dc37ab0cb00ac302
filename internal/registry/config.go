package registry

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/birbnest/jsonregistry/internal/pool"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const maxIdentifierLength = 63

// DefaultBatchSize bounds how many distinct canonical values one
// batch-insert round-trip carries; larger batches are transparently
// chunked, preserving order.
const DefaultBatchSize = 1000

// Config holds the construction parameters for a Core: the pool
// configuration, the schema the caller has already provisioned, and
// the cache/batch sizing knobs.
type Config struct {
	Pool *pool.Config

	Table   string
	IDCol   string
	DataCol string

	CacheSize int
	BatchSize int
}

// NewConfigFromEnv builds a Config from environment variables, the
// way the teacher's NewConfigFromEnv functions compose a component's
// settings from getEnvOrDefault calls.
func NewConfigFromEnv() (*Config, error) {
	poolCfg, err := pool.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}

	cacheSize, err := strconv.Atoi(getEnvOrDefault("REGISTRY_CACHE_SIZE", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_CACHE_SIZE: %w", err)
	}

	batchSize, err := strconv.Atoi(getEnvOrDefault("REGISTRY_BATCH_SIZE", strconv.Itoa(DefaultBatchSize)))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_BATCH_SIZE: %w", err)
	}

	return &Config{
		Pool:      poolCfg,
		Table:     getEnvOrDefault("REGISTRY_TABLE", "json_objects"),
		IDCol:     getEnvOrDefault("REGISTRY_ID_COLUMN", "id"),
		DataCol:   getEnvOrDefault("REGISTRY_DATA_COLUMN", "data"),
		CacheSize: cacheSize,
		BatchSize: batchSize,
	}, nil
}

// validateIdentifiers checks Table/IDCol/DataCol against the
// identifier pattern required because these names are interpolated
// directly into SQL text — the JSON column's comparison operator
// cannot be bound as a query parameter.
func (c *Config) validateIdentifiers() error {
	for name, value := range map[string]string{
		"table":    c.Table,
		"id_col":   c.IDCol,
		"data_col": c.DataCol,
	} {
		if err := validateIdentifier(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func validateIdentifier(name string) error {
	if len(name) == 0 || len(name) > maxIdentifierLength {
		return newError(KindInvalidIdentifier, fmt.Sprintf("identifier %q must be 1-%d characters", name, maxIdentifierLength), nil)
	}
	if !identifierPattern.MatchString(name) {
		return newError(KindInvalidIdentifier, fmt.Sprintf("identifier %q must match %s", name, identifierPattern.String()), nil)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
