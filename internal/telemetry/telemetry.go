package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Init brings up logging, the outer metrics layer, and tracing, in
// that order, the way the teacher's umbrella Init does.
func Init(cfg *Config) error {
	if err := InitLogger(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.EnableMetrics {
		initHTTPMetrics()
	}
	if err := InitTracing(cfg); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	L().WithFields(map[string]interface{}{
		"service":     cfg.ServiceName,
		"version":     cfg.ServiceVersion,
		"environment": cfg.Environment,
	}).Info("telemetry initialized")

	return nil
}

// Shutdown is a no-op placeholder kept for symmetry with Init: neither
// the no-op tracer nor the Prometheus registry holds resources that
// need draining.
func Shutdown(_ context.Context) error {
	return nil
}

// FiberLoggingMiddleware logs one structured entry per request.
func FiberLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		entry := WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		})

		switch {
		case err != nil:
			entry.WithError(err).Error("request failed")
		case c.Response().StatusCode() >= 400:
			entry.Warn("request completed with error status")
		default:
			entry.Info("request completed")
		}

		return err
	}
}

// FiberMetricsMiddleware records one HTTP request observation per
// request, independent of the registry_pool_*/registry_cache_* gauges
// RegisterCoreMetrics exposes.
func FiberMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := fmt.Sprintf("%d", c.Response().StatusCode())
		RecordHTTPRequest(c.Method(), c.Path(), status, time.Since(start))

		return err
	}
}
