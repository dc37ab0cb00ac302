package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracerOnce sync.Once
	tracer     trace.Tracer
)

// InitTracing installs a no-op tracer under the service name. Span
// creation is kept for request-scoped correlation IDs in logs; OTLP
// export is out of scope, so no exporter or SDK provider is wired.
func InitTracing(cfg *Config) error {
	tracerOnce.Do(func() {
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
		tracer = otel.Tracer(cfg.ServiceName)
	})
	return nil
}

// Tracer returns the package tracer, initializing a no-op one on
// first use if InitTracing was never called.
func Tracer() trace.Tracer {
	if tracer == nil {
		tracer = otel.Tracer("jsonregistry")
	}
	return tracer
}
