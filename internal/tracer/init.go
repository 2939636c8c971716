package tracer

import (
	"context"

	"rag-api-explorer-be/internal/config"
	"rag-api-explorer-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracer installs an OTLP/HTTP tracer provider when cfg.OtelEnabled is
// set. A disabled or failing exporter leaves the global no-op provider.
func InitTracer(cfg config.AppConfig, log logger.ILogger) ShutdownFunc {
	if !cfg.OtelEnabled {
		log.Info("TRACER", "Tracing disabled", nil)
		return noopShutdown
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("TRACER", "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{
			"endpoint": cfg.OtelEndpoint,
			"error":    err.Error(),
		})
		return noopShutdown
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info("TRACER", "Tracer initialized", map[string]interface{}{
		"endpoint": cfg.OtelEndpoint,
		"service":  cfg.ServiceName,
	})
	return tp.Shutdown
}
