package tracer

import (
	"context"

	"medstudy-be/internal/config"
	"medstudy-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	tracerModule = "Tracer"
	serviceName  = "medstudy-backend"
)

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Init installs the global tracer provider. With tracing disabled, or when the exporter cannot be
// built, the global no-op provider stays in place and the executor spans cost nothing.
func Init(ctx context.Context, cfg *config.Config, log logger.ILogger) ShutdownFunc {
	if !cfg.Tracing.Enabled {
		log.Info(tracerModule, "Tracing disabled", nil)
		return noop
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Tracing.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn(tracerModule, "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{
			"endpoint": cfg.Tracing.Endpoint,
			"error":    err.Error(),
		})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String(cfg.App.Environment),
			attribute.String("storage.backend", cfg.Storage.Backend),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info(tracerModule, "Tracer initialized", map[string]interface{}{
		"endpoint": cfg.Tracing.Endpoint,
		"backend":  cfg.Storage.Backend,
	})
	return tp.Shutdown
}
