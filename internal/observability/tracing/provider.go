// Package tracing configures the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/fx"
)

type Config struct {
	Enabled          bool
	ServiceName      string
	ServiceVersion   string
	Environment      string
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// NewProvider builds and registers the global tracer provider. When tracing
// is disabled it installs a no-exporter provider so instrumented code keeps
// working.
func NewProvider(lc fx.Lifecycle, cfg Config) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
	}

	if cfg.Enabled && strings.TrimSpace(cfg.ExporterEndpoint) != "" {
		exporter, err := newExporter(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return provider.Shutdown(shutdownCtx)
			},
		})
	}

	return provider, nil
}

func newExporter(cfg Config) (*otlptrace.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(cfg.ExporterProtocol)) {
	case "http", "http/protobuf":
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.ExporterEndpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.ExporterEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	}
}
