package observability

import (
	"github.com/procurehq/procure/internal/observability/logger"
	"github.com/procurehq/procure/internal/observability/metrics"
	"github.com/procurehq/procure/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideTracingConfig,
		tracing.NewProvider,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(ensureTracingProvider),
)

func ensureTracingProvider(_ *sdktrace.TracerProvider) {}

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Debug:       cfg.Debug(),
	}
}

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}
