// Package logger builds the application's structured zap logger.
package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the zap logger.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Level       string
	Format      string
	Debug       bool
}

// New builds a structured zap.Logger, replaces globals, and registers a
// flush hook.
func New(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = normalizeFormat(cfg.Format)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	options := []zap.Option{zap.AddCaller()}
	if cfg.Debug {
		options = append(options, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	log, err := zapCfg.Build(options...)
	if err != nil {
		return nil, err
	}

	log = log.With(
		zap.String("service", strings.TrimSpace(cfg.ServiceName)),
		zap.String("env", strings.TrimSpace(cfg.Environment)),
		zap.String("version", strings.TrimSpace(cfg.Version)),
	)
	zap.ReplaceGlobals(log)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				_ = ctx
				_ = log.Sync()
				return nil
			},
		})
	}

	return log, nil
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "text":
		return "console"
	default:
		return "json"
	}
}
