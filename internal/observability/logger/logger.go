package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smallbiznis/salescloser/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel/trace"
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
	// Verbose adds the caller and error stack traces.
	Verbose bool
}

const defaultLevel = zapcore.WarnLevel

// New builds the process logger. Logs go to stderr; stdout carries command
// output. JSON logs are sampled and tagged with service fields, console logs
// stay bare.
func New(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	level := defaultLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", raw, err)
		}
		level = parsed
	}

	format := normalizeFormat(cfg.Format)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	sink := zapcore.Lock(os.Stderr)
	var core zapcore.Core
	if format == "json" {
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level)
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, level)
	}

	options := []zap.Option{zap.ErrorOutput(sink)}
	if cfg.Verbose {
		options = append(options, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	logger := zap.New(core, options...)

	if format == "json" {
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "salescloser"
		}
		logger = logger.With(
			zap.String("service", serviceName),
			zap.String("env", strings.TrimSpace(cfg.Environment)),
			zap.String("version", strings.TrimSpace(cfg.Version)),
		)
	}
	zap.ReplaceGlobals(logger)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				_ = logger.Sync()
				return nil
			},
		})
	}

	return logger, nil
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "json" {
		return "json"
	}
	return "console"
}

// FromContext returns the global logger enriched with correlation fields.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext enriches the provided logger with correlation and trace fields.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}

	fields := make([]zap.Field, 0, 3)
	if cid := correlation.ID(ctx); cid != "" {
		fields = append(fields, zap.String("correlation_id", cid))
	}
	fields = append(fields, traceFieldsFromContext(ctx)...)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func traceFieldsFromContext(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
