package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/observability/metrics"
	"github.com/smallbiznis/salescloser/internal/observability/tracing"
)

// Config is the observability slice of the environment.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

type lookupFunc func(key string) (string, bool)

func LoadConfig(cfg config.Config) Config {
	return loadConfig(cfg, os.LookupEnv)
}

func loadConfig(cfg config.Config, lookup lookupFunc) Config {
	env := envReader{lookup: lookup}

	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          env.str("DEPLOYMENT_ENV", cfg.Environment),
		Version:              env.str("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(env.str("LOG_LEVEL", "warn")),
		LogFormat:            strings.ToLower(env.str("LOG_FORMAT", "console")),
		OtelEnabled:          env.boolean("OTEL_ENABLED", false),
		OtelExporterEndpoint: env.str("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(env.str("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio:    env.float("OTEL_SAMPLING_RATIO", 1),
	}
	if out.ServiceName == "" {
		out.ServiceName = "salescloser"
	}
	if p := env.str("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", ""); p != "" {
		out.OtelExporterProtocol = strings.ToLower(p)
	}
	if out.OtelSamplingRatio < 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = 1
	}
	return out
}

// Debug turns on SQL statement logging and verbose log fields.
func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}

func (c Config) Logger() logger.Config {
	return logger.Config{
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		Verbose:     c.Debug(),
	}
}

func (c Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:          c.OtelEnabled,
		ServiceName:      c.ServiceName,
		ServiceVersion:   c.Version,
		Environment:      c.Environment,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		SamplingRatio:    c.OtelSamplingRatio,
	}
}

func (c Config) Metrics() metrics.Config {
	return metrics.Config{
		Enabled:          c.OtelEnabled,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		ServiceName:      c.ServiceName,
		Environment:      c.Environment,
	}
}

type envReader struct {
	lookup lookupFunc
}

func (e envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return strings.TrimSpace(def)
}

func (e envReader) boolean(key string, def bool) bool {
	v, err := strconv.ParseBool(e.str(key, ""))
	if err != nil {
		return def
	}
	return v
}

func (e envReader) float(key string, def float64) float64 {
	v, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}
