package observability

import (
	"testing"

	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/stretchr/testify/assert"
)

func envMap(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig(config.Config{AppVersion: "0.1.0", Environment: "development", OTLPEndpoint: "localhost:4317"}, envMap(nil))

	assert.Equal(t, "salescloser", cfg.ServiceName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.Equal(t, "localhost:4317", cfg.Tracing().ExporterEndpoint)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg := loadConfig(config.Config{AppName: "sc"}, envMap(map[string]string{
		"LOG_LEVEL":                          " DEBUG ",
		"OTEL_ENABLED":                       "true",
		"OTEL_EXPORTER_OTLP_PROTOCOL":        "grpc",
		"OTEL_EXPORTER_OTLP_TRACES_PROTOCOL": "HTTP",
		"OTEL_SAMPLING_RATIO":                "7",
	}))

	assert.Equal(t, "sc", cfg.ServiceName)
	assert.True(t, cfg.Debug())
	assert.True(t, cfg.Logger().Verbose)
	assert.True(t, cfg.Metrics().Enabled)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
}

func TestLoadConfigIgnoresMalformedBool(t *testing.T) {
	cfg := loadConfig(config.Config{}, envMap(map[string]string{"OTEL_ENABLED": "sure"}))
	assert.False(t, cfg.OtelEnabled)
}
