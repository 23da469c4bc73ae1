package observability

import (
	"github.com/smallbiznis/salescloser/internal/observability/logger"
	"github.com/smallbiznis/salescloser/internal/observability/metrics"
	"github.com/smallbiznis/salescloser/internal/observability/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Config.Logger,
		Config.Tracing,
		Config.Metrics,
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
	),
	// The tracer provider installs itself globally; nothing else asks for it.
	fx.Invoke(func(trace.TracerProvider) {}),
)
