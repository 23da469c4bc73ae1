package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	pipelineSync metric.Int64Counter
	taxLookup    metric.Int64Counter
	quoteSaved   metric.Int64Counter
	backupRuns   metric.Int64Counter
	syncDuration metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Debug("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "salescloser"
	}
	meter := provider.Meter(name)

	pipelineSync, err := meter.Int64Counter("salescloser_pipeline_sync_total",
		metric.WithDescription("Quote to pipeline reconciliations by resulting action."))
	if err != nil {
		return nil, err
	}
	taxLookup, err := meter.Int64Counter("salescloser_tax_lookup_total",
		metric.WithDescription("Tax computations by outcome."))
	if err != nil {
		return nil, err
	}
	quoteSaved, err := meter.Int64Counter("salescloser_quote_saved_total")
	if err != nil {
		return nil, err
	}
	backupRuns, err := meter.Int64Counter("salescloser_backup_runs_total")
	if err != nil {
		return nil, err
	}
	syncDuration, err := meter.Float64Histogram("salescloser_pipeline_sync_all_seconds",
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		pipelineSync: pipelineSync,
		taxLookup:    taxLookup,
		quoteSaved:   quoteSaved,
		backupRuns:   backupRuns,
		syncDuration: syncDuration,
	}, nil
}

// RecordPipelineSync counts one reconciliation of a quote against the board.
func (m *Metrics) RecordPipelineSync(ctx context.Context, action string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("action", strings.TrimSpace(action)))
	m.pipelineSync.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSyncAllDuration records how long a whole-store reconciliation took.
func (m *Metrics) RecordSyncAllDuration(ctx context.Context, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.syncDuration.Record(ctx, elapsed.Seconds())
}

// RecordTaxLookup counts a tax computation by outcome.
func (m *Metrics) RecordTaxLookup(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.taxLookup.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordQuoteSaved(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.quoteSaved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordBackup(ctx context.Context, method string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("method", strings.TrimSpace(method)))
	m.backupRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"action":    {},
	"outcome":   {},
	"operation": {},
	"method":    {},
	"stage":     {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
