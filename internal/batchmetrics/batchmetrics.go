package batchmetrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/smallbiznis/salescloser/internal/config"
	"go.uber.org/zap"
)

const defaultPushTimeout = 5 * time.Second

// Recorder collects per-run command metrics. CLI runs are too short-lived to
// be scraped, so the registry is pushed once when a command finishes.
type Recorder struct {
	registry *prometheus.Registry
	pusher   *PushgatewayPusher
	log      *zap.Logger

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.GaugeVec
}

// New builds a recorder. Without a Pushgateway URL the recorder still counts
// but Push is a no-op.
func New(cfg config.Config, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		log:      log.Named("batchmetrics"),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salescloser",
			Name:      "command_runs_total",
			Help:      "Completed CLI command runs by outcome.",
		}, []string{"command", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salescloser",
			Name:      "command_duration_seconds",
			Help:      "Wall time of CLI command runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"command"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "salescloser",
			Name:      "records",
			Help:      "Records touched by the last command run.",
		}, []string{"command", "kind"}),
	}
	registry.MustRegister(r.runs, r.duration, r.records)

	if endpoint := strings.TrimSpace(cfg.PushgatewayURL); endpoint != "" {
		r.pusher = NewPushgatewayPusher(endpoint, cfg.AppName, map[string]string{
			"environment": cfg.Environment,
		})
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records one finished command.
func (r *Recorder) ObserveRun(command string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	command = normalizeLabel(command)
	r.runs.WithLabelValues(command, outcome).Inc()
	r.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// SetRecords reports how many records of a kind a command handled.
func (r *Recorder) SetRecords(command, kind string, n int) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(normalizeLabel(command), normalizeLabel(kind)).Set(float64(n))
}

// Push sends the registry to the Pushgateway. Failures are logged and never
// fail the command.
func (r *Recorder) Push(ctx context.Context) {
	if r == nil || r.pusher == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, defaultPushTimeout)
	defer cancel()
	if err := r.pusher.Push(ctx, r.registry); err != nil {
		r.log.Warn("pushgateway push failed", zap.Error(err))
	}
}

// PushgatewayPusher sends metrics to a Prometheus Pushgateway.
type PushgatewayPusher struct {
	endpoint string
	job      string
	grouping map[string]string
}

// NewPushgatewayPusher returns a pusher for Prometheus Pushgateway.
func NewPushgatewayPusher(endpoint, job string, grouping map[string]string) *PushgatewayPusher {
	return &PushgatewayPusher{
		endpoint: endpoint,
		job:      strings.TrimSpace(job),
		grouping: grouping,
	}
}

func (p *PushgatewayPusher) Push(ctx context.Context, registry *prometheus.Registry) error {
	if p == nil || registry == nil {
		return nil
	}
	if strings.TrimSpace(p.endpoint) == "" {
		return errors.New("pushgateway endpoint is required")
	}
	if p.job == "" {
		return errors.New("pushgateway job is required")
	}

	pusher := push.New(p.endpoint, p.job).Gatherer(registry)
	for key, value := range p.grouping {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		pusher = pusher.Grouping(key, value)
	}
	return pusher.PushContext(ctx)
}

func normalizeLabel(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "unknown"
	}
	return v
}
