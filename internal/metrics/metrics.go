// Package metrics counts migration progress and pushes it to a Prometheus
// Pushgateway when the run finishes.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "hostel_migrate"

// Recorder holds the counters for one run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	processed   *prometheus.CounterVec
	inserted    *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Source documents read, per target table.",
		}, []string{"table"}),
		inserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Target rows inserted, per target table.",
		}, []string{"table"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_skipped_total",
			Help:      "Source documents that produced no row, per target table.",
		}, []string{"table"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	r.registry.MustRegister(r.processed, r.inserted, r.skipped, r.lastSuccess)
	return r
}

func (r *Recorder) Processed(table string) {
	if r != nil {
		r.processed.WithLabelValues(table).Inc()
	}
}

func (r *Recorder) Inserted(table string, n int) {
	if r != nil && n > 0 {
		r.inserted.WithLabelValues(table).Add(float64(n))
	}
}

func (r *Recorder) Skipped(table string) {
	if r != nil {
		r.skipped.WithLabelValues(table).Inc()
	}
}

// Succeeded stamps the last-success gauge.
func (r *Recorder) Succeeded(at time.Time) {
	if r != nil {
		r.lastSuccess.Set(float64(at.Unix()))
	}
}

// Registry exposes the private registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Push sends every collected metric to the Pushgateway at url under the
// given job name, replacing the previous push for that job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
