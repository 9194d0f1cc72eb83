// Package metrics exposes Prometheus collectors for screening runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resume_selector"

// Item outcomes.
const (
	OutcomeReported = "reported"
	OutcomeSkipped  = "skipped"
)

// Collector holds the run metrics on its own registry. A nil Collector
// discards everything.
type Collector struct {
	registry *prometheus.Registry

	items          *prometheus.CounterVec
	stageFallbacks *prometheus.CounterVec
	gatewayRetries prometheus.Counter
	itemDuration   prometheus.Histogram
	lastBatch      *prometheus.GaugeVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Resumes processed, by outcome",
			},
			[]string{"outcome"},
		),
		stageFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_fallbacks_total",
				Help:      "Stage calls that fell back to the default result",
			},
			[]string{"stage"},
		),
		gatewayRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_retries_total",
				Help:      "Model gateway calls retried after a failure",
			},
		),
		itemDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "item_duration_seconds",
				Help:      "Time spent on one resume across all stages",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		lastBatch: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_batch_items",
				Help:      "Resumes in the last finished batch, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) ItemProcessed(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.items.WithLabelValues(outcome).Inc()
	c.itemDuration.Observe(elapsed.Seconds())
}

func (c *Collector) StageFallback(stage string) {
	if c == nil {
		return
	}
	c.stageFallbacks.WithLabelValues(stage).Inc()
}

func (c *Collector) GatewayRetry() {
	if c == nil {
		return
	}
	c.gatewayRetries.Inc()
}

func (c *Collector) BatchFinished(reported, skipped int) {
	if c == nil {
		return
	}
	c.lastBatch.WithLabelValues(OutcomeReported).Set(float64(reported))
	c.lastBatch.WithLabelValues(OutcomeSkipped).Set(float64(skipped))
}

// WriteTextfile dumps the metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
