// Package prometheus exports knnlite engine metrics to Prometheus.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/knnlite"
)

var _ knnlite.MetricsCollector = (*Collector)(nil)

const namespace = "knnlite"

// Collector records engine operations as Prometheus metrics.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	ops        *prometheus.CounterVec
	errors     *prometheus.CounterVec
	added      prometheus.Counter
	results    prometheus.Histogram
	dimension  prometheus.Gauge
	snapshotSz *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers its metrics with reg. A nil
// reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of engine operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of engine operations.",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Number of failed engine operations.",
		}, []string{"op"}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vectors_added_total",
			Help:      "Number of vectors appended.",
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		dimension: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dimension",
			Help:      "Dimension set by the last Initialize.",
		}),
		snapshotSz: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records in the last saved or loaded snapshot.",
		}, []string{"op"}),
	}

	for _, m := range []prometheus.Collector{
		c.opLatency, c.ops, c.errors, c.added, c.results, c.dimension, c.snapshotSz,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCollector is like NewCollector but panics if registration fails.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.ops.WithLabelValues(op).Inc()
	c.opLatency.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		c.errors.WithLabelValues(op).Inc()
	}
}

// RecordInitialize implements knnlite.MetricsCollector.
func (c *Collector) RecordInitialize(dim int) {
	c.ops.WithLabelValues("initialize").Inc()
	c.dimension.Set(float64(dim))
}

// RecordAdd implements knnlite.MetricsCollector.
func (c *Collector) RecordAdd(count int, d time.Duration, err error) {
	c.observe("add", d, err)
	c.added.Add(float64(count))
}

// RecordSearch implements knnlite.MetricsCollector.
func (c *Collector) RecordSearch(_, results int, d time.Duration, err error) {
	c.observe("search", d, err)
	if err == nil {
		c.results.Observe(float64(results))
	}
}

// RecordSave implements knnlite.MetricsCollector.
func (c *Collector) RecordSave(count int, d time.Duration, err error) {
	c.observe("save", d, err)
	if err == nil {
		c.snapshotSz.WithLabelValues("save").Set(float64(count))
	}
}

// RecordLoad implements knnlite.MetricsCollector.
func (c *Collector) RecordLoad(count int, d time.Duration, err error) {
	c.observe("load", d, err)
	if err == nil {
		c.snapshotSz.WithLabelValues("load").Set(float64(count))
	}
}
