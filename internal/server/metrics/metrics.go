// Package metrics exposes satellite activity to Prometheus.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/satellite/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "satellite"

// Collector is a prometheus.Collector for the satellite server.
type Collector struct {
	mutations     *prometheus.CounterVec
	rpcRequests   *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
	httpResponses *prometheus.CounterVec
	reapedBatches prometheus.Counter
	stagedBatches prometheus.GaugeFunc
}

// NewCollector returns a Collector. staged reports the number of upload
// batches in flight and may be nil.
func NewCollector(staged func() int) *Collector {
	if staged == nil {
		staged = func() int { return 0 }
	}
	return &Collector{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "mutations_total",
				Help:      "The number of committed document and asset mutations.",
			}, []string{"event", "collection"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rpc_requests_total",
				Help:      "The number of gRPC calls by method and status code.",
			}, []string{"method", "code"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "rpc_duration_seconds",
				Help:      "The time taken to answer a gRPC call.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"method"},
		),
		httpResponses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_responses_total",
				Help:      "The number of delivered HTTP responses by status code.",
			}, []string{"status"},
		),
		reapedBatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "reaped_batches_total",
				Help:      "The number of expired upload batches dropped by the reaper.",
			},
		),
		stagedBatches: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "staged_batches",
				Help:      "The number of upload batches waiting for commit.",
			}, func() float64 { return float64(staged()) },
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.mutations.Describe(ch)
	c.rpcRequests.Describe(ch)
	c.rpcDuration.Describe(ch)
	c.httpResponses.Describe(ch)
	c.reapedBatches.Describe(ch)
	c.stagedBatches.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mutations.Collect(ch)
	c.rpcRequests.Collect(ch)
	c.rpcDuration.Collect(ch)
	c.httpResponses.Collect(ch)
	c.reapedBatches.Collect(ch)
	c.stagedBatches.Collect(ch)
}

// Notify counts committed mutations. It implements services.Notifier.
func (c *Collector) Notify(_ context.Context, ev services.Event) error {
	c.mutations.WithLabelValues(ev.Kind.String(), ev.Collection()).Inc()
	return nil
}

// ObserveRPC records one finished gRPC call.
func (c *Collector) ObserveRPC(method, code string, elapsed time.Duration) {
	c.rpcRequests.WithLabelValues(method, code).Inc()
	c.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveHTTP records one delivered response.
func (c *Collector) ObserveHTTP(status int) {
	c.httpResponses.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Reaped records batches dropped by a reaper sweep.
func (c *Collector) Reaped(n int) {
	c.reapedBatches.Add(float64(n))
}
