// Package metrics exposes Prometheus collectors for the client cache and the
// upstream backend calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry *prometheus.Registry

	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	cacheRefetches  *prometheus.CounterVec
	invalidations   *prometheus.CounterVec
	upstreamStatus  *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_cache_hits_total",
			Help: "Query results served from the client cache.",
		}, []string{"operation"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_cache_misses_total",
			Help: "Query reads that triggered a first fetch.",
		}, []string{"operation"}),
		cacheRefetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_cache_refetches_total",
			Help: "Query reads that refetched a stale or invalidated entry.",
		}, []string{"operation"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_cache_invalidations_total",
			Help: "Tag invalidations issued by completed mutations.",
		}, []string{"tag"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_upstream_status_total",
			Help: "Backend responses by HTTP status; 0 means no response.",
		}, []string{"status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "learnhub_upstream_latency_seconds",
			Help:    "Backend call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.cacheRefetches,
		c.invalidations,
		c.upstreamStatus,
		c.upstreamLatency,
	)

	return c
}

func (c *Collector) RecordCacheHit(op string) {
	c.cacheHits.WithLabelValues(op).Inc()
}

func (c *Collector) RecordCacheMiss(op string) {
	c.cacheMisses.WithLabelValues(op).Inc()
}

func (c *Collector) RecordCacheRefetch(op string) {
	c.cacheRefetches.WithLabelValues(op).Inc()
}

func (c *Collector) RecordCacheInvalidation(tag string) {
	c.invalidations.WithLabelValues(tag).Inc()
}

func (c *Collector) RecordUpstreamStatus(status int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordUpstreamLatency(d time.Duration) {
	c.upstreamLatency.Observe(d.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
