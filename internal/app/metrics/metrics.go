package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates recognition counters for the /metrics endpoint. One
// instance is shared by every session runtime.
type Metrics struct {
	registry *prometheus.Registry

	recognitions   *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	engineSwitches *prometheus.CounterVec
}

// New creates the metrics set on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		recognitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_recognitions_total",
			Help: "Recognition attempts by engine and outcome.",
		}, []string{"engine", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avr_recognition_latency_seconds",
			Help:    "End-to-end recognition latency by engine.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "avr_cache_hits_total",
			Help: "Transcript cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "avr_cache_misses_total",
			Help: "Transcript cache misses.",
		}),
		engineSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_engine_switches_total",
			Help: "Engine switches by target engine and reason.",
		}, []string{"engine", "reason"}),
	}

	registry.MustRegister(m.recognitions, m.latency, m.cacheHits, m.cacheMisses, m.engineSwitches)
	return m
}

// Registry exposes the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordRecognition counts one recognition attempt and its latency.
func (m *Metrics) RecordRecognition(engine string, success bool, latencySeconds float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.recognitions.WithLabelValues(engine, status).Inc()
	if success {
		m.latency.WithLabelValues(engine).Observe(latencySeconds)
	}
}

// RecordCacheHit counts a transcript served from cache.
func (m *Metrics) RecordCacheHit() { m.cacheHits.Inc() }

// RecordCacheMiss counts a cache miss.
func (m *Metrics) RecordCacheMiss() { m.cacheMisses.Inc() }

// RecordEngineSwitch counts a manual or automatic engine switch.
func (m *Metrics) RecordEngineSwitch(engine, reason string) {
	m.engineSwitches.WithLabelValues(engine, reason).Inc()
}
