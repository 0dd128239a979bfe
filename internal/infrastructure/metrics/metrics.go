package metrics

import (
	"goldrates-service/internal/application"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheHits       *prometheus.CounterVec
	UpstreamFetches *prometheus.CounterVec
	FallbacksServed prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

var _ application.Metrics = (*Metrics)(nil)

// New registers the service metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_cache_hits_total",
				Help: "Cache hits by layer (memory, shared)",
			},
			[]string{"layer"},
		),
		UpstreamFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_upstream_fetch_total",
				Help: "Upstream fetch attempts by outcome",
			},
			[]string{"outcome"},
		),
		FallbacksServed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rates_fallback_served_total",
				Help: "Responses served from the persisted fallback",
			},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}
}

func (m *Metrics) CacheHit(layer string) { m.CacheHits.WithLabelValues(layer).Inc() }

func (m *Metrics) FetchOutcome(outcome string) { m.UpstreamFetches.WithLabelValues(outcome).Inc() }

func (m *Metrics) FallbackServed() { m.FallbacksServed.Inc() }
