// Package observability exposes the proxy's cache-tier outcomes in
// Prometheus text exposition format, as a secondary surface alongside
// the JSON stats the admin API returns directly.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromMetrics mirrors five of metrics.Metrics' counters (all but total
// requests) as Prometheus collectors, registered against a private
// registry so this proxy's /internal/metrics page never picks up the
// process/Go-runtime collectors
// client_golang registers on the global DefaultRegisterer by default.
type PromMetrics struct {
	registry     *prometheus.Registry
	exactHits    prometheus.Counter
	semanticHits prometheus.Counter
	misses       prometheus.Counter
	tokensSaved  prometheus.Counter
	tokensUsed   prometheus.Counter
}

// NewPromMetrics builds and registers the collector set.
func NewPromMetrics() *PromMetrics {
	reg := prometheus.NewRegistry()

	pm := &PromMetrics{
		registry: reg,
		exactHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmproxy_exact_hits_total",
			Help: "Requests served from the exact-match cache tier.",
		}),
		semanticHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmproxy_semantic_hits_total",
			Help: "Requests served from the semantic-match cache tier.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmproxy_misses_total",
			Help: "Requests forwarded upstream after both cache tiers missed.",
		}),
		tokensSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmproxy_tokens_saved_total",
			Help: "Upstream tokens avoided by cache hits.",
		}),
		tokensUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmproxy_tokens_used_total",
			Help: "Upstream tokens spent on cache misses.",
		}),
	}

	reg.MustRegister(pm.exactHits, pm.semanticHits, pm.misses, pm.tokensSaved, pm.tokensUsed)
	return pm
}

// RecordExactHit mirrors metrics.Metrics.RecordExactHit for the
// Prometheus exposition.
func (pm *PromMetrics) RecordExactHit() { pm.exactHits.Inc() }

// RecordSemanticHit mirrors metrics.Metrics.RecordSemanticHit.
func (pm *PromMetrics) RecordSemanticHit(tokensSaved int64) {
	pm.semanticHits.Inc()
	pm.tokensSaved.Add(float64(tokensSaved))
}

// RecordMiss mirrors metrics.Metrics.RecordMiss.
func (pm *PromMetrics) RecordMiss(tokensUsed int64) {
	pm.misses.Inc()
	pm.tokensUsed.Add(float64(tokensUsed))
}

// Handler returns the Prometheus text-exposition HTTP handler for this
// registry, to be mounted at /internal/metrics — a separate path from
// the JSON /metrics the admin surface exposes.
func (pm *PromMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
