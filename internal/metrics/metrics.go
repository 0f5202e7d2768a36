// Package metrics exposes Prometheus instrumentation for the enricher.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Enrichment stage labels for the degradation counter.
const (
	StageMetadata  = "metadata"
	StageHistory   = "history"
	StageRecommend = "recommend"
)

// Registry bundles the service counters on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	WebhooksReceived  prometheus.Counter
	WebhooksSkipped   prometheus.Counter
	NoteWrites        prometheus.Counter
	NoteWriteFailures prometheus.Counter
	Degraded          *prometheus.CounterVec
	UpstreamSeconds   prometheus.Histogram
}

// NewRegistry creates and registers all enricher metrics.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "enricher_webhooks_received_total"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "enricher_webhooks_skipped_total"})
	writes := prometheus.NewCounter(prometheus.CounterOpts{Name: "enricher_note_writes_total"})
	writeFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "enricher_note_write_failures_total"})
	degraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "enricher_degraded_total"},
		[]string{"stage"},
	)
	upstream := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enricher_upstream_request_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(received, skipped, writes, writeFailures, degraded, upstream)
	return &Registry{
		reg:               r,
		WebhooksReceived:  received,
		WebhooksSkipped:   skipped,
		NoteWrites:        writes,
		NoteWriteFailures: writeFailures,
		Degraded:          degraded,
		UpstreamSeconds:   upstream,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
