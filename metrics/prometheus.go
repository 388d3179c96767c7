package metrics

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderName is the config value selecting the Prometheus-backed
// provider.
const ProviderName = "prometheus"

// prometheusProvider wraps an inner Metrics with a Prometheus registry
// exposing duration histograms for the store's mutation/query entry
// points, grounded on the teacher's internal/prometheus.Provider (there
// wired to HTTP handler duration; here wired to apply_batch/migrate/
// query-plan/query-exec duration instead, per spec §2.4).
type prometheusProvider struct {
	Metrics
	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
}

// NewPrometheusProvider returns a GlobalMetrics backed by a fresh
// Prometheus registry.
func NewPrometheusProvider() GlobalMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "factordb_operation_duration_seconds",
			Help: "Duration of FactorDB store operations.",
		},
		[]string{"operation"},
	)
	registry.MustRegister(durations)

	return &prometheusProvider{
		Metrics:   New(),
		registry:  registry,
		durations: durations,
	}
}

func (p *prometheusProvider) Info() Info { return Info{Name: ProviderName} }

// Registry exposes the underlying Prometheus registry so a caller can
// mount /metrics with promhttp.HandlerFor — the engine itself has no
// HTTP surface (a non-goal), so it never imports net/http here.
func (p *prometheusProvider) Registry() *prometheus.Registry { return p.registry }

// Observe records v (seconds) against the named operation's duration
// histogram, in addition to the inner Metrics histogram of the same
// name.
func (p *prometheusProvider) Observe(operation string, seconds float64) {
	p.durations.WithLabelValues(operation).Observe(seconds)
	p.Metrics.Histogram(operation).Update(int64(seconds * 1e9))
}

// MarshalJSON reports the inner Metrics snapshot; Prometheus's own
// families are scraped separately via Registry(), not folded into this
// JSON view.
func (p *prometheusProvider) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.All())
}
