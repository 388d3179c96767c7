package metrics

import "fmt"

// NewGlobalMetrics selects a GlobalMetrics provider by config-supplied
// name, grounded on the teacher's internal/metrics.NewGlobalMetrics
// switch (there driven by bundle config, here by config.Config.MetricsProvider).
func NewGlobalMetrics(name string) (GlobalMetrics, error) {
	switch name {
	case "":
		return newDummyProvider(), nil
	case ProviderName:
		return NewPrometheusProvider(), nil
	default:
		return nil, fmt.Errorf("metrics: unknown provider %q", name)
	}
}
