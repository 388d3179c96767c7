package metrics

// dummyProvider is the no-op GlobalMetrics implementation selected when
// no provider name is configured — grounded on the teacher's
// internal/metrics.dummyProvider.
type dummyProvider struct{ Metrics }

func newDummyProvider() GlobalMetrics {
	return dummyProvider{Metrics: New()}
}

func (dummyProvider) Info() Info { return Info{Name: "dummy"} }
