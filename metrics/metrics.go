// Package metrics mirrors the teacher's metrics/internal/metrics split:
// a small provider-agnostic interface the storage engine instruments
// against, and a couple of concrete providers behind it — retargeted
// from OPA's HTTP-handler/Rego-evaluation metric names to FactorDB's own
// apply_batch/migrate/query-plan instrumentation points (spec §2.4).
package metrics

import "time"

// Well-known metric names for the store's entry points. No package in this
// module records against them; they are provided for callers.
const (
	ApplyBatchDuration = "apply_batch_duration_seconds"
	MigrateDuration    = "migrate_duration_seconds"
	QueryPlanDuration  = "query_plan_duration_seconds"
	QueryExecDuration  = "query_exec_duration_seconds"

	RevertCount            = "revert_count"
	UniqueViolationCount   = "unique_violation_count"
	LogAppendFailureCount  = "log_append_failure_count"
	ReferenceViolationCount = "reference_violation_count"
)

// Info describes a metrics provider.
type Info struct {
	Name string
}

// Timer accumulates elapsed time between Start and Stop calls.
type Timer interface {
	Start()
	Stop() int64
	Int64() int64
}

// Metrics is the interface the storage engine instruments against: a
// named timer, counter and histogram per recorded event, plus a snapshot
// of everything recorded so far.
type Metrics interface {
	Timer(name string) Timer
	Counter(name string) Counter
	Histogram(name string) Histogram
	All() map[string]any
	Clear()
}

// Counter is a monotonically increasing count.
type Counter interface {
	Incr()
	Add(n uint64)
	Value() uint64
}

// Histogram records a distribution of observed values (used here for
// batch/migration/query durations, in nanoseconds).
type Histogram interface {
	Update(v int64)
	Value() map[string]any
}

// GlobalMetrics is a named, pluggable Metrics provider — the
// config-selected top-level instance the rest of the engine is handed.
type GlobalMetrics interface {
	Metrics
	Info() Info
}

// New returns the default in-process Metrics implementation.
func New() Metrics {
	return &metrics{
		timers:     map[string]*timer{},
		counters:   map[string]*counter{},
		histograms: map[string]*histogram{},
	}
}

type metrics struct {
	timers     map[string]*timer
	counters   map[string]*counter
	histograms map[string]*histogram
}

func (m *metrics) Timer(name string) Timer {
	t, ok := m.timers[name]
	if !ok {
		t = &timer{}
		m.timers[name] = t
	}
	return t
}

func (m *metrics) Counter(name string) Counter {
	c, ok := m.counters[name]
	if !ok {
		c = &counter{}
		m.counters[name] = c
	}
	return c
}

func (m *metrics) Histogram(name string) Histogram {
	h, ok := m.histograms[name]
	if !ok {
		h = newHistogram()
		m.histograms[name] = h
	}
	return h
}

func (m *metrics) All() map[string]any {
	out := make(map[string]any, len(m.timers)+len(m.counters)+len(m.histograms))
	for k, t := range m.timers {
		out[k] = t.Int64()
	}
	for k, c := range m.counters {
		out[k] = c.Value()
	}
	for k, h := range m.histograms {
		out[k] = h.Value()
	}
	return out
}

func (m *metrics) Clear() {
	m.timers = map[string]*timer{}
	m.counters = map[string]*counter{}
	m.histograms = map[string]*histogram{}
}

type timer struct {
	start    time.Time
	elapsed  int64
	running  bool
}

func (t *timer) Start() {
	t.start = time.Now()
	t.running = true
}

func (t *timer) Stop() int64 {
	if !t.running {
		return t.elapsed
	}
	t.elapsed += time.Since(t.start).Nanoseconds()
	t.running = false
	return t.elapsed
}

func (t *timer) Int64() int64 { return t.elapsed }

type counter struct{ n uint64 }

func (c *counter) Incr()         { c.n++ }
func (c *counter) Add(n uint64)  { c.n += n }
func (c *counter) Value() uint64 { return c.n }

// histogram keeps running count/min/max/sum; it is deliberately simple
// (no bucketing) — the prometheus-backed provider is what exposes real
// buckets/quantiles when that precision is needed.
type histogram struct {
	count    int64
	min, max int64
	sum      int64
}

func newHistogram() *histogram {
	return &histogram{min: int64(^uint64(0) >> 1), max: -int64(^uint64(0)>>1) - 1}
}

func (h *histogram) Update(v int64) {
	h.count++
	h.sum += v
	if v < h.min {
		h.min = v
	}
	if v > h.max {
		h.max = v
	}
}

func (h *histogram) Value() map[string]any {
	if h.count == 0 {
		return map[string]any{"count": int64(0)}
	}
	return map[string]any{
		"count": h.count,
		"min":   h.min,
		"max":   h.max,
		"sum":   h.sum,
		"mean":  h.sum / h.count,
	}
}
