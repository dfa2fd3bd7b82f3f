package specset

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"validate-specs/internal/document"
)

// Metrics holds loader and resolver instrumentation. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	FilesLoaded     prometheus.Counter
	DocumentsLoaded *prometheus.CounterVec
	Passes          prometheus.Counter
	Deadlocks       prometheus.Counter
	LoadDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "validate_specs",
			Name:      "files_loaded_total",
			Help:      "YAML files read by the loader.",
		}),
		DocumentsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validate_specs",
			Name:      "documents_loaded_total",
			Help:      "YAML documents read by the loader, by kind.",
		}, []string{"kind"}),
		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "validate_specs",
			Name:      "resolution_passes_total",
			Help:      "Resolution passes over the pending documents.",
		}),
		Deadlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "validate_specs",
			Name:      "resolution_deadlocks_total",
			Help:      "Loads that ended with unresolved documents.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "validate_specs",
			Name:      "load_duration_seconds",
			Help:      "Time to load and resolve a specification set.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.FilesLoaded, m.DocumentsLoaded, m.Passes, m.Deadlocks, m.LoadDuration)
	}

	return m
}

func (m *Metrics) fileLoaded() {
	if m != nil {
		m.FilesLoaded.Inc()
	}
}

func (m *Metrics) documentLoaded(kind document.Kind) {
	if m != nil {
		m.DocumentsLoaded.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) pass() {
	if m != nil {
		m.Passes.Inc()
	}
}

func (m *Metrics) deadlock() {
	if m != nil {
		m.Deadlocks.Inc()
	}
}

func (m *Metrics) observeLoad(start time.Time) {
	if m != nil {
		m.LoadDuration.Observe(time.Since(start).Seconds())
	}
}
