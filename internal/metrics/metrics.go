// Package metrics exposes Prometheus collectors for evolution, scanning,
// morphology and persistence.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors updated by the pipeline.
type Metrics struct {
	Evolutions      *prometheus.CounterVec
	Generations     prometheus.Counter
	EvolutionTime   prometheus.Histogram
	ScanSegments    prometheus.Counter
	ScanTime        prometheus.Histogram
	MorphOps        *prometheus.CounterVec
	CollaboratorErr *prometheus.CounterVec
}

// Registry owns a private Prometheus registry plus the pipeline metrics.
type Registry struct {
	reg     *prometheus.Registry
	Metrics *Metrics
}

// NewRegistry registers the pipeline metrics and Go runtime collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Evolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eca_evolutions_total",
			Help: "Completed evolution runs by rule.",
		}, []string{"rule"}),
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eca_generations_total",
			Help: "Generations computed across all runs.",
		}),
		EvolutionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eca_evolution_seconds",
			Help:    "Wall time of a full evolution run.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		ScanSegments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eca_scan_segments_total",
			Help: "Run segments found by the scanner.",
		}),
		ScanTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eca_scan_seconds",
			Help:    "Wall time of a full raster scan.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		MorphOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eca_morph_ops_total",
			Help: "Morphology transforms applied by operation.",
		}, []string{"op"}),
		CollaboratorErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eca_collaborator_errors_total",
			Help: "Failures reported by external collaborators.",
		}, []string{"collaborator"}),
	}
	reg.MustRegister(
		m.Evolutions, m.Generations, m.EvolutionTime,
		m.ScanSegments, m.ScanTime, m.MorphOps, m.CollaboratorErr,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg, Metrics: m}
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveEvolution records one completed run.
func (m *Metrics) ObserveEvolution(ruleID, generations int, seconds float64) {
	if m == nil {
		return
	}
	m.Evolutions.WithLabelValues(strconv.Itoa(ruleID)).Inc()
	m.Generations.Add(float64(generations))
	m.EvolutionTime.Observe(seconds)
}

// ObserveScan records one completed raster scan.
func (m *Metrics) ObserveScan(segments int, seconds float64) {
	if m == nil {
		return
	}
	m.ScanSegments.Add(float64(segments))
	m.ScanTime.Observe(seconds)
}

// ObserveMorph counts one applied transform.
func (m *Metrics) ObserveMorph(op string) {
	if m == nil {
		return
	}
	m.MorphOps.WithLabelValues(op).Inc()
}

// ObserveCollaboratorError counts one collaborator failure.
func (m *Metrics) ObserveCollaboratorError(name string) {
	if m == nil {
		return
	}
	m.CollaboratorErr.WithLabelValues(name).Inc()
}
