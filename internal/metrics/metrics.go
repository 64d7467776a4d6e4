// Package metrics holds the Prometheus collectors of a scraper run.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hubcenter_scraper"

// Metrics holds all Prometheus metrics for the scraper. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// InventorySites is the number of sites reported by the panel in the current run.
	InventorySites prometheus.Gauge
	// Extractions counts per-domain extractions. Labels: strategy, source, status
	Extractions *prometheus.CounterVec
	// ExtractionDuration observes per-domain extraction time. Labels: strategy
	ExtractionDuration *prometheus.HistogramVec
	// Reconciliations counts CRM upserts. Labels: action, status
	Reconciliations *prometheus.CounterVec
	// Runs counts finished runs. Labels: result
	Runs *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		InventorySites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_sites",
			Help:      "Sites listed in the hosting panel inventory.",
		}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Contact extractions by strategy, content source and status.",
		}, []string{"strategy", "source", "status"}),
		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent acquiring and extracting one domain.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"strategy"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "CRM customer upserts by action and status.",
		}, []string{"action", "status"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished pipeline runs by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
	reg.MustRegister(m.InventorySites, m.Extractions, m.ExtractionDuration, m.Reconciliations, m.Runs)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) SetInventory(n int) {
	if m == nil {
		return
	}
	m.InventorySites.Set(float64(n))
}

func (m *Metrics) ObserveExtraction(strategy, source string, analyzed bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "failed"
	if analyzed {
		status = "analyzed"
	}
	if source == "" {
		source = "none"
	}
	m.Extractions.WithLabelValues(strategy, source, status).Inc()
	m.ExtractionDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveReconciliation(action string, success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "ok"
	}
	if action == "" {
		action = "none"
	}
	m.Reconciliations.WithLabelValues(action, status).Inc()
}

func (m *Metrics) ObserveRun(result string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
}
