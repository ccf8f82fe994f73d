package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment service.
type Metrics struct {
	Acquisitions        prometheus.Counter
	AcquisitionDuration prometheus.Histogram
	ProviderErrors      *prometheus.CounterVec // labels: provider={weather,hydrology,geocode}

	RiskScorings    *prometheus.CounterVec // labels: level={safe,caution,danger,extreme}
	ScoringDuration prometheus.Histogram

	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	HistoryLookups  *prometheus.CounterVec // labels: outcome={success,error,empty,stale}
	AlertsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Acquisitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "acquisitions_total",
			Help:      "Total location acquisitions started.",
		}),
		AcquisitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodwatch",
			Name:      "acquisition_duration_seconds",
			Help:      "Duration of the provider fan-out and derivation for one acquisition.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "provider_errors_total",
			Help:      "Provider calls that degraded to defaults, by provider.",
		}, []string{"provider"}),
		RiskScorings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "risk_scorings_total",
			Help:      "Risk scoring runs by resulting level.",
		}, []string{"level"}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodwatch",
			Name:      "scoring_duration_seconds",
			Help:      "Wall time of a risk scoring call including the pacing delay.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 1.5, 2, 3, 5},
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "geocode_cache_total",
			Help:      "Reverse geocode cache lookups by result.",
		}, []string{"result"}),
		HistoryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "history_lookups_total",
			Help:      "Best-effort historical context lookups by outcome.",
		}, []string{"outcome"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "alerts_published_total",
			Help:      "News items published to the alerts topic.",
		}),
	}

	prometheus.MustRegister(
		m.Acquisitions,
		m.AcquisitionDuration,
		m.ProviderErrors,
		m.RiskScorings,
		m.ScoringDuration,
		m.GeocodeCache,
		m.HistoryLookups,
		m.AlertsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Acquisitions:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodwatch", Name: "acquisitions_total"}),
		AcquisitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "floodwatch", Name: "acquisition_duration_seconds"}),
		ProviderErrors:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodwatch", Name: "provider_errors_total"}, []string{"provider"}),
		RiskScorings:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodwatch", Name: "risk_scorings_total"}, []string{"level"}),
		ScoringDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "floodwatch", Name: "scoring_duration_seconds"}),
		GeocodeCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodwatch", Name: "geocode_cache_total"}, []string{"result"}),
		HistoryLookups:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodwatch", Name: "history_lookups_total"}, []string{"outcome"}),
		AlertsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodwatch", Name: "alerts_published_total"}),
	}
}
