package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// vessel tracking pipeline.
type Metrics struct {
	RowsParsed     prometheus.Counter
	RowsDropped    *prometheus.CounterVec // labels: reason={parse_error,invalid_coordinates,missing_id}
	SourceFallback prometheus.Counter
	VesselsTracked prometheus.Gauge

	// Ingestion cycle metrics.
	IngestDuration prometheus.Histogram
	IngestErrors   prometheus.Counter

	// Refresh controller metrics.
	RefreshRunning prometheus.Gauge
	RefreshCycles  prometheus.Counter
	RefreshSkipped prometheus.Counter

	// Kafka sink metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
}

// NewMetrics creates and registers all tracking metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "rows_parsed_total",
			Help:      "Total CSV rows read from the position source.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "rows_dropped_total",
			Help:      "Rows excluded from the position store by reason.",
		}, []string{"reason"}),
		SourceFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "source_fallback_total",
			Help:      "Ingestion cycles that fell back to the synthetic trajectory.",
		}),
		VesselsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vessel_tracker",
			Name:      "vessels_tracked",
			Help:      "Distinct vessels in the latest snapshot.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vessel_tracker",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete fetch-parse-normalize-store cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "ingest_errors_total",
			Help:      "Ingestion cycles that failed outright.",
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vessel_tracker",
			Name:      "refresh_running",
			Help:      "1 when the periodic refresh loop is active, 0 when idle.",
		}),
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "refresh_cycles_total",
			Help:      "Completed scheduled refresh cycles.",
		}),
		RefreshSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "refresh_skipped_total",
			Help:      "Ticks dropped because the previous cycle was still in flight.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "snapshots_published_total",
			Help:      "Vessel positions published to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vessel_tracker",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts.",
		}),
	}

	prometheus.MustRegister(
		m.RowsParsed,
		m.RowsDropped,
		m.SourceFallback,
		m.VesselsTracked,
		m.IngestDuration,
		m.IngestErrors,
		m.RefreshRunning,
		m.RefreshCycles,
		m.RefreshSkipped,
		m.SnapshotsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsParsed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "rows_parsed_total"}),
		RowsDropped:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "rows_dropped_total"}, []string{"reason"}),
		SourceFallback:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "source_fallback_total"}),
		VesselsTracked:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "vessel_tracker", Name: "vessels_tracked"}),
		IngestDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "vessel_tracker", Name: "ingest_duration_seconds"}),
		IngestErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "ingest_errors_total"}),
		RefreshRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "vessel_tracker", Name: "refresh_running"}),
		RefreshCycles:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "refresh_cycles_total"}),
		RefreshSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "refresh_skipped_total"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "snapshots_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vessel_tracker", Name: "publish_errors_total"}),
	}
}
