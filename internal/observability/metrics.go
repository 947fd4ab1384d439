package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a run.
type Metrics struct {
	RunActive prometheus.Gauge

	// Acquisition metrics.
	ArchivesDownloaded prometheus.Counter
	ArchivesReused     prometheus.Counter
	ChecksumMismatches *prometheus.CounterVec // labels: copy={cached,fresh}
	BytesDownloaded    prometheus.Counter
	EntriesExtracted   prometheus.Counter

	// Compositing metrics.
	ImagesGenerated *prometheus.CounterVec // labels: weather={rain,fog}
	ImagesSkipped   *prometheus.CounterVec // labels: weather={rain,fog}

	PhaseDuration *prometheus.HistogramVec // labels: phase={download,rain,fog}
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunActive,
		m.ArchivesDownloaded,
		m.ArchivesReused,
		m.ChecksumMismatches,
		m.BytesDownloaded,
		m.EntriesExtracted,
		m.ImagesGenerated,
		m.ImagesSkipped,
		m.PhaseDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_augment",
			Name:      "run_active",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		ArchivesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "archives_downloaded_total",
			Help:      "Archives fetched from the remote host.",
		}),
		ArchivesReused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "archives_reused_total",
			Help:      "Local archives whose checksum matched the manifest.",
		}),
		ChecksumMismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "checksum_mismatches_total",
			Help:      "Archives whose checksum differed from the manifest, by copy.",
		}, []string{"copy"}),
		BytesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "downloaded_bytes_total",
			Help:      "Bytes written by archive and manifest downloads.",
		}),
		EntriesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "archive_entries_extracted_total",
			Help:      "Zip entries written to the auxiliary tree.",
		}),
		ImagesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "images_generated_total",
			Help:      "Composited images written, by weather.",
		}, []string{"weather"}),
		ImagesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_augment",
			Name:      "images_skipped_total",
			Help:      "Auxiliary files skipped for lack of a corresponding original, by weather.",
		}, []string{"weather"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_augment",
			Name:      "phase_duration_seconds",
			Help:      "Duration of one dataset phase.",
			Buckets:   []float64{1, 10, 30, 60, 300, 900, 1800, 3600, 7200},
		}, []string{"phase"}),
	}
}
