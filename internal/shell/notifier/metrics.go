package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

var (
	// ExportsStarted counts jobs that began exporting, by format
	ExportsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_exports_started_total",
		Help: "The total number of export jobs started",
	}, []string{"format"})

	// ExportsFinished counts finished jobs, by format and outcome
	ExportsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_exports_finished_total",
		Help: "The total number of export jobs that finished",
	}, []string{"format", "outcome"})

	// ExportsCancelled counts jobs discarded before completing, by format
	ExportsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_exports_cancelled_total",
		Help: "The total number of export jobs cancelled while exporting",
	}, []string{"format"})

	// ExportsInProgress tracks the number of jobs currently exporting
	ExportsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analytics_exports_in_progress",
		Help: "The number of export jobs currently exporting",
	})

	// ArtifactBytes observes the size of generated artifacts
	ArtifactBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_export_artifact_bytes",
		Help:    "Size of generated export artifacts in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"format"})
)

// MetricsListener records export lifecycle metrics
type MetricsListener struct{}

var _ ports.ExportListener = MetricsListener{}

func NewMetricsListener() MetricsListener {
	return MetricsListener{}
}

func (MetricsListener) ExportChanged(event ports.ExportEvent) {
	format := string(event.Format)

	switch {
	case event.Previous == domain.StateIdle && event.Job.State == domain.StateExporting:
		ExportsStarted.WithLabelValues(format).Inc()
		ExportsInProgress.Inc()
	case event.Finished():
		ExportsInProgress.Dec()
		outcome := "completed"
		if event.Failed() {
			outcome = "failed"
		}
		ExportsFinished.WithLabelValues(format, outcome).Inc()
		if event.Job.Artifact != nil {
			ArtifactBytes.WithLabelValues(format).Observe(float64(event.Job.Artifact.Size))
		}
	case event.Previous == domain.StateExporting && event.Job.State == domain.StateIdle:
		ExportsInProgress.Dec()
		ExportsCancelled.WithLabelValues(format).Inc()
	}
}
