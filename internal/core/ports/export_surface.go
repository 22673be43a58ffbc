package ports

import (
	"time"

	"analytics-exporter/internal/core/domain"
)

// ExportSurface is one open export dialog: a configuration plus the job it drives.
type ExportSurface interface {
	// Open resets the configuration to its defaults. It fails while a job is live.
	Open() error

	// Close cancels any in-flight job and resets the configuration
	Close()

	// Configuration returns a copy of the held configuration
	Configuration() domain.ExportConfiguration

	// Configure applies a batch of changes to the held configuration
	Configure(update ConfigurationUpdate) (domain.ExportConfiguration, error)

	// CanStart reports whether StartExport would begin a job
	CanStart() bool

	// StartExport begins a job. It returns false when the start operation is unavailable.
	StartExport() bool

	// Cancel discards the in-flight job, if any
	Cancel() bool

	// Job returns the current job snapshot
	Job() domain.ExportJob
}

// ConfigurationUpdate carries optional configuration changes. Nil fields are left untouched.
type ConfigurationUpdate struct {
	Format          *domain.Format
	Metrics         map[domain.MetricKey]bool
	ToggleMetrics   []domain.MetricKey
	SetDateRange    bool
	From            *time.Time
	To              *time.Time
	IncludeCharts   *bool
	IncludeSummary  *bool
	IncludeInsights *bool
}
