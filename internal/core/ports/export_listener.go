package ports

import "analytics-exporter/internal/core/domain"

// ExportEvent is emitted by the progress controller on every job change.
type ExportEvent struct {
	Owner    string
	Format   domain.Format
	Previous domain.JobState
	Job      domain.ExportJob
}

// Finished reports whether the event ends an export attempt, successfully or
// not. Cancellations and the return to idle after display are not outcomes.
func (e ExportEvent) Finished() bool {
	if e.Previous != domain.StateExporting {
		return false
	}
	return e.Job.State == domain.StateComplete || e.Job.LastError != ""
}

// Failed reports whether a finished export did not deliver its file.
func (e ExportEvent) Failed() bool {
	return e.Finished() && e.Job.LastError != ""
}

// ExportListener observes job lifecycle changes. Implementations must not
// call back into the controller that notified them.
type ExportListener interface {
	ExportChanged(event ExportEvent)
}
