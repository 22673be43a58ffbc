package notifier

import (
	"log"

	"analytics-exporter/internal/core/ports"
)

// NullExportNotifier is used when notifications are disabled
type NullExportNotifier struct{}

func NewNullExportNotifier() *NullExportNotifier {
	return &NullExportNotifier{}
}

func (n *NullExportNotifier) ExportChanged(event ports.ExportEvent) {
	if event.Finished() {
		log.Printf("No notifier configured - skipping completion notification for export job: %s", event.Job.ID)
	}
}
