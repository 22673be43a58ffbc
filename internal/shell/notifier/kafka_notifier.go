package notifier

import (
	"log"
	"time"

	"analytics-exporter/internal/core/ports"
	"analytics-exporter/internal/shell/messaging"
)

// NotificationPublisher delivers platform notification messages
type NotificationPublisher interface {
	SendNotificationMessage(n *messaging.NotificationMessage) error
}

// KafkaExportNotifier publishes a platform notification when an export finishes
type KafkaExportNotifier struct {
	publisher NotificationPublisher
	now       func() time.Time
}

var _ ports.ExportListener = (*KafkaExportNotifier)(nil)

func NewKafkaExportNotifier(publisher NotificationPublisher) *KafkaExportNotifier {
	return &KafkaExportNotifier{
		publisher: publisher,
		now:       time.Now,
	}
}

// ExportChanged sends a notification for finished exports. Publishing errors
// are logged; they never affect the export.
func (n *KafkaExportNotifier) ExportChanged(event ports.ExportEvent) {
	if !event.Finished() {
		return
	}

	at := n.now()
	if event.Job.CompletedAt != nil {
		at = *event.Job.CompletedAt
	}

	log.Printf("Sending platform notification via Kafka for export job: %s", event.Job.ID)

	notification := messaging.NewExportNotification(event.Owner, event.Job, at)
	if err := n.publisher.SendNotificationMessage(notification); err != nil {
		log.Printf("Failed to send platform notification for export job %s: %v", event.Job.ID, err)
		return
	}

	log.Printf("Platform notification sent successfully for export job %s", event.Job.ID)
}
