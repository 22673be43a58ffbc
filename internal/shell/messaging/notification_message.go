package messaging

import (
	"encoding/json"
	"time"

	"analytics-exporter/internal/core/domain"
)

const (
	notificationVersion = "v1.2.0"
	bundleName          = "analytics"
	applicationName     = "dashboard-exporter"

	EventExportCompleted = "export-completed"
	EventExportFailed    = "export-failed"
)

// NotificationMessage represents the structure for platform notification events
// Based on the notifications-backend message format
type NotificationMessage struct {
	Version     string                 `json:"version"`
	Bundle      string                 `json:"bundle"`
	Application string                 `json:"application"`
	EventType   string                 `json:"event_type"`
	Timestamp   string                 `json:"timestamp"` // RFC3339 format
	AccountID   string                 `json:"account_id"`
	OrgID       string                 `json:"org_id"`
	Context     map[string]interface{} `json:"context"`
	Events      []interface{}          `json:"events"`
	Recipients  []interface{}          `json:"recipients"`
}

// NewExportNotification describes the outcome of job for owner. A job with
// a LastError is reported as failed.
func NewExportNotification(owner string, job domain.ExportJob, at time.Time) *NotificationMessage {
	orgID, userID := domain.SplitOwnerKey(owner)

	context := map[string]interface{}{
		"job_id": job.ID,
		"format": string(job.Format),
		"user":   userID,
	}
	if job.Artifact != nil {
		context["filename"] = job.Artifact.Filename
		context["mime"] = job.Artifact.Mime
		context["size"] = job.Artifact.Size
	}

	eventType := EventExportCompleted
	if job.LastError != "" {
		eventType = EventExportFailed
		context["error_message"] = job.LastError
	}

	return &NotificationMessage{
		Version:     notificationVersion,
		Bundle:      bundleName,
		Application: applicationName,
		EventType:   eventType,
		Timestamp:   at.UTC().Format(time.RFC3339),
		OrgID:       orgID,
		Context:     context,
		Events:      []interface{}{},
		Recipients:  []interface{}{},
	}
}

// JobID returns the export job the notification refers to
func (n *NotificationMessage) JobID() string {
	id, _ := n.Context["job_id"].(string)
	return id
}

// ToJSON converts the notification message to JSON bytes
func (n *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
