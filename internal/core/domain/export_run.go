package domain

import (
	"time"
)

type ExportRunStatus string

const (
	RunStatusRunning   ExportRunStatus = "running"
	RunStatusCompleted ExportRunStatus = "completed"
	RunStatusFailed    ExportRunStatus = "failed"
	RunStatusCancelled ExportRunStatus = "cancelled"
)

// ExportRun is the persisted history record of one export job.
type ExportRun struct {
	ID           string          `json:"id"`
	Owner        string          `json:"owner"`
	Format       Format          `json:"format"`
	Metrics      []MetricKey     `json:"metrics"`
	Status       ExportRunStatus `json:"status"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	Filename     *string         `json:"filename,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

func NewExportRun(jobID, owner string, format Format, metrics []MetricKey, start time.Time) ExportRun {
	return ExportRun{
		ID:        jobID,
		Owner:     owner,
		Format:    format,
		Metrics:   append([]MetricKey(nil), metrics...),
		Status:    RunStatusRunning,
		StartTime: start.UTC(),
	}
}

func (r ExportRun) WithCompleted(filename string, end time.Time) ExportRun {
	end = end.UTC()
	r.Status = RunStatusCompleted
	r.EndTime = &end
	r.Filename = &filename
	r.ErrorMessage = nil
	return r
}

func (r ExportRun) WithFailed(errorMessage string, end time.Time) ExportRun {
	end = end.UTC()
	r.Status = RunStatusFailed
	r.EndTime = &end
	r.ErrorMessage = &errorMessage
	return r
}

func (r ExportRun) WithCancelled(end time.Time) ExportRun {
	end = end.UTC()
	r.Status = RunStatusCancelled
	r.EndTime = &end
	return r
}

func IsValidRunStatus(s string) bool {
	switch ExportRunStatus(s) {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}
