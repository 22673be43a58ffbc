package domain

import "time"

type JobState string

const (
	StateIdle      JobState = "idle"
	StateExporting JobState = "exporting"
	StateComplete  JobState = "complete"
)

// Artifact is the generated file handed to the download dispatcher.
type Artifact struct {
	Content  []byte `json:"-"`
	Mime     string `json:"mime"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}

// ExportJob is a point-in-time view of the progress controller's job.
type ExportJob struct {
	ID               string     `json:"id,omitempty"`
	State            JobState   `json:"state"`
	Progress         int        `json:"progress"`
	Format           Format     `json:"format,omitempty"`
	Artifact         *Artifact  `json:"artifact,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	EstimatedSeconds int        `json:"estimated_seconds"`
	LastError        string     `json:"last_error,omitempty"`
}

// IdleJob is the job value of a controller with nothing in flight.
func IdleJob() ExportJob {
	return ExportJob{State: StateIdle, Progress: 0, EstimatedSeconds: EstimatedSeconds(0)}
}

// EstimatedSeconds mirrors the countdown shown while exporting: one second per
// remaining ten percent, never below one.
func EstimatedSeconds(progress int) int {
	remaining := 100 - progress
	seconds := (remaining + 9) / 10
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (j ExportJob) IsLive() bool {
	return j.State != StateIdle
}
