package http

import (
	"fmt"
	"time"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

// ExportStateResponse is the API view of an owner's export surface.
type ExportStateResponse struct {
	Open          bool                       `json:"open"`
	CanStart      bool                       `json:"can_start"`
	Configuration domain.ExportConfiguration `json:"configuration"`
	Job           JobResponse                `json:"job"`
}

// JobResponse excludes the artifact content; only its metadata is exposed.
type JobResponse struct {
	ID               string     `json:"id,omitempty"`
	State            string     `json:"state"`
	Progress         int        `json:"progress"`
	Format           string     `json:"format,omitempty"`
	Filename         string     `json:"filename,omitempty"`
	Mime             string     `json:"mime,omitempty"`
	Size             int        `json:"size,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	EstimatedSeconds int        `json:"estimated_seconds"`
	LastError        string     `json:"last_error,omitempty"`
}

func ToJobResponse(job domain.ExportJob) JobResponse {
	resp := JobResponse{
		ID:               job.ID,
		State:            string(job.State),
		Progress:         job.Progress,
		Format:           string(job.Format),
		StartedAt:        job.StartedAt,
		CompletedAt:      job.CompletedAt,
		EstimatedSeconds: job.EstimatedSeconds,
		LastError:        job.LastError,
	}
	if job.Artifact != nil {
		resp.Filename = job.Artifact.Filename
		resp.Mime = job.Artifact.Mime
		resp.Size = job.Artifact.Size
	}
	return resp
}

func ToExportStateResponse(surface ports.ExportSurface, open bool) ExportStateResponse {
	return ExportStateResponse{
		Open:          open,
		CanStart:      surface.CanStart(),
		Configuration: surface.Configuration(),
		Job:           ToJobResponse(surface.Job()),
	}
}

// DateRangeRequest holds calendar dates in YYYY-MM-DD form. A null or missing
// end clears that end of the range.
type DateRangeRequest struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// ConfigurationRequest is a partial update; omitted fields keep their value.
type ConfigurationRequest struct {
	Format          *string           `json:"format"`
	DateRange       *DateRangeRequest `json:"date_range"`
	Metrics         map[string]bool   `json:"metrics"`
	ToggleMetrics   []string          `json:"toggle_metrics"`
	IncludeCharts   *bool             `json:"include_charts"`
	IncludeSummary  *bool             `json:"include_summary"`
	IncludeInsights *bool             `json:"include_insights"`
}

// ToUpdate parses the wire values into a ConfigurationUpdate
func (req ConfigurationRequest) ToUpdate() (ports.ConfigurationUpdate, error) {
	update := ports.ConfigurationUpdate{
		IncludeCharts:   req.IncludeCharts,
		IncludeSummary:  req.IncludeSummary,
		IncludeInsights: req.IncludeInsights,
	}

	if req.Format != nil {
		format, err := domain.ParseFormat(*req.Format)
		if err != nil {
			return ports.ConfigurationUpdate{}, err
		}
		update.Format = &format
	}

	if len(req.Metrics) > 0 {
		update.Metrics = make(map[domain.MetricKey]bool, len(req.Metrics))
		for name, selected := range req.Metrics {
			key, err := domain.ParseMetricKey(name)
			if err != nil {
				return ports.ConfigurationUpdate{}, err
			}
			update.Metrics[key] = selected
		}
	}

	for _, name := range req.ToggleMetrics {
		key, err := domain.ParseMetricKey(name)
		if err != nil {
			return ports.ConfigurationUpdate{}, err
		}
		update.ToggleMetrics = append(update.ToggleMetrics, key)
	}

	if req.DateRange != nil {
		from, err := parseDate(req.DateRange.From)
		if err != nil {
			return ports.ConfigurationUpdate{}, err
		}
		to, err := parseDate(req.DateRange.To)
		if err != nil {
			return ports.ConfigurationUpdate{}, err
		}
		update.SetDateRange = true
		update.From = from
		update.To = to
	}

	return update, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", domain.ErrInvalidDateRange, *s)
	}
	return &t, nil
}

// ExportRunResponse is the API view of a run history record
type ExportRunResponse struct {
	ID           string     `json:"id"`
	Format       string     `json:"format"`
	Metrics      []string   `json:"metrics"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Filename     *string    `json:"filename,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

func ToExportRunResponse(run domain.ExportRun) ExportRunResponse {
	metrics := make([]string, len(run.Metrics))
	for i, key := range run.Metrics {
		metrics[i] = string(key)
	}
	return ExportRunResponse{
		ID:           run.ID,
		Format:       string(run.Format),
		Metrics:      metrics,
		Status:       string(run.Status),
		StartTime:    run.StartTime,
		EndTime:      run.EndTime,
		Filename:     run.Filename,
		ErrorMessage: run.ErrorMessage,
	}
}

func ToExportRunResponseList(runs []domain.ExportRun) []ExportRunResponse {
	responses := make([]ExportRunResponse, len(runs))
	for i, run := range runs {
		responses[i] = ToExportRunResponse(run)
	}
	return responses
}

// FormatResponse describes one supported export format
type FormatResponse struct {
	Format    string `json:"format"`
	Label     string `json:"label"`
	Mime      string `json:"mime"`
	BaseName  string `json:"base_name"`
	Extension string `json:"extension"`
}

func ToFormatResponseList() []FormatResponse {
	formats := domain.Formats()
	responses := make([]FormatResponse, len(formats))
	for i, f := range formats {
		spec := f.Spec()
		responses[i] = FormatResponse{
			Format:    string(f),
			Label:     f.Label(),
			Mime:      spec.Mime,
			BaseName:  spec.BaseName,
			Extension: spec.Extension,
		}
	}
	return responses
}
