package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

// ScheduledFirings counts cron firings by outcome: started, skipped or rejected
var ScheduledFirings = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "analytics_scheduled_export_firings_total",
	Help: "The total number of scheduled export firings by outcome",
}, []string{"outcome"})

// ExportScheduler starts an export on a dedicated surface every time its cron
// expression fires.
type ExportScheduler struct {
	surface  ports.ExportSurface
	schedule string
	format   domain.Format
	metrics  []domain.MetricKey

	cron    *cron.Cron
	mu      sync.Mutex
	entryID cron.EntryID
}

func NewExportScheduler(surface ports.ExportSurface, schedule string, format domain.Format, metrics []domain.MetricKey) (*ExportScheduler, error) {
	if !domain.IsValidSchedule(schedule) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSchedule, schedule)
	}
	if !domain.IsValidFormat(string(format)) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, format)
	}
	if len(metrics) == 0 {
		return nil, domain.ErrNoMetricsSelected
	}

	return &ExportScheduler{
		surface:  surface,
		schedule: schedule,
		format:   format,
		metrics:  append([]domain.MetricKey(nil), metrics...),
		cron:     cron.New(), // Standard 5-field format (minute hour dom month dow)
	}, nil
}

// Start registers the schedule and blocks until ctx is cancelled
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	entryID, err := s.cron.AddFunc(s.schedule, func() { s.Fire() })
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to register schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID
	s.mu.Unlock()

	log.Printf("Starting export scheduler: schedule=%s, format=%s, metrics=%v", s.schedule, s.format, s.metrics)
	s.cron.Start()

	<-ctx.Done()
	log.Println("Export scheduler context cancelled, stopping")
	return nil
}

func (s *ExportScheduler) Stop() {
	log.Println("Stopping export scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Export scheduler stopped")
}

// Fire runs one scheduled export. A firing while the previous job is still
// live is skipped. It reports whether a job was started.
func (s *ExportScheduler) Fire() bool {
	if job := s.surface.Job(); job.IsLive() {
		log.Printf("[DEBUG] ExportScheduler - skipping firing, job %s still %s", job.ID, job.State)
		ScheduledFirings.WithLabelValues("skipped").Inc()
		return false
	}

	if err := s.surface.Open(); err != nil {
		log.Printf("[DEBUG] ExportScheduler - skipping firing, surface unavailable: %v", err)
		ScheduledFirings.WithLabelValues("skipped").Inc()
		return false
	}

	if _, err := s.surface.Configure(s.configurationUpdate()); err != nil {
		log.Printf("Scheduled export could not be configured: %v", err)
		ScheduledFirings.WithLabelValues("rejected").Inc()
		return false
	}

	if !s.surface.StartExport() {
		log.Printf("Scheduled export was not started")
		ScheduledFirings.WithLabelValues("rejected").Inc()
		return false
	}

	log.Printf("Scheduled export started: job_id=%s, format=%s", s.surface.Job().ID, s.format)
	ScheduledFirings.WithLabelValues("started").Inc()
	return true
}

func (s *ExportScheduler) configurationUpdate() ports.ConfigurationUpdate {
	format := s.format
	metrics := make(map[domain.MetricKey]bool, len(domain.MetricCatalog()))
	for _, key := range domain.MetricCatalog() {
		metrics[key] = false
	}
	for _, key := range s.metrics {
		metrics[key] = true
	}
	return ports.ConfigurationUpdate{Format: &format, Metrics: metrics}
}
