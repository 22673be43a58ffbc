package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"analytics-exporter/internal/clock"
	"analytics-exporter/internal/core/artifacts"
	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/usecases"
	"analytics-exporter/internal/shell/sink"
	"analytics-exporter/internal/shell/storage"
)

func newScheduledSurface(t *testing.T) (*clock.Fake, *usecases.Surface, string) {
	t.Helper()

	dir := t.TempDir()
	fs, err := sink.NewFilesystemSink(dir)
	if err != nil {
		t.Fatalf("NewFilesystemSink failed: %v", err)
	}

	clk := clock.NewFake(time.Date(2025, time.March, 14, 6, 0, 0, 0, time.UTC))
	controller := usecases.NewProgressController(domain.SchedulerOwner, clk, artifacts.NewGenerator(),
		usecases.NewDispatcher(fs), storage.NewMemoryExportRunRepository(), usecases.DefaultControllerSettings())
	return clk, usecases.NewSurface(clk, controller), dir
}

func TestNewExportSchedulerValidation(t *testing.T) {
	_, surface, _ := newScheduledSurface(t)

	tests := []struct {
		name     string
		schedule string
		format   domain.Format
		metrics  []domain.MetricKey
		wantErr  error
	}{
		{"valid", "0 6 * * *", domain.FormatCSV, []domain.MetricKey{domain.MetricRevenue}, nil},
		{"bad schedule", "every morning", domain.FormatCSV, []domain.MetricKey{domain.MetricRevenue}, domain.ErrInvalidSchedule},
		{"six fields", "0 0 6 * * *", domain.FormatCSV, []domain.MetricKey{domain.MetricRevenue}, domain.ErrInvalidSchedule},
		{"bad format", "0 6 * * *", domain.Format("docx"), []domain.MetricKey{domain.MetricRevenue}, domain.ErrInvalidFormat},
		{"no metrics", "0 6 * * *", domain.FormatCSV, nil, domain.ErrNoMetricsSelected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExportScheduler(surface, tt.schedule, tt.format, tt.metrics)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFireWritesScheduledExport(t *testing.T) {
	clk, surface, dir := newScheduledSurface(t)

	s, err := NewExportScheduler(surface, "0 6 * * *", domain.FormatCSV, []domain.MetricKey{domain.MetricRevenue, domain.MetricTraffic})
	if err != nil {
		t.Fatalf("NewExportScheduler failed: %v", err)
	}

	startedBefore := testutil.ToFloat64(ScheduledFirings.WithLabelValues("started"))
	skippedBefore := testutil.ToFloat64(ScheduledFirings.WithLabelValues("skipped"))

	if !s.Fire() {
		t.Fatal("Expected first firing to start an export")
	}
	job := surface.Job()
	if job.State != domain.StateExporting || job.Format != domain.FormatCSV {
		t.Errorf("Unexpected job after firing: %+v", job)
	}
	if got := surface.Configuration().SelectedMetrics(); len(got) != 2 || got[0] != domain.MetricRevenue || got[1] != domain.MetricTraffic {
		t.Errorf("Expected revenue and traffic selected, got %v", got)
	}

	if s.Fire() {
		t.Error("Expected firing while exporting to be skipped")
	}

	clk.Advance(2 * time.Second)

	if s.Fire() {
		t.Error("Expected firing while the result is displayed to be skipped")
	}

	content, err := os.ReadFile(filepath.Join(dir, "analytics-export-2025-03-14.csv"))
	if err != nil {
		t.Fatalf("Expected scheduled export on disk: %v", err)
	}
	if got := string(content[:len("Date,Revenue,Traffic")]); got != "Date,Revenue,Traffic" {
		t.Errorf("Unexpected CSV header %q", got)
	}

	clk.Advance(2 * time.Second)

	if !s.Fire() {
		t.Error("Expected firing after the job finished to start a new export")
	}

	if got := testutil.ToFloat64(ScheduledFirings.WithLabelValues("started")) - startedBefore; got != 2 {
		t.Errorf("Expected 2 started firings, got %v", got)
	}
	if got := testutil.ToFloat64(ScheduledFirings.WithLabelValues("skipped")) - skippedBefore; got != 2 {
		t.Errorf("Expected 2 skipped firings, got %v", got)
	}
}

func TestStartReturnsOnCancel(t *testing.T) {
	_, surface, _ := newScheduledSurface(t)

	s, err := NewExportScheduler(surface, "0 6 * * *", domain.FormatPDF, []domain.MetricKey{domain.MetricUsers})
	if err != nil {
		t.Fatalf("NewExportScheduler failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	s.Stop()
}
