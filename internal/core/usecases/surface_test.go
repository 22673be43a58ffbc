package usecases

import (
	"errors"
	"testing"
	"time"

	"analytics-exporter/internal/clock"
	"analytics-exporter/internal/core/artifacts"
	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

func newTestSurface() (*Surface, *clock.Fake, *fakeSink) {
	clk := clock.NewFake(testStart)
	sink := newFakeSink()
	controller := NewProgressController("org-1/alice", clk, artifacts.NewGenerator(), NewDispatcher(sink), nil, DefaultControllerSettings())
	return NewSurface(clk, controller), clk, sink
}

func formatPtr(f domain.Format) *domain.Format {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}

func TestSurfaceOpensWithDefaults(t *testing.T) {
	s, _, _ := newTestSurface()
	if err := s.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	cfg := s.Configuration()
	if cfg.Format != domain.FormatPDF {
		t.Errorf("Expected pdf default, got %s", cfg.Format)
	}
	if cfg.DateRange.To == nil || cfg.DateRange.To.Format(domain.DateLayout) != "2025-03-14" {
		t.Errorf("Expected today as range end, got %v", cfg.DateRange.To)
	}
	if !s.IsOpen() {
		t.Error("Expected surface to be open")
	}
	if !s.CanStart() {
		t.Error("Default configuration should be startable")
	}
}

func TestSurfaceConfigure(t *testing.T) {
	s, _, _ := newTestSurface()
	s.Open()

	from := time.Date(2024, time.February, 1, 15, 30, 0, 0, time.UTC)
	cfg, err := s.Configure(ports.ConfigurationUpdate{
		Format:          formatPtr(domain.FormatCSV),
		Metrics:         map[domain.MetricKey]bool{domain.MetricUsers: false},
		ToggleMetrics:   []domain.MetricKey{domain.MetricTraffic},
		SetDateRange:    true,
		From:            &from,
		IncludeInsights: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	if cfg.Format != domain.FormatCSV {
		t.Errorf("Expected csv, got %s", cfg.Format)
	}
	want := []domain.MetricKey{domain.MetricRevenue, domain.MetricConversion, domain.MetricTraffic, domain.MetricProducts}
	got := cfg.SelectedMetrics()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("metric %d = %s, want %s", i, got[i], want[i])
		}
	}
	if cfg.DateRange.From.Format(domain.DateLayout) != "2024-02-01" || cfg.DateRange.To != nil {
		t.Errorf("Unexpected date range %+v", cfg.DateRange)
	}
	if !cfg.IncludeInsights || !cfg.IncludeCharts {
		t.Error("Expected insights on and charts unchanged")
	}
}

func TestSurfaceConfigureRejectsInvalidInput(t *testing.T) {
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		update  ports.ConfigurationUpdate
		wantErr error
	}{
		{
			name:    "unknown format",
			update:  ports.ConfigurationUpdate{Format: formatPtr("docx")},
			wantErr: domain.ErrInvalidFormat,
		},
		{
			name:    "unknown metric",
			update:  ports.ConfigurationUpdate{Metrics: map[domain.MetricKey]bool{"bounce": true}},
			wantErr: domain.ErrInvalidMetric,
		},
		{
			name:    "unknown toggle",
			update:  ports.ConfigurationUpdate{ToggleMetrics: []domain.MetricKey{"bounce"}},
			wantErr: domain.ErrInvalidMetric,
		},
		{
			name:    "reversed range",
			update:  ports.ConfigurationUpdate{SetDateRange: true, From: &from, To: &to},
			wantErr: domain.ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSurface()
			before := s.Configuration()

			_, err := s.Configure(tt.update)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if s.Configuration().Format != before.Format {
				t.Error("Rejected update must not change the configuration")
			}
		})
	}
}

func TestSurfaceStartUnavailableWithoutMetrics(t *testing.T) {
	s, clk, _ := newTestSurface()
	s.Open()

	off := make(map[domain.MetricKey]bool)
	for _, key := range domain.MetricCatalog() {
		off[key] = false
	}
	if _, err := s.Configure(ports.ConfigurationUpdate{Metrics: off}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	if s.CanStart() {
		t.Error("CanStart should be false without metrics")
	}
	if s.StartExport() {
		t.Error("StartExport should be a no-op without metrics")
	}
	clk.Advance(time.Second)
	if s.Job().State != domain.StateIdle {
		t.Errorf("Expected idle, got %s", s.Job().State)
	}
}

func TestSurfaceRejectsChangesWhileExporting(t *testing.T) {
	s, clk, _ := newTestSurface()
	s.Open()
	s.StartExport()
	clk.Advance(200 * time.Millisecond)

	if _, err := s.Configure(ports.ConfigurationUpdate{Format: formatPtr(domain.FormatCSV)}); !errors.Is(err, domain.ErrExportInProgress) {
		t.Errorf("Expected ErrExportInProgress, got %v", err)
	}
	if err := s.Open(); !errors.Is(err, domain.ErrExportInProgress) {
		t.Errorf("Expected Open to fail while exporting, got %v", err)
	}
	if s.CanStart() {
		t.Error("CanStart should be false while a job is live")
	}
}

func TestSurfaceClosesAfterCompletion(t *testing.T) {
	s, clk, sink := newTestSurface()
	s.Open()
	s.Configure(ports.ConfigurationUpdate{Format: formatPtr(domain.FormatCSV)})

	s.StartExport()
	clk.Advance(2 * time.Second)
	if s.Job().State != domain.StateComplete {
		t.Fatalf("Expected complete, got %s", s.Job().State)
	}
	clk.Advance(2 * time.Second)

	if s.IsOpen() {
		t.Error("Surface should close when the completed job is dismissed")
	}
	if s.Configuration().Format != domain.FormatPDF {
		t.Error("Closing should reset the configuration")
	}
	if len(sink.saved) != 1 || sink.saved[0].filename != "analytics-export-2025-03-14.csv" {
		t.Errorf("Unexpected downloads %+v", sink.saved)
	}
}

func TestSurfaceCloseCancelsJob(t *testing.T) {
	s, clk, sink := newTestSurface()
	s.Open()
	s.StartExport()
	clk.Advance(time.Second)

	s.Close()
	clk.Advance(5 * time.Second)

	if s.Job().State != domain.StateIdle {
		t.Errorf("Expected idle after close, got %s", s.Job().State)
	}
	if len(sink.saved) != 0 {
		t.Error("Closed surface must not download")
	}
}

func TestRegistryCreatesOneSurfacePerOwner(t *testing.T) {
	clk := clock.NewFake(testStart)
	created := 0
	registry := NewRegistry(func(owner string) *Surface {
		created++
		controller := NewProgressController(owner, clk, artifacts.NewGenerator(), NewDispatcher(newFakeSink()), nil, DefaultControllerSettings())
		return NewSurface(clk, controller)
	})

	a := registry.Get("org-1/alice")
	b := registry.Get("org-1/bob")
	if registry.Get("org-1/alice") != a {
		t.Error("Expected the same surface for the same owner")
	}
	if a == b {
		t.Error("Expected distinct surfaces for distinct owners")
	}
	if created != 2 {
		t.Errorf("Expected 2 surfaces created, got %d", created)
	}

	owners := registry.Owners()
	if len(owners) != 2 || owners[0] != "org-1/alice" || owners[1] != "org-1/bob" {
		t.Errorf("Unexpected owners %v", owners)
	}

	a.Open()
	a.StartExport()
	registry.CloseAll()
	if a.Job().State != domain.StateIdle {
		t.Error("CloseAll should cancel live jobs")
	}
}
