package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfiguration(t *testing.T) {
	now := time.Date(2026, 3, 15, 17, 45, 0, 0, time.UTC)
	cfg := DefaultConfiguration(now)

	if cfg.Format != FormatPDF {
		t.Errorf("Expected default format %s, got %s", FormatPDF, cfg.Format)
	}

	if cfg.DateRange.From == nil || cfg.DateRange.From.Format(DateLayout) != "2024-01-01" {
		t.Errorf("Expected default from date 2024-01-01, got %v", cfg.DateRange.From)
	}

	if cfg.DateRange.To == nil || cfg.DateRange.To.Format(DateLayout) != "2026-03-15" {
		t.Errorf("Expected default to date 2026-03-15, got %v", cfg.DateRange.To)
	}

	expected := []MetricKey{MetricRevenue, MetricUsers, MetricConversion, MetricProducts}
	selected := cfg.SelectedMetrics()
	if len(selected) != len(expected) {
		t.Fatalf("Expected %d selected metrics, got %d (%v)", len(expected), len(selected), selected)
	}
	for i := range expected {
		if selected[i] != expected[i] {
			t.Errorf("Expected metric %d to be %s, got %s", i, expected[i], selected[i])
		}
	}

	if !cfg.IncludeCharts || !cfg.IncludeSummary || cfg.IncludeInsights {
		t.Errorf("Unexpected default options: charts=%v summary=%v insights=%v", cfg.IncludeCharts, cfg.IncludeSummary, cfg.IncludeInsights)
	}
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name     string
		metrics  map[MetricKey]bool
		expected bool
	}{
		{
			name:     "No metrics",
			metrics:  map[MetricKey]bool{},
			expected: false,
		},
		{
			name:     "All metrics deselected",
			metrics:  map[MetricKey]bool{MetricRevenue: false, MetricUsers: false},
			expected: false,
		},
		{
			name:     "Single metric",
			metrics:  map[MetricKey]bool{MetricTraffic: true},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ExportConfiguration{Format: FormatCSV, Metrics: tt.metrics}
			if got := cfg.Validate(); got != tt.expected {
				t.Errorf("Validate() = %v; expected %v", got, tt.expected)
			}
		})
	}
}

func TestToggleMetric(t *testing.T) {
	var cfg ExportConfiguration

	cfg.ToggleMetric(MetricProducts)
	if !cfg.Metrics[MetricProducts] {
		t.Error("Expected products to be selected after first toggle")
	}

	cfg.ToggleMetric(MetricProducts)
	if cfg.Metrics[MetricProducts] {
		t.Error("Expected products to be deselected after second toggle")
	}

	if cfg.Validate() {
		t.Error("Expected configuration with no selected metrics to be invalid")
	}
}

func TestSelectedMetricsUsesCatalogOrder(t *testing.T) {
	var cfg ExportConfiguration
	cfg.SetMetric(MetricProducts, true)
	cfg.SetMetric(MetricRevenue, true)

	selected := cfg.SelectedMetrics()
	if len(selected) != 2 || selected[0] != MetricRevenue || selected[1] != MetricProducts {
		t.Errorf("Expected [revenue products], got %v", selected)
	}
}

func TestSetDateRangeDropsClock(t *testing.T) {
	var cfg ExportConfiguration
	from := time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC)
	cfg.SetDateRange(&from, nil)

	if cfg.DateRange.From.Hour() != 0 {
		t.Errorf("Expected from to be a calendar date, got %v", cfg.DateRange.From)
	}
	if cfg.DateRange.To != nil {
		t.Errorf("Expected absent to date, got %v", cfg.DateRange.To)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfiguration(time.Now())
	clone := cfg.Clone()

	cfg.SetMetric(MetricRevenue, false)
	cfg.DateRange.From = nil

	if !clone.Metrics[MetricRevenue] {
		t.Error("Clone should keep revenue selected")
	}
	if clone.DateRange.From == nil {
		t.Error("Clone should keep its from date")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "csv", expected: FormatCSV},
		{input: " Excel ", expected: FormatExcel},
		{input: "PDF", expected: FormatPDF},
		{input: "png", expected: FormatPNG},
		{input: "xlsx", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("ParseFormat(%q) error = %v; expected ErrInvalidFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %s; expected %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatSpec(t *testing.T) {
	tests := []struct {
		format    Format
		mime      string
		baseName  string
		extension string
	}{
		{FormatCSV, "text/csv", "analytics-export", "csv"},
		{FormatExcel, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "analytics-data", "xlsx"},
		{FormatPDF, "application/pdf", "analytics-report", "pdf"},
		{FormatPNG, "text/plain", "chart-images", "txt"},
	}

	for _, tt := range tests {
		spec := tt.format.Spec()
		if spec.Mime != tt.mime || spec.BaseName != tt.baseName || spec.Extension != tt.extension {
			t.Errorf("%s.Spec() = %+v", tt.format, spec)
		}
	}
}

func TestFormatSpecPanicsOnUnknownFormat(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected Spec() to panic for an unknown format")
		}
	}()
	Format("gif").Spec()
}

func TestParseMetricList(t *testing.T) {
	keys, err := ParseMetricList("revenue, users,,products")
	if err != nil {
		t.Fatalf("ParseMetricList failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("Expected 3 keys, got %v", keys)
	}

	if _, err := ParseMetricList("revenue,bogus"); !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("Expected ErrInvalidMetric, got %v", err)
	}
}

func TestMetricTitle(t *testing.T) {
	if MetricUsers.Title() != "Users" {
		t.Errorf("Expected 'Users', got %s", MetricUsers.Title())
	}
	if MetricConversion.Title() != "Conversion" {
		t.Errorf("Expected 'Conversion', got %s", MetricConversion.Title())
	}
}

func TestEstimatedSeconds(t *testing.T) {
	tests := map[int]int{0: 10, 10: 9, 55: 5, 90: 1, 100: 1}
	for progress, expected := range tests {
		if got := EstimatedSeconds(progress); got != expected {
			t.Errorf("EstimatedSeconds(%d) = %d; expected %d", progress, got, expected)
		}
	}
}

func TestExportRunTransitions(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	run := NewExportRun("job-1", "user-1", FormatCSV, []MetricKey{MetricRevenue}, start)

	if run.Status != RunStatusRunning {
		t.Errorf("Expected status %s, got %s", RunStatusRunning, run.Status)
	}

	completed := run.WithCompleted("analytics-export-2025-05-01.csv", start.Add(2*time.Second))
	if completed.Status != RunStatusCompleted || completed.Filename == nil || completed.EndTime == nil {
		t.Errorf("Unexpected completed run: %+v", completed)
	}
	if run.EndTime != nil {
		t.Error("Original run should not be modified")
	}

	failed := run.WithFailed("disk full", start.Add(time.Second))
	if failed.Status != RunStatusFailed || *failed.ErrorMessage != "disk full" {
		t.Errorf("Unexpected failed run: %+v", failed)
	}

	cancelled := run.WithCancelled(start.Add(time.Second))
	if cancelled.Status != RunStatusCancelled {
		t.Errorf("Expected status %s, got %s", RunStatusCancelled, cancelled.Status)
	}
}

func TestConfigurationJSON(t *testing.T) {
	cfg := DefaultConfiguration(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	dateRange := decoded["date_range"].(map[string]interface{})
	if dateRange["from"] != "2024-01-01" || dateRange["to"] != "2026-01-02" {
		t.Errorf("Unexpected date range: %v", dateRange)
	}

	metrics := decoded["metrics"].(map[string]interface{})
	if metrics["traffic"] != false || metrics["revenue"] != true {
		t.Errorf("Unexpected metrics: %v", metrics)
	}
}

func TestIsValidSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		expected bool
	}{
		{"0 * * * *", true},
		{"*/10 * * * *", true},
		{"0 0 12 * * *", false},
		{"invalid cron", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidSchedule(tt.schedule); got != tt.expected {
			t.Errorf("IsValidSchedule(%q) = %v; expected %v", tt.schedule, got, tt.expected)
		}
	}
}

func TestOwnerKey(t *testing.T) {
	owner := OwnerKey("org-1", "alice")
	if owner != "org-1/alice" {
		t.Errorf("Expected org-1/alice, got %s", owner)
	}

	org, user := SplitOwnerKey(owner)
	if org != "org-1" || user != "alice" {
		t.Errorf("Expected (org-1, alice), got (%s, %s)", org, user)
	}

	org, user = SplitOwnerKey("standalone")
	if org != "standalone" || user != "" {
		t.Errorf("Expected (standalone, ''), got (%s, %s)", org, user)
	}
}
