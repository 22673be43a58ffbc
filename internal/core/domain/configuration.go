package domain

import (
	"encoding/json"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange bounds an export. Either end may be absent.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ExportConfiguration is the user-chosen format, date range and metric
// selection driving one export.
type ExportConfiguration struct {
	Format          Format             `json:"format"`
	DateRange       DateRange          `json:"date_range"`
	Metrics         map[MetricKey]bool `json:"-"`
	IncludeCharts   bool               `json:"include_charts"`
	IncludeSummary  bool               `json:"include_summary"`
	IncludeInsights bool               `json:"include_insights"`
}

// DefaultConfiguration returns the configuration an export surface opens with.
func DefaultConfiguration(now time.Time) ExportConfiguration {
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := CivilDate(now)

	return ExportConfiguration{
		Format:    FormatPDF,
		DateRange: DateRange{From: &from, To: &to},
		Metrics: map[MetricKey]bool{
			MetricRevenue:    true,
			MetricUsers:      true,
			MetricConversion: true,
			MetricTraffic:    false,
			MetricProducts:   true,
		},
		IncludeCharts:   true,
		IncludeSummary:  true,
		IncludeInsights: false,
	}
}

// CivilDate drops the clock part of t, keeping its calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c *ExportConfiguration) SetFormat(format Format) {
	c.Format = format
}

func (c *ExportConfiguration) ToggleMetric(key MetricKey) {
	c.SetMetric(key, !c.Metrics[key])
}

func (c *ExportConfiguration) SetMetric(key MetricKey, selected bool) {
	if c.Metrics == nil {
		c.Metrics = make(map[MetricKey]bool)
	}
	c.Metrics[key] = selected
}

// SetDateRange replaces both ends of the range. A nil end means absent.
func (c *ExportConfiguration) SetDateRange(from, to *time.Time) {
	c.DateRange = DateRange{From: civilPtr(from), To: civilPtr(to)}
}

func (c *ExportConfiguration) SetOptions(includeCharts, includeSummary, includeInsights bool) {
	c.IncludeCharts = includeCharts
	c.IncludeSummary = includeSummary
	c.IncludeInsights = includeInsights
}

// SelectedMetrics returns the selected keys in catalog order.
func (c ExportConfiguration) SelectedMetrics() []MetricKey {
	var selected []MetricKey
	for _, key := range MetricCatalog() {
		if c.Metrics[key] {
			selected = append(selected, key)
		}
	}
	return selected
}

// Validate reports whether an export may start with this configuration.
func (c ExportConfiguration) Validate() bool {
	return len(c.SelectedMetrics()) > 0
}

// Clone returns a deep copy so a running job is unaffected by later edits.
func (c ExportConfiguration) Clone() ExportConfiguration {
	clone := c
	clone.DateRange = DateRange{From: copyTime(c.DateRange.From), To: copyTime(c.DateRange.To)}
	clone.Metrics = make(map[MetricKey]bool, len(c.Metrics))
	for k, v := range c.Metrics {
		clone.Metrics[k] = v
	}
	return clone
}

func (c ExportConfiguration) MarshalJSON() ([]byte, error) {
	var from, to *string
	if c.DateRange.From != nil {
		s := c.DateRange.From.Format(DateLayout)
		from = &s
	}
	if c.DateRange.To != nil {
		s := c.DateRange.To.Format(DateLayout)
		to = &s
	}
	metrics := make(map[string]bool, len(MetricCatalog()))
	for _, key := range MetricCatalog() {
		metrics[string(key)] = c.Metrics[key]
	}
	return json.Marshal(struct {
		Format          Format          `json:"format"`
		DateRange       map[string]any  `json:"date_range"`
		Metrics         map[string]bool `json:"metrics"`
		IncludeCharts   bool            `json:"include_charts"`
		IncludeSummary  bool            `json:"include_summary"`
		IncludeInsights bool            `json:"include_insights"`
	}{
		Format:          c.Format,
		DateRange:       map[string]any{"from": from, "to": to},
		Metrics:         metrics,
		IncludeCharts:   c.IncludeCharts,
		IncludeSummary:  c.IncludeSummary,
		IncludeInsights: c.IncludeInsights,
	})
}

func civilPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := CivilDate(*t)
	return &d
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
