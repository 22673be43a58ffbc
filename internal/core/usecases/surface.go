package usecases

import (
	"log"
	"sort"
	"sync"

	"analytics-exporter/internal/clock"
	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

// Surface is one export dialog. It owns the configuration the user edits and
// the progress controller that runs jobs from it.
type Surface struct {
	clock      clock.Clock
	controller *ProgressController

	mu     sync.Mutex
	config domain.ExportConfiguration
	open   bool
}

var _ ports.ExportSurface = (*Surface)(nil)

func NewSurface(clk clock.Clock, controller *ProgressController) *Surface {
	s := &Surface{
		clock:      clk,
		controller: controller,
		config:     domain.DefaultConfiguration(clk.Now()),
	}
	controller.SetOnClose(s.Close)
	return s
}

func (s *Surface) Open() error {
	if s.controller.Snapshot().IsLive() {
		return domain.ErrExportInProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = domain.DefaultConfiguration(s.clock.Now())
	s.open = true
	return nil
}

func (s *Surface) Close() {
	s.controller.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = domain.DefaultConfiguration(s.clock.Now())
	s.open = false
}

// IsOpen reports whether the surface has been opened and not closed since.
func (s *Surface) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Surface) Configuration() domain.ExportConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Clone()
}

// Configure applies update atomically. Changes are rejected while a job is live
// so the running job and the displayed configuration cannot diverge.
func (s *Surface) Configure(update ports.ConfigurationUpdate) (domain.ExportConfiguration, error) {
	if s.controller.Snapshot().IsLive() {
		return domain.ExportConfiguration{}, domain.ErrExportInProgress
	}

	if update.Format != nil && !domain.IsValidFormat(string(*update.Format)) {
		return domain.ExportConfiguration{}, domain.ErrInvalidFormat
	}
	for key := range update.Metrics {
		if !domain.IsValidMetricKey(string(key)) {
			return domain.ExportConfiguration{}, domain.ErrInvalidMetric
		}
	}
	for _, key := range update.ToggleMetrics {
		if !domain.IsValidMetricKey(string(key)) {
			return domain.ExportConfiguration{}, domain.ErrInvalidMetric
		}
	}
	if update.SetDateRange && update.From != nil && update.To != nil && update.From.After(*update.To) {
		return domain.ExportConfiguration{}, domain.ErrInvalidDateRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.config.Clone()
	if update.Format != nil {
		cfg.SetFormat(*update.Format)
	}
	for key, selected := range update.Metrics {
		cfg.SetMetric(key, selected)
	}
	for _, key := range update.ToggleMetrics {
		cfg.ToggleMetric(key)
	}
	if update.SetDateRange {
		cfg.SetDateRange(update.From, update.To)
	}

	charts, summary, insights := cfg.IncludeCharts, cfg.IncludeSummary, cfg.IncludeInsights
	if update.IncludeCharts != nil {
		charts = *update.IncludeCharts
	}
	if update.IncludeSummary != nil {
		summary = *update.IncludeSummary
	}
	if update.IncludeInsights != nil {
		insights = *update.IncludeInsights
	}
	cfg.SetOptions(charts, summary, insights)

	s.config = cfg
	return cfg.Clone(), nil
}

func (s *Surface) CanStart() bool {
	s.mu.Lock()
	valid := s.config.Validate()
	s.mu.Unlock()
	return valid && !s.controller.Snapshot().IsLive()
}

func (s *Surface) StartExport() bool {
	cfg := s.Configuration()
	return s.controller.StartExport(cfg)
}

func (s *Surface) Cancel() bool {
	return s.controller.Cancel()
}

func (s *Surface) Job() domain.ExportJob {
	return s.controller.Snapshot()
}

// SurfaceFactory builds the surface of a newly seen owner.
type SurfaceFactory func(owner string) *Surface

// Registry keeps one Surface per owner, created on first use.
type Registry struct {
	factory SurfaceFactory

	mu       sync.Mutex
	surfaces map[string]*Surface
}

func NewRegistry(factory SurfaceFactory) *Registry {
	return &Registry{
		factory:  factory,
		surfaces: make(map[string]*Surface),
	}
}

func (r *Registry) Get(owner string) *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.surfaces[owner]; ok {
		return s
	}

	log.Printf("[DEBUG] Registry - creating export surface for owner=%s", owner)
	s := r.factory(owner)
	r.surfaces[owner] = s
	return s
}

// Owners returns the owners with a surface, sorted.
func (r *Registry) Owners() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	owners := make([]string, 0, len(r.surfaces))
	for owner := range r.surfaces {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// CloseAll closes every surface, cancelling their in-flight jobs.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	surfaces := make([]*Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		surfaces = append(surfaces, s)
	}
	r.mu.Unlock()

	for _, s := range surfaces {
		s.Close()
	}
}
