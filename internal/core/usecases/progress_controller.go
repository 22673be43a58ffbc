package usecases

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"analytics-exporter/internal/clock"
	"analytics-exporter/internal/core/artifacts"
	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

const (
	DefaultTickInterval    = 200 * time.Millisecond
	DefaultProgressStep    = 10
	DefaultDisplayDuration = 2 * time.Second
	DefaultDispatchTimeout = 30 * time.Second
)

// ControllerSettings tunes the simulated generation process.
type ControllerSettings struct {
	TickInterval    time.Duration
	ProgressStep    int
	DisplayDuration time.Duration
	DispatchTimeout time.Duration
}

func DefaultControllerSettings() ControllerSettings {
	return ControllerSettings{
		TickInterval:    DefaultTickInterval,
		ProgressStep:    DefaultProgressStep,
		DisplayDuration: DefaultDisplayDuration,
		DispatchTimeout: DefaultDispatchTimeout,
	}
}

func (s ControllerSettings) withDefaults() ControllerSettings {
	d := DefaultControllerSettings()
	if s.TickInterval <= 0 {
		s.TickInterval = d.TickInterval
	}
	if s.ProgressStep <= 0 {
		s.ProgressStep = d.ProgressStep
	}
	if s.DisplayDuration <= 0 {
		s.DisplayDuration = d.DisplayDuration
	}
	if s.DispatchTimeout <= 0 {
		s.DispatchTimeout = d.DispatchTimeout
	}
	return s
}

// ProgressController runs the Idle -> Exporting -> Complete -> Idle lifecycle
// of at most one export job.
type ProgressController struct {
	owner      string
	clock      clock.Clock
	generator  ArtifactGenerator
	dispatcher *Dispatcher
	runRepo    ExportRunRepository
	listeners  []ports.ExportListener
	settings   ControllerSettings

	mu         sync.Mutex
	generation uint64
	job        domain.ExportJob
	config     domain.ExportConfiguration
	run        domain.ExportRun
	timer      clock.Timer
	onClose    func()
}

func NewProgressController(owner string, clk clock.Clock, generator ArtifactGenerator, dispatcher *Dispatcher, runRepo ExportRunRepository, settings ControllerSettings, listeners ...ports.ExportListener) *ProgressController {
	return &ProgressController{
		owner:      owner,
		clock:      clk,
		generator:  generator,
		dispatcher: dispatcher,
		runRepo:    runRepo,
		listeners:  listeners,
		settings:   settings.withDefaults(),
		job:        domain.IdleJob(),
	}
}

// SetOnClose registers the callback signalling the host surface to close
// once a completed job has been displayed.
func (c *ProgressController) SetOnClose(onClose func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = onClose
}

// StartExport begins a job for cfg. It is a no-op returning false when cfg has
// no selected metrics or a job is already live.
func (c *ProgressController) StartExport(cfg domain.ExportConfiguration) bool {
	if !cfg.Validate() {
		log.Printf("[DEBUG] ProgressController - start ignored, no metrics selected: owner=%s", c.owner)
		return false
	}

	c.mu.Lock()
	if c.job.IsLive() {
		c.mu.Unlock()
		log.Printf("[DEBUG] ProgressController - start ignored, job %s is %s", c.job.ID, c.job.State)
		return false
	}

	now := c.clock.Now()
	c.generation++
	c.config = cfg.Clone()
	c.job = domain.ExportJob{
		ID:        uuid.New().String(),
		State:     domain.StateExporting,
		Progress:  0,
		Format:    cfg.Format,
		StartedAt: &now,
	}
	c.run = domain.NewExportRun(c.job.ID, c.owner, cfg.Format, c.config.SelectedMetrics(), now)
	c.timer = c.clock.AfterFunc(c.settings.TickInterval, c.tickFunc(c.generation))

	run := c.run
	event := c.eventLocked(domain.StateIdle)
	c.mu.Unlock()

	log.Printf("[DEBUG] ProgressController - export started: job_id=%s, owner=%s, format=%s", run.ID, c.owner, run.Format)
	c.saveRun(run)
	c.notify(event)
	return true
}

// Cancel stops the pending timer and discards the in-flight job.
func (c *ProgressController) Cancel() bool {
	c.mu.Lock()
	if !c.job.IsLive() {
		c.mu.Unlock()
		return false
	}

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
	previous := c.job.State
	jobID := c.job.ID

	var run *domain.ExportRun
	if previous == domain.StateExporting {
		cancelled := c.run.WithCancelled(c.clock.Now())
		run = &cancelled
	}

	c.job = domain.IdleJob()
	event := c.eventLocked(previous)
	c.mu.Unlock()

	log.Printf("[DEBUG] ProgressController - export cancelled: job_id=%s, state=%s", jobID, previous)
	if run != nil {
		c.saveRun(*run)
	}
	c.notify(event)
	return true
}

// Snapshot returns a copy of the current job.
func (c *ProgressController) Snapshot() domain.ExportJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ProgressController) tickFunc(generation uint64) func() {
	return func() {
		c.tick(generation)
	}
}

func (c *ProgressController) tick(generation uint64) {
	c.mu.Lock()
	if generation != c.generation || c.job.State != domain.StateExporting {
		c.mu.Unlock()
		return
	}

	c.job.Progress += c.settings.ProgressStep
	if c.job.Progress > 100 {
		c.job.Progress = 100
	}

	if c.job.Progress < 100 {
		c.timer = c.clock.AfterFunc(c.settings.TickInterval, c.tickFunc(generation))
		event := c.eventLocked(domain.StateExporting)
		c.mu.Unlock()
		c.notify(event)
		return
	}

	c.timer = nil
	c.complete(generation)
}

// complete generates the artifact and dispatches it. It is entered holding
// c.mu and releases it.
func (c *ProgressController) complete(generation uint64) {
	now := c.clock.Now()
	cfg := c.config

	content, err := c.generator.Generate(cfg.Format, artifacts.Request{
		Metrics:     cfg.SelectedMetrics(),
		DateRange:   cfg.DateRange,
		GeneratedAt: now,
	})
	if err != nil {
		log.Printf("ProgressController - artifact generation failed: job_id=%s, error=%v", c.job.ID, err)
		run := c.run.WithFailed(err.Error(), now)
		c.generation++
		c.job = domain.IdleJob()
		c.job.LastError = err.Error()
		event := c.eventLocked(domain.StateExporting)
		c.mu.Unlock()

		c.saveRun(run)
		c.notify(event)
		return
	}

	spec := cfg.Format.Spec()
	artifact := &domain.Artifact{
		Content:  content.Data,
		Mime:     content.Mime,
		Filename: BuildFilename(spec.BaseName, now, spec.Extension),
		Size:     len(content.Data),
	}
	c.job.Artifact = artifact
	c.job.CompletedAt = &now
	c.job.State = domain.StateComplete
	jobID := c.job.ID
	run := c.run
	// Sent even if the job is cancelled while dispatching: the file is saved
	// either way and listeners must see the attempt finish.
	finished := c.eventLocked(domain.StateExporting)
	c.mu.Unlock()

	log.Printf("[DEBUG] ProgressController - artifact generated: job_id=%s, filename=%s, bytes=%d", jobID, artifact.Filename, artifact.Size)

	ctx, cancel := context.WithTimeout(context.Background(), c.settings.DispatchTimeout)
	dispatchErr := c.dispatcher.Dispatch(ctx, artifact.Content, artifact.Mime, artifact.Filename)
	cancel()

	if dispatchErr != nil {
		log.Printf("ProgressController - download dispatch failed: job_id=%s, error=%v", jobID, dispatchErr)
		run = run.WithFailed(dispatchErr.Error(), c.clock.Now())
	} else {
		run = run.WithCompleted(artifact.Filename, c.clock.Now())
	}
	c.saveRun(run)

	c.mu.Lock()
	if generation != c.generation || c.job.State != domain.StateComplete {
		c.mu.Unlock()
		if dispatchErr != nil {
			finished.Job.LastError = dispatchErr.Error()
		}
		log.Printf("[DEBUG] ProgressController - job %s cancelled while dispatching, reporting outcome", jobID)
		c.notify(finished)
		return
	}
	if dispatchErr != nil {
		c.job.LastError = dispatchErr.Error()
	}
	c.run = run
	c.timer = c.clock.AfterFunc(c.settings.DisplayDuration, c.finishFunc(generation))
	event := c.eventLocked(domain.StateExporting)
	c.mu.Unlock()

	c.notify(event)
}

func (c *ProgressController) finishFunc(generation uint64) func() {
	return func() {
		c.finish(generation)
	}
}

func (c *ProgressController) finish(generation uint64) {
	c.mu.Lock()
	if generation != c.generation || c.job.State != domain.StateComplete {
		c.mu.Unlock()
		return
	}

	c.timer = nil
	c.job = domain.IdleJob()
	onClose := c.onClose
	event := c.eventLocked(domain.StateComplete)
	c.mu.Unlock()

	c.notify(event)
	if onClose != nil {
		onClose()
	}
}

func (c *ProgressController) snapshotLocked() domain.ExportJob {
	job := c.job
	if job.Artifact != nil {
		artifact := *job.Artifact
		job.Artifact = &artifact
	}
	job.EstimatedSeconds = domain.EstimatedSeconds(job.Progress)
	return job
}

func (c *ProgressController) eventLocked(previous domain.JobState) ports.ExportEvent {
	return ports.ExportEvent{Owner: c.owner, Format: c.config.Format, Previous: previous, Job: c.snapshotLocked()}
}

func (c *ProgressController) notify(event ports.ExportEvent) {
	for _, l := range c.listeners {
		l.ExportChanged(event)
	}
}

func (c *ProgressController) saveRun(run domain.ExportRun) {
	if c.runRepo == nil {
		return
	}
	if err := c.runRepo.Save(run); err != nil {
		// History is best effort; the job itself carries on.
		log.Printf("Failed to save export run %s: %v", run.ID, err)
	}
}
