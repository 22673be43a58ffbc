package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

// BuildFilename returns "<baseName>-<YYYY-MM-DD>.<extension>" for the day the
// download happens.
func BuildFilename(baseName string, currentDate time.Time, extension string) string {
	return fmt.Sprintf("%s-%s.%s", baseName, currentDate.Format(domain.DateLayout), extension)
}

// Dispatcher hands generated content to a DownloadSink.
type Dispatcher struct {
	sink ports.DownloadSink
}

func NewDispatcher(sink ports.DownloadSink) *Dispatcher {
	return &Dispatcher{sink: sink}
}

// Dispatch saves content under filename. The transient reference acquired
// from the sink is always released, including when the trigger fails.
func (d *Dispatcher) Dispatch(ctx context.Context, content []byte, mime, filename string) error {
	ref, err := d.sink.Acquire(content, mime)
	if err != nil {
		return fmt.Errorf("failed to acquire download reference: %w", err)
	}
	defer d.sink.Release(ref)

	log.Printf("[DEBUG] Dispatcher - triggering download: filename=%s, mime=%s, bytes=%d", filename, mime, len(content))

	if err := d.sink.Trigger(ctx, ref, filename); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}
