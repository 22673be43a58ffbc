package sink

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

// File is a download held by a MemorySink.
type File struct {
	Filename string
	Mime     string
	Content  []byte
}

// MemorySink keeps acquired content as blobs addressed by a random token and
// publishes triggered downloads in a download area keyed by filename.
type MemorySink struct {
	mu        sync.RWMutex
	blobs     map[ports.Reference]File
	downloads map[string]File
}

var _ ports.DownloadSink = (*MemorySink)(nil)

func NewMemorySink() *MemorySink {
	return &MemorySink{
		blobs:     make(map[ports.Reference]File),
		downloads: make(map[string]File),
	}
}

func (s *MemorySink) Acquire(content []byte, mime string) (ports.Reference, error) {
	ref := ports.Reference(uuid.New().String())

	s.mu.Lock()
	s.blobs[ref] = File{Mime: mime, Content: append([]byte(nil), content...)}
	s.mu.Unlock()

	return ref, nil
}

func (s *MemorySink) Trigger(ctx context.Context, ref ports.Reference, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.blobs[ref]
	if !ok {
		return domain.ErrReferenceNotActive
	}
	blob.Filename = filename
	s.downloads[filename] = blob

	log.Printf("[DEBUG] MemorySink - download ready: filename=%s, bytes=%d", filename, len(blob.Content))
	return nil
}

func (s *MemorySink) Release(ref ports.Reference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, ref)
}

// Open returns the most recent download saved under filename.
func (s *MemorySink) Open(filename string) (File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.downloads[filename]
	if !ok {
		return File{}, domain.ErrDownloadNotFound
	}
	return f, nil
}

// Active returns the number of references not yet released.
func (s *MemorySink) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
