package sink

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/ports"
)

// FilesystemSink saves downloads into a directory. Acquire stages content in
// a temporary file; Trigger moves it into place under the final name.
type FilesystemSink struct {
	dir string

	mu     sync.Mutex
	staged map[ports.Reference]string
}

var _ ports.DownloadSink = (*FilesystemSink)(nil)

func NewFilesystemSink(dir string) (*FilesystemSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &FilesystemSink{dir: dir, staged: make(map[ports.Reference]string)}, nil
}

func (s *FilesystemSink) Dir() string {
	return s.dir
}

func (s *FilesystemSink) Acquire(content []byte, mime string) (ports.Reference, error) {
	f, err := os.CreateTemp(s.dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to set staging file mode: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}

	ref := ports.Reference(filepath.Base(f.Name()))

	s.mu.Lock()
	s.staged[ref] = f.Name()
	s.mu.Unlock()

	log.Printf("[DEBUG] FilesystemSink - staged %d bytes (%s) as %s", len(content), mime, ref)
	return ref, nil
}

func (s *FilesystemSink) Trigger(ctx context.Context, ref ports.Reference, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	tmp, ok := s.staged[ref]
	s.mu.Unlock()
	if !ok {
		return domain.ErrReferenceNotActive
	}

	if filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return fmt.Errorf("invalid download filename %q", filename)
	}

	target := filepath.Join(s.dir, filename)
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to save %s: %w", target, err)
	}

	log.Printf("[DEBUG] FilesystemSink - saved %s", target)
	return nil
}

// Release forgets ref and removes its staging file if Trigger did not move it.
func (s *FilesystemSink) Release(ref ports.Reference) {
	s.mu.Lock()
	tmp, ok := s.staged[ref]
	delete(s.staged, ref)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		log.Printf("FilesystemSink - failed to remove staging file %s: %v", tmp, err)
	}
}
