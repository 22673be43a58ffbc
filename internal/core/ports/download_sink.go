package ports

import "context"

// Reference is a transient handle to acquired content, valid until released.
type Reference string

// DownloadSink is the platform capability that turns content into a saved file.
// One implementation exists per host environment.
type DownloadSink interface {
	// Acquire wraps content as a binary object and returns a transient reference to it
	Acquire(content []byte, mime string) (Reference, error)

	// Trigger saves the referenced content as a file named filename
	Trigger(ctx context.Context, ref Reference, filename string) error

	// Release frees the reference. It must be safe to call after a failed Trigger.
	Release(ref Reference)
}
