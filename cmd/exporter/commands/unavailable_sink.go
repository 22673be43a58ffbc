package commands

import (
	"context"

	"analytics-exporter/internal/core/ports"
)

// unavailableSink stands in for a sink whose storage could not be prepared
type unavailableSink struct {
	err error
}

func (s unavailableSink) Acquire(content []byte, mime string) (ports.Reference, error) {
	return "", s.err
}

func (s unavailableSink) Trigger(ctx context.Context, ref ports.Reference, filename string) error {
	return s.err
}

func (s unavailableSink) Release(ref ports.Reference) {}
