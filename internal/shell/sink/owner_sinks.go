package sink

import "sync"

// OwnerSinks hands out one MemorySink per owner so downloads with the same
// date-stamped filename never collide between users.
type OwnerSinks struct {
	mu    sync.Mutex
	sinks map[string]*MemorySink
}

func NewOwnerSinks() *OwnerSinks {
	return &OwnerSinks{sinks: make(map[string]*MemorySink)}
}

// For returns the owner's sink, creating it on first use.
func (o *OwnerSinks) For(owner string) *MemorySink {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.sinks[owner]
	if !ok {
		s = NewMemorySink()
		o.sinks[owner] = s
	}
	return s
}

// Open returns a download saved by the owner's sink.
func (o *OwnerSinks) Open(owner, filename string) (File, error) {
	return o.For(owner).Open(filename)
}
