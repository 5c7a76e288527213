package cache

import (
	"context"
	"sync"
)

// Snapshot caches one value produced by a loader.
//
// Loads are serialized. Each Invalidate bumps a generation counter; a load
// that started before an invalidation still returns its result to the caller
// but does not make the snapshot valid, so the next Get loads again.
type Snapshot[T any] struct {
	name    string
	metrics *Metrics

	loadMu sync.Mutex // serializes loads

	mu    sync.Mutex
	value T
	valid bool
	gen   uint64
}

// NewSnapshot creates an empty (invalid) snapshot. metrics may be nil.
func NewSnapshot[T any](name string, metrics *Metrics) *Snapshot[T] {
	return &Snapshot[T]{name: name, metrics: metrics}
}

// Get returns the cached value, calling load only when the snapshot is invalid.
// A failed load leaves the snapshot invalid and returns the error.
func (s *Snapshot[T]) Get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Peek(); ok {
		s.metrics.hit(s.name)
		return v, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have loaded while we waited.
	s.mu.Lock()
	if s.valid {
		v := s.value
		s.mu.Unlock()
		s.metrics.hit(s.name)
		return v, nil
	}
	gen := s.gen
	s.mu.Unlock()

	s.metrics.miss(s.name)
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.value = v
		s.valid = true
	}
	s.mu.Unlock()

	return v, nil
}

// Peek returns the cached value without loading.
func (s *Snapshot[T]) Peek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.valid
}

// Valid reports whether the next Get will be served from cache.
func (s *Snapshot[T]) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid
}

// Invalidate discards the cached value so the next Get reloads.
func (s *Snapshot[T]) Invalidate(reason Reason) {
	s.mu.Lock()
	s.gen++
	s.valid = false
	var zero T
	s.value = zero
	s.mu.Unlock()

	s.metrics.invalidated(s.name, reason)
}
