package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is the in-process Store implementation. It backs single-node
// deployments and all tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]Snapshot
	subs   map[string]map[uint64]func(Snapshot)
	nextID uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]Snapshot),
		subs:   make(map[string]map[uint64]func(Snapshot)),
	}
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(path string, fn func(Snapshot)) UnsubscribeFunc {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[path] == nil {
		s.subs[path] = make(map[uint64]func(Snapshot))
	}
	s.subs[path][id] = fn
	current, ok := s.values[path]
	s.mu.Unlock()

	if ok {
		fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[path], id)
			s.mu.Unlock()
		})
	}
}

// Publish implements Store.
func (s *MemoryStore) Publish(_ context.Context, path string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values[path] = encoded
	// Copy the subscriber list so callbacks run outside the lock and may
	// subscribe or publish themselves.
	fns := make([]func(Snapshot), 0, len(s.subs[path]))
	for _, fn := range s.subs[path] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(encoded)
	}
	return nil
}

// Current returns the stored value at path, if any.
func (s *MemoryStore) Current(path string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[path]
	return v, ok
}
