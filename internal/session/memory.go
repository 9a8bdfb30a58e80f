package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/storefront"
)

type memoryEntry struct {
	state    *storefront.State
	lastSeen time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, id string) (*storefront.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.lookup(id); e != nil {
		return e.state.Clone(), nil
	}
	return storefront.NewState(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*storefront.State) error) (*storefront.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := storefront.NewState()
	if e := s.lookup(id); e != nil {
		current = e.state.Clone()
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	s.entries[id] = &memoryEntry{state: current, lastSeen: s.now()}
	return current.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) lookup(id string) *memoryEntry {
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	if s.expired(e) {
		delete(s.entries, id)
		return nil
	}
	return e
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}
