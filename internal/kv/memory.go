package kv

import (
	"context"
	"sync"
)

type memItem struct {
	v       []byte
	version int64
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]memItem{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	_ = ctx
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, 0, false, nil
	}
	return clone(it.v), it.version, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.items[key].version
	if current != expectedVersion {
		return current, ErrVersionConflict
	}
	next := current + 1
	s.items[key] = memItem{v: clone(value), version: next}
	return next, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Keys lists stored keys; used by tests and diagnostics.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	return out
}
