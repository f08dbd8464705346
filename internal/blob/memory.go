package blob

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	next  int64
	items map[int64][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[int64][]byte{}}
}

func (s *MemoryStore) Save(ctx context.Context, data []byte) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.items[s.next] = clone(data)
	return s.next, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) ([]byte, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
