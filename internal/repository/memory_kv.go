package repository

import (
	"context"
	"sync"

	"pdf-slide-synth/internal/domain"
)

// MemoryKVStore keeps values in process memory.
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string][]byte)}
}

func (s *MemoryKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryKVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryKVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryKVStore) Close() error {
	return nil
}
