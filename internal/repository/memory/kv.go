package memory

import (
	"context"
	"sync"

	"github.com/masumislambadsha/zavisoft/internal/repository"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// KV is an in-process key/value store. Contents are lost on restart.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, apperrors.NotFound("key", key)
	}
	return append([]byte{}, v...), nil
}

// CompareAndSet stores a copy of value under key when key currently holds
// old, or is absent when old is nil.
func (s *KV) CompareAndSet(_ context.Context, key string, old, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, had := s.data[key]
	if !repository.Matches(cur, had, old) {
		return false, nil
	}
	s.data[key] = append([]byte{}, value...)
	return true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Ping always succeeds.
func (s *KV) Ping(context.Context) error { return nil }

// Len returns the number of stored keys.
func (s *KV) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
