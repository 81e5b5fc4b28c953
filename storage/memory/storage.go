// Package memory implements storage.Storage in process memory.
// Safe for concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/storage"
)

var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Lister  = (*Storage)(nil)
)

// Storage is a map-backed blob store.
type Storage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns a new empty Storage.
func New() *Storage {
	return &Storage{blobs: make(map[string][]byte)}
}

// Name returns "memory".
func (s *Storage) Name() string { return "memory" }

// WritePath stores a copy of data.
func (s *Storage) WritePath(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

// ReadPath returns a copy of the stored data.
func (s *Storage) ReadPath(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", supremetask.ErrKeyNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// List returns the keys under dir.
func (s *Storage) List(_ context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored blobs.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
