package cartid

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu  sync.RWMutex
	ids map[string]string
}

// NewMemory returns an in-process Store for tests and single-node runs.
func NewMemory() Store {
	return &memoryStore{ids: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, deviceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[deviceID], nil
}

func (s *memoryStore) Set(_ context.Context, deviceID, cartID string) error {
	s.mu.Lock()
	s.ids[deviceID] = cartID
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear(_ context.Context, deviceID string) error {
	s.mu.Lock()
	delete(s.ids, deviceID)
	s.mu.Unlock()
	return nil
}
