package sessionstore

import (
	"context"
	"sync"
	"time"

	"goalwidget/internal/identity"
)

// MemStore keeps sessions in process memory. It backs tests and
// single-instance deployments where durability across restarts does not
// matter.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]Data
	now      func() time.Time
}

// NewMemStore builds an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]Data), now: time.Now}
}

func (s *MemStore) Create(_ context.Context, data Data) (string, Data, error) {
	id := identity.NewID()
	data.Normalize(s.now())
	s.mu.Lock()
	s.sessions[id] = data
	s.mu.Unlock()
	return id, data, nil
}

func (s *MemStore) Get(_ context.Context, id string) (Data, error) {
	s.mu.RLock()
	data, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Data{}, ErrNotFound
	}
	return data, nil
}

func (s *MemStore) Put(_ context.Context, id string, data Data) (Data, error) {
	data.Normalize(s.now())
	s.mu.Lock()
	s.sessions[id] = data
	s.mu.Unlock()
	return data, nil
}

func (s *MemStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	limit := cutoff.UnixMilli()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, data := range s.sessions {
		if data.LastUpdated < limit {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemStore) Close() error { return nil }

var _ Store = (*MemStore)(nil)
