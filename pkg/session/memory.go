package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. The HTTP server uses it
// for sessions opened over the API.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() {
		s.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

func (s *MemoryStore) FindByMap(ctx context.Context, mapName string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *Session
	for _, sess := range s.sessions {
		if sess.Map != mapName || sess.IsExpired() {
			continue
		}
		if found == nil || sess.UpdatedAt.After(found.UpdatedAt) {
			found = sess
		}
	}
	return found, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
