package store

import (
	"context"
	"slices"
	"sync"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// MemoryStore keeps maps in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkSave(name, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[name] = newRecord(name, data, s.records[name])
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), rec.Tree...), true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[name]; !ok {
		return notFound(name)
	}
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkRename(oldName, newName); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[oldName]
	if !ok {
		return notFound(oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, ok := s.records[newName]; ok {
		return alreadyExists(newName)
	}
	rec.Name = newName
	s.records[newName] = rec
	delete(s.records, oldName)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
