package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

const fileExt = ".json"

// FileStore keeps one JSON envelope per map in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/mindcanvas/maps/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, storageErr(err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "mindcanvas", "maps")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, storageErr(err, "create map dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) mapPath(name string) string {
	return filepath.Join(s.baseDir, name+fileExt)
}

func (s *FileStore) read(name string) (*Record, error) {
	data, err := os.ReadFile(s.mapPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr(err, "read map %q", name)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, storageErr(err, "parse map %q", name)
	}
	return &rec, nil
}

func (s *FileStore) write(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return storageErr(err, "marshal map %q", rec.Name)
	}
	if err := os.WriteFile(s.mapPath(rec.Name), data, 0600); err != nil {
		return storageErr(err, "write map %q", rec.Name)
	}
	return nil
}

func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkSave(name, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.read(name)
	if err != nil {
		return err
	}
	return s.write(newRecord(name, data, prev))
}

func (s *FileStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(name)
	if err != nil || rec == nil {
		return nil, false, err
	}
	return []byte(rec.Tree), true, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.mapPath(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return storageErr(err, "delete map %q", name)
	}
	return nil
}

func (s *FileStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkRename(oldName, newName); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(oldName)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, err := os.Stat(s.mapPath(newName)); err == nil {
		return alreadyExists(newName)
	}
	rec.Name = newName
	if err := s.write(rec); err != nil {
		return err
	}
	if err := os.Remove(s.mapPath(oldName)); err != nil {
		return storageErr(err, "remove map %q", oldName)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, storageErr(err, "read map dir")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the map files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
