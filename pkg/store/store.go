// Package store persists serialized mind maps under names.
//
// Every backend is a flat key-value map from a map name to the JSON tree
// produced by package io:
//   - file: one JSON envelope per name in a directory (CLI default)
//   - memory: process-local, for tests and the HTTP server's scratch use
//   - redis: one hash holding every map
//   - mongo: one document per map, keyed by name
//   - postgres: one row per map in a single table
//
// # Usage
//
//	s, err := store.Open(ctx, store.Config{Backend: "file", Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.Save(ctx, "plans", data); err != nil {
//	    return err
//	}
//	data, ok, err := s.Load(ctx, "plans")
//
// Load reports a missing name with ok == false and a nil error. Delete and
// Rename of a missing name fail with a NOT_FOUND error, and Rename onto an
// existing name fails with ALREADY_EXISTS.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// Store is the interface for map persistence backends.
type Store interface {
	// Save stores data under name, replacing any previous value.
	Save(ctx context.Context, name string, data []byte) error

	// Load returns the data stored under name. ok is false if there is none.
	Load(ctx context.Context, name string) (data []byte, ok bool, err error)

	// Delete removes name.
	Delete(ctx context.Context, name string) error

	// Rename moves the data stored under oldName to newName.
	Rename(ctx context.Context, oldName, newName string) error

	// List returns all stored names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Record is the envelope the file, memory and redis backends store.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Tree      json.RawMessage `json:"tree"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// newRecord wraps data for name, keeping the identity of prev if present.
func newRecord(name string, data []byte, prev *Record) *Record {
	now := time.Now().UTC()
	r := &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Tree:      json.RawMessage(append([]byte(nil), data...)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
	}
	return r
}

// checkSave validates the arguments of a Save call.
func checkSave(name string, data []byte) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if !json.Valid(data) {
		return errors.New(errors.ErrCodeInvalidFormat, "map %q: data is not valid JSON", name)
	}
	return nil
}

// checkRename validates the arguments of a Rename call.
func checkRename(oldName, newName string) error {
	if err := errors.ValidateName(oldName); err != nil {
		return err
	}
	return errors.ValidateName(newName)
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "map %q not found", name)
}

func alreadyExists(name string) error {
	return errors.New(errors.ErrCodeAlreadyExists, "map %q already exists", name)
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}
