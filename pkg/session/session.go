// Package session keeps the live editing state of a map between CLI
// invocations and HTTP requests.
//
// A [Session] holds everything an [editor.Editor] needs that the map store
// does not: the undo and redo stacks, the selection and the id counter.
// Sessions expire after a TTL; expired sessions read as absent.
//
// # Usage
//
//	sess := session.New("plans", session.DefaultTTL)
//	if err := sess.Capture(ed); err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err := store.FindByMap(ctx, "plans")
//	if err != nil {
//	    return err
//	}
//	if sess != nil {
//	    ed, err = sess.Restore(editor.WithLogger(logger))
//	}
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/history"
	mcio "github.com/tyrandev/mindmap-canvas-sub000/pkg/io"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

	// ErrEmpty is returned when restoring a session that holds no tree.
	ErrEmpty = errors.New(errors.ErrCodeInvalidTree, "session holds no tree")
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 7 * 24 * time.Hour

// Session is the persisted editing state of one map.
type Session struct {
	ID        string            `json:"id"`
	Map       string            `json:"map"`
	Tree      json.RawMessage   `json:"tree,omitempty"`
	Undo      []json.RawMessage `json:"undo,omitempty"`
	Redo      []json.RawMessage `json:"redo,omitempty"`
	Selected  *int              `json:"selected,omitempty"`
	NextID    int               `json:"next_id"`
	// Base is the hash of the stored map this session last agreed with.
	Base      string            `json:"base,omitempty"`
	TTL       time.Duration     `json:"ttl"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// New creates an empty session for the named map.
func New(mapName string, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Map:       mapName,
		TTL:       ttl,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch marks the session as used now and pushes its expiry forward.
func (s *Session) Touch() {
	now := time.Now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(s.TTL)
}

// Capture records the editor's tree, history, selection and id counter.
func (s *Session) Capture(e *editor.Editor) error {
	tree, err := mcio.Marshal(e.Map.Root())
	if err != nil {
		return err
	}
	undo, redo := e.History.Stacks()
	undoRaw, err := marshalAll(undo)
	if err != nil {
		return err
	}
	redoRaw, err := marshalAll(redo)
	if err != nil {
		return err
	}

	s.Tree = tree
	s.Undo = undoRaw
	s.Redo = redoRaw
	s.NextID = e.Map.PeekNextID()
	s.Selected = nil
	if sel := e.Selected(); sel != nil {
		id := sel.ID
		s.Selected = &id
	}
	s.Touch()
	return nil
}

// Restore builds an editor from the captured state. A selection whose id
// no longer exists is dropped.
func (s *Session) Restore(opts ...editor.Option) (*editor.Editor, error) {
	if len(s.Tree) == 0 {
		return nil, ErrEmpty
	}
	root, err := mcio.Unmarshal(s.Tree)
	if err != nil {
		return nil, err
	}
	m, err := mindmap.New(root)
	if err != nil {
		return nil, err
	}
	m.AdvanceNextID(s.NextID)

	undo, err := unmarshalAll(s.Undo)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "session %s: undo stack", s.ID)
	}
	redo, err := unmarshalAll(s.Redo)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "session %s: redo stack", s.ID)
	}
	h := history.New()
	h.Restore(undo, redo)

	e := editor.New(m, append([]editor.Option{editor.WithHistory(h)}, opts...)...)
	if s.Selected != nil {
		if sel, ok := m.Lookup(*s.Selected); ok {
			_ = e.Select(sel)
		}
	}
	return e, nil
}

func marshalAll(roots []*shape.Shape) ([]json.RawMessage, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	out := make([]json.RawMessage, len(roots))
	for i, r := range roots {
		data, err := mcio.Marshal(r)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

func unmarshalAll(raw []json.RawMessage) ([]*shape.Shape, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]*shape.Shape, len(raw))
	for i, data := range raw {
		root, err := mcio.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out[i] = root
	}
	return out, nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// FindByMap returns the live session for a map name, or nil, nil.
	FindByMap(ctx context.Context, mapName string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
