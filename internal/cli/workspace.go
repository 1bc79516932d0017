package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/cache"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	mcio "github.com/tyrandev/mindmap-canvas-sub000/pkg/io"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/session"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/store"
)

// workspace pairs the map store with a session store. The CLI keeps
// sessions on disk, the HTTP server in memory.
type workspace struct {
	maps     store.Store
	sessions session.Store
	logger   *log.Logger
	ttl      time.Duration
	opts     []editor.Option
}

func newWorkspace(maps store.Store, sessions session.Store, logger *log.Logger, ttl time.Duration, opts ...editor.Option) *workspace {
	if logger == nil {
		logger = log.Default()
	}
	return &workspace{
		maps:     maps,
		sessions: sessions,
		logger:   logger,
		ttl:      ttl,
		opts:     opts,
	}
}

// openWorkspace opens the configured map store and the CLI session store.
func (c *CLI) openWorkspace(ctx context.Context) (*workspace, error) {
	maps, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := c.openSessions()
	if err != nil {
		_ = maps.Close()
		return nil, err
	}
	return newWorkspace(maps, sessions, c.Logger, c.Config.Sessions.TTL, c.editorOptions()...), nil
}

func (w *workspace) Close() error {
	return w.maps.Close()
}

// loadTree reads and decodes a stored map.
func (w *workspace) loadTree(ctx context.Context, name string) (*shape.Shape, error) {
	data, ok, err := w.maps.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "map %q not found", name)
	}
	return mcio.Unmarshal(data)
}

// open returns an editor for the named map, resumed from its live
// session when there is one. A session that no longer decodes, or that
// was built on a different version of the stored map, is discarded and
// the map is reopened from the store.
func (w *workspace) open(ctx context.Context, name string) (*editor.Editor, *session.Session, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, nil, err
	}
	root, err := w.loadTree(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	stored, err := treeHash(root)
	if err != nil {
		return nil, nil, err
	}

	sess, err := w.sessions.FindByMap(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if sess != nil {
		switch e, err := sess.Restore(w.opts...); {
		case err != nil:
			w.logger.Warn("discarding unreadable session", "map", name, "session", sess.ID, "err", err)
		case sess.Base != stored:
			w.logger.Warn("map changed outside this session, history dropped", "map", name, "session", sess.ID)
		default:
			w.logger.Debug("resumed session", "map", name, "session", sess.ID)
			return e, sess, nil
		}
		if err := w.sessions.Delete(ctx, sess.ID); err != nil {
			return nil, nil, err
		}
	}
	return w.start(name, root)
}

// start begins a fresh session over root with empty history.
func (w *workspace) start(name string, root *shape.Shape) (*editor.Editor, *session.Session, error) {
	base, err := treeHash(root)
	if err != nil {
		return nil, nil, err
	}
	m, err := mindmap.New(root)
	if err != nil {
		return nil, nil, err
	}
	sess := session.New(name, w.ttl)
	sess.Base = base
	return editor.New(m, w.opts...), sess, nil
}

// commit captures the editor into the session and persists both the map
// and the session.
func (w *workspace) commit(ctx context.Context, e *editor.Editor, sess *session.Session) error {
	if err := sess.Capture(e); err != nil {
		return err
	}
	if err := w.maps.Save(ctx, sess.Map, sess.Tree); err != nil {
		return err
	}
	saved, err := mcio.Unmarshal(sess.Tree)
	if err != nil {
		return err
	}
	if sess.Base, err = treeHash(saved); err != nil {
		return err
	}
	return w.sessions.Set(ctx, sess)
}

// storedHash hashes the map as it is currently stored.
func (w *workspace) storedHash(ctx context.Context, name string) (string, error) {
	root, err := w.loadTree(ctx, name)
	if err != nil {
		return "", err
	}
	return treeHash(root)
}

// treeHash identifies a tree by its encoding. Stores may reformat the
// bytes they are given, so hashes are always taken over a fresh encoding
// of a decoded tree.
func treeHash(root *shape.Shape) (string, error) {
	data, err := mcio.Marshal(root)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// forget drops the live session of a map, if any.
func (w *workspace) forget(ctx context.Context, name string) error {
	sess, err := w.sessions.FindByMap(ctx, name)
	if err != nil || sess == nil {
		return err
	}
	w.logger.Debug("dropping session", "map", name, "session", sess.ID)
	return w.sessions.Delete(ctx, sess.ID)
}

// edit builds one command against the named map, dispatches it and
// commits the result. Nothing is persisted when the command fails.
func (w *workspace) edit(ctx context.Context, name string, build func(*editor.Editor) (editor.Command, error)) (editor.Result, *editor.Editor, error) {
	e, sess, err := w.open(ctx, name)
	if err != nil {
		return editor.Result{}, nil, err
	}
	cmd, err := build(e)
	if err != nil {
		return editor.Result{}, e, err
	}
	res, err := e.Dispatch(cmd)
	if err != nil {
		return res, e, err
	}
	if err := w.commit(ctx, e, sess); err != nil {
		return res, e, err
	}
	return res, e, nil
}
