package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/buildinfo"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/cache"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	mcio "github.com/tyrandev/mindmap-canvas-sub000/pkg/io"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render/sink"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/session"
)

const (
	// maxBodyBytes bounds request bodies (trees and commands).
	maxBodyBytes = 8 << 20

	cleanupInterval = time.Minute
	shutdownTimeout = 5 * time.Second
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve a JSON API over the map store.

  GET    /maps                      list map names
  GET    /maps/{name}               read a map's JSON tree
  PUT    /maps/{name}               store a JSON tree
  DELETE /maps/{name}               delete a map
  POST   /maps/{name}/rename        rename a map: {"name": "new"}
  GET    /maps/{name}/render.{fmt}  render a map (svg, png, pdf, dot, graphviz, txt, json)
  POST   /sessions                  open an editing session: {"map": "name"}
  GET    /sessions/{id}             read a session
  DELETE /sessions/{id}             close a session
  POST   /sessions/{id}/commands    dispatch an editor command
  POST   /sessions/{id}/save        write the session's tree to the store

Sessions live in memory and expire after the configured session TTL.
Saving answers 409 when the stored map changed after the session opened.
Deleting a map closes its sessions; renaming it carries them along.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache || c.Config.Render.NoCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg ServerConfig, noCache bool) error {
	maps, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer maps.Close()

	artifacts, err := newCache(noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	ws := newWorkspace(maps, session.NewMemoryStore(), c.Logger, cfg.SessionTTL, c.editorOptions()...)
	srv := newServer(ws, &renderer{
		cache: artifacts,
		keyer: cache.NewScopedKeyer(cache.NewDefaultKeyer(), "http:"),
		cfg:   c.Config.Render,
	}, c.Logger)

	go srv.cleanup(ctx, cleanupInterval)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Addr, "store", c.Config.Store.Backend)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

// server implements the HTTP API over a workspace with in-memory sessions.
type server struct {
	ws     *workspace
	render *renderer
	logger *log.Logger

	// mu guards the sessions handed out by the memory store.
	mu sync.Mutex
}

func newServer(ws *workspace, r *renderer, logger *log.Logger) *server {
	return &server{ws: ws, render: r, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
	})

	r.Route("/maps", func(r chi.Router) {
		r.Get("/", s.listMaps)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.getMap)
			r.Put("/", s.putMap)
			r.Delete("/", s.deleteMap)
			r.Post("/rename", s.renameMap)
			r.Get("/render.{format}", s.renderMap)
		})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.openSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.closeSession)
			r.Post("/commands", s.dispatch)
			r.Post("/save", s.saveSession)
		})
	})

	return r
}

// logRequests logs one line per request at debug level, or at warn level
// for server errors.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request failed", kv...)
			return
		}
		s.logger.Debug("request", kv...)
	})
}

// cleanup drops expired sessions until ctx is done.
func (s *server) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ws.sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// =============================================================================
// Maps
// =============================================================================

func (s *server) listMaps(w http.ResponseWriter, r *http.Request) {
	names, err := s.ws.maps.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"maps": names})
}

func (s *server) getMap(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, ok, err := s.ws.maps.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "map %q not found", name))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *server) putMap(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	root, err := mcio.ReadJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := mindmap.New(root)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := mcio.Marshal(m.Root())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ws.maps.Save(r.Context(), name, data); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) deleteMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ws.maps.Delete(ctx, name); err != nil {
		writeError(w, err)
		return
	}
	for {
		sess, err := s.ws.sessions.FindByMap(ctx, name)
		if err != nil {
			writeError(w, err)
			return
		}
		if sess == nil {
			break
		}
		if err := s.ws.sessions.Delete(ctx, sess.ID); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) renameMap(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	oldName := chi.URLParam(r, "name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ws.maps.Rename(ctx, oldName, body.Name); err != nil {
		writeError(w, err)
		return
	}
	// Open sessions follow the map.
	for {
		sess, err := s.ws.sessions.FindByMap(ctx, oldName)
		if err != nil {
			writeError(w, err)
			return
		}
		if sess == nil {
			break
		}
		sess.Map = body.Name
		if err := s.ws.sessions.Set(ctx, sess); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) renderMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := sink.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	root, err := s.ws.loadTree(ctx, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, cached, err := s.render.render(ctx, root, f)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(data)
}

// =============================================================================
// Sessions
// =============================================================================

// sessionView is the JSON form of a session.
type sessionView struct {
	ID        string          `json:"id"`
	Map       string          `json:"map"`
	Tree      json.RawMessage `json:"tree"`
	Selected  *int            `json:"selected,omitempty"`
	Undo      int             `json:"undo"`
	Redo      int             `json:"redo"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:        sess.ID,
		Map:       sess.Map,
		Tree:      sess.Tree,
		Selected:  sess.Selected,
		Undo:      len(sess.Undo),
		Redo:      len(sess.Redo),
		ExpiresAt: sess.ExpiresAt,
	}
}

// commandResult is the response to a dispatched command.
type commandResult struct {
	Applied bool        `json:"applied"`
	Node    *int        `json:"node,omitempty"`
	Session sessionView `json:"session"`
}

func (s *server) openSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body struct {
		Map string `json:"map"`
	}
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateName(body.Map); err != nil {
		writeError(w, err)
		return
	}
	root, err := s.ws.loadTree(ctx, body.Map)
	if err != nil {
		writeError(w, err)
		return
	}
	e, sess, err := s.ws.start(body.Map, root)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Capture(e); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ws.sessions.Set(ctx, sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

// session looks up the live session named in the URL.
func (s *server) session(r *http.Request) (*session.Session, error) {
	sess, err := s.ws.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *server) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) dispatch(w http.ResponseWriter, r *http.Request) {
	var cmd editor.Command
	if err := readJSON(w, r, &cmd); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := sess.Restore(s.ws.opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := e.Dispatch(cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Capture(e); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ws.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}

	out := commandResult{Applied: res.Applied, Session: viewOf(sess)}
	if res.Node != nil {
		out.Node = editor.NodeID(res.Node.ID)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) saveSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	stored, err := s.ws.storedHash(ctx, sess.Map)
	if err != nil {
		writeError(w, err)
		return
	}
	if stored != sess.Base {
		writeError(w, errors.New(errors.ErrCodeConflict,
			"map %q changed since session %s was opened", sess.Map, sess.ID))
		return
	}
	if err := s.ws.maps.Save(ctx, sess.Map, sess.Tree); err != nil {
		writeError(w, err)
		return
	}
	saved, err := mcio.Unmarshal(sess.Tree)
	if err == nil {
		sess.Base, err = treeHash(saved)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ws.sessions.Set(ctx, sess); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// JSON helpers
// =============================================================================

// apiError is the body of every error response.
type apiError struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), map[string]apiError{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}

// readJSON decodes a bounded request body into v.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrCodeInvalidInput, "empty request body")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}
