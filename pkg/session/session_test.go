package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

func quiet() editor.Option {
	return editor.WithLogger(log.New(io.Discard))
}

// edited returns an editor with two children added and the second one
// removed again, leaving id 2 freed and child 1 selected.
func edited(t *testing.T) *editor.Editor {
	t.Helper()
	e := editor.New(nil, quiet())
	root := e.Map.Root()
	c1, err := e.AddConnectedChild(root, root.X+200, root.Y)
	if err != nil || c1 == nil {
		t.Fatalf("add: %v", err)
	}
	c2, err := e.AddConnectedChild(root, root.X, root.Y+200)
	if err != nil || c2 == nil {
		t.Fatalf("add: %v", err)
	}
	if ok, err := e.RemoveNode(c2); !ok || err != nil {
		t.Fatalf("remove: %v, %v", ok, err)
	}
	if err := e.Select(c1); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCaptureRestore(t *testing.T) {
	e := edited(t)
	sess := New("plans", time.Hour)
	if err := sess.Capture(e); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if sess.NextID != 3 {
		t.Errorf("NextID = %d, want 3", sess.NextID)
	}
	if sess.Selected == nil || *sess.Selected != 1 {
		t.Errorf("Selected = %v, want 1", sess.Selected)
	}

	got, err := sess.Restore(quiet())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !shape.Equal(got.Map.Root(), e.Map.Root()) {
		t.Error("restored tree differs")
	}
	if got.Selected() == nil || got.Selected().ID != 1 {
		t.Errorf("restored selection = %v, want id 1", got.Selected())
	}
	if id := got.Map.PeekNextID(); id != 3 {
		t.Errorf("restored PeekNextID = %d, want 3", id)
	}
	wantUndo, wantRedo := e.History.Depth()
	gotUndo, gotRedo := got.History.Depth()
	if gotUndo != wantUndo || gotRedo != wantRedo {
		t.Errorf("history depth = %d/%d, want %d/%d", gotUndo, gotRedo, wantUndo, wantRedo)
	}

	// Undo in the restored editor brings back the removed child.
	if !got.Undo() {
		t.Fatal("Undo after restore reported nothing to undo")
	}
	if _, ok := got.Map.Lookup(2); !ok {
		t.Error("undo did not restore node 2")
	}
}

func TestRestoreDropsStaleSelection(t *testing.T) {
	e := edited(t)
	sess := New("plans", time.Hour)
	if err := sess.Capture(e); err != nil {
		t.Fatal(err)
	}
	stale := 42
	sess.Selected = &stale
	got, err := sess.Restore(quiet())
	if err != nil {
		t.Fatal(err)
	}
	if got.Selected() != nil {
		t.Errorf("selection = %v, want nil", got.Selected())
	}
}

func TestRestoreErrors(t *testing.T) {
	if _, err := New("x", 0).Restore(); err != ErrEmpty {
		t.Errorf("Restore(empty) = %v, want ErrEmpty", err)
	}
	sess := New("x", 0)
	sess.Tree = []byte(`{"id":0,"x":0,"y":0,"text":"t"}`)
	if _, err := sess.Restore(); !errors.Is(err, errors.ErrCodeUnknownNodeType) {
		t.Errorf("Restore(bad tree) = %v, want UNKNOWN_NODE_TYPE", err)
	}
}

func TestExpiry(t *testing.T) {
	sess := New("x", time.Hour)
	if sess.IsExpired() {
		t.Error("fresh session expired")
	}
	if sess.TTL != time.Hour {
		t.Errorf("TTL = %v", sess.TTL)
	}
	sess.ExpiresAt = time.Now().Add(-time.Second)
	if !sess.IsExpired() {
		t.Error("past expiry not reported")
	}
	sess.Touch()
	if sess.IsExpired() {
		t.Error("Touch did not extend expiry")
	}
	if New("x", 0).TTL != DefaultTTL {
		t.Error("zero ttl did not select DefaultTTL")
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	live := New("plans", time.Hour)
	live.Tree = []byte(`{}`)
	older := New("plans", time.Hour)
	older.UpdatedAt = live.UpdatedAt.Add(-time.Minute)
	other := New("other", time.Hour)
	expired := New("plans", time.Hour)
	expired.UpdatedAt = live.UpdatedAt.Add(time.Minute)
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	for _, sess := range []*Session{live, older, other, expired} {
		if err := s.Set(ctx, sess); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	got, err := s.Get(ctx, live.ID)
	if err != nil || got == nil || got.Map != "plans" {
		t.Fatalf("Get(live) = %v, %v", got, err)
	}
	if got, _ := s.Get(ctx, "missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	found, err := s.FindByMap(ctx, "plans")
	if err != nil || found == nil || found.ID != live.ID {
		t.Errorf("FindByMap(plans) = %v, %v; want %s", found, err, live.ID)
	}
	if found, _ := s.FindByMap(ctx, "nothing"); found != nil {
		t.Errorf("FindByMap(nothing) = %v, want nil", found)
	}

	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if got, _ := s.Get(ctx, expired.ID); got != nil {
		t.Error("expired session survived cleanup")
	}

	if err := s.Delete(ctx, live.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, live.ID); got != nil {
		t.Error("deleted session still present")
	}
	if err := s.Delete(ctx, live.ID); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
	if s.Path() != dir {
		t.Errorf("Path() = %q", s.Path())
	}
}

func TestFileStoreExpiredGetRemovesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	sess := New("x", time.Hour)
	sess.ExpiresAt = time.Now().Add(-time.Second)
	if err := s.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, sess.ID); got != nil {
		t.Fatal("expired session returned")
	}
	if _, err := os.Stat(filepath.Join(dir, sess.ID+".json")); !os.IsNotExist(err) {
		t.Errorf("expired session file still exists: %v", err)
	}
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got, err := s.Get(context.Background(), "../escape"); got != nil || err != nil {
		t.Errorf("Get(../escape) = %v, %v", got, err)
	}
}
