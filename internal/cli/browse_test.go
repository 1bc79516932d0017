package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	mcio "github.com/tyrandev/mindmap-canvas-sub000/pkg/io"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/session"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/store"
)

func newTestBrowser(t *testing.T) (browseModel, *workspace) {
	t.Helper()
	ctx := context.Background()
	ws := newWorkspace(store.NewMemoryStore(), session.NewMemoryStore(), log.New(io.Discard), time.Hour)
	data, err := mcio.Marshal(shape.NewRoot(400, 300))
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.maps.Save(ctx, "plan", data); err != nil {
		t.Fatal(err)
	}
	m, err := newBrowseModel(ctx, ws, "plan")
	if err != nil {
		t.Fatalf("newBrowseModel: %v", err)
	}
	return m, ws
}

func press(t *testing.T, m browseModel, keys ...tea.KeyMsg) browseModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(browseModel)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestBrowseAddCollapseUndo(t *testing.T) {
	m, ws := newTestBrowser(t)
	if len(m.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(m.rows))
	}

	m = press(t, m, runeKey('a'))
	if len(m.rows) != 2 {
		t.Fatalf("rows after add = %d, want 2", len(m.rows))
	}
	if cur := m.current(); cur == nil || cur.ID != 1 {
		t.Errorf("cursor should follow the new child, got %v", cur)
	}

	// Changes are committed as they happen.
	root, err := ws.loadTree(context.Background(), "plan")
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 1 {
		t.Errorf("stored children = %d, want 1", len(root.Children))
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.rows) != 1 {
		t.Errorf("rows after collapse = %d, want 1", len(m.rows))
	}
	view := m.View()
	if !strings.Contains(view, "⊕") || !strings.Contains(view, "(+1)") {
		t.Errorf("collapsed view:\n%s", view)
	}

	m = press(t, m, runeKey('u'))
	if len(m.rows) != 2 {
		t.Errorf("rows after undo = %d, want 2", len(m.rows))
	}
	if !strings.Contains(m.View(), "2 nodes · 1 undo · 1 redo") {
		t.Errorf("status line:\n%s", m.View())
	}
}

func TestBrowseRemove(t *testing.T) {
	m, _ := newTestBrowser(t)
	m = press(t, m, runeKey('a'), runeKey('k'))

	m = press(t, m, runeKey('x'))
	if len(m.rows) != 2 {
		t.Errorf("removing the root should do nothing, rows = %d", len(m.rows))
	}
	if !strings.Contains(m.status, "nothing changed") {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, runeKey('j'), runeKey('x'))
	if len(m.rows) != 1 {
		t.Errorf("rows after remove = %d, want 1", len(m.rows))
	}
	if cur := m.current(); cur == nil || cur.ID != shape.RootID {
		t.Errorf("cursor should return to the parent, got %v", cur)
	}
}

func TestBrowseCursorBounds(t *testing.T) {
	m, _ := newTestBrowser(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = next.(browseModel)
	if m.height != 5 {
		t.Errorf("height = %d, want the floor of 5", m.height)
	}
}

func TestBrowseQuit(t *testing.T) {
	m, _ := newTestBrowser(t)
	for _, k := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		if _, cmd := m.Update(k); cmd == nil {
			t.Errorf("%s should quit", k)
		}
	}
}

func TestBrowseResumesSession(t *testing.T) {
	m, ws := newTestBrowser(t)
	press(t, m, runeKey('a'))

	again, err := newBrowseModel(context.Background(), ws, "plan")
	if err != nil {
		t.Fatal(err)
	}
	undo, _ := again.e.History.Depth()
	if undo != 1 {
		t.Errorf("reopened undo depth = %d, want 1", undo)
	}
}
