package history

import (
	"testing"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

func tree(text string) *shape.Shape {
	root := shape.NewRoot(0, 0)
	root.SetText(text)
	return root
}

func TestEmpty(t *testing.T) {
	var m Manager
	if m.CanUndo() || m.CanRedo() {
		t.Fatal("new manager should have empty stacks")
	}
	if _, ok := m.Undo(tree("x")); ok {
		t.Error("Undo on empty stack succeeded")
	}
	if _, ok := m.Redo(tree("x")); ok {
		t.Error("Redo on empty stack succeeded")
	}
	if u, r := m.Depth(); u != 0 || r != 0 {
		t.Errorf("Depth = %d,%d after failed undo/redo", u, r)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := New()
	live := tree("v0")

	// Three mutations, each preceded by a snapshot.
	for _, text := range []string{"v1", "v2", "v3"} {
		m.Save(live)
		live.SetText(text)
	}
	if u, _ := m.Depth(); u != 3 {
		t.Fatalf("undo depth = %d, want 3", u)
	}
	final := live.Clone()

	for i := 0; i < 3; i++ {
		prev, ok := m.Undo(live)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		live = prev
	}
	if !shape.Equal(live, tree("v0")) {
		t.Errorf("after undos text = %q, want v0", live.Text)
	}

	for i := 0; i < 3; i++ {
		next, ok := m.Redo(live)
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
		live = next
	}
	if !shape.Equal(live, final) {
		t.Errorf("after redos text = %q, want v3", live.Text)
	}
}

func TestSaveClearsRedo(t *testing.T) {
	m := New()
	live := tree("a")
	m.Save(live)
	live.SetText("b")

	prev, _ := m.Undo(live)
	live = prev
	if !m.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	m.Save(live)
	live.SetText("c")
	if m.CanRedo() {
		t.Error("a new snapshot must clear redo")
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	m := New()
	live := tree("before")
	m.Save(live)
	live.SetText("after")
	live.X = 42

	prev, _ := m.Undo(live)
	if prev.Text != "before" || prev.X != 0 {
		t.Errorf("snapshot affected by later mutation: %q at %v", prev.Text, prev.X)
	}
}

func TestClear(t *testing.T) {
	m := New()
	m.Save(tree("a"))
	m.Save(tree("b"))
	m.Undo(tree("c"))
	m.Clear()
	if m.CanUndo() || m.CanRedo() {
		t.Error("Clear left entries behind")
	}
}

func TestStacksRestore(t *testing.T) {
	m := New()
	m.Save(tree("a"))
	m.Save(tree("b"))
	m.Undo(tree("c"))

	undo, redo := m.Stacks()
	if len(undo) != 1 || len(redo) != 1 {
		t.Fatalf("Stacks = %d,%d, want 1,1", len(undo), len(redo))
	}

	var restored Manager
	restored.Restore(undo, redo)
	undo[0].SetText("mutated")

	prev, ok := restored.Undo(tree("live"))
	if !ok || prev.Text != "a" {
		t.Errorf("restored undo = %v, %v", prev, ok)
	}
	next, ok := restored.Redo(prev)
	if !ok || next.Text != "live" {
		t.Errorf("restored redo = %q, %v", next.Text, ok)
	}
}
