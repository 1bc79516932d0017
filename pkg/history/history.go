// Package history implements snapshot-based undo and redo for a shape tree.
//
// Each snapshot is a deep clone of the whole root subtree. The manager keeps
// two stacks: saving pushes onto undo and invalidates redo; undoing moves
// the live tree onto redo and hands back the previous snapshot, and redo is
// the mirror image. Depth is unbounded: memory grows with the number of
// significant mutations times the tree size.
package history

import (
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/observability"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Manager holds the undo and redo stacks. The zero value is ready to use.
type Manager struct {
	undo []*shape.Shape
	redo []*shape.Shape
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{}
}

// Save records a snapshot of root before a mutation and clears redo.
func (m *Manager) Save(root *shape.Shape) {
	m.undo = append(m.undo, root.Clone())
	m.redo = nil
	observability.History().OnSnapshot(len(m.undo), 0)
}

// Undo pops the latest snapshot and pushes a clone of current onto redo.
// The caller installs the returned tree. ok is false when there is nothing
// to undo, in which case no stack changes.
func (m *Manager) Undo(current *shape.Shape) (prev *shape.Shape, ok bool) {
	if len(m.undo) == 0 {
		return nil, false
	}
	prev = pop(&m.undo)
	m.redo = append(m.redo, current.Clone())
	observability.History().OnUndo(len(m.undo), len(m.redo))
	return prev, true
}

// Redo pops the latest undone state and pushes a clone of current onto
// undo. ok is false when there is nothing to redo.
func (m *Manager) Redo(current *shape.Shape) (next *shape.Shape, ok bool) {
	if len(m.redo) == 0 {
		return nil, false
	}
	next = pop(&m.redo)
	m.undo = append(m.undo, current.Clone())
	observability.History().OnRedo(len(m.undo), len(m.redo))
	return next, true
}

// Discard drops the most recent snapshot without touching redo. It is used
// when a mutation fails after its snapshot was taken.
func (m *Manager) Discard() {
	if len(m.undo) > 0 {
		pop(&m.undo)
	}
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (m *Manager) Depth() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

// Stacks returns clones of both stacks, oldest first, for persistence.
func (m *Manager) Stacks() (undo, redo []*shape.Shape) {
	return cloneAll(m.undo), cloneAll(m.redo)
}

// Restore replaces both stacks with clones of the given snapshots, oldest
// first.
func (m *Manager) Restore(undo, redo []*shape.Shape) {
	m.undo = cloneAll(undo)
	m.redo = cloneAll(redo)
}

func pop(stack *[]*shape.Shape) *shape.Shape {
	s := *stack
	top := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return top
}

func cloneAll(in []*shape.Shape) []*shape.Shape {
	if len(in) == 0 {
		return nil
	}
	out := make([]*shape.Shape, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
