package mindmap

import (
	"slices"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Default root placement for a fresh map.
const (
	DefaultRootX = 1335.0
	DefaultRootY = 860.0
)

// Mindmap is a shape tree plus its registry.
type Mindmap struct {
	root     *shape.Shape
	registry []*shape.Shape
	index    map[int]*shape.Shape
	nextID   int
}

// New creates a mind map around root. See [Mindmap.Install] for the
// requirements on root.
func New(root *shape.Shape) (*Mindmap, error) {
	m := &Mindmap{}
	if err := m.Install(root); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDefault creates a mind map holding only the default root circle.
func NewDefault() *Mindmap {
	m, _ := New(shape.NewRoot(DefaultRootX, DefaultRootY))
	return m
}

// Install replaces the live tree with root and rebuilds the registry in
// pre-order. The root must have id 0 and no parent, and ids must be unique
// across the tree. On error the previous tree stays installed.
func (m *Mindmap) Install(root *shape.Shape) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "nil root")
	}
	if root.ID != shape.RootID {
		return errors.New(errors.ErrCodeInvalidTree, "root must have id %d, got %d", shape.RootID, root.ID)
	}
	if root.ParentID != shape.NoParent {
		return errors.New(errors.ErrCodeInvalidTree, "root cannot have a parent (got %d)", root.ParentID)
	}

	registry := make([]*shape.Shape, 0, root.Descendants()+1)
	index := make(map[int]*shape.Shape, cap(registry))
	var err error
	next := 0
	root.Walk(func(s *shape.Shape) {
		if err != nil {
			return
		}
		if _, dup := index[s.ID]; dup {
			err = errors.New(errors.ErrCodeInvalidTree, "duplicate shape id %d", s.ID)
			return
		}
		if s.ID < 0 {
			err = errors.New(errors.ErrCodeInvalidTree, "negative shape id %d", s.ID)
			return
		}
		for _, c := range s.Children {
			if c.ParentID != s.ID {
				err = errors.New(errors.ErrCodeInvalidTree,
					"shape %d lists child %d whose parent is %d", s.ID, c.ID, c.ParentID)
				return
			}
		}
		index[s.ID] = s
		registry = append(registry, s)
		next = max(next, s.ID+1)
	})
	if err != nil {
		return err
	}

	m.root = root
	m.registry = registry
	m.index = index
	m.nextID = max(m.nextID, next)
	return nil
}

// Root returns the live root shape.
func (m *Mindmap) Root() *shape.Shape { return m.root }

// Len returns the number of registered shapes.
func (m *Mindmap) Len() int { return len(m.registry) }

// Shapes returns the registry in scan order. The slice is shared; callers
// must not modify it.
func (m *Mindmap) Shapes() []*shape.Shape { return m.registry }

// NextID reserves and returns a fresh shape id. Ids only grow, so an id
// freed by a removal is never handed out again in the same map.
func (m *Mindmap) NextID() int {
	id := m.nextID
	m.nextID++
	return id
}

// PeekNextID returns the id the next call to NextID will reserve.
func (m *Mindmap) PeekNextID() int { return m.nextID }

// AdvanceNextID moves the id counter forward to next. It never moves it
// back, so restoring a persisted counter cannot revive a freed id.
func (m *Mindmap) AdvanceNextID(next int) {
	m.nextID = max(m.nextID, next)
}

// Lookup returns the registered shape with the given id.
func (m *Mindmap) Lookup(id int) (*shape.Shape, bool) {
	s, ok := m.index[id]
	return s, ok
}

// Parent resolves a shape's weak parent reference.
func (m *Mindmap) Parent(s *shape.Shape) (*shape.Shape, bool) {
	if s == nil || s.ParentID == shape.NoParent {
		return nil, false
	}
	return m.Lookup(s.ParentID)
}

// Contains reports whether s is the registered shape for its id.
func (m *Mindmap) Contains(s *shape.Shape) bool {
	r, ok := m.index[s.ID]
	return ok && r == s
}

// Attach links child under parent and appends child's whole subtree to the
// registry. The parent must be registered and child's ids must be free.
func (m *Mindmap) Attach(parent, child *shape.Shape) error {
	if parent == nil || !m.Contains(parent) {
		return errors.New(errors.ErrCodeNotFound, "parent is not part of this map")
	}
	if child == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil child")
	}
	var dup error
	child.Walk(func(s *shape.Shape) {
		if _, taken := m.index[s.ID]; taken && dup == nil {
			dup = errors.New(errors.ErrCodeInvalidTree, "shape id %d already in use", s.ID)
		}
	})
	if dup != nil {
		return dup
	}
	if err := parent.AddChild(child); err != nil {
		return err
	}
	child.Walk(func(s *shape.Shape) {
		m.registry = append(m.registry, s)
		m.index[s.ID] = s
		m.nextID = max(m.nextID, s.ID+1)
	})
	return nil
}

// Remove deletes s and all of its descendants and returns how many shapes
// left the registry. The root cannot be removed.
//
// Removal runs in two phases: the subtree is marked first, then the
// registry is filtered by the mark and s is unlinked from its parent.
func (m *Mindmap) Remove(s *shape.Shape) (int, error) {
	if s == nil || !m.Contains(s) {
		return 0, errors.New(errors.ErrCodeNotFound, "shape is not part of this map")
	}
	if s.ID == shape.RootID {
		return 0, errors.New(errors.ErrCodeInvalidInput, "the root cannot be removed")
	}

	s.Walk((*shape.Shape).MarkForRemoval)

	before := len(m.registry)
	m.registry = slices.DeleteFunc(m.registry, func(r *shape.Shape) bool {
		if r.MarkedForRemoval() {
			delete(m.index, r.ID)
			return true
		}
		return false
	})

	if parent, ok := m.Parent(s); ok {
		parent.RemoveChild(s)
	}
	return before - len(m.registry), nil
}

// Translate moves s and every descendant by (dx, dy).
func (m *Mindmap) Translate(s *shape.Shape, dx, dy float64) {
	s.Translate(dx, dy)
}

// HasCollapsedAncestor reports whether any ancestor of s, not s itself, is
// collapsed.
func (m *Mindmap) HasCollapsedAncestor(s *shape.Shape) bool {
	for p, ok := m.Parent(s); ok; p, ok = m.Parent(p) {
		if p.Collapsed {
			return true
		}
	}
	return false
}

// Visible returns the registered shapes that have no collapsed ancestor,
// in registry order.
func (m *Mindmap) Visible() []*shape.Shape {
	out := make([]*shape.Shape, 0, len(m.registry))
	for _, s := range m.registry {
		if !m.HasCollapsedAncestor(s) {
			out = append(out, s)
		}
	}
	return out
}

// HitTest returns the first visible shape in registry order containing
// (x, y).
func (m *Mindmap) HitTest(x, y float64) (*shape.Shape, bool) {
	for _, s := range m.registry {
		if s.Contains(x, y) && !m.HasCollapsedAncestor(s) {
			return s, true
		}
	}
	return nil, false
}

// Check verifies that the registry and the tree describe the same set of
// shapes: every shape reachable from the root is registered exactly once,
// nothing else is registered, and every parent reference matches the
// children lists.
func (m *Mindmap) Check() error {
	seen := make(map[*shape.Shape]bool, len(m.registry))
	var err error
	m.root.Walk(func(s *shape.Shape) {
		if err != nil {
			return
		}
		if seen[s] {
			err = errors.New(errors.ErrCodeInvalidTree, "shape %d reachable twice", s.ID)
			return
		}
		seen[s] = true
		if r, ok := m.index[s.ID]; !ok || r != s {
			err = errors.New(errors.ErrCodeInvalidTree, "shape %d reachable but not registered", s.ID)
			return
		}
		for _, c := range s.Children {
			if c.ParentID != s.ID {
				err = errors.New(errors.ErrCodeInvalidTree, "shape %d has parent %d, listed under %d", c.ID, c.ParentID, s.ID)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if len(seen) != len(m.registry) || len(m.index) != len(m.registry) {
		return errors.New(errors.ErrCodeInvalidTree,
			"registry holds %d shapes, index %d, tree %d", len(m.registry), len(m.index), len(seen))
	}
	for _, s := range m.registry {
		if !seen[s] {
			return errors.New(errors.ErrCodeInvalidTree, "shape %d registered but unreachable", s.ID)
		}
	}
	return nil
}
