package shape

import (
	"slices"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// HasChildren reports whether the shape owns at least one child.
func (s *Shape) HasChildren() bool {
	return len(s.Children) > 0
}

// AddChild appends child to s.Children and points child.ParentID at s.
// The child must be detached; attaching a shape to itself is rejected.
func (s *Shape) AddChild(child *Shape) error {
	switch {
	case child == nil:
		return errors.New(errors.ErrCodeInvalidInput, "add nil child to %d", s.ID)
	case child == s:
		return errors.New(errors.ErrCodeInvalidTree, "shape %d cannot be its own child", s.ID)
	case child.ParentID != NoParent:
		return errors.New(errors.ErrCodeInvalidTree, "shape %d is already attached to %d", child.ID, child.ParentID)
	case child.Find(s.ID) != nil:
		return errors.New(errors.ErrCodeInvalidTree, "shape %d is a descendant of %d", s.ID, child.ID)
	}
	s.Children = append(s.Children, child)
	child.ParentID = s.ID
	return nil
}

// RemoveChild detaches child from s. It reports false if child is not one
// of s's children.
func (s *Shape) RemoveChild(child *Shape) bool {
	i := slices.Index(s.Children, child)
	if i < 0 {
		return false
	}
	s.Children = slices.Delete(s.Children, i, i+1)
	child.ParentID = NoParent
	return true
}

// Walk calls fn for s and every descendant in pre-order.
func (s *Shape) Walk(fn func(*Shape)) {
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// Descendants returns the number of shapes below s.
func (s *Shape) Descendants() int {
	n := 0
	for _, c := range s.Children {
		n += 1 + c.Descendants()
	}
	return n
}

// Depth returns the number of levels in the subtree rooted at s.
func (s *Shape) Depth() int {
	d := 0
	for _, c := range s.Children {
		d = max(d, c.Depth())
	}
	return d + 1
}

// Find returns the shape with the given id in the subtree rooted at s.
func (s *Shape) Find(id int) *Shape {
	if s.ID == id {
		return s
	}
	for _, c := range s.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// Translate moves s and every descendant by (dx, dy).
func (s *Shape) Translate(dx, dy float64) {
	s.Walk(func(n *Shape) {
		n.X += dx
		n.Y += dy
	})
}

// Clone returns a deep copy of the subtree rooted at s. Ids, parent ids and
// collapse state are preserved; the copy shares no slices with s.
func (s *Shape) Clone() *Shape {
	c := *s
	c.toBeRemoved = false
	c.Children = nil
	if len(s.Children) > 0 {
		c.Children = make([]*Shape, len(s.Children))
		for i, child := range s.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// MarkForRemoval flags s as part of a subtree being deleted.
func (s *Shape) MarkForRemoval() { s.toBeRemoved = true }

// MarkedForRemoval reports whether s is flagged for deletion.
func (s *Shape) MarkedForRemoval() bool { return s.toBeRemoved }

// Equal reports whether two subtrees are structurally and field-wise
// identical. The transient removal mark is ignored.
func Equal(a, b *Shape) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Kind != b.Kind ||
		a.X != b.X || a.Y != b.Y ||
		a.Radius != b.Radius || a.Width != b.Width || a.Height != b.Height ||
		a.CornerRadii != b.CornerRadii || a.Borderless != b.Borderless ||
		a.FillColor != b.FillColor || a.BorderColor != b.BorderColor ||
		a.TextColor != b.TextColor || a.BorderWidth != b.BorderWidth ||
		a.Text != b.Text || a.FontSize != b.FontSize ||
		a.ParentID != b.ParentID || a.Collapsed != b.Collapsed ||
		len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
