package shape

import (
	"testing"
)

func buildTree() *Shape {
	root := NewRoot(0, 0)
	a := NewCircle(1, 100, 0, 40, "a")
	b := NewRectangle(2, 0, 100, 120, 50, "b")
	a1 := NewCircle(3, 200, 0, 30, "a1")
	_ = root.AddChild(a)
	_ = root.AddChild(b)
	_ = a.AddChild(a1)
	return root
}

func TestAddRemoveChild(t *testing.T) {
	p := NewCircle(1, 0, 0, 50, "p")
	c := NewCircle(2, 10, 10, 40, "c")

	if err := p.AddChild(c); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if c.ParentID != p.ID || len(p.Children) != 1 || p.Children[0] != c {
		t.Fatalf("link not bidirectional: parent=%d children=%v", c.ParentID, p.Children)
	}
	if err := p.AddChild(c); err == nil {
		t.Error("attaching an attached child should fail")
	}
	if err := p.AddChild(p); err == nil {
		t.Error("attaching a shape to itself should fail")
	}
	if err := c.AddChild(nil); err == nil {
		t.Error("attaching nil should fail")
	}

	if !p.RemoveChild(c) {
		t.Fatal("RemoveChild returned false")
	}
	if c.ParentID != NoParent || p.HasChildren() {
		t.Errorf("after RemoveChild: parent=%d children=%d", c.ParentID, len(p.Children))
	}
	if p.RemoveChild(c) {
		t.Error("removing a non-child should report false")
	}
}

func TestAddChildRejectsCycle(t *testing.T) {
	root := buildTree()
	a := root.Find(1)
	root.RemoveChild(a)
	a1 := a.Find(3)
	a.RemoveChild(a1)
	if err := a1.AddChild(a); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if err := a.AddChild(a1); err == nil {
		t.Error("AddChild should reject making an ancestor a child")
	}
}

func TestCloneIndependence(t *testing.T) {
	root := buildTree()
	root.Collapsed = true
	clone := root.Clone()

	if !Equal(root, clone) {
		t.Fatal("clone differs from original")
	}
	if clone.ID != root.ID || !clone.Collapsed {
		t.Errorf("clone id=%d collapsed=%v", clone.ID, clone.Collapsed)
	}

	clone.Children[0].X = 999
	clone.Children[0].Children[0].Text = "changed"
	clone.Children = append(clone.Children, NewCircle(9, 0, 0, 30, ""))

	if root.Children[0].X == 999 {
		t.Error("mutating clone child moved original child")
	}
	if root.Find(3).Text != "a1" {
		t.Error("mutating clone grandchild changed original text")
	}
	if len(root.Children) != 2 {
		t.Errorf("original children = %d, want 2", len(root.Children))
	}
}

func TestCloneDropsRemovalMark(t *testing.T) {
	s := NewCircle(1, 0, 0, 50, "")
	s.MarkForRemoval()
	if s.Clone().MarkedForRemoval() {
		t.Error("clone kept the transient removal mark")
	}
}

func TestTranslatePreservesOffsets(t *testing.T) {
	root := buildTree()
	a := root.Find(1)
	a1 := root.Find(3)
	offX, offY := a1.X-a.X, a1.Y-a.Y

	a.Translate(12.5, -7.25)

	if a.X != 112.5 || a.Y != -7.25 {
		t.Errorf("a = (%v,%v), want (112.5,-7.25)", a.X, a.Y)
	}
	if a1.X-a.X != offX || a1.Y-a.Y != offY {
		t.Errorf("offset = (%v,%v), want (%v,%v)", a1.X-a.X, a1.Y-a.Y, offX, offY)
	}
	if root.X != 0 || root.Y != 0 {
		t.Error("Translate moved the parent")
	}
}

func TestDescendantsDepthFind(t *testing.T) {
	root := buildTree()
	if n := root.Descendants(); n != 3 {
		t.Errorf("Descendants = %d, want 3", n)
	}
	if d := root.Depth(); d != 3 {
		t.Errorf("Depth = %d, want 3", d)
	}
	if root.Find(2) == nil || root.Find(42) != nil {
		t.Error("Find returned unexpected results")
	}

	var order []int
	root.Walk(func(s *Shape) { order = append(order, s.ID) })
	want := []int{0, 1, 3, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Walk order = %v, want %v", order, want)
		}
	}
}

func TestEqual(t *testing.T) {
	a, b := buildTree(), buildTree()
	if !Equal(a, b) {
		t.Fatal("identical trees not equal")
	}
	b.Find(3).FillColor = "#000"
	if Equal(a, b) {
		t.Error("trees with different fill reported equal")
	}
	if !Equal(nil, nil) || Equal(a, nil) {
		t.Error("nil handling")
	}
}
