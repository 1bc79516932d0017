package render

import (
	"math"
	"testing"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// tree builds a root circle with a circle child to the right and a
// rectangle child below, which itself has one rectangle child.
func tree(t *testing.T) (root, right, below, leaf *shape.Shape) {
	t.Helper()
	root = shape.NewRoot(0, 0)
	right = shape.NewCircle(1, 200, 0, 50, "right")
	below = shape.NewRectangle(2, 0, 200, 150, 60, "below")
	leaf = shape.NewRectangle(3, 0, 400, 100, 40, "leaf")
	for _, step := range []struct{ p, c *shape.Shape }{{root, right}, {root, below}, {below, leaf}} {
		if err := step.p.AddChild(step.c); err != nil {
			t.Fatal(err)
		}
	}
	return root, right, below, leaf
}

func TestExtract(t *testing.T) {
	root, _, _, _ := tree(t)
	sc, err := Extract(root, 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Nodes) != 4 || len(sc.Connectors) != 3 {
		t.Fatalf("nodes=%d connectors=%d, want 4 and 3", len(sc.Nodes), len(sc.Connectors))
	}
	for i, want := range []int{0, 1, 2, 3} {
		if sc.Nodes[i].ID != want {
			t.Errorf("node %d id = %d, want %d (pre-order)", i, sc.Nodes[i].ID, want)
		}
	}

	// Circle to circle: from the root's right edge to the child's left edge.
	c := sc.Connectors[0]
	if c.From != 0 || c.To != 1 || !approx(c.X1, 50) || !approx(c.X2, 150) || !approx(c.Y1, 0) {
		t.Errorf("root->right connector = %+v", c)
	}
	// Rect to rect: bottom edge of the parent to top edge of the child.
	c = sc.Connectors[2]
	if !approx(c.Y1, 230) || !approx(c.Y2, 380) {
		t.Errorf("below->leaf connector = %+v", c)
	}

	// Bounds: x from -75 (rect half width) to 250, y from -50 to 420.
	if !approx(sc.MinX, -85) || !approx(sc.MinY, -60) {
		t.Errorf("min = (%v, %v), want (-85, -60)", sc.MinX, sc.MinY)
	}
	if !approx(sc.Width, 345) || !approx(sc.Height, 490) {
		t.Errorf("size = %vx%v, want 345x490", sc.Width, sc.Height)
	}
}

func TestExtractCollapsed(t *testing.T) {
	root, _, below, _ := tree(t)
	below.Collapsed = true

	sc, err := Extract(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(sc.Nodes))
	}
	for _, c := range sc.Connectors {
		if c.To == 3 {
			t.Error("connector to hidden leaf emitted")
		}
	}
	if n := sc.Nodes[2]; n.ID != 2 || n.Hidden != 1 {
		t.Errorf("collapsed node = id %d hidden %d, want id 2 hidden 1", n.ID, n.Hidden)
	}
}

func TestExtractStyle(t *testing.T) {
	root, right, below, _ := tree(t)
	right.FillColor = "#ff0000"
	below.CornerRadii = [4]float64{1, 2, 3, 4}

	sc, err := Extract(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	r, b := sc.Nodes[1], sc.Nodes[2]
	if !r.IsCircle() || r.Radius != 50 || r.Fill != "#ff0000" || r.Text != "right" {
		t.Errorf("circle node = %+v", r)
	}
	if b.IsCircle() || b.Width != 150 || b.Height != 60 || b.CornerRadii != [4]float64{1, 2, 3, 4} {
		t.Errorf("rect node = %+v", b)
	}
	if r.FontSize != right.FontSize {
		t.Errorf("font size = %v, want %v", r.FontSize, right.FontSize)
	}
}

func TestExtractEmpty(t *testing.T) {
	sc, err := Extract(nil, 10)
	if err != nil || len(sc.Nodes) != 0 {
		t.Errorf("Extract(nil) = %+v, %v", sc, err)
	}
}
