package editor

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

func newTestEditor(t *testing.T) (*Editor, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return New(mindmap.NewDefault(), WithLogger(logger)), &buf
}

func undoDepth(e *Editor) int {
	u, _ := e.History.Depth()
	return u
}

func mustAdd(t *testing.T, e *Editor, parent *shape.Shape, px, py float64) *shape.Shape {
	t.Helper()
	child, err := e.AddConnectedChild(parent, px, py)
	if err != nil || child == nil {
		t.Fatalf("AddConnectedChild: %v, %v", child, err)
	}
	return child
}

func TestAddConnectedChildScenario(t *testing.T) {
	e, _ := newTestEditor(t)
	root := e.Map.Root()
	root.FillColor = "#abcdef"

	child := mustAdd(t, e, root, 1335+200, 860)

	if math.Abs(child.X-1445) > 1e-9 || math.Abs(child.Y-860) > 1e-9 {
		t.Errorf("child at (%v,%v), want (1445,860)", child.X, child.Y)
	}
	if child.FillColor != "#abcdef" {
		t.Errorf("child fill = %q, want inherited #abcdef", child.FillColor)
	}
	if child.Kind != shape.Circle || child.Radius != shape.DefaultRadius {
		t.Errorf("child = %s r=%v, want default circle", child.Kind, child.Radius)
	}
	if child.ID != 1 || child.ParentID != 0 {
		t.Errorf("child id=%d parent=%d", child.ID, child.ParentID)
	}
	if e.Map.Len() != 2 || undoDepth(e) != 1 {
		t.Errorf("Len=%d undo=%d, want 2 and 1", e.Map.Len(), undoDepth(e))
	}
}

func TestAddConnectedChildRectangleSpacing(t *testing.T) {
	e, _ := newTestEditor(t)
	rect, err := e.AddConnectedChildKind(e.Map.Root(), 2000, 860, shape.Rectangle)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		px, py float64
		factor float64
	}{
		{"horizontal", rect.X + 500, rect.Y, 1.25},
		{"vertical", rect.X, rect.Y + 500, 2.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := mustAdd(t, e, rect, tt.px, tt.py)
			want := rect.Extent() * tt.factor
			got := math.Hypot(child.X-rect.X, child.Y-rect.Y)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("distance = %v, want %v", got, want)
			}
			if child.Kind != shape.Rectangle {
				t.Errorf("child kind = %s, want rectangle", child.Kind)
			}
		})
	}
}

func TestAddUnderCollapsedParent(t *testing.T) {
	e, logs := newTestEditor(t)
	root := e.Map.Root()
	mustAdd(t, e, root, 2000, 860)
	if _, err := e.ToggleCollapse(root); err != nil {
		t.Fatal(err)
	}
	before := undoDepth(e)

	child, err := e.AddConnectedChild(root, 0, 0)
	if err != nil || child != nil {
		t.Fatalf("AddConnectedChild on collapsed parent = %v, %v", child, err)
	}
	if undoDepth(e) != before || e.Map.Len() != 2 {
		t.Error("collapsed parent gained a child or a snapshot")
	}
	if !strings.Contains(logs.String(), "parent is collapsed") {
		t.Error("rejection was not logged")
	}
}

func TestRemoveNode(t *testing.T) {
	e, _ := newTestEditor(t)
	root := e.Map.Root()
	a := mustAdd(t, e, root, 2000, 860)
	mustAdd(t, e, a, 3000, 860)
	b := mustAdd(t, e, root, 0, 860)
	_ = e.Select(a)

	before := undoDepth(e)
	ok, err := e.RemoveNode(a)
	if !ok || err != nil {
		t.Fatalf("RemoveNode = %v, %v", ok, err)
	}
	if e.Map.Len() != 2 {
		t.Errorf("Len = %d, want 2", e.Map.Len())
	}
	if undoDepth(e) != before+1 {
		t.Error("removal was not snapshotted")
	}
	if e.Selected() != nil {
		t.Error("selection should clear when its shape is removed")
	}
	if !e.Map.Contains(b) {
		t.Error("sibling removed")
	}
}

func TestRemoveRootRejected(t *testing.T) {
	e, logs := newTestEditor(t)
	ok, err := e.RemoveNode(e.Map.Root())
	if ok || err != nil {
		t.Fatalf("RemoveNode(root) = %v, %v; want silent rejection", ok, err)
	}
	if undoDepth(e) != 0 {
		t.Error("rejected removal pushed a snapshot")
	}
	if !strings.Contains(logs.String(), "root cannot be removed") {
		t.Error("rejection was not logged")
	}
}

func TestMoveNodeThreshold(t *testing.T) {
	e, _ := newTestEditor(t)
	root := e.Map.Root()
	a := mustAdd(t, e, root, 2000, 860)
	leaf := mustAdd(t, e, a, 3000, 860)
	offX, offY := leaf.X-a.X, leaf.Y-a.Y
	before := undoDepth(e)

	// Small drag step: applied, not recorded.
	if ok, err := e.MoveNode(a, a.X+3, a.Y+3); !ok || err != nil {
		t.Fatalf("MoveNode small = %v, %v", ok, err)
	}
	if undoDepth(e) != before {
		t.Error("move under threshold was snapshotted")
	}

	if ok, err := e.MoveNode(a, a.X+40, a.Y-30); !ok || err != nil {
		t.Fatalf("MoveNode large = %v, %v", ok, err)
	}
	if undoDepth(e) != before+1 {
		t.Error("move over threshold was not snapshotted")
	}
	if math.Abs((leaf.X-a.X)-offX) > 1e-9 || math.Abs((leaf.Y-a.Y)-offY) > 1e-9 {
		t.Error("descendant offset changed by move")
	}

	if _, err := e.MoveNode(a, math.NaN(), 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("MoveNode(NaN) error = %v", err)
	}
}

func TestToggleCollapse(t *testing.T) {
	e, _ := newTestEditor(t)
	root := e.Map.Root()

	if ok, err := e.ToggleCollapse(root); ok || err != nil {
		t.Fatalf("collapse childless = %v, %v", ok, err)
	}
	if root.Collapsed || undoDepth(e) != 0 {
		t.Error("childless collapse changed state")
	}

	a := mustAdd(t, e, root, 2000, 860)
	b := mustAdd(t, e, root, 0, 860)
	mustAdd(t, e, a, 3000, 860)
	size := e.Map.Len()

	if ok, _ := e.ToggleCollapse(root); !ok || !root.Collapsed {
		t.Fatal("collapse did not apply")
	}
	if e.Map.Len() != size {
		t.Errorf("collapse changed registry size %d -> %d", size, e.Map.Len())
	}
	for _, s := range []*shape.Shape{a, b} {
		if hit, ok := e.Map.HitTest(s.X, s.Y); ok && hit != root {
			t.Errorf("hidden shape %d still hit", s.ID)
		}
	}
	if got := len(e.Map.Visible()); got != 1 {
		t.Errorf("Visible = %d, want 1", got)
	}
}

func TestResizeScenarios(t *testing.T) {
	e, _ := newTestEditor(t)
	root := e.Map.Root()
	_ = e.Select(root)

	if ok, err := e.SetRadius(-5); ok || !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("SetRadius(-5) = %v, %v", ok, err)
	}
	if root.Radius != 50 || undoDepth(e) != 0 {
		t.Error("rejected radius changed state or history")
	}

	if ok, err := e.SetRadius(10); !ok || err != nil {
		t.Fatalf("SetRadius(10) = %v, %v", ok, err)
	}
	if root.Radius != 30 {
		t.Errorf("Radius = %v, want clamp to 30", root.Radius)
	}
	if undoDepth(e) != 1 {
		t.Errorf("undo depth = %d, want 1", undoDepth(e))
	}

	if _, err := e.SetDimensions(100, 100); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("SetDimensions on circle error = %v", err)
	}

	rect, _ := e.AddConnectedChildKind(root, 2000, 860, shape.Rectangle)
	_ = e.Select(rect)
	if ok, err := e.SetDimensions(10, 200); !ok || err != nil {
		t.Fatalf("SetDimensions = %v, %v", ok, err)
	}
	if rect.Width != shape.MinWidth || rect.Height != 200 {
		t.Errorf("size = %vx%v, want %vx200", rect.Width, rect.Height, shape.MinWidth)
	}
	if _, err := e.SetDimensions(math.Inf(1), 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetDimensions(Inf) error = %v", err)
	}
}

func TestSelectionScopedEdits(t *testing.T) {
	e, logs := newTestEditor(t)

	if ok, err := e.SetText("nobody"); ok || err != nil {
		t.Fatalf("SetText without selection = %v, %v", ok, err)
	}
	if !strings.Contains(logs.String(), "nothing selected") {
		t.Error("missing selection was not logged")
	}

	root := e.Map.Root()
	_ = e.Select(root)
	if ok, _ := e.SetText("Plans"); !ok || root.Text != "Plans" {
		t.Errorf("SetText did not apply: %q", root.Text)
	}
	if ok, _ := e.SetFillColor("#112233"); !ok || root.FillColor != "#112233" {
		t.Error("SetFillColor did not apply")
	}
	if ok, _ := e.SetBorderColor("red"); !ok || root.BorderColor != "red" {
		t.Error("SetBorderColor did not apply")
	}
	if ok, _ := e.SetTextColor("#fff"); !ok || root.TextColor != "#fff" {
		t.Error("SetTextColor did not apply")
	}
	if ok, _ := e.SetBorderWidth(4); !ok || root.BorderWidth != 4 {
		t.Error("SetBorderWidth did not apply")
	}
	if undoDepth(e) != 5 {
		t.Errorf("undo depth = %d, want 5", undoDepth(e))
	}

	if _, err := e.SetFillColor("not-a-color!"); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("bad color error = %v", err)
	}
	if undoDepth(e) != 5 {
		t.Error("rejected color pushed a snapshot")
	}
}

func TestSelectionNeverSnapshots(t *testing.T) {
	e, _ := newTestEditor(t)
	a := mustAdd(t, e, e.Map.Root(), 2000, 860)
	before := undoDepth(e)

	_ = e.Select(a)
	e.Unselect()
	e.PickAt(a.X, a.Y)
	_ = e.SelectID(0)

	if undoDepth(e) != before {
		t.Error("selection changes touched history")
	}
	if err := e.SelectID(99); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SelectID(99) error = %v", err)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e, _ := newTestEditor(t)
	initial := e.Map.Root().Clone()

	root := e.Map.Root()
	a := mustAdd(t, e, root, 2000, 860)
	b := mustAdd(t, e, a, 2000, 1200)
	_ = e.Select(b)
	_, _ = e.SetText("leaf")
	_, _ = e.MoveNode(a, a.X+100, a.Y+100)
	_, _ = e.ToggleCollapse(a)
	_ = e.Select(e.Map.Root())
	_, _ = e.SetFillColor("#ff0000")

	const n = 6
	if undoDepth(e) != n {
		t.Fatalf("undo depth = %d, want %d", undoDepth(e), n)
	}
	final := e.Map.Root().Clone()

	for i := 0; i < n; i++ {
		if !e.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		if err := e.Map.Check(); err != nil {
			t.Fatalf("Check after undo %d: %v", i, err)
		}
	}
	if !shape.Equal(e.Map.Root(), initial) {
		t.Error("N undos did not restore the initial tree")
	}
	if e.Undo() {
		t.Error("undo past the beginning succeeded")
	}

	for i := 0; i < n; i++ {
		if !e.Redo() {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !shape.Equal(e.Map.Root(), final) {
		t.Error("N redos did not reach the final tree")
	}
	if e.Map.Len() != 3 {
		t.Errorf("Len after redo = %d, want 3", e.Map.Len())
	}
}

func TestMutationAfterUndoClearsRedo(t *testing.T) {
	e, _ := newTestEditor(t)
	mustAdd(t, e, e.Map.Root(), 2000, 860)
	e.Undo()
	if !e.History.CanRedo() {
		t.Fatal("redo should be available")
	}
	mustAdd(t, e, e.Map.Root(), 0, 860)
	if e.History.CanRedo() {
		t.Error("new mutation after undo must clear redo")
	}
}

func TestUndoKeepsSelectionByID(t *testing.T) {
	e, _ := newTestEditor(t)
	a := mustAdd(t, e, e.Map.Root(), 2000, 860)
	_ = e.Select(a)
	_, _ = e.SetText("renamed")

	e.Undo()
	sel := e.Selected()
	if sel == nil || sel.ID != a.ID {
		t.Fatalf("selection = %v, want id %d", sel, a.ID)
	}
	if !e.Map.Contains(sel) {
		t.Error("selection points into a stale tree")
	}

	e.Undo() // removes a
	if e.Selected() != nil {
		t.Error("selection should clear when its id disappears")
	}
}

func TestLoadClearsHistory(t *testing.T) {
	e, _ := newTestEditor(t)
	mustAdd(t, e, e.Map.Root(), 2000, 860)
	_ = e.Select(e.Map.Root())

	if err := e.Load(shape.NewRoot(0, 0)); err != nil {
		t.Fatal(err)
	}
	if e.History.CanUndo() || e.Selected() != nil || e.Map.Len() != 1 {
		t.Error("Load kept history, selection or shapes")
	}

	if err := e.Load(shape.NewCircle(5, 0, 0, 50, "")); err == nil {
		t.Error("Load accepted a root with id 5")
	}
}

func TestWithConfig(t *testing.T) {
	e := New(nil, WithConfig(Config{MinRadius: 45}))
	if e.Config.MinRadius != 45 || e.Config.MoveThreshold != 5 {
		t.Errorf("config = %+v", e.Config)
	}
	_ = e.Select(e.Map.Root())
	_, _ = e.SetRadius(40)
	if e.Map.Root().Radius != 45 {
		t.Errorf("Radius = %v, want 45", e.Map.Root().Radius)
	}
}

func TestRejectedSnapshotKeepsStacks(t *testing.T) {
	e, _ := newTestEditor(t)
	root := e.Map.Root()
	bad := shape.NewCircle(5, 0, 0, 50, "not a root")

	e.History.Restore([]*shape.Shape{bad}, nil)
	if e.Undo() {
		t.Fatal("Undo installed a tree whose root id is not 0")
	}
	if u, r := e.History.Depth(); u != 1 || r != 0 {
		t.Errorf("after failed undo depth = %d/%d, want 1/0", u, r)
	}
	if e.Map.Root() != root {
		t.Error("live tree changed on a failed undo")
	}

	e.History.Restore(nil, []*shape.Shape{bad})
	if e.Redo() {
		t.Fatal("Redo installed a tree whose root id is not 0")
	}
	if u, r := e.History.Depth(); u != 0 || r != 1 {
		t.Errorf("after failed redo depth = %d/%d, want 0/1", u, r)
	}
	if e.Map.Root() != root {
		t.Error("live tree changed on a failed redo")
	}
}
