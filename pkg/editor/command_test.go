package editor

import (
	"testing"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

func TestDispatchSequence(t *testing.T) {
	e, _ := newTestEditor(t)

	steps := []struct {
		cmd     Command
		applied bool
	}{
		{Command{Op: OpAdd, X: 2000, Y: 860}, true},
		{Command{Op: OpAdd, Node: NodeID(1), X: 3000, Y: 860, Kind: "rect"}, true},
		{Command{Op: OpText, Node: NodeID(2), Text: "task"}, true},
		{Command{Op: OpFill, Color: "#00ff00"}, true},
		{Command{Op: OpDimensions, Width: 200, Height: 80}, true},
		{Command{Op: OpRadius, Node: NodeID(1), Value: 70}, true},
		{Command{Op: OpCollapse, Node: NodeID(2)}, false},
		{Command{Op: OpCollapse, Node: NodeID(1)}, true},
		{Command{Op: OpRemove, Node: NodeID(0)}, false},
		{Command{Op: OpUnselect}, true},
		{Command{Op: OpUndo}, true},
		{Command{Op: OpRedo}, true},
		{Command{Op: OpRedo}, false},
	}
	for i, st := range steps {
		res, err := e.Dispatch(st.cmd)
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, st.cmd.Op, err)
		}
		if res.Applied != st.applied {
			t.Errorf("step %d (%s): applied = %v, want %v", i, st.cmd.Op, res.Applied, st.applied)
		}
	}

	two, ok := e.Map.Lookup(2)
	if !ok {
		t.Fatal("shape 2 missing")
	}
	if two.Kind != shape.Rectangle || two.Text != "task" || two.FillColor != "#00ff00" || two.Width != 200 {
		t.Errorf("shape 2 = %+v", two)
	}
	one, _ := e.Map.Lookup(1)
	if one.Radius != 70 || !one.Collapsed {
		t.Errorf("shape 1 radius=%v collapsed=%v", one.Radius, one.Collapsed)
	}
}

func TestDispatchSelectAt(t *testing.T) {
	e, _ := newTestEditor(t)
	res, _ := e.Dispatch(Command{Op: OpSelectAt, X: 1335, Y: 860})
	if !res.Applied || res.Node == nil || res.Node.ID != 0 {
		t.Errorf("select-at root = %+v", res)
	}
	res, _ = e.Dispatch(Command{Op: OpSelectAt, X: 0, Y: 0})
	if res.Applied || e.Selected() != nil {
		t.Error("select-at on empty canvas should clear the selection")
	}
}

func TestDispatchMoveDefaultsToRoot(t *testing.T) {
	e, _ := newTestEditor(t)
	res, err := e.Dispatch(Command{Op: OpMove, X: 100, Y: 200})
	if err != nil || !res.Applied {
		t.Fatalf("move = %+v, %v", res, err)
	}
	if r := e.Map.Root(); r.X != 100 || r.Y != 200 {
		t.Errorf("root at (%v,%v)", r.X, r.Y)
	}
}

func TestDispatchErrors(t *testing.T) {
	e, _ := newTestEditor(t)

	tests := []struct {
		name string
		cmd  Command
		code errors.Code
	}{
		{"unknown op", Command{Op: "explode"}, errors.ErrCodeUnsupported},
		{"missing node", Command{Op: OpText, Node: NodeID(42), Text: "x"}, errors.ErrCodeNotFound},
		{"select without id", Command{Op: OpSelect}, errors.ErrCodeInvalidInput},
		{"bad kind", Command{Op: OpAdd, Kind: "hexagon"}, errors.ErrCodeUnknownNodeType},
		{"negative radius", Command{Op: OpRadius, Node: NodeID(0), Value: -5}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Dispatch(tt.cmd)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
	if e.History.CanUndo() {
		t.Error("failed commands recorded history")
	}
}
