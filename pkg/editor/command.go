package editor

import (
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Op names an editor command.
type Op string

// Supported commands.
const (
	OpAdd         Op = "add"
	OpRemove      Op = "remove"
	OpMove        Op = "move"
	OpCollapse    Op = "collapse"
	OpText        Op = "text"
	OpFill        Op = "fill"
	OpBorder      Op = "border"
	OpTextColor   Op = "text-color"
	OpBorderWidth Op = "border-width"
	OpRadius      Op = "radius"
	OpDimensions  Op = "dimensions"
	OpSelect      Op = "select"
	OpSelectAt    Op = "select-at"
	OpUnselect    Op = "unselect"
	OpUndo        Op = "undo"
	OpRedo        Op = "redo"
)

// Command is one discrete input event for the editor.
//
// Node names the target shape. When it is nil, structural commands act on
// the selection and fall back to the root; selection-scoped commands
// (text, colors, sizes) require a selection. When Node is set, the
// command selects that shape first.
type Command struct {
	Op   Op   `json:"op"`
	Node *int `json:"node,omitempty"`

	// X and Y are the pointer for add and select-at, the new center for
	// move.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Kind optionally overrides the variant of an added child.
	Kind string `json:"kind,omitempty"`

	Text   string  `json:"text,omitempty"`
	Color  string  `json:"color,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Result reports the outcome of a command.
type Result struct {
	// Applied is true when the tree (or, for selection commands, the
	// selection) changed.
	Applied bool `json:"applied"`
	// Node is the affected shape: the new child for add, the target
	// otherwise. It is nil for undo, redo and unselect.
	Node *shape.Shape `json:"-"`
}

// NodeID returns a pointer to id, for building commands.
func NodeID(id int) *int { return &id }

// Dispatch runs one command synchronously.
func (e *Editor) Dispatch(cmd Command) (Result, error) {
	switch cmd.Op {
	case OpUndo:
		return Result{Applied: e.Undo()}, nil
	case OpRedo:
		return Result{Applied: e.Redo()}, nil
	case OpUnselect:
		e.Unselect()
		return Result{Applied: true}, nil
	case OpSelectAt:
		s := e.PickAt(cmd.X, cmd.Y)
		return Result{Applied: s != nil, Node: s}, nil
	}

	if cmd.Node != nil {
		if err := e.SelectID(*cmd.Node); err != nil {
			return Result{}, err
		}
	}

	var (
		applied bool
		err     error
	)
	switch cmd.Op {
	case OpSelect:
		if cmd.Node == nil {
			return Result{}, errors.New(errors.ErrCodeInvalidInput, "select needs a node id")
		}
		return Result{Applied: true, Node: e.selected}, nil

	case OpAdd:
		parent := e.structuralTarget()
		kind := parent.Kind
		if cmd.Kind != "" {
			if kind, err = shape.ParseKind(cmd.Kind); err != nil {
				return Result{}, err
			}
		}
		var child *shape.Shape
		child, err = e.AddConnectedChildKind(parent, cmd.X, cmd.Y, kind)
		if err != nil || child == nil {
			return Result{Node: parent}, err
		}
		return Result{Applied: true, Node: child}, nil

	case OpRemove:
		target := e.structuralTarget()
		applied, err = e.RemoveNode(target)
		return Result{Applied: applied, Node: target}, err

	case OpMove:
		target := e.structuralTarget()
		applied, err = e.MoveNode(target, cmd.X, cmd.Y)
		return Result{Applied: applied, Node: target}, err

	case OpCollapse:
		target := e.structuralTarget()
		applied, err = e.ToggleCollapse(target)
		return Result{Applied: applied, Node: target}, err

	case OpText:
		applied, err = e.SetText(cmd.Text)
	case OpFill:
		applied, err = e.SetFillColor(cmd.Color)
	case OpBorder:
		applied, err = e.SetBorderColor(cmd.Color)
	case OpTextColor:
		applied, err = e.SetTextColor(cmd.Color)
	case OpBorderWidth:
		applied, err = e.SetBorderWidth(cmd.Value)
	case OpRadius:
		applied, err = e.SetRadius(cmd.Value)
	case OpDimensions:
		applied, err = e.SetDimensions(cmd.Width, cmd.Height)
	default:
		return Result{}, errors.New(errors.ErrCodeUnsupported, "unknown command %q", cmd.Op)
	}
	return Result{Applied: applied, Node: e.selected}, err
}

// structuralTarget is the selection, or the root when nothing is selected.
func (e *Editor) structuralTarget() *shape.Shape {
	if e.selected != nil {
		return e.selected
	}
	return e.Map.Root()
}
