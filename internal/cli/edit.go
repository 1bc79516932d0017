package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// buildFunc turns the positional arguments after the map name into a
// command. The editor is open so defaults can depend on the tree.
type buildFunc func(e *editor.Editor, args []string) (editor.Command, error)

// editCommands returns one cobra command per editor operation.
func (c *CLI) editCommands() []*cobra.Command {
	return []*cobra.Command{
		c.addCommand(),
		c.editCommand("remove <map>", "Remove a node and its subtree", cobra.ExactArgs(1),
			fixed(editor.OpRemove)),
		c.editCommand("move <map> <x> <y>", "Move a node and its subtree to a new center", cobra.ExactArgs(3),
			func(_ *editor.Editor, args []string) (editor.Command, error) {
				x, y, err := parsePoint(args[0], args[1])
				return editor.Command{Op: editor.OpMove, X: x, Y: y}, err
			}),
		c.editCommand("text <map> <text>...", "Set a node's label", cobra.MinimumNArgs(2),
			func(_ *editor.Editor, args []string) (editor.Command, error) {
				return editor.Command{Op: editor.OpText, Text: strings.Join(args, " ")}, nil
			}),
		c.colorCommand(),
		c.editCommand("border-width <map> <width>", "Set a node's border width", cobra.ExactArgs(2),
			func(_ *editor.Editor, args []string) (editor.Command, error) {
				w, err := parseNumber("width", args[0])
				return editor.Command{Op: editor.OpBorderWidth, Value: w}, err
			}),
		c.editCommand("resize <map> <radius> | <map> <width> <height>", "Resize a circle or a rectangle", cobra.RangeArgs(2, 3),
			buildResize),
		c.editCommand("collapse <map>", "Toggle whether a node hides its children", cobra.ExactArgs(1),
			fixed(editor.OpCollapse)),
		c.selectCommand(),
		c.editCommand("undo <map>", "Undo the last change", cobra.ExactArgs(1),
			fixed(editor.OpUndo)),
		c.editCommand("redo <map>", "Redo the last undone change", cobra.ExactArgs(1),
			fixed(editor.OpRedo)),
	}
}

// editCommand wires a buildFunc into a command taking the map name first
// and an optional --node target.
func (c *CLI) editCommand(use, short string, args cobra.PositionalArgs, build buildFunc) *cobra.Command {
	var node int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return c.runEdit(cmd, args[0], func(e *editor.Editor) (editor.Command, error) {
			ec, err := build(e, args[1:])
			if err != nil {
				return ec, err
			}
			if cmd.Flags().Changed("node") {
				ec.Node = editor.NodeID(node)
			}
			return ec, nil
		})
	}
	cmd.Flags().IntVarP(&node, "node", "n", 0, "target node id (default: the selection, or the root)")
	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, name string, build func(*editor.Editor) (editor.Command, error)) error {
	ctx := cmd.Context()
	ws, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	var op editor.Op
	res, e, err := ws.edit(ctx, name, func(e *editor.Editor) (editor.Command, error) {
		ec, err := build(e)
		op = ec.Op
		c.Logger.Debug("dispatching", "map", name, "cmd", describeCommand(ec))
		return ec, err
	})
	if err != nil {
		return err
	}
	reportResult(newPrinter(cmd.OutOrStdout()), op, res, e)
	return nil
}

// reportResult prints the outcome of one command.
func reportResult(p printer, op editor.Op, res editor.Result, e *editor.Editor) {
	switch {
	case op == editor.OpUndo && !res.Applied:
		p.warning("Nothing to undo")
	case op == editor.OpRedo && !res.Applied:
		p.warning("Nothing to redo")
	case op == editor.OpUndo:
		p.success("Undid last change")
	case op == editor.OpRedo:
		p.success("Redid last change")
	case op == editor.OpUnselect:
		p.success("Selection cleared")
	case !res.Applied:
		p.warning("Nothing changed")
	case op == editor.OpAdd:
		p.success("Added %s", describeShape(res.Node))
	case op == editor.OpRemove:
		p.success("Removed #%d", res.Node.ID)
	case op == editor.OpSelect || op == editor.OpSelectAt:
		p.success("Selected %s", describeShape(res.Node))
	default:
		p.success("Updated %s", describeShape(res.Node))
	}
	if e != nil {
		undo, redo := e.History.Depth()
		p.detail("%d nodes, %d undo, %d redo", e.Map.Len(), undo, redo)
	}
}

// =============================================================================
// Commands with extra flags
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var (
		kind string
		x, y float64
		cmd  *cobra.Command
	)

	cmd = c.editCommand("add <map>", "Add a child node next to its parent", cobra.ExactArgs(1),
		func(e *editor.Editor, _ []string) (editor.Command, error) {
			ec := editor.Command{Op: editor.OpAdd, Kind: kind}
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				if err := errors.ValidateNumber("x", x); err != nil {
					return ec, err
				}
				if err := errors.ValidateNumber("y", y); err != nil {
					return ec, err
				}
				ec.X, ec.Y = x, y
				return ec, nil
			}
			parent := e.Selected()
			if cmd.Flags().Changed("node") {
				n, _ := cmd.Flags().GetInt("node")
				parent, _ = e.Map.Lookup(n)
			}
			if parent == nil {
				parent = e.Map.Root()
			}
			ec.X, ec.Y = parent.X+parent.Extent(), parent.Y
			return ec, nil
		})
	cmd.Long = `Add a child to the target node (--node, else the selection, else the root).

The child is placed away from its parent in the direction of the pointer
given by --x and --y. Without a pointer the child goes to the right.
Collapsed parents do not accept children.`

	cmd.Flags().StringVar(&kind, "kind", "", "child shape: circle, rectangle (default: the parent's)")
	cmd.Flags().Float64Var(&x, "x", 0, "pointer x")
	cmd.Flags().Float64Var(&y, "y", 0, "pointer y")
	return cmd
}

func (c *CLI) colorCommand() *cobra.Command {
	var target string

	cmd := c.editCommand("color <map> <color>", "Set a node's fill, border or text color", cobra.ExactArgs(2),
		func(_ *editor.Editor, args []string) (editor.Command, error) {
			ec := editor.Command{Color: args[0]}
			switch target {
			case "fill":
				ec.Op = editor.OpFill
			case "border":
				ec.Op = editor.OpBorder
			case "text":
				ec.Op = editor.OpTextColor
			default:
				return ec, errors.New(errors.ErrCodeInvalidInput, "invalid color target %q (must be fill, border or text)", target)
			}
			return ec, nil
		})
	cmd.Long = `Set a color of the target node. Colors are #rgb, #rrggbb or #rrggbbaa hex
values or CSS color names.`

	cmd.Flags().StringVarP(&target, "target", "t", "fill", "which color to set: fill, border, text")
	return cmd
}

func (c *CLI) selectCommand() *cobra.Command {
	var (
		at   string
		none bool
	)

	cmd := c.editCommand("select <map> [id]", "Select a node by id or position", cobra.RangeArgs(1, 2),
		func(_ *editor.Editor, args []string) (editor.Command, error) {
			switch {
			case none:
				return editor.Command{Op: editor.OpUnselect}, nil
			case at != "":
				xs, ys, ok := strings.Cut(at, ",")
				if !ok {
					return editor.Command{}, errors.New(errors.ErrCodeInvalidInput, "--at wants x,y, got %q", at)
				}
				x, y, err := parsePoint(xs, ys)
				return editor.Command{Op: editor.OpSelectAt, X: x, Y: y}, err
			case len(args) == 1:
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return editor.Command{}, errors.New(errors.ErrCodeInvalidInput, "invalid node id %q", args[0])
				}
				return editor.Command{Op: editor.OpSelect, Node: editor.NodeID(id)}, nil
			}
			return editor.Command{Op: editor.OpSelect}, nil
		})

	cmd.Flags().StringVar(&at, "at", "", "select the topmost visible node under x,y")
	cmd.Flags().BoolVar(&none, "clear", false, "clear the selection")
	return cmd
}

// =============================================================================
// Argument helpers
// =============================================================================

// fixed builds a command that takes no arguments.
func fixed(op editor.Op) buildFunc {
	return func(*editor.Editor, []string) (editor.Command, error) {
		return editor.Command{Op: op}, nil
	}
}

// buildResize sets the radius of a circle (one value) or the dimensions of
// a rectangle (two values).
func buildResize(e *editor.Editor, args []string) (editor.Command, error) {
	if len(args) == 1 {
		r, err := parseNumber("radius", args[0])
		return editor.Command{Op: editor.OpRadius, Value: r}, err
	}
	w, err := parseNumber("width", args[0])
	if err != nil {
		return editor.Command{}, err
	}
	h, err := parseNumber("height", args[1])
	return editor.Command{Op: editor.OpDimensions, Width: w, Height: h}, err
}

func parseNumber(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", field, s)
	}
	return v, errors.ValidateNumber(field, v)
}

func parsePoint(xs, ys string) (float64, float64, error) {
	x, err := parseNumber("x", xs)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseNumber("y", ys)
	return x, y, err
}

// describeCommand renders a command for debug logs.
func describeCommand(ec editor.Command) string {
	if ec.Node != nil {
		return fmt.Sprintf("%s #%d", ec.Op, *ec.Node)
	}
	return string(ec.Op)
}
