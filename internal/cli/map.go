package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render/sink"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// newOpts holds the flags of the new command.
type newOpts struct {
	kind  string
	text  string
	x, y  float64
	force bool
}

// newCommand creates a map holding only a root shape.
func (c *CLI) newCommand() *cobra.Command {
	opts := newOpts{
		kind: shape.Circle.String(),
		text: shape.DefaultRootText,
		x:    mindmap.DefaultRootX,
		y:    mindmap.DefaultRootY,
	}

	cmd := &cobra.Command{
		Use:   "new <map>",
		Short: "Create a map with a single root node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", opts.kind, "root shape: circle, rectangle")
	cmd.Flags().StringVar(&opts.text, "text", opts.text, "root label")
	cmd.Flags().Float64Var(&opts.x, "x", opts.x, "root center x")
	cmd.Flags().Float64Var(&opts.y, "y", opts.y, "root center y")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "replace an existing map")

	return cmd
}

func (c *CLI) runNew(cmd *cobra.Command, name string, opts newOpts) error {
	ctx := cmd.Context()
	kind, err := shape.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	if err := errors.ValidateNumber("x", opts.x); err != nil {
		return err
	}
	if err := errors.ValidateNumber("y", opts.y); err != nil {
		return err
	}

	ws, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if !opts.force {
		if _, ok, err := ws.maps.Load(ctx, name); err != nil {
			return err
		} else if ok {
			return errors.New(errors.ErrCodeAlreadyExists, "map %q already exists (use --force to replace it)", name)
		}
	}
	if err := ws.forget(ctx, name); err != nil {
		return err
	}

	root := shape.NewRoot(opts.x, opts.y)
	if kind == shape.Rectangle {
		root = shape.NewRectangle(shape.RootID, opts.x, opts.y, shape.DefaultWidth, shape.DefaultHeight, "")
	}
	root.SetText(opts.text)

	e, sess, err := ws.start(name, root)
	if err != nil {
		return err
	}
	if err := ws.commit(ctx, e, sess); err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.success("Created map %s", StyleHighlight.Render(name))
	p.detail("root %s", describeShape(root))
	p.nextStep("Add a node", fmt.Sprintf("%s add %s", appName, name))
	return nil
}

// showCommand prints the map as an outline with its editing state.
func (c *CLI) showCommand() *cobra.Command {
	var noIDs bool

	cmd := &cobra.Command{
		Use:   "show <map>",
		Short: "Print a map as an indented outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			e, _, err := ws.open(ctx, args[0])
			if err != nil {
				return err
			}

			var opts []sink.Option
			if !noIDs {
				opts = append(opts, sink.WithIDs())
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, string(sink.RenderText(e.Map.Root(), opts...)))

			undo, redo := e.History.Depth()
			p := newPrinter(out)
			p.line("")
			p.keyValue("Nodes", fmt.Sprint(e.Map.Len()))
			p.keyValue("Selected", describeShape(e.Selected()))
			p.keyValue("History", fmt.Sprintf("%d undo, %d redo", undo, redo))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noIDs, "no-ids", false, "hide node ids")
	return cmd
}
