package cli

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	mcio "github.com/tyrandev/mindmap-canvas-sub000/pkg/io"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
)

// mapsCommand groups the store management subcommands.
func (c *CLI) mapsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maps",
		Aliases: []string{"map"},
		Short:   "List, rename, delete, import and dump stored maps",
	}

	cmd.AddCommand(c.mapsListCommand())
	cmd.AddCommand(c.mapsRenameCommand())
	cmd.AddCommand(c.mapsDeleteCommand())
	cmd.AddCommand(c.mapsImportCommand())
	cmd.AddCommand(c.mapsDumpCommand())

	return cmd
}

func (c *CLI) mapsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored maps",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			names, err := ws.maps.List(ctx)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(names) == 0 {
				p.info("No maps yet")
				p.nextStep("Create one", appName+" new <map>")
				return nil
			}

			rows, err := ws.summaries(ctx, names)
			if err != nil {
				return err
			}
			p.line(mapTable(rows))
			return nil
		},
	}
}

func (w *workspace) summaries(ctx context.Context, names []string) ([][]string, error) {
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		nodes, live := "?", "-"
		if root, err := w.loadTree(ctx, name); err == nil {
			nodes = fmt.Sprint(1 + root.Descendants())
		} else {
			w.logger.Warn("unreadable map", "map", name, "err", err)
		}
		sess, err := w.sessions.FindByMap(ctx, name)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			live = fmt.Sprintf("%s, %d undo", formatAge(sess.UpdatedAt), len(sess.Undo))
		}
		rows = append(rows, []string{name, nodes, live})
	}
	return rows, nil
}

func mapTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Map", "Nodes", "Session").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func (c *CLI) mapsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a stored map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			oldName, newName := args[0], args[1]
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.maps.Rename(ctx, oldName, newName); err != nil {
				return err
			}
			if err := ws.forget(ctx, newName); err != nil {
				return err
			}
			sess, err := ws.sessions.FindByMap(ctx, oldName)
			if err != nil {
				return err
			}
			if sess != nil {
				sess.Map = newName
				if err := ws.sessions.Set(ctx, sess); err != nil {
					return err
				}
			}
			newPrinter(cmd.OutOrStdout()).success("Renamed %s %s %s", oldName, iconArrow, StyleHighlight.Render(newName))
			return nil
		},
	}
}

func (c *CLI) mapsDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <map>...",
		Aliases: []string{"rm"},
		Short:   "Delete stored maps and their sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			p := newPrinter(cmd.OutOrStdout())
			if !yes && !confirm(cmd, fmt.Sprintf("Delete %s?", strings.Join(args, ", "))) {
				p.warning("Nothing deleted")
				return nil
			}
			for _, name := range args {
				if err := ws.maps.Delete(ctx, name); err != nil {
					return err
				}
				if err := ws.forget(ctx, name); err != nil {
					return err
				}
				p.success("Deleted %s", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// confirm asks a yes/no question on the command's input. Anything but an
// explicit yes, including EOF, is a no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c *CLI) mapsImportCommand() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a map from a JSON file",
		Long: `Import a map from a JSON tree file as written by "maps dump". The map is
named after the file unless --name is given. Importing over an existing map
requires --force and discards its editing session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			root, err := mcio.ImportJSON(path)
			if err != nil {
				return err
			}
			m, err := mindmap.New(root)
			if err != nil {
				return err
			}

			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			if !force {
				if _, ok, err := ws.maps.Load(ctx, name); err != nil {
					return err
				} else if ok {
					return errors.New(errors.ErrCodeAlreadyExists, "map %q already exists (use --force to replace it)", name)
				}
			}
			data, err := mcio.Marshal(m.Root())
			if err != nil {
				return err
			}
			if err := ws.maps.Save(ctx, name, data); err != nil {
				return err
			}
			if err := ws.forget(ctx, name); err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.success("Imported %s (%d nodes)", StyleHighlight.Render(name), m.Len())
			p.nextStep("Show it", fmt.Sprintf("%s show %s", appName, name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "map name (default: file name without extension)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing map")
	return cmd
}

func (c *CLI) mapsDumpCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump <map>",
		Short: "Write a map's JSON tree to a file or stdout",
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
			if output == "" || output == "-" {
				return mcio.WriteJSON(e.Map.Root(), cmd.OutOrStdout())
			}
			if err := mcio.ExportJSON(e.Map.Root(), output); err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.success("Dumped %s", args[0])
			p.file(output, false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
