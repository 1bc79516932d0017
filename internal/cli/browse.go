package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/session"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Browser styles
var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	browseErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// browseKeys documents the key map shown in the help line.
//
// On a canvas, a double click (two clicks within 250ms and 10px of each
// other) opens a node for editing. The terminal has no pointer, so enter
// toggles collapse and the label is edited with the text command.
const browseKeys = "↑/↓ move  ⏎ collapse  a add  x remove  u undo  r redo  q quit"

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <map>",
		Short: "Browse and edit a map in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			m, err := newBrowseModel(ctx, ws, args[0])
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(browseModel); ok && fm.err != nil {
				return fm.err
			}
			return nil
		},
	}
}

// =============================================================================
// browseModel
// =============================================================================

// browseRow is one visible shape in the outline.
type browseRow struct {
	shape *shape.Shape
	depth int
}

// browseModel is the bubbletea model of the tree browser. Every applied
// change is committed to the stores right away.
type browseModel struct {
	ctx  context.Context
	ws   *workspace
	name string
	e    *editor.Editor
	sess *session.Session

	rows   []browseRow
	cursor int
	offset int
	height int

	status string
	err    error
}

func newBrowseModel(ctx context.Context, ws *workspace, name string) (browseModel, error) {
	e, sess, err := ws.open(ctx, name)
	if err != nil {
		return browseModel{}, err
	}
	m := browseModel{ctx: ctx, ws: ws, name: name, e: e, sess: sess, height: 20}
	m.refresh()
	if sel := e.Selected(); sel != nil {
		m.moveTo(sel.ID)
	}
	return m, nil
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.apply(editor.Command{Op: editor.OpCollapse})
		case "a":
			m.apply(editor.Command{Op: editor.OpAdd})
		case "x", "delete":
			m.apply(editor.Command{Op: editor.OpRemove})
		case "u":
			m.apply(editor.Command{Op: editor.OpUndo})
		case "r", "ctrl+r":
			m.apply(editor.Command{Op: editor.OpRedo})
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

// current returns the shape under the cursor.
func (m *browseModel) current() *shape.Shape {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].shape
}

// apply dispatches cmd against the shape under the cursor and commits.
func (m *browseModel) apply(cmd editor.Command) {
	target := m.current()
	if target == nil {
		return
	}
	switch cmd.Op {
	case editor.OpUndo, editor.OpRedo:
	case editor.OpAdd:
		cmd.Node = editor.NodeID(target.ID)
		cmd.X, cmd.Y = target.X+target.Extent(), target.Y
	default:
		cmd.Node = editor.NodeID(target.ID)
	}

	res, err := m.e.Dispatch(cmd)
	if err != nil {
		m.status = browseErrorStyle.Render(errors.UserMessage(err))
		return
	}
	if err := m.ws.commit(m.ctx, m.e, m.sess); err != nil {
		m.status = browseErrorStyle.Render(errors.UserMessage(err))
		m.err = err
		return
	}

	keep := target.ID
	switch {
	case !res.Applied:
		m.status = browseDimStyle.Render(fmt.Sprintf("%s: nothing changed", cmd.Op))
	case cmd.Op == editor.OpAdd:
		keep = res.Node.ID
		m.status = fmt.Sprintf("added #%d", res.Node.ID)
	case cmd.Op == editor.OpRemove:
		keep = target.ParentID
		m.status = fmt.Sprintf("removed #%d", target.ID)
	default:
		m.status = string(cmd.Op)
	}
	m.refresh()
	m.moveTo(keep)
}

// refresh rebuilds the visible rows from the live tree.
func (m *browseModel) refresh() {
	m.rows = nil
	var visit func(s *shape.Shape, depth int)
	visit = func(s *shape.Shape, depth int) {
		m.rows = append(m.rows, browseRow{shape: s, depth: depth})
		if s.Collapsed {
			return
		}
		for _, c := range s.Children {
			visit(c, depth+1)
		}
	}
	visit(m.e.Map.Root(), 0)
	m.cursor = min(m.cursor, len(m.rows)-1)
}

// moveTo puts the cursor on the row of id, if it is visible.
func (m *browseModel) moveTo(id int) {
	for i, r := range m.rows {
		if r.shape.ID == id {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(browseKeys))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		line := strings.Repeat("  ", r.depth) + rowMarker(r.shape) + " " + r.shape.Text
		if r.shape.Collapsed && r.shape.HasChildren() {
			line += browseDimStyle.Render(fmt.Sprintf(" (+%d)", r.shape.Descendants()))
		}
		if i == m.cursor {
			b.WriteString(browseCursorStyle.Render("▸ " + line))
		} else {
			b.WriteString(browseNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	undo, redo := m.e.History.Depth()
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("%d nodes · %d undo · %d redo", m.e.Map.Len(), undo, redo)))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	return b.String()
}

// rowMarker draws the variant and fold state of a shape.
func rowMarker(s *shape.Shape) string {
	switch {
	case s.Collapsed && s.HasChildren():
		return "⊕"
	case s.Kind == shape.Rectangle:
		return "□"
	default:
		return "○"
	}
}
