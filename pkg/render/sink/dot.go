package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/fonts"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// ToDOT converts the tree to Graphviz DOT. Shapes keep their variant,
// colors and label; the children of a collapsed shape are left out and
// its label reports how many shapes it hides. Positions are not carried:
// Graphviz lays the tree out itself.
func ToDOT(root *shape.Shape, opts ...Option) string {
	o := newOptions(opts...)

	var buf bytes.Buffer
	buf.WriteString("digraph mindmap {\n")
	buf.WriteString("  rankdir=LR;\n")
	if o.Background != "" {
		fmt.Fprintf(&buf, "  bgcolor=%q;\n", o.Background)
	} else {
		buf.WriteString("  bgcolor=\"transparent\";\n")
	}
	fmt.Fprintf(&buf, "  node [style=filled, fontname=%q, margin=\"0.2,0.1\"];\n", fonts.FontFamily)
	fmt.Fprintf(&buf, "  edge [arrowhead=none, color=%q, penwidth=2];\n", o.ConnectorColor)
	buf.WriteString("\n")

	var edges []string
	var visit func(s *shape.Shape)
	visit = func(s *shape.Shape) {
		fmt.Fprintf(&buf, "  n%d [%s];\n", s.ID, strings.Join(dotAttrs(s, o), ", "))
		if s.Collapsed {
			return
		}
		for _, c := range s.Children {
			edges = append(edges, fmt.Sprintf("  n%d -> n%d;\n", s.ID, c.ID))
			visit(c)
		}
	}
	if root != nil {
		visit(root)
	}

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func dotAttrs(s *shape.Shape, o Options) []string {
	label := s.Text
	if o.ShowIDs {
		label = fmt.Sprintf("%s [%d]", label, s.ID)
	}
	if s.Collapsed && s.HasChildren() {
		label = fmt.Sprintf("%s (+%d)", label, s.Descendants())
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if s.Kind == shape.Circle {
		attrs = append(attrs, "shape=circle")
	} else {
		attrs = append(attrs, "shape=box")
		if s.CornerRadii != [4]float64{} {
			attrs = append(attrs, `style="rounded,filled"`)
		}
	}
	penwidth := s.BorderWidth
	if s.Borderless {
		penwidth = 0
	}
	attrs = append(attrs,
		fmt.Sprintf("fillcolor=%q", s.FillColor),
		fmt.Sprintf("color=%q", s.BorderColor),
		fmt.Sprintf("fontcolor=%q", s.TextColor),
		fmt.Sprintf("penwidth=%s", strconv.FormatFloat(penwidth, 'f', -1, 64)),
	)
	return attrs
}

// RenderGraphviz lays out DOT source with Graphviz and returns SVG.
func RenderGraphviz(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "graphviz render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// sized in user units, so the SVG scales like the native sink's output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
