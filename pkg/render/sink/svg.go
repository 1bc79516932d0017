package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render"
)

const nodeCSS = `
    .node text { pointer-events: none; }
    .node .hidden-count { font-size: 11px; fill: #555555; }`

// RenderSVG draws the scene as a standalone SVG document. Connectors are
// drawn first so shapes sit on top of them.
func RenderSVG(sc render.Scene, opts ...Option) []byte {
	o := newOptions(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		sc.MinX, sc.MinY, sc.Width, sc.Height, sc.Width, sc.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)

	if o.Background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			sc.MinX, sc.MinY, sc.Width, sc.Height, escapeXML(o.Background))
	}

	if len(sc.Connectors) > 0 {
		fmt.Fprintf(&buf, `  <g class="connectors" stroke="%s" stroke-width="2" stroke-linecap="round">`+"\n",
			escapeXML(o.ConnectorColor))
		for _, c := range sc.Connectors {
			fmt.Fprintf(&buf, `    <line data-from="%d" data-to="%d" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
				c.From, c.To, c.X1, c.Y1, c.X2, c.Y2)
		}
		buf.WriteString("  </g>\n")
	}

	for _, n := range sc.Nodes {
		renderNode(&buf, n, o)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderNode(buf *bytes.Buffer, n render.Node, o Options) {
	fmt.Fprintf(buf, `  <g class="node" id="node-%d">`+"\n", n.ID)

	stroke := fmt.Sprintf(`stroke="%s" stroke-width="%.1f"`, escapeXML(n.Border), n.BorderWidth)
	if n.Borderless || n.BorderWidth <= 0 {
		stroke = `stroke="none"`
	}
	fill := escapeXML(n.Fill)

	if n.IsCircle() {
		fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" %s/>`+"\n",
			n.X, n.Y, n.Radius, fill, stroke)
	} else if n.CornerRadii == [4]float64{} {
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" %s/>`+"\n",
			n.X-n.Width/2, n.Y-n.Height/2, n.Width, n.Height, fill, stroke)
	} else {
		fmt.Fprintf(buf, `    <path d="%s" fill="%s" %s/>`+"\n", roundedRectPath(n), fill, stroke)
	}

	if n.Text != "" {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
			n.X, n.Y, escapeXML(o.FontFamily), n.FontSize, escapeXML(n.TextColor), escapeXML(n.Text))
	}
	if n.Hidden > 0 {
		x, y := badgePosition(n)
		fmt.Fprintf(buf, `    <text class="hidden-count" x="%.1f" y="%.1f" text-anchor="start" font-family="%s">+%d</text>`+"\n",
			x, y, escapeXML(o.FontFamily), n.Hidden)
	}
	buf.WriteString("  </g>\n")
}

// roundedRectPath outlines a rectangle whose corners (top-left, top-right,
// bottom-right, bottom-left) each have their own radius.
func roundedRectPath(n render.Node) string {
	x0, y0 := n.X-n.Width/2, n.Y-n.Height/2
	x1, y1 := n.X+n.Width/2, n.Y+n.Height/2
	tl, tr, br, bl := cornerRadii(n)
	return fmt.Sprintf("M %.1f %.1f H %.1f A %.1f %.1f 0 0 1 %.1f %.1f V %.1f A %.1f %.1f 0 0 1 %.1f %.1f H %.1f A %.1f %.1f 0 0 1 %.1f %.1f V %.1f A %.1f %.1f 0 0 1 %.1f %.1f Z",
		x0+tl, y0,
		x1-tr, tr, tr, x1, y0+tr,
		y1-br, br, br, x1-br, y1,
		x0+bl, bl, bl, x0, y1-bl,
		y0+tl, tl, tl, x0+tl, y0)
}

// cornerRadii returns the node's corner radii limited to half its shorter
// side and floored at zero.
func cornerRadii(n render.Node) (tl, tr, br, bl float64) {
	limit := min(n.Width, n.Height) / 2
	c := func(r float64) float64 { return max(0, min(r, limit)) }
	return c(n.CornerRadii[0]), c(n.CornerRadii[1]), c(n.CornerRadii[2]), c(n.CornerRadii[3])
}

// badgePosition places the hidden-descendant count just outside the
// shape's lower right.
func badgePosition(n render.Node) (x, y float64) {
	if n.IsCircle() {
		return n.X + n.Radius*0.75, n.Y + n.Radius + 12
	}
	return n.X + n.Width/2 + 4, n.Y + n.Height/2 + 12
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
