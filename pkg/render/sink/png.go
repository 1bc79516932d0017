package sink

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/fonts"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render"
)

// maxPNGSide bounds each image dimension.
const maxPNGSide = 16384

// RenderPNG rasterizes the scene in-process. The background is white
// unless [WithBackground] says otherwise.
func RenderPNG(sc render.Scene, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	w := int(math.Ceil(sc.Width * o.Scale))
	h := int(math.Ceil(sc.Height * o.Scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeRender, "empty scene")
	}
	if w > maxPNGSide || h > maxPNGSide {
		return nil, errors.New(errors.ErrCodeRender, "image too large: %dx%d (max %d per side)", w, h, maxPNGSide)
	}

	p := &painter{
		dc:    gg.NewContext(w, h),
		scene: sc,
		scale: o.Scale,
		faces: make(map[float64]font.Face),
	}
	defer p.close()

	p.dc.SetColor(parseColor(o.Background, color.White))
	p.dc.Clear()

	p.dc.SetColor(parseColor(o.ConnectorColor, color.Black))
	p.dc.SetLineWidth(2 * p.scale)
	p.dc.SetLineCap(gg.LineCapRound)
	for _, c := range sc.Connectors {
		x1, y1 := p.pt(c.X1, c.Y1)
		x2, y2 := p.pt(c.X2, c.Y2)
		p.dc.DrawLine(x1, y1, x2, y2)
		p.dc.Stroke()
	}

	for _, n := range sc.Nodes {
		if err := p.node(n); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := p.dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "encode png")
	}
	return buf.Bytes(), nil
}

type painter struct {
	dc    *gg.Context
	scene render.Scene
	scale float64
	faces map[float64]font.Face
}

// pt maps scene coordinates to pixels.
func (p *painter) pt(x, y float64) (float64, float64) {
	return (x - p.scene.MinX) * p.scale, (y - p.scene.MinY) * p.scale
}

func (p *painter) node(n render.Node) error {
	dc := p.dc
	x, y := p.pt(n.X, n.Y)

	if n.IsCircle() {
		dc.DrawCircle(x, y, n.Radius*p.scale)
	} else {
		p.rectPath(n)
	}
	dc.SetColor(parseColor(n.Fill, color.White))
	if n.Borderless || n.BorderWidth <= 0 {
		dc.Fill()
	} else {
		dc.FillPreserve()
		dc.SetColor(parseColor(n.Border, color.Black))
		dc.SetLineWidth(n.BorderWidth * p.scale)
		dc.Stroke()
	}

	if n.Text != "" {
		face, err := p.face(n.FontSize)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(parseColor(n.TextColor, color.Black))
		dc.DrawStringAnchored(n.Text, x, y, 0.5, 0.35)
	}
	if n.Hidden > 0 {
		face, err := p.face(11)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(parseColor(DefaultConnectorColor, color.Black))
		bx, by := badgePosition(n)
		bx, by = p.pt(bx, by)
		dc.DrawString(fmt.Sprintf("+%d", n.Hidden), bx, by)
	}
	return nil
}

// rectPath traces a rectangle with per-corner radii (top-left, top-right,
// bottom-right, bottom-left) as the current path.
func (p *painter) rectPath(n render.Node) {
	dc := p.dc
	x0, y0 := p.pt(n.X-n.Width/2, n.Y-n.Height/2)
	x1, y1 := p.pt(n.X+n.Width/2, n.Y+n.Height/2)
	tl, tr, br, bl := cornerRadii(n)
	tl, tr, br, bl = tl*p.scale, tr*p.scale, br*p.scale, bl*p.scale

	dc.NewSubPath()
	dc.MoveTo(x0+tl, y0)
	dc.LineTo(x1-tr, y0)
	if tr > 0 {
		dc.DrawArc(x1-tr, y0+tr, tr, -math.Pi/2, 0)
	}
	dc.LineTo(x1, y1-br)
	if br > 0 {
		dc.DrawArc(x1-br, y1-br, br, 0, math.Pi/2)
	}
	dc.LineTo(x0+bl, y1)
	if bl > 0 {
		dc.DrawArc(x0+bl, y1-bl, bl, math.Pi/2, math.Pi)
	}
	dc.LineTo(x0, y0+tl)
	if tl > 0 {
		dc.DrawArc(x0+tl, y0+tl, tl, math.Pi, 3*math.Pi/2)
	}
	dc.ClosePath()
}

// face returns the label face for a font size in scene units.
func (p *painter) face(size float64) (font.Face, error) {
	px := size * p.scale
	if f, ok := p.faces[px]; ok {
		return f, nil
	}
	f, err := fonts.Face(px)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "load font")
	}
	p.faces[px] = f
	return f, nil
}

func (p *painter) close() {
	for _, f := range p.faces {
		f.Close()
	}
}
