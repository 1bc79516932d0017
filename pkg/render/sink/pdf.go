package sink

import "github.com/tyrandev/mindmap-canvas-sub000/pkg/render"

// RenderPDF renders the scene as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(sc render.Scene, opts ...Option) ([]byte, error) {
	return render.ToPDF(RenderSVG(sc, opts...))
}
