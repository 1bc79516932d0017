// Package sink writes mind maps in concrete output formats.
//
// # Overview
//
// A "sink" turns a [render.Scene] (or, for outline formats, the tree
// itself) into bytes:
//
//   - SVG: vector drawing of the visible shapes and connectors
//   - PNG: raster drawing, rasterized in-process with the Go fonts
//   - PDF: the SVG converted by rsvg-convert
//   - DOT: Graphviz source of the tree
//   - Graphviz: SVG laid out automatically by Graphviz from the DOT source
//   - Text: indented outline, collapsed subtrees marked with "+"
//   - JSON: the scene itself, for external tools
//
// [Render] dispatches on a [Format] and reports to the render hooks:
//
//	svg, err := sink.Render(ctx, root, sink.FormatSVG, sink.WithBackground("#fafafa"))
//
// The individual renderers can also be called directly on a scene:
//
//	scene, _ := render.Extract(root, render.DefaultPadding)
//	svg := sink.RenderSVG(scene, sink.WithFontFamily("serif"))
//	png, err := sink.RenderPNG(scene, sink.WithScale(2))
//
// PDF output requires librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [render.Scene]: github.com/tyrandev/mindmap-canvas-sub000/pkg/render.Scene
package sink
