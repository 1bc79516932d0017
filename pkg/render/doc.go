// Package render turns a mind map into drawable data and converts vector
// output to other formats.
//
// # Overview
//
// Rendering is split in two stages. [Extract] walks a tree and produces a
// [Scene]: the shapes that are visible (no collapsed ancestor) with their
// resolved style, plus one [Connector] per visible parent/child pair whose
// endpoints lie on the two outlines. The output formats in the [sink]
// subpackage only ever read a Scene (or, for outline formats, the tree).
//
//	scene, err := render.Extract(root, render.DefaultPadding)
//	svg := sink.RenderSVG(scene)
//	pdf, err := render.ToPDF(svg)
//
// # Format Conversion
//
// [ToPDF] converts any SVG using the external rsvg-convert tool (from
// librsvg). PNG output does not need it: the sink rasterizes scenes
// directly.
//
// [sink]: github.com/tyrandev/mindmap-canvas-sub000/pkg/render/sink
package render
