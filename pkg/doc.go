// Package pkg provides the core libraries of mindcanvas, a mind-map canvas
// of connected circles and rectangles.
//
// # Overview
//
// A mind map is a tree of shapes rooted at a single shape with id 0. Every
// child is drawn next to its parent and joined to it by a straight
// connector. The pkg directory is organized into four areas:
//
//  1. Model: [shape], [mindmap], [geometry]
//  2. Editing: [editor], [history]
//  3. Persistence: [io], [store], [session], [cache]
//  4. Output: [render], [render/sink], [fonts]
//
// # Architecture
//
// The typical data flow of one edit:
//
//	Command (CLI flag, key press or HTTP body)
//	         ↓
//	    [editor] package (dispatch, snapshot into [history])
//	         ↓
//	    [mindmap] package (registry, hit-testing, translate)
//	         ↓
//	    [io] package (JSON tree) → [store] and [session]
//	         ↓
//	    [render/sink] package (SVG/PNG/PDF/DOT/text)
//
// # Quick Start
//
// Build a map, add a child and render it:
//
//	m := mindmap.NewDefault()
//	e := editor.New(m)
//
//	res, _ := e.Dispatch(editor.Command{Op: editor.OpAdd, X: 1500, Y: 860})
//	_ = e.Select(res.Node)
//	_, _ = e.SetText("First idea")
//
//	svg, _ := sink.Render(ctx, m.Root(), sink.FormatSVG)
//
// # Main Packages
//
// [shape] - The two shape variants, their styling, hit-testing and the
// parent/child links. Labels are capped per variant and the font size
// follows the shape's size.
//
// [mindmap] - The live tree with an id registry, id allocation, topmost
// visible hit-testing and subtree translation.
//
// [editor] - Selection, structural edits (add, remove, move, collapse) and
// styling edits. Every effective change pushes a snapshot into [history].
//
// [history] - Undo and redo stacks of deep tree snapshots.
//
// [io] - The JSON tree format. Variants are told apart by the presence of
// radius or width.
//
// [store] - Named map storage with file, memory, Redis, MongoDB and
// PostgreSQL backends.
//
// [session] - Editing sessions that carry the tree, both history stacks and
// the selection between CLI invocations or HTTP requests.
//
// [cache] - Content-addressed render cache keyed by tree hash and render
// options.
//
// [render/sink] - Output formats. PNG is rasterized in-process; PDF goes
// through rsvg-convert when available.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/editor/...    # Specific package
//	go test -run Example ./...  # Examples only
//
// [shape]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/shape
// [mindmap]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap
// [geometry]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/geometry
// [editor]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/editor
// [history]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/history
// [io]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/io
// [store]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/store
// [session]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/session
// [cache]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/cache
// [render]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/render/sink
// [fonts]: https://pkg.go.dev/github.com/tyrandev/mindmap-canvas-sub000/pkg/fonts
package pkg
