// Package io provides JSON import and export for mind map trees.
//
// # JSON Format
//
// A tree is one nested object per shape, starting at the root:
//
//	{
//	  "id": 0, "x": 1335, "y": 860, "text": "Mindmap",
//	  "fillColor": "#ffffff", "borderColor": "#000000", "textColor": "#000000",
//	  "borderWidth": 2, "collapsed": false,
//	  "radius": 50,
//	  "children": [
//	    {"id": 1, "x": 1445, "y": 860, "text": "Task", ...,
//	     "width": 150, "height": 60, "cornerRadii": [8, 8, 8, 8],
//	     "children": []}
//	  ]
//	}
//
// There is no type tag. A node with a "radius" field is a circle, a node
// with a "width" field is a rectangle ("height" is required with it,
// "cornerRadii" and "borderless" are optional). A node with neither fails
// the whole read with an UNKNOWN_NODE_TYPE error, and a missing or
// non-positive size with INVALID_TREE; a partial tree is never returned.
//
// Font sizes are not stored; they are derived again from size and text
// when a tree is read.
//
// # Import and Export
//
// Use [ReadJSON] / [WriteJSON] with any reader or writer, [Unmarshal] /
// [Marshal] for byte slices, and [ImportJSON] / [ExportJSON] for files:
//
//	root, err := io.ImportJSON("plans.json")
//	if err != nil {
//	    return err
//	}
//	m, err := mindmap.New(root)
package io
