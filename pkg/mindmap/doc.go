// Package mindmap keeps a tree of shapes and the flat registry that mirrors
// it.
//
// The tree is the parent/children edges owned by the shapes themselves.
// The registry is an ordered slice of every live shape, used for scanning:
// hit tests walk it front to back and the first visible match wins, so
// registry order is the tie-break for overlapping shapes. An id index
// resolves the weak parent references shapes carry.
//
// The two views are kept consistent by routing every structural change
// through [Mindmap]: [Mindmap.Attach] links a child and registers it,
// [Mindmap.Remove] drops a whole subtree in two phases (mark, then filter)
// so the registry is never mutated while it is being walked, and
// [Mindmap.Install] rebuilds both from a root after undo, redo or load.
//
// # Example
//
//	m := mindmap.NewDefault()
//	child := shape.NewCircle(m.NextID(), 1445, 860, 50, "idea")
//	if err := m.Attach(m.Root(), child); err != nil {
//	    return err
//	}
//	hit := m.HitTest(1445, 860) // child
package mindmap
