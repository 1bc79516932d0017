// Package editor is the mutation controller of a mind map.
//
// An [Editor] bundles the state every edit needs (the live [mindmap.Mindmap],
// the [history.Manager] and the current selection) and exposes the
// editing operations. It enforces the tree's rules and records undo
// snapshots:
//
//   - Every significant mutation (add, remove, move past the threshold,
//     text, color, border, resize, collapse) saves a snapshot of the root
//     before it is applied.
//   - Selecting and unselecting never snapshot; undo and redo never
//     restore the selection.
//   - Invalid input (non-finite or non-positive sizes, malformed colors)
//     returns an INVALID_INPUT error and leaves both the tree and the
//     history untouched.
//   - Attempts that would break an invariant (removing the root,
//     collapsing a childless shape, adding under a collapsed shape, editing
//     with nothing selected) are logged and ignored: the call reports
//     applied=false with a nil error.
//
// Adapters (the CLI, the terminal browser, the HTTP API) translate their
// input into [Command] values and run them through [Editor.Dispatch], one
// command per input event.
package editor
