package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// RenderText writes the tree as an indented outline, two spaces per level.
// Collapsed shapes with children are marked "+" and report how many shapes
// they hide; everything else is marked "-".
//
//	- Mindmap
//	  - Goals
//	  + Ideas (3 hidden)
func RenderText(root *shape.Shape, opts ...Option) []byte {
	o := newOptions(opts...)
	var buf bytes.Buffer
	if root != nil {
		writeOutline(&buf, root, 0, o)
	}
	return buf.Bytes()
}

func writeOutline(buf *bytes.Buffer, s *shape.Shape, depth int, o Options) {
	buf.WriteString(strings.Repeat("  ", depth))
	collapsed := s.Collapsed && s.HasChildren()
	if collapsed {
		buf.WriteString("+ ")
	} else {
		buf.WriteString("- ")
	}
	buf.WriteString(s.Text)
	if o.ShowIDs {
		fmt.Fprintf(buf, " [%d]", s.ID)
	}
	if collapsed {
		fmt.Fprintf(buf, " (%d hidden)", s.Descendants())
	}
	buf.WriteByte('\n')
	if collapsed {
		return
	}
	for _, c := range s.Children {
		writeOutline(buf, c, depth+1, o)
	}
}
