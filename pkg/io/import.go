package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// ReadJSON decodes a tree from r.
//
// The variant of every node is decided by field presence: "radius" makes a
// circle, "width" a rectangle. ReadJSON fails if:
//   - The JSON is malformed (INVALID_FORMAT)
//   - The tree is followed by anything but whitespace (INVALID_FORMAT)
//   - A node has neither "radius" nor "width" (UNKNOWN_NODE_TYPE)
//   - A radius, width or height is missing or not positive (INVALID_TREE)
//   - Two nodes share an id (INVALID_TREE)
//
// Errors name the offending node id. On error no tree is returned.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*shape.Shape, error) {
	var data node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode tree: unexpected data after the root node")
	}
	seen := make(map[int]bool)
	root, err := fromNode(&data, seen)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// Unmarshal decodes a tree from data. See [ReadJSON].
func Unmarshal(data []byte) (*shape.Shape, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded tree.
func ImportJSON(path string) (*shape.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func fromNode(n *node, seen map[int]bool) (*shape.Shape, error) {
	if n == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "null node")
	}
	if seen[n.ID] {
		return nil, errors.New(errors.ErrCodeInvalidTree, "node %d: duplicate id", n.ID)
	}
	seen[n.ID] = true

	var s *shape.Shape
	switch {
	case n.Radius != nil:
		if err := checkSize(n.ID, "radius", n.Radius); err != nil {
			return nil, err
		}
		s = shape.NewCircle(n.ID, n.X, n.Y, *n.Radius, "")
	case n.Width != nil:
		if err := checkSize(n.ID, "width", n.Width); err != nil {
			return nil, err
		}
		if err := checkSize(n.ID, "height", n.Height); err != nil {
			return nil, err
		}
		s = shape.NewRectangle(n.ID, n.X, n.Y, *n.Width, *n.Height, "")
		if n.CornerRadii != nil {
			s.CornerRadii = *n.CornerRadii
		}
		s.Borderless = n.Borderless
	default:
		return nil, errors.New(errors.ErrCodeUnknownNodeType, "Unknown node type (node %d has neither radius nor width)", n.ID)
	}

	// Missing colors keep the defaults.
	setIf(&s.FillColor, n.FillColor)
	setIf(&s.BorderColor, n.BorderColor)
	setIf(&s.TextColor, n.TextColor)
	s.BorderWidth = n.BorderWidth
	s.Collapsed = n.Collapsed
	s.SetText(n.Text)

	for _, c := range n.Children {
		child, err := fromNode(c, seen)
		if err != nil {
			return nil, err
		}
		if err := s.AddChild(child); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
	}
	return s, nil
}

// checkSize rejects a missing or non-positive dimension.
func checkSize(id int, field string, v *float64) error {
	if v == nil {
		return errors.New(errors.ErrCodeInvalidTree, "node %d: missing %s", id, field)
	}
	if !(*v > 0) || math.IsInf(*v, 0) {
		return errors.New(errors.ErrCodeInvalidTree, "node %d: %s must be positive, got %v", id, field, *v)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
