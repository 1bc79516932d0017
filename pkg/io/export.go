package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// node is the wire form of one shape.
type node struct {
	ID          int     `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Text        string  `json:"text"`
	FillColor   string  `json:"fillColor"`
	BorderColor string  `json:"borderColor"`
	TextColor   string  `json:"textColor"`
	BorderWidth float64 `json:"borderWidth"`
	Collapsed   bool    `json:"collapsed"`

	Radius *float64 `json:"radius,omitempty"`

	Width       *float64    `json:"width,omitempty"`
	Height      *float64    `json:"height,omitempty"`
	CornerRadii *[4]float64 `json:"cornerRadii,omitempty"`
	Borderless  bool        `json:"borderless,omitempty"`

	Children []*node `json:"children"`
}

func toNode(s *shape.Shape) *node {
	n := &node{
		ID:          s.ID,
		X:           s.X,
		Y:           s.Y,
		Text:        s.Text,
		FillColor:   s.FillColor,
		BorderColor: s.BorderColor,
		TextColor:   s.TextColor,
		BorderWidth: s.BorderWidth,
		Collapsed:   s.Collapsed,
		Children:    make([]*node, len(s.Children)),
	}
	switch s.Kind {
	case shape.Circle:
		r := s.Radius
		n.Radius = &r
	case shape.Rectangle:
		w, h, cr := s.Width, s.Height, s.CornerRadii
		n.Width, n.Height, n.CornerRadii = &w, &h, &cr
		n.Borderless = s.Borderless
	}
	for i, c := range s.Children {
		n.Children[i] = toNode(c)
	}
	return n
}

// WriteJSON encodes the subtree rooted at root as indented JSON and writes
// it to w. The output can be read back with [ReadJSON].
func WriteJSON(root *shape.Shape, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toNode(root)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the indented JSON encoding of the subtree rooted at root.
func Marshal(root *shape.Shape) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a tree to a JSON file at path.
func ExportJSON(root *shape.Shape, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(root, f)
}
