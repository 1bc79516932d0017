package render

import (
	"math"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/geometry"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// DefaultPadding is the margin added around the drawing.
const DefaultPadding = 40.0

// Scene is everything a sink needs to draw a map, in draw order.
type Scene struct {
	// MinX and MinY are the top-left corner of the drawing area in map
	// coordinates; Width and Height include the padding.
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Nodes      []Node      `json:"nodes"`
	Connectors []Connector `json:"connectors"`
}

// Node is one visible shape.
type Node struct {
	ID          int              `json:"id"`
	Kind        string           `json:"kind"`
	X           float64          `json:"x"`
	Y           float64          `json:"y"`
	Radius      float64          `json:"radius,omitempty"`
	Width       float64          `json:"width,omitempty"`
	Height      float64          `json:"height,omitempty"`
	CornerRadii [4]float64       `json:"cornerRadii"`
	Borderless  bool             `json:"borderless,omitempty"`
	Fill        string           `json:"fill"`
	Border      string           `json:"border"`
	TextColor   string           `json:"textColor"`
	BorderWidth float64          `json:"borderWidth"`
	Text        string           `json:"text"`
	FontSize    float64          `json:"fontSize"`
	Hidden      int              `json:"hidden,omitempty"`
	Outline     geometry.Outline `json:"-"`
}

// IsCircle reports whether the node is drawn as a circle.
func (n Node) IsCircle() bool { return n.Kind == shape.Circle.String() }

// Connector is the line from a parent's outline to a child's outline.
type Connector struct {
	From int     `json:"from"`
	To   int     `json:"to"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

// Extract builds the scene of the tree rooted at root. Descendants of
// collapsed shapes are left out; a collapsed shape records how many
// shapes it hides.
func Extract(root *shape.Shape, padding float64) (Scene, error) {
	var sc Scene
	if root == nil {
		return sc, nil
	}
	if padding < 0 {
		padding = 0
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	var visit func(s *shape.Shape) error
	visit = func(s *shape.Shape) error {
		n := toNode(s)
		sc.Nodes = append(sc.Nodes, n)

		b := geometry.Bounds(n.Outline)
		lo, hi := b.Min(), b.Max()
		minX, minY = math.Min(minX, lo.X), math.Min(minY, lo.Y)
		maxX, maxY = math.Max(maxX, hi.X), math.Max(maxY, hi.Y)

		if s.Collapsed {
			return nil
		}
		for _, c := range s.Children {
			start, end, err := geometry.Connector(s.Outline(), c.Outline())
			if err != nil {
				return err
			}
			sc.Connectors = append(sc.Connectors, Connector{
				From: s.ID, To: c.ID,
				X1: start.X, Y1: start.Y,
				X2: end.X, Y2: end.Y,
			})
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return Scene{}, err
	}

	sc.MinX = minX - padding
	sc.MinY = minY - padding
	sc.Width = maxX - minX + 2*padding
	sc.Height = maxY - minY + 2*padding
	return sc, nil
}

func toNode(s *shape.Shape) Node {
	n := Node{
		ID:          s.ID,
		Kind:        s.Kind.String(),
		X:           s.X,
		Y:           s.Y,
		Borderless:  s.Borderless,
		Fill:        s.FillColor,
		Border:      s.BorderColor,
		TextColor:   s.TextColor,
		BorderWidth: s.BorderWidth,
		Text:        s.Text,
		FontSize:    s.FontSize,
		Outline:     s.Outline(),
	}
	switch s.Kind {
	case shape.Circle:
		n.Radius = s.Radius
	case shape.Rectangle:
		n.Width, n.Height = s.Width, s.Height
		n.CornerRadii = s.CornerRadii
	}
	if s.Collapsed {
		n.Hidden = s.Descendants()
	}
	return n
}
