// Package shape defines the nodes of a mind map: positioned, styled,
// textual circles and rectangles arranged in a tree.
//
// A [Shape] is a tagged union discriminated by [Kind]. Variant fields that
// do not apply (Radius on a rectangle, Width on a circle) are kept at zero.
// Children are owned by their parent; the parent link is a weak id
// reference ([Shape.ParentID]) resolved through a registry, never a
// pointer.
package shape

import (
	"math"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/geometry"
)

// Kind discriminates the shape variants.
type Kind uint8

const (
	Circle Kind = iota
	Rectangle
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case Circle:
		return "circle"
	case Rectangle:
		return "rectangle"
	default:
		return "unknown"
	}
}

// ParseKind parses a variant name as produced by [Kind.String].
func ParseKind(s string) (Kind, error) {
	switch s {
	case "circle", "c":
		return Circle, nil
	case "rectangle", "rect", "r":
		return Rectangle, nil
	}
	return 0, errors.New(errors.ErrCodeUnknownNodeType, "unknown shape kind %q", s)
}

const (
	// RootID is the id of the tree root. It is never reassigned or removed.
	RootID = 0
	// NoParent is the ParentID of a detached shape or the root.
	NoParent = -1
)

// Text caps per variant, in runes.
const (
	MaxCircleText    = 32
	MaxRectangleText = 20
)

// Size floors applied by SetRadius and by the editor before resizing.
const (
	MinRadius = 30.0
	MinWidth  = 60.0
	MinHeight = 30.0
)

// Defaults for new shapes.
const (
	DefaultRadius      = 50.0
	DefaultWidth       = 150.0
	DefaultHeight      = 60.0
	DefaultFontSize    = 16.0
	DefaultBorderWidth = 2.0
	DefaultFillColor   = "#ffffff"
	DefaultBorderColor = "#000000"
	DefaultTextColor   = "#000000"
	DefaultText        = "New node"
	DefaultRootText    = "Mindmap"
)

// Shape is a node of the mind map tree.
type Shape struct {
	ID   int
	Kind Kind

	// X and Y locate the center.
	X, Y float64

	// Circle geometry.
	Radius float64

	// Rectangle geometry. CornerRadii run clockwise from the top-left.
	Width, Height float64
	CornerRadii   [4]float64
	Borderless    bool

	FillColor   string
	BorderColor string
	TextColor   string
	BorderWidth float64

	Text     string
	FontSize float64

	Children  []*Shape
	ParentID  int
	Collapsed bool

	toBeRemoved bool
}

// NewCircle creates a detached circle with default styling.
func NewCircle(id int, x, y, radius float64, text string) *Shape {
	s := newShape(id, Circle, x, y)
	s.Radius = radius
	s.SetText(text)
	return s
}

// NewRectangle creates a detached rectangle with default styling.
func NewRectangle(id int, x, y, width, height float64, text string) *Shape {
	s := newShape(id, Rectangle, x, y)
	s.Width = width
	s.Height = height
	s.SetText(text)
	return s
}

// NewRoot creates the default root: a circle with id 0 labelled "Mindmap".
func NewRoot(x, y float64) *Shape {
	return NewCircle(RootID, x, y, DefaultRadius, DefaultRootText)
}

func newShape(id int, kind Kind, x, y float64) *Shape {
	return &Shape{
		ID:          id,
		Kind:        kind,
		X:           x,
		Y:           y,
		FillColor:   DefaultFillColor,
		BorderColor: DefaultBorderColor,
		TextColor:   DefaultTextColor,
		BorderWidth: DefaultBorderWidth,
		ParentID:    NoParent,
	}
}

// MaxText returns the text cap of the shape's variant.
func (s *Shape) MaxText() int {
	if s.Kind == Rectangle {
		return MaxRectangleText
	}
	return MaxCircleText
}

// SetText truncates text to the variant's cap, stores it and re-derives
// the font size.
//
// Circles use a bucketed rule on the text length: radius/2.85 up to 8
// characters, radius/3 up to 12, radius/3.25 beyond. Rectangles scale with
// their height (height/3), or with their width (width/6.33) when
// borderless. A result that is not a positive finite number is logged and
// replaced by [DefaultFontSize].
func (s *Shape) SetText(text string) {
	if limit := s.MaxText(); utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}
	s.Text = text

	fs := s.computeFontSize()
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		log.Warn("invalid font size, using default", "id", s.ID, "computed", fs, "default", DefaultFontSize)
		fs = DefaultFontSize
	}
	s.FontSize = fs
}

func (s *Shape) computeFontSize() float64 {
	switch s.Kind {
	case Circle:
		n := utf8.RuneCountInString(s.Text)
		switch {
		case n <= 8:
			return s.Radius / 2.85
		case n <= 12:
			return s.Radius / 3
		default:
			return s.Radius / 3.25
		}
	case Rectangle:
		if s.Borderless {
			return s.Width / 6.33
		}
		return s.Height / 3
	}
	return math.NaN()
}

// SetRadius sets a circle's radius, clamping it to [MinRadius], and
// re-derives the font size. Non-finite input leaves the shape untouched.
func (s *Shape) SetRadius(r float64) error {
	if s.Kind != Circle {
		return errors.New(errors.ErrCodeUnsupported, "set radius on %s %d", s.Kind, s.ID)
	}
	if err := errors.ValidateNumber("radius", r); err != nil {
		return err
	}
	s.Radius = math.Max(r, MinRadius)
	s.SetText(s.Text)
	return nil
}

// SetDimensions sets a rectangle's size as given and re-derives the font
// size. It does not clamp; callers apply [MinWidth] and [MinHeight].
func (s *Shape) SetDimensions(w, h float64) error {
	if s.Kind != Rectangle {
		return errors.New(errors.ErrCodeUnsupported, "set dimensions on %s %d", s.Kind, s.ID)
	}
	if err := errors.ValidateNumber("width", w); err != nil {
		return err
	}
	if err := errors.ValidateNumber("height", h); err != nil {
		return err
	}
	s.Width, s.Height = w, h
	s.SetText(s.Text)
	return nil
}

// SetFillColor validates and sets the fill color.
func (s *Shape) SetFillColor(c string) error {
	if err := errors.ValidateColor(c); err != nil {
		return err
	}
	s.FillColor = c
	return nil
}

// SetBorderColor validates and sets the border color.
func (s *Shape) SetBorderColor(c string) error {
	if err := errors.ValidateColor(c); err != nil {
		return err
	}
	s.BorderColor = c
	return nil
}

// SetTextColor validates and sets the text color.
func (s *Shape) SetTextColor(c string) error {
	if err := errors.ValidateColor(c); err != nil {
		return err
	}
	s.TextColor = c
	return nil
}

// SetBorderWidth sets the border width. Zero removes the border.
func (s *Shape) SetBorderWidth(w float64) error {
	if err := errors.ValidateNumber("border width", w); err != nil {
		return err
	}
	if w < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "border width cannot be negative, got %v", w)
	}
	s.BorderWidth = w
	return nil
}

// Center returns the shape's center point.
func (s *Shape) Center() geometry.Point {
	return geometry.Point{X: s.X, Y: s.Y}
}

// Outline returns the geometric outline used for hit testing and
// connector routing.
func (s *Shape) Outline() geometry.Outline {
	if s.Kind == Rectangle {
		return geometry.Rect{C: s.Center(), W: s.Width, H: s.Height}
	}
	return geometry.Circle{C: s.Center(), R: s.Radius}
}

// Contains reports whether (x, y) lies inside the shape.
func (s *Shape) Contains(x, y float64) bool {
	return s.Outline().Contains(geometry.Point{X: x, Y: y})
}

// Extent returns the characteristic size used to space children:
// the radius of a circle, max(width, height) of a rectangle.
func (s *Shape) Extent() float64 {
	if s.Kind == Rectangle {
		return math.Max(s.Width, s.Height)
	}
	return s.Radius
}
