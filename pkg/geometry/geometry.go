package geometry

import (
	"fmt"
	"math"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// Point is a canvas coordinate.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Dist2 returns the squared distance between p and q.
func Dist2(p, q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Sqrt(Dist2(p, q))
}

// Angle returns the direction from one point to another, atan2(dy, dx).
func Angle(from, to Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// Offset returns the point dist away from c in the given direction.
func Offset(c Point, angle, dist float64) Point {
	return c.Add(Point{dist * math.Cos(angle), dist * math.Sin(angle)})
}

// Outline is the geometric capability a shape exposes for hit testing and
// connector routing.
type Outline interface {
	Center() Point
	Contains(p Point) bool
}

// Circle is a circle outline.
type Circle struct {
	C Point
	R float64
}

// Center implements Outline.
func (c Circle) Center() Point { return c.C }

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	return Dist2(c.C, p) <= c.R*c.R
}

// Rect is an axis-aligned rectangle outline anchored at its center.
type Rect struct {
	C    Point
	W, H float64
}

// Center implements Outline.
func (r Rect) Center() Point { return r.C }

// Contains reports whether p lies inside or on the rectangle's bounds.
func (r Rect) Contains(p Point) bool {
	hw, hh := r.W/2, r.H/2
	return p.X >= r.C.X-hw && p.X <= r.C.X+hw &&
		p.Y >= r.C.Y-hh && p.Y <= r.C.Y+hh
}

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.C.X - r.W/2, r.C.Y - r.H/2} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.C.X + r.W/2, r.C.Y + r.H/2} }

// Bounds returns the axis-aligned bounding box of an outline.
// Unknown outline types collapse to their center.
func Bounds(o Outline) Rect {
	switch v := o.(type) {
	case Circle:
		return Rect{C: v.C, W: 2 * v.R, H: 2 * v.R}
	case Rect:
		return v
	default:
		return Rect{C: o.Center()}
	}
}

// PerimeterToward returns the point on the circle's perimeter facing target.
func PerimeterToward(c Circle, target Point) Point {
	return Offset(c.C, Angle(c.C, target), c.R)
}

// ClampToRect clamps p per axis into the rectangle's bounds.
func ClampToRect(r Rect, p Point) Point {
	lo, hi := r.Min(), r.Max()
	return Point{clamp(p.X, lo.X, hi.X), clamp(p.Y, lo.Y, hi.Y)}
}

// EdgeExit returns the point where the ray from the rectangle's center
// toward target crosses the rectangle's border.
//
// The ray leaves through a vertical edge when |dx|/|dy| exceeds the
// rectangle's aspect ratio w/h, otherwise through a horizontal edge. The
// other coordinate follows proportionally along that edge. A target at the
// center yields the center.
func EdgeExit(r Rect, target Point) Point {
	d := target.Sub(r.C)
	if d == (Point{}) {
		return r.C
	}
	dx, dy := d.X, d.Y
	hw, hh := r.W/2, r.H/2
	var p Point
	if math.Abs(dx)*hh > math.Abs(dy)*hw {
		p = Point{
			X: r.C.X + math.Copysign(hw, dx),
			Y: r.C.Y + dy*hw/math.Abs(dx),
		}
	} else {
		p = Point{
			X: r.C.X + dx*hh/math.Abs(dy),
			Y: r.C.Y + math.Copysign(hh, dy),
		}
	}
	return ClampToRect(r, p)
}

// Connector computes the endpoints of the line joining two outlines.
// start lies on from's boundary facing to, end on to's boundary facing from.
func Connector(from, to Outline) (start, end Point, err error) {
	switch f := from.(type) {
	case Circle:
		switch t := to.(type) {
		case Circle:
			a := Angle(f.C, t.C)
			start = Offset(f.C, a, f.R)
			end = Offset(t.C, a, -t.R)
			return start, end, nil
		case Rect:
			start = PerimeterToward(f, t.C)
			return start, ClampToRect(t, start), nil
		}
	case Rect:
		switch t := to.(type) {
		case Circle:
			return EdgeExit(f, t.C), PerimeterToward(t, f.C), nil
		case Rect:
			return EdgeExit(f, t.C), EdgeExit(t, f.C), nil
		}
	}
	return Point{}, Point{}, errors.New(errors.ErrCodeUnsupported,
		"unsupported type pairing for connector: %s -> %s", typeName(from), typeName(to))
}

func typeName(o Outline) string {
	if o == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", o)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
