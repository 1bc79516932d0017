// Package geometry computes connector endpoints and point containment for
// the two shape outlines a mind map supports: circles and axis-aligned
// rectangles.
//
// Everything here is a pure function of positions and sizes. Shapes
// expose themselves to this package through the [Outline] capability, so
// the package never imports the shape model.
//
// # Connectors
//
// [Connector] returns the start point on the source outline and the end
// point on the target outline of the line drawn between a parent and a
// child:
//
//   - Circle to circle: both points lie on the perimeters along the line
//     joining the centers.
//   - Circle to rectangle: the circle point lies on its perimeter toward
//     the rectangle center, and the rectangle point is that perimeter point
//     clamped into the rectangle.
//   - Rectangle to anything: the rectangle point is where the line toward
//     the other center leaves the rectangle, see [EdgeExit].
//
// Pairings outside these (for instance a nil outline or a custom Outline
// implementation) fail with an UNSUPPORTED error instead of a degenerate
// line.
package geometry
