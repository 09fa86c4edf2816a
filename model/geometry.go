// Package model holds the plain data types shared by every subsystem of the
// reactor: window identity, geometry, screen/space records and workspace ids.
// Nothing here performs I/O; it is the vocabulary the rest of the tree
// mutates and queries.
package model

import "math"

// Rect is the Go stand-in for CGRect: an origin plus a size, both in screen
// points. riftwm never talks to AppKit directly, so this has no dependency on
// any platform package.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

func (r Rect) Area() float64 { return r.W * r.H }

// SameAs compares two rects allowing for the sub-point rounding error that
// accumulates across an AX round trip.
func (r Rect) SameAs(o Rect) bool {
	const eps = 0.5
	return math.Abs(r.X-o.X) < eps && math.Abs(r.Y-o.Y) < eps &&
		math.Abs(r.W-o.W) < eps && math.Abs(r.H-o.H) < eps
}

func (r Rect) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.W == 0 && r.H == 0
}

// Intersection returns the overlapping rectangle of r and o, or the zero
// rect (with Area() == 0) if they don't overlap.
func (r Rect) Intersection(o Rect) Rect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.MaxX(), o.MaxX())
	y2 := math.Min(r.MaxY(), o.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Inset shrinks the rect by the given margins (top/right/bottom/left), the
// same convention as ewmh.FrameExtents in the teacher project.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	return Rect{
		X: r.X + left,
		Y: r.Y + top,
		W: math.Max(0, r.W-left-right),
		H: math.Max(0, r.H-top-bottom),
	}
}

type Point struct {
	X, Y float64
}

// Lerp linearly interpolates between two rects; used by the animation
// driver, kept here since it's pure geometry.
func Lerp(from, to Rect, s float64) Rect {
	return Rect{
		X: from.X + (to.X-from.X)*s,
		Y: from.Y + (to.Y-from.Y)*s,
		W: from.W + (to.W-from.W)*s,
		H: from.H + (to.H-from.H)*s,
	}
}

// ClampToBounds nudges rect fully inside bounds, preserving size, matching
// the original animation driver's clamp_to_bounds.
func ClampToBounds(rect, bounds Rect) Rect {
	out := rect
	if bounds.IsZero() {
		return out
	}
	if out.X < bounds.X {
		out.X = bounds.X
	}
	if out.Y < bounds.Y {
		out.Y = bounds.Y
	}
	if out.MaxX() > bounds.MaxX() {
		out.X = bounds.MaxX() - out.W
	}
	if out.MaxY() > bounds.MaxY() {
		out.Y = bounds.MaxY() - out.H
	}
	return out
}
