// Package selection tracks a single drag selection inside one overlay.
//
// All coordinates are local to the overlay that owns the selector. Translation
// into global screen space is the capture coordinator's job.
package selection

import "image"

// Point is a pixel position.
type Point struct {
	X int
	Y int
}

// Sub returns p - q componentwise.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q componentwise.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// In reports whether p lies inside r (min inclusive, max exclusive).
func (p Point) In(r Rect) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Rect is an origin plus size. Width and Height are never negative for
// rectangles produced by this package.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Translate moves the rectangle by d, keeping its size.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Selector is an in-progress drag. Extent may be negative when the drag moves
// up or left of the origin.
type Selector struct {
	origin Point
	extent Point
}

// Begin anchors a new selector at origin with zero extent.
func Begin(origin Point) *Selector {
	return &Selector{origin: origin}
}

// Update recomputes the extent from the current pointer position. No bound is
// applied.
func (s *Selector) Update(current Point) {
	s.extent = current.Sub(s.origin)
}

// Origin returns the anchor point.
func (s *Selector) Origin() Point { return s.origin }

// Extent returns the signed drag extent.
func (s *Selector) Extent() Point { return s.extent }

// NormalizedRect returns the selection with its origin at the min corner and
// non-negative size. A zero-area result means no real selection was made.
func (s *Selector) NormalizedRect() Rect {
	end := s.origin.Add(s.extent)
	return Rect{
		X:      min(s.origin.X, end.X),
		Y:      min(s.origin.Y, end.Y),
		Width:  abs(s.extent.X),
		Height: abs(s.extent.Y),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
