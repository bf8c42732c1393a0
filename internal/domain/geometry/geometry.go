// Package geometry holds the coordinate math used when acting on page elements:
// element centers, caller offsets, viewport containment and drag paths.
package geometry

import "math"

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Mul scales p by a scalar.
func (p Point) Mul(scalar float64) Point {
	return Point{X: p.X * scalar, Y: p.Y * scalar}
}

// Dist is the euclidean distance between two points.
func (p Point) Dist(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Rect is an axis aligned box. Page rects are in document space,
// viewport rects are relative to the top-left corner of the visible area.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rect has no rendered area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Viewport is the size of the visible area of a page.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether r lies entirely inside the viewport.
// r must be in viewport space.
func (v Viewport) Contains(r Rect) bool {
	return r.Y >= 0 && r.X >= 0 && r.Bottom() <= v.Height && r.Right() <= v.Width
}

// Offset applies a caller supplied (dx, dy) adjustment to a point.
func Offset(p Point, dx, dy float64) Point {
	return p.Add(Point{X: dx, Y: dy})
}

// Interpolate returns steps evenly spaced points on the segment from -> to.
// The start point is not included and the last point always equals to.
// A non-positive steps value yields a single jump to the target.
func Interpolate(from, to Point, steps int) []Point {
	if steps <= 0 {
		return []Point{to}
	}

	delta := to.Sub(from)
	path := make([]Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		path = append(path, from.Add(delta.Mul(t)))
	}
	path[len(path)-1] = to
	return path
}
