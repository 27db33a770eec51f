// Package geom provides the axis-aligned geometry used for collision and
// interaction checks. All containment and overlap tests are inclusive.
package geom

// Point is a map position in pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// RectAt builds a w×h rectangle anchored at p.
func RectAt(p Point, w, h float64) Rect {
	return Rect{X: p.X, Y: p.Y, W: w, H: h}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Overlaps reports whether r and o share at least one point, edges included.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W &&
		r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Pad grows r by d on all four sides.
func (r Rect) Pad(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return r.Contains(Point{X: o.X, Y: o.Y}) && r.Contains(Point{X: o.X + o.W, Y: o.Y + o.H})
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}
