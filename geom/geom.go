// Package geom holds the plane geometry used to lay out and hit-test diagram
// edges: points, rectangles, segment intersection and walking along polylines.
package geom

import "math"

// Point is a position on the drawing surface, in pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Lerp returns the point a fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Rect is an axis-aligned boundary.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromCenter builds the boundary of a w×h box centered on c.
func RectFromCenter(c Point, w, h float64) Rect {
	return Rect{
		Left:   c.X - w/2,
		Top:    c.Y - h/2,
		Right:  c.X + w/2,
		Bottom: c.Y + h/2,
	}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Center() Point {
	return Point{(r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2}
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Union returns the smallest rectangle covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Grow grows r by d on every side (shrinks it for negative d).
func (r Rect) Grow(d float64) Rect {
	return Rect{r.Left - d, r.Top - d, r.Right + d, r.Bottom + d}
}

// Bounds returns the bounding rectangle of pts. ok is false for an empty slice.
func Bounds(pts []Point) (r Rect, ok bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r = Rect{pts[0].X, pts[0].Y, pts[0].X, pts[0].Y}
	for _, p := range pts[1:] {
		r.Left = math.Min(r.Left, p.X)
		r.Top = math.Min(r.Top, p.Y)
		r.Right = math.Max(r.Right, p.X)
		r.Bottom = math.Max(r.Bottom, p.Y)
	}
	return r, true
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// PercentToUnit normalizes a percentage or a fraction to a fraction:
// values above 1 are read as percentages (50 -> 0.5).
func PercentToUnit(x float64) float64 {
	if x > 1 {
		return x / 100
	}
	return x
}

// SegmentIntersect returns the point where segments p1-p2 and q1-q2 cross.
// Parallel or non-touching segments report ok == false.
func SegmentIntersect(p1, p2, q1, q2 Point) (Point, bool) {
	r := p2.Sub(p1)
	s := q2.Sub(q1)
	denom := cross(r, s)
	if denom == 0 {
		return Point{}, false
	}
	qp := q1.Sub(p1)
	t := cross(qp, s) / denom
	u := cross(qp, r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return p1.Add(r.Scale(t)), true
}

func cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Trim moves p toward ref by amount, stopping at ref.
func Trim(amount float64, ref, p Point) Point {
	if amount <= 0 {
		return p
	}
	d := Distance(ref, p)
	if d == 0 {
		return p
	}
	if amount >= d {
		return ref
	}
	return p.Lerp(ref, amount/d)
}

// DistanceToSegment returns the shortest distance from p to segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, a.Lerp(b, t))
}
