package diagram

import (
	"slices"

	"linkmap/geom"
)

// PathProvider turns an edge's resolved terminals into the points it is drawn
// through. Edge never calls a provider for loops, so loops keep an empty path
// whatever the shape.
type PathProvider interface {
	ComputePath(e *Edge, terminals []geom.Point) []geom.Point
}

// Middler is implemented by shapes with a meaningful middle point. Arrowheads
// aimed with ArrowDirection point from it.
type Middler interface {
	Middle(path []geom.Point) (geom.Point, bool)
}

// ShapeName identifies a built-in shape in scene documents.
type ShapeName string

const (
	ShapeStraight ShapeName = "straight"
	ShapeCurve    ShapeName = "curve"
)

// ShapeByName returns the built-in provider for name, straight by default.
func ShapeByName(name ShapeName) PathProvider {
	switch name {
	case ShapeCurve:
		return Curve{}
	default:
		return Straight{}
	}
}

func shapeName(p PathProvider) ShapeName {
	if _, ok := p.(Curve); ok {
		return ShapeCurve
	}
	return ShapeStraight
}

// Straight draws the edge as one segment between its terminals.
type Straight struct{}

func (Straight) ComputePath(_ *Edge, terminals []geom.Point) []geom.Point {
	return slices.Clone(terminals)
}

// Curve bows the edge into a quadratic arc. Parallel edges between the same
// pair fan out on alternating sides, Bend pixels further apart each.
type Curve struct {
	// Steps is the number of segments the arc is flattened into.
	Steps int
}

func (c Curve) ComputePath(e *Edge, terminals []geom.Point) []geom.Point {
	if len(terminals) < 2 {
		return nil
	}
	steps := c.Steps
	if steps <= 0 {
		steps = 24
	}
	start, end := terminals[0], terminals[len(terminals)-1]
	d := geom.Distance(start, end)
	if d == 0 {
		return []geom.Point{start, end}
	}

	idx := max(0, slices.Index(EdgesBetween(e.from, e.to), e))
	offset := e.style.Bend * float64(idx/2+1)
	if idx%2 == 1 {
		offset = -offset
	}
	// keep the normal's side stable for edges running the other way
	dir := end.Sub(start).Scale(1 / d)
	normal := geom.Pt(-dir.Y, dir.X)
	if e.from.ID() > e.to.ID() {
		normal = normal.Scale(-1)
	}
	mid := start.Lerp(end, 0.5)
	ctrl := mid.Add(normal.Scale(2 * offset))
	return geom.QuadBezier(start, ctrl, end, steps)
}

func (Curve) Middle(path []geom.Point) (geom.Point, bool) {
	if len(path) < 3 {
		return geom.Point{}, false
	}
	return path[len(path)/2], true
}
