package geom

import "math"

// PathPoint is a location on a polyline together with the direction of the
// segment it falls on, in radians.
type PathPoint struct {
	Point Point
	Angle float64
}

// PathLength sums the segment lengths of path.
func PathLength(path []Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}

// PointOnPath walks a fraction t (0..1) of the way along path. A total of
// zero or less is recomputed; callers animating every frame pass the length
// they already have. Paths with fewer than two points report ok == false.
func PointOnPath(t float64, path []Point, total float64) (PathPoint, bool) {
	if len(path) < 2 {
		return PathPoint{}, false
	}
	if total <= 0 {
		total = PathLength(path)
	}
	t = math.Max(0, math.Min(1, t))
	target := total * t

	var walked float64
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		seg := Distance(a, b)
		if seg == 0 {
			continue
		}
		if walked+seg >= target || i == len(path)-1 {
			f := math.Min(1, (target-walked)/seg)
			return PathPoint{
				Point: a.Lerp(b, f),
				Angle: math.Atan2(b.Y-a.Y, b.X-a.X),
			}, true
		}
		walked += seg
	}
	// every segment is degenerate
	return PathPoint{Point: path[0]}, true
}

// OnPath reports whether p lies within tolerance of any segment of path.
func OnPath(p Point, path []Point, tolerance float64) bool {
	for i := 1; i < len(path); i++ {
		if DistanceToSegment(p, path[i-1], path[i]) <= tolerance {
			return true
		}
	}
	return false
}

// QuadBezier flattens the quadratic curve p0-ctrl-p1 into steps+1 points.
func QuadBezier(p0, ctrl, p1 Point, steps int) []Point {
	if steps < 1 {
		steps = 1
	}
	pts := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		a := p0.Lerp(ctrl, t)
		b := ctrl.Lerp(p1, t)
		pts = append(pts, a.Lerp(b, t))
	}
	return pts
}
