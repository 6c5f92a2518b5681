package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIntersect(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Point
		q1, q2 Point
		want   Point
		wantOK bool
	}{
		{"crossing", Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0), Pt(5, 5), true},
		{"touching end", Pt(0, 0), Pt(10, 0), Pt(10, -5), Pt(10, 5), Pt(10, 0), true},
		{"parallel", Pt(0, 0), Pt(10, 0), Pt(0, 1), Pt(10, 1), Point{}, false},
		{"apart", Pt(0, 0), Pt(1, 1), Pt(5, 0), Pt(6, -1), Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SegmentIntersect(tt.p1, tt.p2, tt.q1, tt.q2)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.want.X, got.X, 1e-9)
				assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			}
		})
	}
}

func TestPointOnPath(t *testing.T) {
	path := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}

	pp, ok := PointOnPath(0.25, path, 0)
	require.True(t, ok)
	assert.InDelta(t, 5, pp.Point.X, 1e-9)
	assert.InDelta(t, 0, pp.Point.Y, 1e-9)
	assert.InDelta(t, 0, pp.Angle, 1e-9)

	pp, ok = PointOnPath(0.75, path, PathLength(path))
	require.True(t, ok)
	assert.InDelta(t, 10, pp.Point.X, 1e-9)
	assert.InDelta(t, 5, pp.Point.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, pp.Angle, 1e-9)

	_, ok = PointOnPath(0.5, path[:1], 0)
	assert.False(t, ok)
}

func TestOnPath(t *testing.T) {
	path := []Point{Pt(0, 0), Pt(100, 0)}
	assert.True(t, OnPath(Pt(50, 1.5), path, 2))
	assert.False(t, OnPath(Pt(50, 3), path, 2))
	assert.False(t, OnPath(Pt(104, 0), path, 2))
}

func TestTrim(t *testing.T) {
	got := Trim(5, Pt(0, 0), Pt(20, 0))
	assert.Equal(t, Pt(15, 0), got)
	assert.Equal(t, Pt(0, 0), Trim(50, Pt(0, 0), Pt(20, 0)))
	assert.Equal(t, Pt(20, 0), Trim(0, Pt(0, 0), Pt(20, 0)))
}

func TestPercentToUnit(t *testing.T) {
	assert.Equal(t, 0.5, PercentToUnit(0.5))
	assert.Equal(t, 0.5, PercentToUnit(50))
	assert.Equal(t, 1.0, PercentToUnit(1))
}

func TestRect(t *testing.T) {
	r := RectFromCenter(Pt(50, 50), 20, 10)
	assert.Equal(t, Rect{40, 45, 60, 55}, r)
	assert.True(t, r.Contains(Pt(40, 45)))
	assert.True(t, r.Intersects(Rect{59, 54, 80, 80}))
	assert.False(t, r.Intersects(Rect{61, 0, 80, 80}))

	b, ok := Bounds([]Point{Pt(3, 4), Pt(-1, 9), Pt(2, 0)})
	require.True(t, ok)
	assert.Equal(t, Rect{-1, 0, 3, 9}, b)
}

func TestQuadBezier(t *testing.T) {
	pts := QuadBezier(Pt(0, 0), Pt(5, 10), Pt(10, 0), 2)
	require.Len(t, pts, 3)
	assert.Equal(t, Pt(0, 0), pts[0])
	assert.Equal(t, Pt(5, 5), pts[1])
	assert.Equal(t, Pt(10, 0), pts[2])
}
