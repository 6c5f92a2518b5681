package diagram

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkmap/geom"
)

func assertPoint(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
}

func TestLoopIndexes(t *testing.T) {
	n := box("n", 0, 0)
	first := NewEdge().Connect(n, n)
	second := NewEdge().Connect(n, n)

	assert.True(t, first.IsLoop())
	assert.Equal(t, 0, first.LoopIndex())
	assert.Equal(t, 1, second.LoopIndex())

	first.Detach()
	assert.Equal(t, 0, second.LoopIndex())

	third := NewEdge().Connect(n, n)
	assert.Equal(t, 1, third.LoopIndex())
}

func TestLoopIndexIgnoresOtherEdges(t *testing.T) {
	n, m := box("n", 0, 0), box("m", 100, 0)
	NewEdge().Connect(n, m)
	NewEdge().Connect(m, n)
	loop := NewEdge().Connect(n, n)
	assert.Equal(t, 0, loop.LoopIndex())
}

func TestConnectRejectsSelfReference(t *testing.T) {
	a, b, c := box("a", 0, 0), box("b", 100, 0), box("c", 50, 100)
	e := NewEdge(WithID("e")).Connect(a, b)

	assert.ErrorIs(t, e.CanConnect(e, b), ErrSelfLink)
	e.Connect(e, b)
	assert.Same(t, a, e.From())
	assert.Same(t, b, e.To())

	anchored := NewEdge().Connect(e, c)
	require.True(t, anchored.Attached())
	assert.ErrorIs(t, e.CanConnect(anchored, b), ErrLinkCycle)
	e.Connect(anchored, b)
	assert.Same(t, a, e.From(), "rejected connect keeps the prior pair")
	assert.Equal(t, []*Edge{e}, a.Outgoing())
}

func TestConnectRejectsAnchorRing(t *testing.T) {
	n := box("n", 0, 0)
	a, b, c := NewEdge(WithID("a")), NewEdge(WithID("b")), NewEdge(WithID("c"))
	a.Connect(n, b)
	b.Connect(n, c)
	require.True(t, b.Attached())

	assert.ErrorIs(t, c.CanConnect(n, a), ErrLinkCycle)
	assert.ErrorIs(t, c.CanConnect(a, n), ErrLinkCycle)
	assert.False(t, c.Connect(n, a).Attached())

	d := NewEdge(WithID("d"))
	assert.NoError(t, c.CanConnect(n, d), "unrelated edges still anchor")
}

func TestConnectRejectsNil(t *testing.T) {
	var missing *Node
	b := box("b", 0, 0)
	e := NewEdge()
	assert.ErrorIs(t, e.CanConnect(nil, b), ErrNotConnectable)
	assert.ErrorIs(t, e.CanConnect(missing, b), ErrNotConnectable)
	assert.False(t, e.Connect(missing, b).Attached())
}

func TestReconnectMovesAdjacency(t *testing.T) {
	a, b, c := box("a", 0, 0), box("b", 100, 0), box("c", 0, 100)
	e := NewEdge().Connect(a, b)
	e.Connect(c, b)

	assert.Empty(t, a.Outgoing())
	assert.Equal(t, []*Edge{e}, c.Outgoing())
	assert.Equal(t, []*Edge{e}, b.Incoming())
}

func TestDetachClearsEndpoints(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge().Connect(a, b)
	e.Detach()

	assert.False(t, e.Attached())
	assert.Nil(t, e.From())
	assert.Empty(t, a.Outgoing())
	assert.Empty(t, b.Incoming())
	assert.Empty(t, e.Path())
	e.Detach()
}

func TestIntersectRectOrder(t *testing.T) {
	r := geom.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	tests := []struct {
		name       string
		start, end geom.Point
		want       geom.Point
		ok         bool
	}{
		{"left before right", geom.Pt(-5, 3), geom.Pt(15, 3), geom.Pt(0, 3), true},
		{"top before right", geom.Pt(3, -5), geom.Pt(15, 7), geom.Pt(8, 0), true},
		{"right before bottom", geom.Pt(12, 5), geom.Pt(5, 12), geom.Pt(10, 7), true},
		{"miss", geom.Pt(20, 20), geom.Pt(30, 30), geom.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectRect(tt.start, tt.end, r)
			require.Equal(t, tt.ok, ok)
			assertPoint(t, tt.want, got)
		})
	}
}

func TestTerminalsTrimForArrows(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	tests := []struct {
		name       string
		start, end bool
		want       []geom.Point
	}{
		{"no arrows", false, false, pts(10, 0, 90, 0)},
		{"end arrow", false, true, pts(10, 0, 85, 0)},
		{"both arrows", true, true, pts(15, 0, 85, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEdge(WithArrows(tt.start, tt.end)).Connect(a, b)
			defer e.Detach()
			got, ok := e.Terminals()
			require.True(t, ok)
			require.Len(t, got, 2)
			assertPoint(t, tt.want[0], got[0])
			assertPoint(t, tt.want[1], got[1])
		})
	}
}

func TestTerminalsWithAnchors(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 50)
	tests := []struct {
		name   string
		anchor Anchor
		want   geom.Point
	}{
		{"auto x, middle y", Anchor{AutoOffset(), Pct(50)}, geom.Pt(10, 0)},
		{"pixels from top left", Anchor{Px(5), Px(15)}, geom.Pt(-5, 5)},
		{"missing axis is centered", Anchor{Px(5)}, geom.Pt(-5, 0)},
		{"auto y faces the target", Anchor{Pct(50), AutoOffset()}, geom.Pt(0, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEdge(WithArrows(false, false), WithStyle(func(s *EdgeStyle) {
				s.StartPoint = tt.anchor
			})).Connect(a, b)
			defer e.Detach()
			got, ok := e.Terminals()
			require.True(t, ok)
			assertPoint(t, tt.want, got[0])
		})
	}
}

func TestRoundBoxNeedsAnchor(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	a.Style.BoxType = BoxRound
	e := NewEdge(WithStyle(func(s *EdgeStyle) { s.TextValue = "label" })).Connect(a, b)

	_, ok := e.Terminals()
	assert.False(t, ok)
	assert.Empty(t, e.Path())

	var p recorder
	e.PaintView(&p)
	e.Animate(AnimateConfig{Speed: PixelsPerTick(5)})
	e.PaintDynamic(&p)
	assert.Empty(t, p.ops)

	e.SetStyle(func(s *EdgeStyle) { s.StartPoint = Anchor{Pct(50), Pct(0)} })
	got, ok := e.Terminals()
	require.True(t, ok)
	assertPoint(t, geom.Pt(0, -10), got[0])
}

func TestEdgeAnchoredOnEdge(t *testing.T) {
	a, b, c := box("a", 0, 0), box("b", 100, 0), box("c", 50, 100)
	base := NewEdge(WithArrows(false, false)).Connect(a, b)
	e := NewEdge(WithArrows(false, false)).Connect(base, c)

	got, ok := e.Terminals()
	require.True(t, ok)
	assertPoint(t, geom.Pt(50, 0), got[0])
	assertPoint(t, geom.Pt(50, 90), got[1])

	e.SetStyle(func(s *EdgeStyle) { s.StartPoint = Anchor{Pct(25)} })
	got, ok = e.Terminals()
	require.True(t, ok)
	assertPoint(t, geom.Pt(30, 0), got[0])

	base.Detach()
	_, ok = e.Terminals()
	assert.False(t, ok, "anchor edge has no path")
}

func TestLoopPathIsEmpty(t *testing.T) {
	n := box("n", 0, 0)
	loop := NewEdge(WithShape(Curve{})).Connect(n, n)
	assert.Empty(t, loop.Path())
	assert.Equal(t, geom.Pt(0, 0), loop.Position())
	assert.Equal(t, geom.Rect{Left: -24, Top: -24, Right: 24, Bottom: 24}, loop.Boundary())
}

func TestAnimateFixedWraps(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 120, 0)
	done := 0
	e := NewEdge(WithArrows(false, false)).Connect(a, b)
	require.InDelta(t, 100, geom.PathLength(e.Path()), 1e-9)

	e.Animate(AnimateConfig{
		Speed:    PixelsPerTick(10),
		Callback: func(*Edge) { done++ },
	})
	var p recorder
	for i := 0; i < 9; i++ {
		e.PaintDynamic(&p)
	}
	assert.InDelta(t, 90, e.Progress(), 1e-9)
	assert.Equal(t, 0, done)

	e.PaintDynamic(&p)
	assert.Equal(t, 0.0, e.Progress())
	assert.Equal(t, 1, done)

	circles := p.named("circle")
	require.Len(t, circles, 9, "no marker on the wrapping tick")
	assert.InDelta(t, 20, circles[0].args[0], 1e-9)
	assert.Equal(t, e.Style().LineWidth, circles[0].args[2])
	assert.Len(t, p.named("fill"), 9)
}

func TestAnimatePercentDuration(t *testing.T) {
	s, err := ParseSpeed("2s")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/120, s.Step(AnimatePercent, 500), 1e-12)
	assert.InDelta(t, 500.0/120, s.Step(AnimateFixed, 500), 1e-9)

	a, b := box("a", 0, 0), box("b", 120, 0)
	e := NewEdge(WithArrows(false, false)).Connect(a, b)
	e.Animate(AnimateConfig{Speed: s, Type: AnimatePercent})
	var p recorder
	e.PaintDynamic(&p)
	assert.InDelta(t, 1.0/120, e.Progress(), 1e-12)
}

func TestAnimateUnknownTypeIsFixed(t *testing.T) {
	e := NewEdge().Animate(AnimateConfig{Type: "sideways"})
	assert.Equal(t, AnimateFixed, e.Style().AnimateType)
	assert.True(t, e.Animating())

	red := RGB{200, 0, 0}
	e.Animate(AnimateConfig{Type: AnimatePercent, Color: &red})
	assert.Equal(t, AnimatePercent, e.Style().AnimateType)
	assert.Equal(t, red, e.Style().AnimateColor)

	e.StopAnimation()
	assert.False(t, e.Animating())
}

func TestAnimateSkipsLoops(t *testing.T) {
	n := box("n", 0, 0)
	loop := NewEdge().Connect(n, n).Animate(AnimateConfig{Speed: PixelsPerTick(5)})
	var p recorder
	loop.PaintDynamic(&p)
	assert.Empty(t, p.ops)
	assert.Equal(t, 0.0, loop.Progress())
}

func TestLoopHitTest(t *testing.T) {
	n := box("n", 0, 0)
	loop := NewEdge().Connect(n, n)
	assert.True(t, loop.HitTest(geom.Pt(26, 0)))
	assert.True(t, loop.HitTest(geom.Pt(0, -22)))
	assert.False(t, loop.HitTest(geom.Pt(27, 0)))
	assert.False(t, loop.HitTest(geom.Pt(0, 0)))

	outer := NewEdge().Connect(n, n)
	assert.True(t, outer.HitTest(geom.Pt(48, 0)))
	assert.False(t, outer.HitTest(geom.Pt(24, 0)))
}

func TestLineHitTest(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge().Connect(a, b)
	assert.True(t, e.HitTest(geom.Pt(50, 1)))
	assert.True(t, e.HitTest(geom.Pt(50, -2)))
	assert.False(t, e.HitTest(geom.Pt(50, 5)))
	assert.False(t, NewEdge().HitTest(geom.Pt(50, 0)))
}

func TestIsVisible(t *testing.T) {
	s := NewScene(geom.Rect{Left: 0, Top: 0, Right: 200, Bottom: 200})
	a, b := box("a", 50, 50), box("b", 150, 50)
	e := NewEdge(WithID("e"))
	require.NoError(t, s.Add(a, b, e))

	assert.False(t, e.IsVisible(), "detached")
	e.Connect(a, b)
	assert.True(t, e.IsVisible())

	a.SetVisible(false)
	assert.False(t, e.IsVisible(), "hidden endpoint")
	a.SetVisible(true)

	e.SetVisible(false)
	assert.False(t, e.IsVisible())
	e.SetVisible(true)

	a.MoveTo(-100, 0)
	b.MoveTo(300, 0)
	s.SetStageBoundary(geom.Rect{Left: 0, Top: -50, Right: 200, Bottom: 50})
	assert.True(t, e.IsVisible(), "line crosses the stage")

	s.SetStageBoundary(geom.Rect{Left: 0, Top: 100, Right: 200, Bottom: 200})
	assert.False(t, e.IsVisible())
}

func TestSerialize(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge()
	_, err := e.Serialize()
	assert.ErrorIs(t, err, ErrDetached)

	e.Connect(a, b)
	snap, err := e.Serialize()
	require.NoError(t, err)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoints":["a","b"]}`, string(data))

	e.Animate(AnimateConfig{Speed: PixelsPerTick(1)})
	snap, err = e.Serialize()
	require.NoError(t, err)
	data, err = json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoints":["a","b"],"animate":{}}`, string(data))
}

func TestSerializeRoundTrip(t *testing.T) {
	s := NewScene(geom.Rect{Right: 200, Bottom: 200})
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge()
	require.NoError(t, s.Add(a, b, e))
	e.Connect(b, a)

	snap, err := e.Serialize()
	require.NoError(t, err)

	from, ok := s.Element(snap.Endpoints[0])
	require.True(t, ok)
	to, ok := s.Element(snap.Endpoints[1])
	require.True(t, ok)
	again := NewEdge().Connect(from, to)

	assert.Equal(t, []*Edge{e, again}, DirectEdges(b, a))
	assert.Empty(t, DirectEdges(a, b))
	assert.Equal(t, []*Edge{e, again}, EdgesBetween(a, b))
}

func TestStyleDefaultsAreNotShared(t *testing.T) {
	dashed := NewEdge(WithStyle(func(s *EdgeStyle) { s.LineDash = append(s.LineDash, 4, 2) }))
	plain := NewEdge()

	assert.Nil(t, DefaultEdgeStyle().LineDash)
	assert.Nil(t, plain.Style().LineDash)
	assert.Equal(t, []float64{4, 2}, dashed.Style().LineDash)

	st := dashed.Style()
	st.LineDash[0] = 9
	assert.Equal(t, []float64{4, 2}, dashed.Style().LineDash)
}

func TestPaintStraightEdge(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge(WithStyle(func(s *EdgeStyle) { s.LineDash = []float64{4, 2} })).Connect(a, b)

	var p recorder
	e.PaintView(&p)
	moves := p.named("moveTo")
	require.Len(t, moves, 2)
	assertPoint(t, geom.Pt(10, 0), geom.Pt(moves[0].args[0], moves[0].args[1]))
	assertPoint(t, geom.Pt(90, 0), geom.Pt(moves[1].args[0], moves[1].args[1]))
	assert.Equal(t, []float64{4, 2}, p.named("dash")[0].args)
	assert.Len(t, p.named("stroke"), 1)
	assert.Len(t, p.named("fill"), 1, "triangle head is filled")

	quirky := recorder{quirkDash: true}
	e.PaintView(&quirky)
	assert.Empty(t, quirky.named("dash")[0].args)
}

func TestPaintWedgeArrows(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge(WithArrows(true, true), WithStyle(func(s *EdgeStyle) {
		s.ArrowType = ArrowWedge
		s.ArrowDirection = true
	})).Connect(a, b)

	var p recorder
	e.PaintView(&p)
	assert.Empty(t, p.named("fill"))
	assert.Len(t, p.named("stroke"), 3)
}

func TestPaintLoop(t *testing.T) {
	n := box("n", 0, 0)
	loop := NewEdge(WithStyle(func(s *EdgeStyle) { s.TextValue = "retry" })).Connect(n, n)

	var p recorder
	loop.PaintView(&p)
	arcs := p.named("arc")
	require.Len(t, arcs, 1)
	assert.Equal(t, 24.0, arcs[0].args[2])
	assert.InDelta(t, 2*math.Pi, arcs[0].args[4]-arcs[0].args[3], 1e-12)

	text := p.named("text")
	require.Len(t, text, 1)
	assert.Equal(t, "retry", text[0].text)
	assert.InDelta(t, -24/math.Sqrt2, text[0].args[0], 1e-9)
	assert.InDelta(t, -24/math.Sqrt2, text[0].args[1], 1e-9)
}

func TestPaintLabelClearsStroke(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	e := NewEdge(WithArrows(false, false), WithStyle(func(s *EdgeStyle) {
		s.TextValue = "10ms"
	})).Connect(a, b)

	var p recorder
	e.PaintView(&p)
	tr := p.named("translate")
	require.Len(t, tr, 1)
	assert.Equal(t, []float64{50, 0}, tr[0].args)
	text := p.named("text")
	require.Len(t, text, 1)
	assert.Equal(t, []float64{0, -1}, text[0].args)

	e.SetStyle(func(s *EdgeStyle) { s.TextVisible = false })
	p.reset()
	e.PaintView(&p)
	assert.Empty(t, p.named("text"))
}

func TestCurveFansParallelEdges(t *testing.T) {
	a, b := box("a", 0, 0), box("b", 100, 0)
	first := NewEdge(WithShape(Curve{}), WithArrows(false, false)).Connect(a, b)
	second := NewEdge(WithShape(Curve{}), WithArrows(false, false)).Connect(a, b)

	p1, p2 := first.Path(), second.Path()
	require.Len(t, p1, 25)
	require.Len(t, p2, 25)
	assertPoint(t, geom.Pt(10, 0), p1[0])
	assertPoint(t, geom.Pt(90, 0), p1[24])
	assert.InDelta(t, 30, p1[12].Y, 1e-9)
	assert.InDelta(t, -30, p2[12].Y, 1e-9)

	mid, ok := Curve{}.Middle(p1)
	require.True(t, ok)
	assert.Equal(t, p1[12], mid)
}

func TestShapeByName(t *testing.T) {
	assert.Equal(t, Curve{}, ShapeByName(ShapeCurve))
	assert.Equal(t, Straight{}, ShapeByName("zigzag"))
	assert.Equal(t, ShapeCurve, shapeName(Curve{Steps: 4}))
}
