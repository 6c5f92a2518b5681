package diagram

import (
	"fmt"
	"math"

	"linkmap/geom"
)

// LoopHitTolerance is how far, in pixels, a point may sit from a loop's
// circle and still hit it.
const LoopHitTolerance = 2

// maxAnchorDepth bounds how many edges deep an anchor chain is followed.
const maxAnchorDepth = 16

// Boxed is implemented by box-shaped elements edges can meet at their border.
type Boxed interface {
	Element
	BoxType() BoxType
}

// Edge connects two elements. Either endpoint may itself be an edge, in which
// case this edge anchors on a point along it. An edge whose endpoints are the
// same element is a loop; loops on one element are stacked by loop index.
type Edge struct {
	Base

	from, to  Element
	loop      bool
	loopIndex int

	style          EdgeStyle
	shape          PathProvider
	anim           animation
	paintAnimate   bool
	showStartArrow bool
	showEndArrow   bool
}

// EdgeOption configures a new edge.
type EdgeOption func(*Edge)

func WithID(id string) EdgeOption {
	return func(e *Edge) { e.id = id }
}

// WithStyle edits the edge's private copy of the default style.
func WithStyle(fn func(*EdgeStyle)) EdgeOption {
	return func(e *Edge) { fn(&e.style) }
}

func WithShape(s PathProvider) EdgeOption {
	return func(e *Edge) { e.shape = s }
}

func WithArrows(start, end bool) EdgeOption {
	return func(e *Edge) { e.showStartArrow, e.showEndArrow = start, end }
}

// NewEdge creates a detached straight edge with an arrow on its end.
func NewEdge(opts ...EdgeOption) *Edge {
	e := &Edge{
		style:        DefaultEdgeStyle(),
		shape:        Straight{},
		showEndArrow: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shape == nil {
		e.shape = Straight{}
	}
	return e
}

// Style returns a copy of the edge's style.
func (e *Edge) Style() EdgeStyle { return e.style.clone() }

// SetStyle edits the edge's style in place and requests a repaint.
func (e *Edge) SetStyle(fn func(*EdgeStyle)) {
	fn(&e.style)
	e.repaint()
}

func (e *Edge) Shape() PathProvider { return e.shape }

func (e *Edge) SetShape(s PathProvider) {
	if s == nil {
		s = Straight{}
	}
	e.shape = s
	e.repaint()
}

// Arrows reports which ends carry an arrowhead.
func (e *Edge) Arrows() (start, end bool) { return e.showStartArrow, e.showEndArrow }

func (e *Edge) ShowArrows(start, end bool) {
	e.showStartArrow, e.showEndArrow = start, end
	e.repaint()
}

func (e *Edge) From() Element { return e.from }
func (e *Edge) To() Element   { return e.to }

// Attached reports whether the edge has endpoints.
func (e *Edge) Attached() bool { return e.from != nil }

func (e *Edge) IsLoop() bool { return e.loop }

// LoopIndex is the edge's position in the stack of loops on its element.
func (e *Edge) LoopIndex() int { return e.loopIndex }

func (e *Edge) loopRadius() float64 {
	return e.style.LoopGap * float64(e.loopIndex+1)
}

func (e *Edge) repaint() {
	if e.stage != nil {
		e.stage.RequestRepaint()
	}
}

// CanConnect reports why from and to could not be this edge's endpoints.
func (e *Edge) CanConnect(from, to Element) error {
	if !validElement(from) || !validElement(to) {
		return ErrNotConnectable
	}
	if err := e.checkEndpoint(from); err != nil {
		return err
	}
	return e.checkEndpoint(to)
}

func (e *Edge) checkEndpoint(el Element) error {
	other, ok := el.(*Edge)
	if !ok {
		return nil
	}
	if other == e {
		return ErrSelfLink
	}
	if other.anchoredOn(e, make(map[*Edge]bool)) {
		return ErrLinkCycle
	}
	return nil
}

// anchoredOn reports whether target is reached by following endpoints that
// are edges, however deep the chain.
func (e *Edge) anchoredOn(target *Edge, seen map[*Edge]bool) bool {
	if seen[e] {
		return false
	}
	seen[e] = true
	for _, end := range [...]Element{e.from, e.to} {
		x, ok := end.(*Edge)
		if !ok {
			continue
		}
		if x == target || x.anchoredOn(target, seen) {
			return true
		}
	}
	return false
}

// Connect attaches the edge from one element to another, first detaching
// it from any previous pair. Invalid pairs are logged and leave the edge as
// it was. Connect returns the edge for chaining.
func (e *Edge) Connect(from, to Element) *Edge {
	if err := e.CanConnect(from, to); err != nil {
		Logger().Info("cannot connect edge", "edge", e.ID(), "err", err)
		return e
	}
	if e.from != nil {
		e.Detach()
	}

	from.base().out.add(e)
	to.base().in.add(e)
	e.from, e.to = from, to
	e.loop = from == to
	e.loopIndex = 0
	if e.loop {
		e.loopIndex = len(EdgesBetween(from, to)) - 1
	}
	e.repaint()
	return e
}

// Detach removes the edge from both endpoints' adjacency sets. Remaining
// loops on the same element are renumbered from zero in their current order.
func (e *Edge) Detach() {
	if e.from == nil {
		return
	}
	from, to := e.from, e.to
	from.base().out.remove(e)
	to.base().in.remove(e)
	if e.loop {
		for i, other := range EdgesBetween(from, to) {
			other.loopIndex = i
		}
	}
	e.from, e.to = nil, nil
	e.loop = false
	e.loopIndex = 0
	e.repaint()
}

// Terminals resolves the two pixel points the edge is drawn between. ok is
// false while detached or when an endpoint yields no anchor (a round box
// without an explicit anchor, or an anchor edge that cannot be resolved).
func (e *Edge) Terminals() ([]geom.Point, bool) {
	return e.terminals(0)
}

func (e *Edge) terminals(depth int) ([]geom.Point, bool) {
	if e.from == nil || depth > maxAnchorDepth {
		return nil, false
	}
	var (
		start, end     geom.Point
		startOK, endOK bool
	)
	startEdge, startIsEdge := e.from.(*Edge)
	endEdge, endIsEdge := e.to.(*Edge)
	if startIsEdge {
		start, startOK = startEdge.pointAt(e.style.StartPoint, depth+1)
	}
	if endIsEdge {
		end, endOK = endEdge.pointAt(e.style.EndPoint, depth+1)
	}
	if box, ok := e.from.(Boxed); ok {
		toward, known := e.to.Position(), true
		if endIsEdge {
			toward, known = end, endOK
		}
		if known {
			start, startOK = pointOnBox(box, toward, e.style.StartPoint)
		}
	}
	if box, ok := e.to.(Boxed); ok {
		toward, known := e.from.Position(), true
		if startIsEdge {
			toward, known = start, startOK
		}
		if known {
			end, endOK = pointOnBox(box, toward, e.style.EndPoint)
		}
	}
	if !startOK || !endOK {
		return nil, false
	}

	var startTrim, endTrim float64
	if e.showStartArrow {
		startTrim = e.style.ArrowSize / 2
	}
	if e.showEndArrow {
		endTrim = e.style.ArrowSize / 2
	}
	end = geom.Trim(endTrim, start, end)
	start = geom.Trim(startTrim, end, start)
	return []geom.Point{start, end}, true
}

// pointAt resolves where another edge anchors on e: the share of e's path
// named by the anchor's first offset, halfway by default.
func (e *Edge) pointAt(anchor Anchor, depth int) (geom.Point, bool) {
	pct := 0.5
	if o, ok := anchor.axis(0); ok && !o.Auto {
		pct = o.unit()
	}
	path := e.path(depth)
	pp, ok := geom.PointOnPath(pct, path, 0)
	if !ok {
		return geom.Point{}, false
	}
	return pp.Point, true
}

func pointOnBox(box Boxed, toward geom.Point, anchor Anchor) (geom.Point, bool) {
	b := box.Boundary()
	pos := box.Position()
	if anchor.auto() {
		if box.BoxType() == BoxRound {
			return geom.Point{}, false
		}
		return IntersectRect(pos, toward, b)
	}

	var out geom.Point
	switch o, ok := anchor.axis(0); {
	case !ok:
		out.X = pos.X
	case o.Auto:
		if pos.X > toward.X {
			out.X = b.Left
		} else {
			out.X = b.Right
		}
	default:
		out.X = b.Left + o.resolve(b.Width())
	}
	switch o, ok := anchor.axis(1); {
	case !ok:
		out.Y = pos.Y
	case o.Auto:
		if pos.Y > toward.Y {
			out.Y = b.Top
		} else {
			out.Y = b.Bottom
		}
	default:
		out.Y = b.Top + o.resolve(b.Height())
	}
	return out, true
}

// IntersectRect returns where segment start-end crosses the border of r.
// Edges are tried left, top, right, bottom; the first hit wins.
func IntersectRect(start, end geom.Point, r geom.Rect) (geom.Point, bool) {
	tl := geom.Pt(r.Left, r.Top)
	tr := geom.Pt(r.Right, r.Top)
	bl := geom.Pt(r.Left, r.Bottom)
	br := geom.Pt(r.Right, r.Bottom)
	for _, side := range [4][2]geom.Point{{tl, bl}, {tl, tr}, {tr, br}, {bl, br}} {
		if p, ok := geom.SegmentIntersect(start, end, side[0], side[1]); ok {
			return p, true
		}
	}
	return geom.Point{}, false
}

// Path returns the points the edge is drawn through. Loops are drawn as
// arcs and always return an empty path.
func (e *Edge) Path() []geom.Point {
	return e.path(0)
}

func (e *Edge) path(depth int) []geom.Point {
	if e.loop {
		return nil
	}
	t, ok := e.terminals(depth)
	if !ok {
		return nil
	}
	return e.shape.ComputePath(e, t)
}

// PointAtPercent returns the point a fraction of the way along path. A nil
// path or non-positive total is computed from the edge.
func (e *Edge) PointAtPercent(percent float64, path []geom.Point, total float64) (geom.Point, bool) {
	if path == nil {
		path = e.Path()
	}
	pp, ok := geom.PointOnPath(percent, path, total)
	return pp.Point, ok
}

// Position is the middle of the edge's path, or the loop's element.
func (e *Edge) Position() geom.Point {
	if e.loop {
		return e.from.Position()
	}
	if p, ok := e.PointAtPercent(0.5, nil, 0); ok {
		return p
	}
	return geom.Point{}
}

// Boundary covers the drawn path, or the loop's circle.
func (e *Edge) Boundary() geom.Rect {
	if e.loop {
		c := e.from.Position()
		r := e.loopRadius()
		return geom.Rect{Left: c.X - r, Top: c.Y - r, Right: c.X + r, Bottom: c.Y + r}
	}
	b, _ := geom.Bounds(e.Path())
	return b
}

// Viewable reports the edge's own visibility flag; endpoints are checked by
// IsVisible.
func (e *Edge) Viewable() bool { return e.visible() }

func (e *Edge) InStage() bool { return e.IsVisible() }

// IsVisible reports whether the edge should be painted: every endpoint must
// be viewable, and either an endpoint is on stage or the straight line
// between the terminals crosses the stage boundary.
func (e *Edge) IsVisible() bool {
	return e.isVisible(0)
}

func (e *Edge) isVisible(depth int) bool {
	if e.from == nil || depth > maxAnchorDepth || !e.Viewable() {
		return false
	}
	if !e.from.Viewable() || !e.to.Viewable() {
		return false
	}
	if inStage(e.from, depth) || inStage(e.to, depth) {
		return true
	}
	if e.stage == nil {
		return false
	}
	t, ok := e.Terminals()
	if !ok {
		return false
	}
	_, hit := IntersectRect(t[0], t[1], e.stage.StageBoundary())
	return hit
}

func inStage(el Element, depth int) bool {
	if other, ok := el.(*Edge); ok {
		return other.isVisible(depth + 1)
	}
	return el.InStage()
}

// HitTest reports whether p touches the edge: within LoopHitTolerance of a
// loop's circle, or within the line width of the path.
func (e *Edge) HitTest(p geom.Point) bool {
	if e.from == nil {
		return false
	}
	if e.loop {
		d := geom.Distance(e.from.Position(), p) - e.loopRadius()
		return math.Abs(d) <= LoopHitTolerance
	}
	return geom.OnPath(p, e.Path(), e.style.LineWidth)
}

// Snapshot is the minimal persisted form of an edge. Only the presence of a
// running animation is kept, not its progress.
type Snapshot struct {
	Endpoints []string  `json:"endpoints" msgpack:"endpoints"`
	Animate   *struct{} `json:"animate,omitempty" msgpack:"animate,omitempty"`
}

// Serialize records the endpoint ids and whether the marker is animating.
func (e *Edge) Serialize() (Snapshot, error) {
	if e.from == nil {
		return Snapshot{}, fmt.Errorf("serialize edge %q: %w", e.ID(), ErrDetached)
	}
	s := Snapshot{Endpoints: []string{e.from.ID(), e.to.ID()}}
	if e.paintAnimate {
		s.Animate = &struct{}{}
	}
	return s, nil
}
