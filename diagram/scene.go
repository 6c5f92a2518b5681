package diagram

import (
	"fmt"
	"slices"

	"linkmap/geom"
)

// Scene owns a diagram's elements, its visible stage and the list of edges
// animated every frame. It is not safe for concurrent use; one goroutine
// (the render loop) drives it.
type Scene struct {
	elements []Element
	byID     map[string]Element
	dynamic  []*Edge
	stage    geom.Rect

	dirty     bool
	onRepaint func()
}

// NewScene creates an empty scene showing the given stage boundary.
func NewScene(stage geom.Rect) *Scene {
	return &Scene{
		byID:  make(map[string]Element),
		stage: stage,
	}
}

// Add puts elements into the scene. Elements without an id get a generated
// one. An id already in use stops the call with ErrDuplicateID.
func (s *Scene) Add(els ...Element) error {
	for _, el := range els {
		if !validElement(el) {
			return ErrNotConnectable
		}
		b := el.base()
		if b.id == "" {
			id, err := NewID(idPrefix(el))
			if err != nil {
				return err
			}
			b.id = id
		}
		if _, ok := s.byID[b.id]; ok {
			return fmt.Errorf("add %q: %w", b.id, ErrDuplicateID)
		}
		b.stage = s
		s.elements = append(s.elements, el)
		s.byID[b.id] = el
		if e, ok := el.(*Edge); ok && e.paintAnimate {
			s.AddDynamic(e)
		}
	}
	s.RequestRepaint()
	return nil
}

// Remove discards an element. Edges touching it, and edges anchored on those
// edges, are detached and discarded too.
func (s *Scene) Remove(el Element) {
	s.remove(el, make(map[Element]bool))
}

// remove cascades through anchored edges; seen stops it going round a ring
// of edges anchored on each other.
func (s *Scene) remove(el Element, seen map[Element]bool) {
	if !validElement(el) || seen[el] {
		return
	}
	seen[el] = true
	b := el.base()
	for _, e := range append(b.Outgoing(), b.Incoming()...) {
		s.remove(e, seen)
	}
	if e, ok := el.(*Edge); ok {
		e.Detach()
		s.dynamic = slices.DeleteFunc(s.dynamic, func(d *Edge) bool { return d == e })
	}
	if cur, ok := s.byID[el.ID()]; !ok || cur != el {
		return
	}
	s.elements = slices.DeleteFunc(s.elements, func(x Element) bool { return x == el })
	delete(s.byID, el.ID())
	b.stage = nil
	s.RequestRepaint()
}

// Clear removes every element.
func (s *Scene) Clear() {
	for _, el := range s.elements {
		if e, ok := el.(*Edge); ok {
			e.Detach()
		}
		el.base().stage = nil
	}
	s.elements = nil
	s.byID = make(map[string]Element)
	s.dynamic = nil
	s.RequestRepaint()
}

func (s *Scene) Element(id string) (Element, bool) {
	el, ok := s.byID[id]
	return el, ok
}

func (s *Scene) Node(id string) (*Node, bool) {
	n, ok := s.byID[id].(*Node)
	return n, ok
}

func (s *Scene) Edge(id string) (*Edge, bool) {
	e, ok := s.byID[id].(*Edge)
	return e, ok
}

// Elements returns every element in insertion order.
func (s *Scene) Elements() []Element {
	return slices.Clone(s.elements)
}

func (s *Scene) Nodes() []*Node {
	var out []*Node
	for _, el := range s.elements {
		if n, ok := el.(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Scene) Edges() []*Edge {
	var out []*Edge
	for _, el := range s.elements {
		if e, ok := el.(*Edge); ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *Scene) StageBoundary() geom.Rect { return s.stage }

// SetStageBoundary changes the visible region, e.g. after a pan or zoom.
func (s *Scene) SetStageBoundary(r geom.Rect) {
	s.stage = r
	s.RequestRepaint()
}

// AddDynamic registers an edge to be ticked every frame.
func (s *Scene) AddDynamic(e *Edge) {
	if !slices.Contains(s.dynamic, e) {
		s.dynamic = append(s.dynamic, e)
	}
}

// Dynamic returns the edges ticked every frame.
func (s *Scene) Dynamic() []*Edge {
	return slices.Clone(s.dynamic)
}

// RequestRepaint marks the scene dirty and calls the repaint hook.
func (s *Scene) RequestRepaint() {
	s.dirty = true
	if s.onRepaint != nil {
		s.onRepaint()
	}
}

// OnRepaint sets a hook called whenever a repaint is requested.
func (s *Scene) OnRepaint(fn func()) { s.onRepaint = fn }

// NeedsRepaint reports whether anything changed, or is animating, since the
// last frame.
func (s *Scene) NeedsRepaint() bool { return s.dirty }

// Frame paints one frame. Animated edges advance and draw their markers into
// overlay, then every visible element draws into view; nodes go first so
// edges and loops stay on top. overlay may be the same painter as view.
//
// The dynamic list is walked from a snapshot, so completion callbacks may
// connect, detach or animate edges; their changes show from the next frame.
func (s *Scene) Frame(view, overlay Painter) {
	s.dirty = false
	animating := false
	for _, e := range slices.Clone(s.dynamic) {
		if !e.Animating() || e.stage != Stage(s) {
			continue
		}
		e.PaintDynamic(overlay)
		animating = true
	}
	s.PaintView(view)
	if animating {
		s.dirty = true
	}
}

// PaintView draws every visible element without advancing animations.
func (s *Scene) PaintView(p Painter) {
	elements := slices.Clone(s.elements)
	for _, el := range elements {
		if _, isEdge := el.(*Edge); !isEdge && el.Viewable() && el.InStage() {
			el.PaintView(p)
		}
	}
	for _, el := range elements {
		if e, ok := el.(*Edge); ok && e.IsVisible() {
			e.PaintView(p)
		}
	}
}

// EdgeAt returns the most recently added edge hit by p.
func (s *Scene) EdgeAt(p geom.Point) (*Edge, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		if e, ok := s.elements[i].(*Edge); ok && e.Viewable() && e.HitTest(p) {
			return e, true
		}
	}
	return nil, false
}

// NodeAt returns the most recently added node whose box contains p.
func (s *Scene) NodeAt(p geom.Point) (*Node, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		if n, ok := s.elements[i].(*Node); ok && n.Viewable() && n.Boundary().Contains(p) {
			return n, true
		}
	}
	return nil, false
}

// Bounds covers every node and edge in the scene.
func (s *Scene) Bounds() (geom.Rect, bool) {
	var (
		r     geom.Rect
		found bool
	)
	for _, el := range s.elements {
		if e, ok := el.(*Edge); ok && !e.IsLoop() && len(e.Path()) == 0 {
			continue
		}
		b := el.Boundary()
		if !found {
			r, found = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, found
}

// ApplyAlarms sets the alarm badge of every node named in alarms and returns
// how many nodes were updated.
func (s *Scene) ApplyAlarms(alarms map[string]Alarm) int {
	n := 0
	for _, node := range s.Nodes() {
		if a, ok := alarms[node.ID()]; ok {
			node.SetAlarm(&a)
			n++
		}
	}
	return n
}

// ClearAlarms removes every alarm badge.
func (s *Scene) ClearAlarms() {
	for _, node := range s.Nodes() {
		node.SetAlarm(nil)
	}
}
