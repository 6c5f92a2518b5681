// Package diagram models interactive topology diagrams: box nodes joined by
// directed or self-looping edges, the scene that owns them, and the per-frame
// painting that animates markers along edges.
package diagram

import (
	"reflect"
	"slices"

	"linkmap/geom"
)

// Element is anything that can sit in a scene and serve as an edge endpoint.
// Only types embedding Base satisfy it.
type Element interface {
	ID() string
	Position() geom.Point
	Boundary() geom.Rect
	Viewable() bool
	InStage() bool
	PaintView(p Painter)

	base() *Base
}

// Stage is the part of the owning scene an element talks to.
type Stage interface {
	StageBoundary() geom.Rect
	AddDynamic(e *Edge)
	RequestRepaint()
}

// Base carries identity, stage membership, visibility and the two adjacency
// sets every endpoint keeps. The sets reference edges without owning them;
// the scene owns edges.
type Base struct {
	id     string
	stage  Stage
	hidden bool

	out edgeSet // edges leaving this element
	in  edgeSet // edges arriving at this element
}

func (b *Base) ID() string { return b.id }

func (b *Base) base() *Base { return b }

// Stage returns the scene this element was added to, or nil.
func (b *Base) Stage() Stage { return b.stage }

// SetVisible shows or hides the element.
func (b *Base) SetVisible(v bool) { b.hidden = !v }

func (b *Base) visible() bool { return !b.hidden }

// Outgoing returns the edges whose source is this element, oldest first.
func (b *Base) Outgoing() []*Edge { return b.out.list() }

// Incoming returns the edges whose target is this element, oldest first.
func (b *Base) Incoming() []*Edge { return b.in.list() }

// edgeSet is an insertion-ordered set of edge references.
type edgeSet struct {
	items []*Edge
}

func (s *edgeSet) add(e *Edge) {
	if !s.has(e) {
		s.items = append(s.items, e)
	}
}

func (s *edgeSet) remove(e *Edge) {
	if i := slices.Index(s.items, e); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
}

func (s *edgeSet) has(e *Edge) bool {
	return slices.Contains(s.items, e)
}

func (s *edgeSet) list() []*Edge {
	return slices.Clone(s.items)
}

func (s *edgeSet) len() int { return len(s.items) }

// DirectEdges returns the edges running from a to b, in a's insertion order.
func DirectEdges(a, b Element) []*Edge {
	if a == nil || b == nil {
		return nil
	}
	var out []*Edge
	in := &b.base().in
	for _, e := range a.base().out.items {
		if in.has(e) {
			out = append(out, e)
		}
	}
	return out
}

// EdgesBetween returns every edge joining a and b in either direction, each
// edge once: a->b edges first, then b->a.
func EdgesBetween(a, b Element) []*Edge {
	all := DirectEdges(a, b)
	for _, e := range DirectEdges(b, a) {
		if !slices.Contains(all, e) {
			all = append(all, e)
		}
	}
	return all
}

// validElement rejects nil interfaces and typed nil pointers.
func validElement(el Element) bool {
	if el == nil {
		return false
	}
	if v := reflect.ValueOf(el); v.Kind() == reflect.Pointer && v.IsNil() {
		return false
	}
	return el.base() != nil
}
