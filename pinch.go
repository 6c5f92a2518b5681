package main

import (
	"log/slog"

	"linkmap/geom"
	"linkmap/gesture"
)

// pinchEmulator turns ctrl+wheel notches into two-finger touch frames so
// terminal users zoom through the same pinch recognizer touch input uses.
// Touches are placed in cell units and mapped to screen pixels by the
// recognizer.
type pinchEmulator struct {
	rec   *gesture.Recognizer
	cellW float64
}

func newPinchEmulator(cellW, cellH float64) *pinchEmulator {
	p := &pinchEmulator{cellW: cellW}
	p.rec = gesture.New(gesture.WithPosition(func(t gesture.Touch) geom.Point {
		return geom.Pt(t.X*cellW, t.Y*cellH)
	}))
	p.rec.On(gesture.PinchGesture, func(res gesture.Result) {
		slog.Debug("pinch", "scale", res.Scale, "x", res.CentroidX, "y", res.CentroidY)
	})
	return p
}

func touchPair(cx, cy, spread float64) *gesture.Event {
	return &gesture.Event{Touches: []gesture.Touch{
		{ID: 1, X: cx - spread, Y: cy},
		{ID: 2, X: cx + spread, Y: cy},
	}}
}

// wheel emulates one pinch step centered on a screen cell: fingers spread
// by step when zooming in and close by it when zooming out. The returned
// event carries the recognized scale and centroid in screen pixels.
func (p *pinchEmulator) wheel(col, row int, in bool, step float64) *gesture.Event {
	cx, cy := float64(col)+0.5, float64(row)+0.5
	spread := pinchSpread / p.cellW
	next := spread * step
	if !in {
		next = spread / step
	}

	p.rec.Clear()
	p.rec.RecordFrame(touchPair(cx, cy, spread))
	ev := touchPair(cx, cy, next)
	p.rec.Recognize(ev)
	p.rec.Clear()
	return ev
}
