package diagram

import (
	"math"

	"linkmap/geom"
)

// loopStartAngle is where a loop's arc begins; the arc sweeps a full turn.
const loopStartAngle = math.Pi / 2

// loopTextAngle places a loop's label up and to the left of its element.
const loopTextAngle = -(math.Pi/2 + math.Pi/4)

// PaintView is the per-frame static phase: the line or loop arc, its
// arrowheads and its label. Edges without terminals paint nothing.
func (e *Edge) PaintView(p Painter) {
	if e.from == nil {
		return
	}
	path := e.Path()
	if e.loop {
		c := e.from.Position()
		p.SetLineWidth(e.style.LineWidth)
		p.SetDash()
		p.DrawArc(c.X, c.Y, e.loopRadius(), loopStartAngle, loopStartAngle+2*math.Pi)
		p.Stroke(e.style.Color.Alpha(e.style.Alpha))
	} else {
		e.paintLine(p, path)
	}
	e.paintText(p, path)
}

func (e *Edge) paintLine(p Painter, path []geom.Point) {
	if len(path) < 2 {
		return
	}
	st := &e.style
	p.SetLineWidth(st.LineWidth)
	if dashesUnreliable(p) {
		p.SetDash()
	} else {
		p.SetDash(st.LineDash...)
	}
	p.MoveTo(path[0].X, path[0].Y)
	for _, pt := range path[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Stroke(st.Color.Alpha(st.Alpha))
	p.SetDash()
	e.paintArrows(p, path)
}

// paintArrows draws the enabled arrowheads. With ArrowDirection set each head
// is aimed from the neighbouring path point (or the shape's middle); without
// it each head is aimed from the opposite terminal.
func (e *Edge) paintArrows(p Painter, path []geom.Point) {
	n := len(path)
	if e.style.ArrowDirection {
		mid, hasMid := geom.Point{}, false
		if m, ok := e.shape.(Middler); ok {
			mid, hasMid = m.Middle(path)
		}
		if e.showStartArrow {
			from := path[1]
			if hasMid {
				from = mid
			}
			e.paintArrow(p, from, path[0])
		}
		if e.showEndArrow {
			from := path[n-2]
			if hasMid {
				from = mid
			}
			e.paintArrow(p, from, path[n-1])
		}
		return
	}
	if e.showStartArrow {
		e.paintArrow(p, path[n-1], path[0])
	}
	if e.showEndArrow {
		e.paintArrow(p, path[0], path[n-1])
	}
}

// paintArrow draws a head pointing from -> to. The terminal was pulled in by
// half the arrow size, so the tip lands back on the endpoint border, minus
// ArrowOffset.
func (e *Edge) paintArrow(p Painter, from, to geom.Point) {
	st := &e.style
	d := geom.Distance(from, to)
	if d == 0 || st.ArrowSize <= 0 {
		return
	}
	dir := to.Sub(from).Scale(1 / d)
	normal := geom.Pt(-dir.Y, dir.X)
	tip := to.Add(dir.Scale(st.ArrowSize/2 - st.ArrowOffset))
	base := tip.Sub(dir.Scale(st.ArrowSize))
	w1 := base.Add(normal.Scale(st.ArrowSize / 2))
	w2 := base.Sub(normal.Scale(st.ArrowSize / 2))

	c := st.ArrowColor.Alpha(st.Alpha)
	switch st.ArrowType {
	case ArrowTriangle:
		p.MoveTo(tip.X, tip.Y)
		p.LineTo(w1.X, w1.Y)
		p.LineTo(w2.X, w2.Y)
		p.ClosePath()
		p.Fill(c)
	default:
		p.MoveTo(w1.X, w1.Y)
		p.LineTo(tip.X, tip.Y)
		p.LineTo(w2.X, w2.Y)
		p.SetLineWidth(st.LineWidth)
		p.Stroke(c)
	}
}

func (e *Edge) paintText(p Painter, path []geom.Point) {
	st := &e.style
	if !st.TextVisible || st.TextValue == "" {
		return
	}
	c := st.TextColor.Alpha(st.TextAlpha)
	offX, offY := st.TextOffset[0], st.TextOffset[1]

	if e.loop {
		p.SetFontSize(st.TextSize)
		pos := e.from.Position()
		r := e.loopRadius()
		p.DrawText(st.TextValue,
			pos.X+r*math.Cos(loopTextAngle)+offX,
			pos.Y+r*math.Sin(loopTextAngle)+offY, c)
		return
	}
	if len(path) < 2 {
		return
	}
	pp, ok := geom.PointOnPath(geom.PercentToUnit(st.TextPosition), path, 0)
	if !ok {
		return
	}
	// keep the label clear of the stroke, on the side the offset points to
	half := (st.LineWidth + st.BorderWidth) / 2
	if offY >= 0 {
		offY -= half
	} else {
		offY += half
	}
	p.SetFontSize(st.TextSize)
	p.Push()
	p.Translate(pp.Point.X, pp.Point.Y)
	p.Rotate(pp.Angle)
	p.DrawText(st.TextValue, offX, offY, c)
	p.Pop()
}
