package diagram

import (
	"image/color"
	"slices"

	"linkmap/geom"
)

type paintOp struct {
	name  string
	args  []float64
	color color.Color
	text  string
}

// recorder is a Painter that remembers every call.
type recorder struct {
	ops        []paintOp
	quirkDash  bool
	lastDashes []float64
}

func (r *recorder) add(name string, args ...float64) {
	r.ops = append(r.ops, paintOp{name: name, args: args})
}

func (r *recorder) Push()                       { r.add("push") }
func (r *recorder) Pop()                        { r.add("pop") }
func (r *recorder) Translate(x, y float64)      { r.add("translate", x, y) }
func (r *recorder) Rotate(a float64)            { r.add("rotate", a) }
func (r *recorder) SetLineWidth(w float64)      { r.add("lineWidth", w) }
func (r *recorder) MoveTo(x, y float64)         { r.add("moveTo", x, y) }
func (r *recorder) LineTo(x, y float64)         { r.add("lineTo", x, y) }
func (r *recorder) ClosePath()                  { r.add("close") }
func (r *recorder) DrawCircle(x, y, rr float64) { r.add("circle", x, y, rr) }
func (r *recorder) SetFontSize(pt float64)      { r.add("font", pt) }

func (r *recorder) SetDash(d ...float64) {
	r.lastDashes = slices.Clone(d)
	r.add("dash", d...)
}

func (r *recorder) DrawArc(x, y, rr, a1, a2 float64) { r.add("arc", x, y, rr, a1, a2) }

func (r *recorder) DrawRectangle(x, y, w, h float64) { r.add("rect", x, y, w, h) }

func (r *recorder) Stroke(c color.Color) {
	r.ops = append(r.ops, paintOp{name: "stroke", color: c})
}

func (r *recorder) Fill(c color.Color) {
	r.ops = append(r.ops, paintOp{name: "fill", color: c})
}

func (r *recorder) DrawText(s string, x, y float64, c color.Color) {
	r.ops = append(r.ops, paintOp{name: "text", args: []float64{x, y}, color: c, text: s})
}

func (r *recorder) DashesUnreliable() bool { return r.quirkDash }

func (r *recorder) named(name string) []paintOp {
	var out []paintOp
	for _, op := range r.ops {
		if op.name == name {
			out = append(out, op)
		}
	}
	return out
}

func (r *recorder) reset() { r.ops = nil }

func box(id string, x, y float64) *Node {
	return NewNode(id, x, y, 20, 20, id)
}

func pts(p ...float64) []geom.Point {
	out := make([]geom.Point, 0, len(p)/2)
	for i := 0; i+1 < len(p); i += 2 {
		out = append(out, geom.Pt(p[i], p[i+1]))
	}
	return out
}
