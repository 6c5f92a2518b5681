package diagram

import "image/color"

// Painter is the drawing surface elements render onto. It follows the shape
// of a 2D canvas context: a current path is built with MoveTo/LineTo/DrawArc
// and consumed by Stroke or Fill. Angles are in radians, coordinates in pixels.
type Painter interface {
	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)

	SetLineWidth(w float64)
	SetDash(dashes ...float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	DrawArc(x, y, r, angle1, angle2 float64)
	DrawCircle(x, y, r float64)
	DrawRectangle(x, y, w, h float64)

	Stroke(c color.Color)
	Fill(c color.Color)

	SetFontSize(points float64)
	// DrawText draws s horizontally centered on x with its bottom on y.
	DrawText(s string, x, y float64, c color.Color)
}

// DashQuirker is implemented by painters that cannot draw dash patterns
// faithfully; edges stroke solid lines on them.
type DashQuirker interface {
	DashesUnreliable() bool
}

func dashesUnreliable(p Painter) bool {
	q, ok := p.(DashQuirker)
	return ok && q.DashesUnreliable()
}
