package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"linkmap/geom"
)

type cell struct {
	r  rune
	fg string // lipgloss color, "" for the terminal default
}

// affine maps x' = a*x + c*y + e, y' = b*x + d*y + f.
type affine struct {
	a, b, c, d, e, f float64
}

func identity() affine { return affine{a: 1, d: 1} }

func (m affine) apply(p geom.Point) geom.Point {
	return geom.Pt(m.a*p.X+m.c*p.Y+m.e, m.b*p.X+m.d*p.Y+m.f)
}

// then returns the transform applying n first and m second.
func (m affine) then(n affine) affine {
	return affine{
		a: m.a*n.a + m.c*n.b,
		b: m.b*n.a + m.d*n.b,
		c: m.a*n.c + m.c*n.d,
		d: m.b*n.c + m.d*n.d,
		e: m.a*n.e + m.c*n.f + m.e,
		f: m.b*n.e + m.d*n.f + m.f,
	}
}

type subpath struct {
	pts    []geom.Point // cell coordinates
	closed bool
	disc   bool
}

// Canvas is a diagram painter that rasterizes onto a grid of terminal
// cells. Scene pixels are mapped to cells through the viewport and the cell
// size; each cell holds one rune and a foreground color.
type Canvas struct {
	cellW, cellH  float64
	width, height int
	cells         [][]cell
	view          viewport

	xf        affine
	stack     []affine
	paths     []subpath
	lineWidth float64

	// override recolors everything painted while set, e.g. the selection.
	override color.Color

	cursorX, cursorY int
}

func NewCanvas(cellW, cellH float64) *Canvas {
	c := &Canvas{cellW: cellW, cellH: cellH, view: viewport{zoom: 1}, cursorX: -1, cursorY: -1}
	c.Reset(1, 1, c.view)
	return c
}

// Reset clears the grid to width×height cells seen through v.
func (c *Canvas) Reset(width, height int, v viewport) {
	width, height = max(width, 1), max(height, 1)
	if width != c.width || height != c.height {
		c.cells = make([][]cell, height)
		for i := range c.cells {
			c.cells[i] = make([]cell, width)
		}
		c.width, c.height = width, height
	}
	for _, row := range c.cells {
		for j := range row {
			row[j] = cell{r: ' '}
		}
	}
	c.view = v
	c.xf = identity()
	c.stack = c.stack[:0]
	c.paths = c.paths[:0]
}

func (c *Canvas) toCell(x, y float64) geom.Point {
	p := c.xf.apply(geom.Pt(x, y))
	return geom.Pt(
		(p.X-c.view.panX)*c.view.zoom/c.cellW,
		(p.Y-c.view.panY)*c.view.zoom/c.cellH,
	)
}

func (c *Canvas) Push() { c.stack = append(c.stack, c.xf) }

func (c *Canvas) Pop() {
	if n := len(c.stack); n > 0 {
		c.xf = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *Canvas) Translate(x, y float64) {
	c.xf = c.xf.then(affine{a: 1, d: 1, e: x, f: y})
}

func (c *Canvas) Rotate(angle float64) {
	sin, cos := math.Sincos(angle)
	c.xf = c.xf.then(affine{a: cos, b: sin, c: -sin, d: cos})
}

func (c *Canvas) SetLineWidth(w float64) { c.lineWidth = w }

// SetDash is ignored; cells cannot show dash patterns.
func (c *Canvas) SetDash(...float64) {}

// DashesUnreliable tells edges to stroke solid lines here.
func (c *Canvas) DashesUnreliable() bool { return true }

func (c *Canvas) current() *subpath {
	if n := len(c.paths); n > 0 && !c.paths[n-1].closed && !c.paths[n-1].disc {
		return &c.paths[n-1]
	}
	return nil
}

func (c *Canvas) MoveTo(x, y float64) {
	c.paths = append(c.paths, subpath{pts: []geom.Point{c.toCell(x, y)}})
}

func (c *Canvas) LineTo(x, y float64) {
	sp := c.current()
	if sp == nil {
		c.MoveTo(x, y)
		return
	}
	sp.pts = append(sp.pts, c.toCell(x, y))
}

func (c *Canvas) ClosePath() {
	if sp := c.current(); sp != nil {
		sp.closed = true
	}
}

func (c *Canvas) arcPoints(x, y, r, a1, a2 float64) []geom.Point {
	span := a2 - a1
	n := int(math.Abs(span) * r * c.view.zoom / c.cellW)
	n = min(max(n, 8), 96)
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a1 + span*float64(i)/float64(n)
		pts = append(pts, c.toCell(x+r*math.Cos(a), y+r*math.Sin(a)))
	}
	return pts
}

func (c *Canvas) DrawArc(x, y, r, a1, a2 float64) {
	pts := c.arcPoints(x, y, r, a1, a2)
	if sp := c.current(); sp != nil {
		sp.pts = append(sp.pts, pts...)
		return
	}
	c.paths = append(c.paths, subpath{pts: pts})
}

func (c *Canvas) DrawCircle(x, y, r float64) {
	pts := c.arcPoints(x, y, r, 0, 2*math.Pi)
	c.paths = append(c.paths, subpath{pts: pts, closed: true, disc: true})
}

func (c *Canvas) DrawRectangle(x, y, w, h float64) {
	c.paths = append(c.paths, subpath{
		pts: []geom.Point{
			c.toCell(x, y), c.toCell(x+w, y), c.toCell(x+w, y+h), c.toCell(x, y+h),
		},
		closed: true,
	})
}

func (c *Canvas) SetFontSize(float64) {}

func (c *Canvas) Stroke(col color.Color) {
	fg, ok := c.colorOf(col)
	if ok {
		for _, sp := range c.paths {
			if isBox(sp) {
				c.box(sp.pts, fg)
				continue
			}
			for i := 1; i < len(sp.pts); i++ {
				c.line(sp.pts[i-1], sp.pts[i], fg)
			}
			if sp.closed && len(sp.pts) > 2 {
				c.line(sp.pts[len(sp.pts)-1], sp.pts[0], fg)
			}
		}
	}
	c.paths = c.paths[:0]
}

func (c *Canvas) Fill(col color.Color) {
	fg, ok := c.colorOf(col)
	if ok {
		for _, sp := range c.paths {
			switch {
			case sp.disc:
				c.fillPolygon(sp.pts, '●', fg)
				center := centroid(sp.pts)
				c.set(int(math.Floor(center.X)), int(math.Floor(center.Y)), '●', fg)
			case len(sp.pts) == 3:
				c.arrowhead(sp.pts, fg)
			default:
				c.fillPolygon(sp.pts, ' ', "")
			}
		}
	}
	c.paths = c.paths[:0]
}

// DrawText writes s centered on x with the row above y as its baseline row.
// Rotation only moves the anchor; glyphs stay upright.
func (c *Canvas) DrawText(s string, x, y float64, col color.Color) {
	fg, ok := c.colorOf(col)
	if !ok {
		return
	}
	p := c.toCell(x, y)
	runes := []rune(s)
	row := int(math.Ceil(p.Y)) - 1
	start := int(math.Round(p.X - float64(len(runes))/2))
	for i, r := range runes {
		c.set(start+i, row, r, fg)
	}
}

func (c *Canvas) colorOf(col color.Color) (string, bool) {
	if c.override != nil {
		col = c.override
	}
	if col == nil {
		return "", true
	}
	r, g, b, a := col.RGBA()
	if a == 0 {
		return "", false
	}
	r, g, b = r>>8, g>>8, b>>8
	// near-black and near-white follow the terminal theme
	lo, hi := min(r, g, b), max(r, g, b)
	if hi-lo < 16 && (hi < 48 || lo > 224) {
		return "", true
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), true
}

func (c *Canvas) set(x, y int, r rune, fg string) {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return
	}
	c.cells[y][x] = cell{r: r, fg: fg}
}

func (c *Canvas) at(x, y int) rune {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return 0
	}
	return c.cells[y][x].r
}

func lineGlyph(dx, dy float64) rune {
	switch {
	case math.Abs(dy) <= math.Abs(dx)/2:
		return '─'
	case math.Abs(dx) <= math.Abs(dy)/2:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *Canvas) line(p0, p1 geom.Point, fg string) {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	glyph := lineGlyph(dx, dy)
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy)) * 2))
	steps = max(steps, 1)
	for i := 0; i <= steps; i++ {
		p := p0.Lerp(p1, float64(i)/float64(steps))
		x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
		r := glyph
		if old := c.at(x, y); (old == '─' && glyph == '│') || (old == '│' && glyph == '─') {
			r = '┼'
		}
		c.set(x, y, r, fg)
	}
}

// isBox reports whether sp is an axis-aligned rectangle.
func isBox(sp subpath) bool {
	if !sp.closed || len(sp.pts) != 4 {
		return false
	}
	p := sp.pts
	return p[0].Y == p[1].Y && p[1].X == p[2].X && p[2].Y == p[3].Y && p[3].X == p[0].X
}

func (c *Canvas) box(pts []geom.Point, fg string) {
	x0 := int(math.Floor(math.Min(pts[0].X, pts[2].X)))
	x1 := int(math.Ceil(math.Max(pts[0].X, pts[2].X))) - 1
	y0 := int(math.Floor(math.Min(pts[0].Y, pts[2].Y)))
	y1 := int(math.Ceil(math.Max(pts[0].Y, pts[2].Y))) - 1
	if x1 <= x0 || y1 <= y0 {
		c.set(x0, y0, '□', fg)
		return
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', fg)
		c.set(x, y1, '─', fg)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', fg)
		c.set(x1, y, '│', fg)
	}
	c.set(x0, y0, '┌', fg)
	c.set(x1, y0, '┐', fg)
	c.set(x0, y1, '└', fg)
	c.set(x1, y1, '┘', fg)
}

// arrowhead draws a filled triangle whose first point is the tip as a single
// pointing glyph.
func (c *Canvas) arrowhead(pts []geom.Point, fg string) {
	tip := pts[0]
	base := pts[1].Lerp(pts[2], 0.5)
	dx, dy := tip.X-base.X, tip.Y-base.Y
	var r rune
	switch {
	case math.Abs(dx) >= math.Abs(dy) && dx >= 0:
		r = '▶'
	case math.Abs(dx) >= math.Abs(dy):
		r = '◀'
	case dy > 0:
		r = '▼'
	default:
		r = '▲'
	}
	at := centroid(pts)
	c.set(int(math.Floor(at.X)), int(math.Floor(at.Y)), r, fg)
}

func (c *Canvas) fillPolygon(pts []geom.Point, r rune, fg string) {
	b, ok := geom.Bounds(pts)
	if !ok {
		return
	}
	for y := int(math.Floor(b.Top)); y <= int(math.Ceil(b.Bottom)); y++ {
		for x := int(math.Floor(b.Left)); x <= int(math.Ceil(b.Right)); x++ {
			if inside(geom.Pt(float64(x)+0.5, float64(y)+0.5), pts) {
				c.set(x, y, r, fg)
			}
		}
	}
}

// inside is the even-odd rule.
func inside(p geom.Point, poly []geom.Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

func centroid(pts []geom.Point) geom.Point {
	var sum geom.Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// Merge copies every painted cell of top over c. Both grids must share a size.
func (c *Canvas) Merge(top *Canvas) {
	for i := 0; i < min(c.height, top.height); i++ {
		for j := 0; j < min(c.width, top.width); j++ {
			if cl := top.cells[i][j]; cl.r != ' ' {
				c.cells[i][j] = cl
			}
		}
	}
}

// SetCursor shows a reversed cell at (x, y); negative values hide it.
func (c *Canvas) SetCursor(x, y int) { c.cursorX, c.cursorY = x, y }

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// Render returns the grid as styled lines.
func (c *Canvas) Render() []string {
	out := make([]string, c.height)
	for i, row := range c.cells {
		var sb strings.Builder
		for j := 0; j < len(row); {
			if i == c.cursorY && j == c.cursorX {
				sb.WriteString(cursorStyle.Render(string(row[j].r)))
				j++
				continue
			}
			k := j
			var run []rune
			for k < len(row) && row[k].fg == row[j].fg && !(i == c.cursorY && k == c.cursorX) {
				run = append(run, row[k].r)
				k++
			}
			if row[j].fg == "" {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row[j].fg)).Render(string(run)))
			}
			j = k
		}
		out[i] = sb.String()
	}
	return out
}

// PlainLines returns the grid without colors, right-trimmed.
func (c *Canvas) PlainLines() []string {
	out := make([]string, c.height)
	for i, row := range c.cells {
		runes := make([]rune, len(row))
		for j, cl := range row {
			runes[j] = cl.r
		}
		out[i] = strings.TrimRight(string(runes), " ")
	}
	return out
}
