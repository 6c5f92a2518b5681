package diagram

import (
	"math"
	"strings"

	"linkmap/geom"
)

// Alarm is a colored badge shown on a node.
type Alarm struct {
	Color RGB    `json:"color"`
	Text  string `json:"text,omitempty"`
}

// Node is a box-shaped element. Its position is the box center.
type Node struct {
	Base

	X, Y          float64
	Width, Height float64
	Lines         []string
	Style         NodeStyle

	alarm *Alarm
}

// NewNode creates a w×h box centered on (x, y).
func NewNode(id string, x, y, w, h float64, text string) *Node {
	n := &Node{
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Style:  DefaultNodeStyle(),
	}
	n.id = id
	n.SetText(text)
	return n
}

func (n *Node) GetText() string {
	return strings.Join(n.Lines, "\n")
}

func (n *Node) SetText(text string) {
	n.Lines = strings.Split(text, "\n")
}

// BoxType is read by edges deciding how to meet this node.
func (n *Node) BoxType() BoxType { return n.Style.BoxType }

func (n *Node) Position() geom.Point { return geom.Pt(n.X, n.Y) }

func (n *Node) Boundary() geom.Rect {
	return geom.RectFromCenter(n.Position(), n.Width, n.Height)
}

// MoveTo recenters the node and requests a repaint.
func (n *Node) MoveTo(x, y float64) {
	n.X, n.Y = x, y
	if n.stage != nil {
		n.stage.RequestRepaint()
	}
}

func (n *Node) Viewable() bool { return n.visible() }

// InStage reports whether any part of the node is inside the stage boundary.
func (n *Node) InStage() bool {
	if n.stage == nil {
		return false
	}
	return n.Boundary().Intersects(n.stage.StageBoundary())
}

// SetAlarm shows a badge on the node; nil clears it.
func (n *Node) SetAlarm(a *Alarm) {
	n.alarm = a
	if n.stage != nil {
		n.stage.RequestRepaint()
	}
}

func (n *Node) Alarm() *Alarm { return n.alarm }

// PaintView draws the box, its label and any alarm badge.
func (n *Node) PaintView(p Painter) {
	if !n.Viewable() {
		return
	}
	b := n.Boundary()
	st := n.Style
	switch st.BoxType {
	case BoxRound:
		r := min(b.Width(), b.Height()) / 2
		roundedRect(p, b, r)
	default:
		p.DrawRectangle(b.Left, b.Top, b.Width(), b.Height())
	}
	p.Fill(st.FillColor.Alpha(st.Alpha))

	border := st.BorderColor
	if n.alarm != nil {
		border = n.alarm.Color
	}
	if st.BoxType == BoxRound {
		roundedRect(p, b, min(b.Width(), b.Height())/2)
	} else {
		p.DrawRectangle(b.Left, b.Top, b.Width(), b.Height())
	}
	p.SetLineWidth(st.BorderWidth)
	p.SetDash()
	p.Stroke(border.Alpha(st.Alpha))

	p.SetFontSize(st.TextSize)
	lineHeight := st.TextSize * 1.2
	top := n.Y - lineHeight*float64(len(n.Lines))/2
	for i, line := range n.Lines {
		p.DrawText(line, n.X, top+lineHeight*float64(i+1), st.TextColor.Alpha(st.Alpha))
	}

	if n.alarm != nil && n.alarm.Text != "" {
		p.DrawText(n.alarm.Text, b.Right, b.Top-2, n.alarm.Color.Alpha(1))
	}
}

func roundedRect(p Painter, b geom.Rect, r float64) {
	const quarter = math.Pi / 2
	p.MoveTo(b.Left+r, b.Top)
	p.LineTo(b.Right-r, b.Top)
	p.DrawArc(b.Right-r, b.Top+r, r, -quarter, 0)
	p.LineTo(b.Right, b.Bottom-r)
	p.DrawArc(b.Right-r, b.Bottom-r, r, 0, quarter)
	p.LineTo(b.Left+r, b.Bottom)
	p.DrawArc(b.Left+r, b.Bottom-r, r, quarter, 2*quarter)
	p.LineTo(b.Left, b.Top+r)
	p.DrawArc(b.Left+r, b.Top+r, r, 2*quarter, 3*quarter)
	p.ClosePath()
}
