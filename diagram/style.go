package diagram

import (
	"encoding/json"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"

	"linkmap/geom"
)

// RGB is an opaque color; alpha lives in the owning style. It reads and
// writes as an "r,g,b" string.
type RGB struct {
	R, G, B uint8
}

// Alpha combines c with an alpha in [0,1].
func (c RGB) Alpha(a float64) color.NRGBA {
	a = max(0, min(1, a))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a*255 + 0.5)}
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)), nil
}

func (c *RGB) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 3 {
		return fmt.Errorf("color %q: want r,g,b", text)
	}
	var v [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return fmt.Errorf("color %q: %w", text, err)
		}
		v[i] = uint8(n)
	}
	c.R, c.G, c.B = v[0], v[1], v[2]
	return nil
}

// Offset positions an anchor along one axis of a box: "auto" picks the side
// facing the other endpoint, a number is pixels from the left/top edge, and
// "NN%" is a share of the box size.
type Offset struct {
	Auto    bool
	Value   float64
	Percent bool
}

// AutoOffset returns the "auto" offset.
func AutoOffset() Offset { return Offset{Auto: true} }

// Px returns a pixel offset.
func Px(v float64) Offset { return Offset{Value: v} }

// Pct returns a percentage offset; Pct(50) is the middle.
func Pct(v float64) Offset { return Offset{Value: v, Percent: true} }

func (o Offset) resolve(size float64) float64 {
	if o.Percent {
		return size * o.Value / 100
	}
	return o.Value
}

// unit reads the offset as a fraction along a path.
func (o Offset) unit() float64 {
	if o.Percent {
		return o.Value / 100
	}
	return geom.PercentToUnit(o.Value)
}

func (o Offset) MarshalJSON() ([]byte, error) {
	switch {
	case o.Auto:
		return json.Marshal("auto")
	case o.Percent:
		return json.Marshal(strconv.FormatFloat(o.Value, 'f', -1, 64) + "%")
	default:
		return json.Marshal(o.Value)
	}
}

func (o *Offset) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*o = Px(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("offset: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "auto" {
		*o = AutoOffset()
		return nil
	}
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return fmt.Errorf("offset %q: %w", s, err)
	}
	*o = Offset{Value: v, Percent: pct}
	return nil
}

// Anchor is an (x, y) offset pair picking where an edge meets its endpoint.
// An empty anchor means "intersect the boundary". When the endpoint is
// another edge only the first entry is read, as the share of that edge's
// path to sit on.
type Anchor []Offset

func (a Anchor) auto() bool {
	return len(a) == 0 || (len(a) >= 2 && a[0].Auto && a[1].Auto)
}

func (a Anchor) axis(i int) (Offset, bool) {
	if i < len(a) {
		return a[i], true
	}
	return Offset{}, false
}

// ArrowType selects how arrowheads are drawn.
type ArrowType string

const (
	ArrowTriangle ArrowType = "triangle"
	ArrowWedge    ArrowType = "wedge"
)

// EdgeStyle is the full set of presentation settings of one edge.
type EdgeStyle struct {
	Color       RGB       `json:"color"`
	Alpha       float64   `json:"alpha"`
	LineWidth   float64   `json:"lineWidth"`
	LineDash    []float64 `json:"lineDash,omitempty"`
	BorderWidth float64   `json:"borderWidth"`

	ArrowSize   float64   `json:"arrowSize"`
	ArrowOffset float64   `json:"arrowOffset"`
	ArrowType   ArrowType `json:"arrowType"`
	ArrowColor  RGB       `json:"arrowColor"`
	// ArrowDirection aims arrowheads along the path segment next to each end
	// (or the shape's middle point) instead of across the whole span.
	ArrowDirection bool `json:"arrowDirection"`

	AnimateSpeed Speed       `json:"animateSpeed"`
	AnimateColor RGB         `json:"animateColor"`
	AnimateType  AnimateType `json:"animateType"`

	TextVisible  bool       `json:"textVisible"`
	TextValue    string     `json:"textValue,omitempty"`
	TextPosition float64    `json:"textPosition"`
	TextOffset   [2]float64 `json:"textOffset"`
	TextSize     float64    `json:"textSize"`
	TextFamily   string     `json:"textFamily"`
	TextColor    RGB        `json:"textColor"`
	TextAlpha    float64    `json:"textAlpha"`

	LoopGap float64 `json:"loopGap"`
	// Bend is how far a curved edge bows out, per parallel edge.
	Bend float64 `json:"bend"`

	StartPoint Anchor `json:"startPoint,omitempty"`
	EndPoint   Anchor `json:"endPoint,omitempty"`
}

// DefaultEdgeStyle returns a fresh copy of the edge defaults. Callers own
// the result.
func DefaultEdgeStyle() EdgeStyle {
	return EdgeStyle{
		Color:        RGB{90, 90, 90},
		Alpha:        1,
		LineWidth:    2,
		ArrowSize:    10,
		ArrowType:    ArrowTriangle,
		ArrowColor:   RGB{90, 90, 90},
		AnimateColor: RGB{255, 0, 0},
		AnimateType:  AnimateFixed,
		TextVisible:  true,
		TextPosition: 0.5,
		TextSize:     12,
		TextFamily:   "sans-serif",
		TextAlpha:    1,
		LoopGap:      24,
		Bend:         30,
	}
}

func (s EdgeStyle) clone() EdgeStyle {
	s.LineDash = slices.Clone(s.LineDash)
	s.StartPoint = slices.Clone(s.StartPoint)
	s.EndPoint = slices.Clone(s.EndPoint)
	return s
}

// BoxType is the outline of a node.
type BoxType string

const (
	BoxRect  BoxType = "rect"
	BoxRound BoxType = "round"
)

// NodeStyle is the presentation of a box node.
type NodeStyle struct {
	BoxType     BoxType `json:"boxType"`
	FillColor   RGB     `json:"fillColor"`
	BorderColor RGB     `json:"borderColor"`
	BorderWidth float64 `json:"borderWidth"`
	TextColor   RGB     `json:"textColor"`
	TextSize    float64 `json:"textSize"`
	Alpha       float64 `json:"alpha"`
}

// DefaultNodeStyle returns a fresh copy of the node defaults.
func DefaultNodeStyle() NodeStyle {
	return NodeStyle{
		BoxType:     BoxRect,
		FillColor:   RGB{255, 255, 255},
		BorderColor: RGB{40, 40, 40},
		BorderWidth: 1,
		TextColor:   RGB{0, 0, 0},
		TextSize:    12,
		Alpha:       1,
	}
}
