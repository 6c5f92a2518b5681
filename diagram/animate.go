package diagram

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"linkmap/geom"
)

// TicksPerSecond is the frame cadence duration-based speeds are converted with.
const TicksPerSecond = 60

// AnimateType selects how an edge marker advances each tick.
type AnimateType string

const (
	// AnimateFixed advances a constant number of pixels per tick.
	AnimateFixed AnimateType = "fixed"
	// AnimatePercent advances a constant share of the path per tick.
	AnimatePercent AnimateType = "percent"
)

// ParseAnimateType maps unknown names to AnimateFixed.
func ParseAnimateType(s string) AnimateType {
	switch AnimateType(s) {
	case AnimatePercent:
		return AnimatePercent
	default:
		return AnimateFixed
	}
}

func (t *AnimateType) UnmarshalText(text []byte) error {
	*t = ParseAnimateType(string(text))
	return nil
}

// Speed is how fast a marker travels: either an amount per tick (pixels in
// fixed mode, a path fraction in percent mode) or the time one full traversal
// takes. It reads from JSON as a number or a duration string such as "2s".
type Speed struct {
	PerTick  float64
	Duration time.Duration
}

// PixelsPerTick returns a per-tick speed.
func PixelsPerTick(v float64) Speed { return Speed{PerTick: v} }

// ParseSpeed accepts a plain number or a duration ("2s", "1500ms").
func ParseSpeed(s string) (Speed, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Speed{PerTick: v}, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return Speed{}, fmt.Errorf("speed %q: %w", s, err)
	}
	if d <= 0 {
		return Speed{}, fmt.Errorf("speed %q: duration must be positive", s)
	}
	return Speed{Duration: d}, nil
}

// IsZero reports whether no speed is configured.
func (s Speed) IsZero() bool {
	return s.PerTick <= 0 && s.Duration <= 0
}

// Step returns the progress added per tick. total is the path length and
// is only read when a duration has to become pixels.
func (s Speed) Step(mode AnimateType, total float64) float64 {
	if s.Duration > 0 {
		frac := 1 / (TicksPerSecond * s.Duration.Seconds())
		if mode == AnimatePercent {
			return frac
		}
		return frac * total
	}
	if s.PerTick > 0 {
		return s.PerTick
	}
	return 0
}

func (s Speed) MarshalJSON() ([]byte, error) {
	if s.Duration > 0 {
		return json.Marshal(s.Duration.String())
	}
	return json.Marshal(s.PerTick)
}

func (s *Speed) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Speed{PerTick: n}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("speed: %w", err)
	}
	v, err := ParseSpeed(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// AnimateConfig starts a marker running along an edge. Zero fields keep the
// edge's current style.
type AnimateConfig struct {
	Speed    Speed       `json:"speed"`
	Color    *RGB        `json:"color,omitempty"`
	Type     AnimateType `json:"type,omitempty"`
	Callback func(*Edge) `json:"-"`
}

type animation struct {
	progress float64 // pixels in fixed mode, fraction in percent mode
	onDone   func(*Edge)
}

// Animate configures and starts the marker animation, registers the edge
// with its scene's dynamic list and requests a repaint.
func (e *Edge) Animate(cfg AnimateConfig) *Edge {
	if !cfg.Speed.IsZero() {
		e.style.AnimateSpeed = cfg.Speed
	}
	if cfg.Color != nil {
		e.style.AnimateColor = *cfg.Color
	}
	if cfg.Type != "" {
		e.style.AnimateType = ParseAnimateType(string(cfg.Type))
	}
	if cfg.Callback != nil {
		e.anim.onDone = cfg.Callback
	}
	e.anim.progress = 0
	e.paintAnimate = true
	if st := e.stage; st != nil {
		st.AddDynamic(e)
		st.RequestRepaint()
	}
	return e
}

// StopAnimation turns the marker off. The edge stays in the scene's dynamic
// list and is skipped until animated again.
func (e *Edge) StopAnimation() {
	e.paintAnimate = false
	e.anim.progress = 0
	if e.stage != nil {
		e.stage.RequestRepaint()
	}
}

// Animating reports whether the per-tick marker is enabled.
func (e *Edge) Animating() bool { return e.paintAnimate }

// Progress returns the marker progress: pixels walked in fixed mode, the
// path fraction in percent mode.
func (e *Edge) Progress() float64 { return e.anim.progress }

// advance moves the marker one tick and returns the fraction of the path it
// now sits at. The completion callback runs after progress has wrapped.
func (e *Edge) advance(total float64) float64 {
	step := e.style.AnimateSpeed.Step(e.style.AnimateType, total)
	if step <= 0 {
		return 0
	}
	e.anim.progress += step

	bound := 1.0
	if e.style.AnimateType != AnimatePercent {
		bound = total
	}
	if e.anim.progress >= bound {
		e.anim.progress = 0
		Logger().Debug("edge animation wrapped", "edge", e.ID())
		if e.anim.onDone != nil {
			e.anim.onDone(e)
		}
	}
	if e.style.AnimateType == AnimatePercent {
		return e.anim.progress
	}
	return e.anim.progress / total
}

// PaintDynamic is the per-tick phase: it advances the marker and paints it
// as a filled disc. Loops and edges without a speed are skipped.
func (e *Edge) PaintDynamic(p Painter) {
	if !e.paintAnimate || e.loop || e.style.AnimateSpeed.IsZero() {
		return
	}
	path := e.Path()
	if len(path) < 2 {
		return
	}
	total := geom.PathLength(path)
	if total <= 0 {
		return
	}
	percent := e.advance(total)
	if percent <= 0 {
		return
	}
	pt, ok := e.PointAtPercent(percent, path, total)
	if !ok {
		return
	}
	p.DrawCircle(pt.X, pt.Y, e.style.LineWidth)
	p.Fill(e.style.AnimateColor.Alpha(e.style.Alpha))
}
