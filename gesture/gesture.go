// Package gesture turns raw multi-touch input into synthesized gestures.
// Only two-finger pinch is recognized.
package gesture

import (
	"math"
	"slices"

	"linkmap/geom"
)

// DefaultMaxFrames is how many frames the track keeps. The pinch detector
// only ever reads the latest two.
const DefaultMaxFrames = 2

// Touch is one active contact in an input event.
type Touch struct {
	ID   int
	X, Y float64
}

// Event is one touch input event. A nil Touches slice means the event carries
// no multi-touch data. Recognized pinches write their results back into
// the Pinch fields before the handler runs.
type Event struct {
	Touches []Touch

	PinchScale float64
	PinchX     float64
	PinchY     float64
}

// Frame is the position of every active touch at one event.
type Frame struct {
	Points []geom.Point
}

// Result is what a detector reports.
type Result struct {
	Type      string
	Scale     float64
	CentroidX float64
	CentroidY float64
	Event     *Event
}

// Detector inspects the frame track, oldest first.
type Detector func(track []Frame) (Result, bool)

// Handler receives a recognized gesture.
type Handler func(Result)

// Recognizer keeps a short track of touch frames and runs the registered
// detectors over it. It is meant to be driven from a single input goroutine;
// handlers may call back into it.
type Recognizer struct {
	track     []Frame
	maxFrames int
	position  func(Touch) geom.Point

	names     []string
	detectors map[string]Detector
	handlers  map[string]Handler
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithMaxFrames caps the frame track. Values below two are raised to two.
func WithMaxFrames(n int) Option {
	return func(r *Recognizer) { r.maxFrames = max(n, 2) }
}

// WithPosition maps a touch to drawing-surface coordinates, e.g. to undo a
// view transform. The default uses the touch X and Y as is.
func WithPosition(fn func(Touch) geom.Point) Option {
	return func(r *Recognizer) { r.position = fn }
}

// New returns a recognizer with the pinch detector registered.
func New(opts ...Option) *Recognizer {
	r := &Recognizer{
		maxFrames: DefaultMaxFrames,
		position:  func(t Touch) geom.Point { return geom.Pt(t.X, t.Y) },
		detectors: make(map[string]Detector),
		handlers:  make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Register(PinchGesture, Pinch)
	return r
}

// Register adds or replaces a named detector. Detectors run in registration
// order.
func (r *Recognizer) Register(name string, d Detector) {
	if _, ok := r.detectors[name]; !ok {
		r.names = append(r.names, name)
	}
	r.detectors[name] = d
}

// On sets the handler for a gesture name; nil removes it.
func (r *Recognizer) On(name string, h Handler) {
	if h == nil {
		delete(r.handlers, name)
		return
	}
	r.handlers[name] = h
}

// RecordFrame appends the event's touch positions to the track. Events
// without touch data are ignored.
func (r *Recognizer) RecordFrame(ev *Event) {
	if ev == nil || ev.Touches == nil {
		return
	}
	f := Frame{Points: make([]geom.Point, 0, len(ev.Touches))}
	for _, t := range ev.Touches {
		f.Points = append(f.Points, r.position(t))
	}
	r.track = append(r.track, f)
	if over := len(r.track) - r.maxFrames; over > 0 {
		r.track = slices.Delete(r.track, 0, over)
	}
}

// Recognize records ev and runs every detector; each one that fires calls
// its handler. Pinch results are copied onto ev first.
func (r *Recognizer) Recognize(ev *Event) {
	r.RecordFrame(ev)
	track := r.Track()
	for _, name := range slices.Clone(r.names) {
		d, ok := r.detectors[name]
		if !ok {
			continue
		}
		res, ok := d(track)
		if !ok {
			continue
		}
		res.Event = ev
		if res.Type == PinchGesture && ev != nil {
			ev.PinchScale = res.Scale
			ev.PinchX = res.CentroidX
			ev.PinchY = res.CentroidY
		}
		if h := r.handlers[name]; h != nil {
			h(res)
		}
	}
}

// Clear empties the track, e.g. once every finger is lifted.
func (r *Recognizer) Clear() {
	r.track = r.track[:0]
}

// Track returns a copy of the recorded frames, oldest first.
func (r *Recognizer) Track() []Frame {
	return slices.Clone(r.track)
}

// PinchGesture is the name pinch results are reported under.
const PinchGesture = "pinch"

// Pinch compares the two most recent frames (the latest against itself when
// only one exists). Both need at least two touches. Scale is the ratio of
// the first two touches' spread; non-finite ratios become 1. The centroid is
// the midpoint of the latest pair.
func Pinch(track []Frame) (Result, bool) {
	n := len(track)
	if n == 0 {
		return Result{}, false
	}
	latest := track[n-1].Points
	previous := latest
	if n > 1 {
		previous = track[n-2].Points
	}
	if len(latest) < 2 || len(previous) < 2 {
		return Result{}, false
	}

	scale := geom.Distance(latest[0], latest[1]) / geom.Distance(previous[0], previous[1])
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	center := latest[0].Lerp(latest[1], 0.5)
	return Result{
		Type:      PinchGesture,
		Scale:     scale,
		CentroidX: center.X,
		CentroidY: center.Y,
	}, true
}
