package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"linkmap/diagram"
	"linkmap/geom"
)

// ErrEmptyScene is returned when there is nothing to draw.
var ErrEmptyScene = errors.New("nothing to export")

// Options controls image export.
type Options struct {
	// Padding is added around the scene bounds, in scene pixels.
	Padding float64
	// Scale multiplies every coordinate; 2 gives a double-resolution image.
	Scale      float64
	Background color.Color
	// Markers draws running edge markers where they currently are.
	Markers bool
}

// DefaultOptions returns the export settings used by the CLI.
func DefaultOptions() Options {
	return Options{Padding: 16, Scale: 1, Background: color.White}
}

// Image paints the whole scene into a new image sized to its bounds. The
// scene's stage boundary is widened to the bounds while painting so nothing
// is culled, then restored.
func Image(s *diagram.Scene, opts Options) (image.Image, error) {
	bounds, ok := s.Bounds()
	if !ok {
		return nil, ErrEmptyScene
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	area := bounds.Grow(opts.Padding)
	w := int(math.Ceil(area.Width() * opts.Scale))
	h := int(math.Ceil(area.Height() * opts.Scale))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyScene
	}

	p, err := NewPainter(w, h)
	if err != nil {
		return nil, err
	}
	p.Clear(opts.Background)
	p.dc.Scale(opts.Scale, opts.Scale)
	p.dc.Translate(-area.Left, -area.Top)

	stage := s.StageBoundary()
	s.SetStageBoundary(area)
	defer s.SetStageBoundary(stage)

	s.PaintView(p)
	if opts.Markers {
		paintMarkers(s, p)
	}
	return p.dc.Image(), nil
}

// paintMarkers draws each running marker at its current progress without
// advancing it.
func paintMarkers(s *diagram.Scene, p *Painter) {
	for _, e := range s.Dynamic() {
		if !e.Animating() || e.IsLoop() || !e.IsVisible() {
			continue
		}
		path := e.Path()
		total := geom.PathLength(path)
		if total <= 0 || e.Progress() <= 0 {
			continue
		}
		st := e.Style()
		frac := e.Progress()
		if st.AnimateType != diagram.AnimatePercent {
			frac /= total
		}
		pt, ok := e.PointAtPercent(frac, path, total)
		if !ok {
			continue
		}
		p.DrawCircle(pt.X, pt.Y, st.LineWidth)
		p.Fill(st.AnimateColor.Alpha(st.Alpha))
	}
}

// WritePNG encodes the scene image to w.
func WritePNG(w io.Writer, s *diagram.Scene, opts Options) error {
	img, err := Image(s, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes the scene image to a file.
func SavePNG(path string, s *diagram.Scene, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, s, opts); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}
