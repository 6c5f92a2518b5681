// Package render draws diagram scenes to raster images with gg.
package render

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce sync.Once
	ttf      *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		ttf, fontErr = truetype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("failed to parse font: %w", fontErr)
		}
	})
	return ttf, fontErr
}

// Painter implements diagram.Painter on a gg context.
type Painter struct {
	dc    *gg.Context
	faces map[float64]font.Face
	size  float64
}

// NewPainter returns a painter drawing into a fresh w×h image.
func NewPainter(w, h int) (*Painter, error) {
	return NewPainterFor(gg.NewContext(w, h))
}

// NewPainterFor wraps an existing context.
func NewPainterFor(dc *gg.Context) (*Painter, error) {
	if _, err := loadFont(); err != nil {
		return nil, err
	}
	p := &Painter{dc: dc, faces: make(map[float64]font.Face)}
	p.SetFontSize(12)
	return p, nil
}

// Context exposes the underlying gg context.
func (p *Painter) Context() *gg.Context { return p.dc }

// Clear fills the whole image with c.
func (p *Painter) Clear(c color.Color) {
	p.dc.SetColor(c)
	p.dc.Clear()
}

func (p *Painter) Push()                  { p.dc.Push() }
func (p *Painter) Pop()                   { p.dc.Pop() }
func (p *Painter) Translate(x, y float64) { p.dc.Translate(x, y) }
func (p *Painter) Rotate(angle float64)   { p.dc.Rotate(angle) }
func (p *Painter) SetLineWidth(w float64) { p.dc.SetLineWidth(w) }
func (p *Painter) SetDash(d ...float64)   { p.dc.SetDash(d...) }
func (p *Painter) MoveTo(x, y float64)    { p.dc.MoveTo(x, y) }
func (p *Painter) LineTo(x, y float64)    { p.dc.LineTo(x, y) }
func (p *Painter) ClosePath()             { p.dc.ClosePath() }

func (p *Painter) DrawArc(x, y, r, a1, a2 float64) {
	p.dc.NewSubPath()
	p.dc.DrawArc(x, y, r, a1, a2)
}

func (p *Painter) DrawCircle(x, y, r float64) { p.dc.DrawCircle(x, y, r) }

func (p *Painter) DrawRectangle(x, y, w, h float64) { p.dc.DrawRectangle(x, y, w, h) }

func (p *Painter) Stroke(c color.Color) {
	p.dc.SetColor(c)
	p.dc.Stroke()
}

func (p *Painter) Fill(c color.Color) {
	p.dc.SetColor(c)
	p.dc.Fill()
}

// SetFontSize switches to the regular Go font at the given size. Faces are
// cached per size.
func (p *Painter) SetFontSize(points float64) {
	if points <= 0 || points == p.size {
		return
	}
	face, ok := p.faces[points]
	if !ok {
		face = truetype.NewFace(ttf, &truetype.Options{
			Size:    points,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		p.faces[points] = face
	}
	p.dc.SetFontFace(face)
	p.size = points
}

func (p *Painter) DrawText(s string, x, y float64, c color.Color) {
	p.dc.SetColor(c)
	p.dc.DrawStringAnchored(s, x, y, 0.5, 0)
}
