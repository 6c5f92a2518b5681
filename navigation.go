package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"linkmap/geom"
)

// viewport maps scene pixels to screen pixels: screen = (scene - pan) * zoom.
type viewport struct {
	panX, panY float64
	zoom       float64
}

func (v viewport) toWorld(sx, sy float64) geom.Point {
	return geom.Pt(v.panX+sx/v.zoom, v.panY+sy/v.zoom)
}

// stage is the scene region visible on a w×h pixel screen.
func (v viewport) stage(w, h float64) geom.Rect {
	tl := v.toWorld(0, 0)
	br := v.toWorld(w, h)
	return geom.Rect{Left: tl.X, Top: tl.Y, Right: br.X, Bottom: br.Y}
}

// zoomAt scales by factor keeping the scene point under (sx, sy) in place.
func (v *viewport) zoomAt(factor, sx, sy float64) {
	if factor <= 0 {
		return
	}
	anchor := v.toWorld(sx, sy)
	v.zoom = min(max(v.zoom*factor, minZoom), maxZoom)
	v.panX = anchor.X - sx/v.zoom
	v.panY = anchor.Y - sy/v.zoom
}

// pan moves the view by a screen-pixel distance.
func (v *viewport) pan(dx, dy float64) {
	v.panX += dx / v.zoom
	v.panY += dy / v.zoom
}

// center puts the middle of r in the middle of a w×h pixel screen.
func (v *viewport) center(r geom.Rect, w, h float64) {
	c := r.Center()
	v.panX = c.X - w/2/v.zoom
	v.panY = c.Y - h/2/v.zoom
}

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.zPanMode {
		return m.handlePan(key, speed), nil
	}
	return m.handleCursorMove(key, speed), nil
}

func (m *model) handlePan(key string, speed int) tea.Model {
	step := panStep * float64(speed)
	switch key {
	case "h", "left", "H", "shift+left":
		m.view.pan(-step, 0)
	case "l", "right", "L", "shift+right":
		m.view.pan(step, 0)
	case "k", "up", "K", "shift+up":
		m.view.pan(0, -step)
	case "j", "down", "J", "shift+down":
		m.view.pan(0, step)
	}
	m.repaint()
	return m
}

func (m *model) handleCursorMove(key string, speed int) tea.Model {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
	return m
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func (m *model) ensureCursorInBounds() {
	m.cursorX = min(max(m.cursorX, 0), max(m.width-1, 0))
	m.cursorY = min(max(m.cursorY, 0), max(m.height-statusRows-1, 0))
}

// zoom scales the view around the middle of the screen.
func (m *model) zoom(factor float64) {
	w, h := m.screenPixels()
	m.view.zoomAt(factor, w/2, h/2)
	m.repaint()
}

func (m *model) screenPixels() (float64, float64) {
	return float64(m.width) * m.config.CellWidth, float64(m.canvasRows()) * m.config.CellHeight
}

func (m *model) canvasRows() int {
	return max(m.height-statusRows, 1)
}

// cellCenter is the scene point under the middle of a screen cell.
func (m *model) cellCenter(col, row int) geom.Point {
	return m.view.toWorld(
		(float64(col)+0.5)*m.config.CellWidth,
		(float64(row)+0.5)*m.config.CellHeight,
	)
}
