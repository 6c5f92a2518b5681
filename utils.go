package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"linkmap/diagram"
	"linkmap/geom"
)

var (
	selectionColor = color.NRGBA{R: 255, G: 200, B: 0, A: 255}
	connectColor   = color.NRGBA{R: 0, G: 200, B: 255, A: 255}
)

// loadScene reads a scene file, JSON or msgpack by extension.
func loadScene(path string, stage geom.Rect) (*diagram.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := diagram.NewScene(stage)
	if err := s.Decode(f, diagram.FormatFromPath(path)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// saveScene writes a scene file through a temporary file so a failed write
// leaves an existing file untouched.
func saveScene(s *diagram.Scene, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".linkmap-*")
	if err != nil {
		return err
	}
	if err := s.Encode(tmp, diagram.FormatFromPath(path)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// startAnimations starts a marker on every attached edge that is not running.
func startAnimations(s *diagram.Scene, speed diagram.Speed) {
	for _, e := range s.Edges() {
		if e.Attached() && !e.Animating() && !e.IsLoop() {
			e.Animate(markerConfig(e, speed))
		}
	}
}

// markerConfig keeps an edge's own speed and falls back to the configured one.
func markerConfig(e *diagram.Edge, fallback diagram.Speed) diagram.AnimateConfig {
	cfg := diagram.AnimateConfig{}
	if e.Style().AnimateSpeed.IsZero() {
		cfg.Speed = fallback
		if fallback.Duration > 0 {
			cfg.Type = diagram.AnimatePercent
		}
	}
	return cfg
}

// snapshotJSON is the clipboard form of an edge.
func snapshotJSON(e *diagram.Edge) (string, error) {
	snap, err := e.Serialize()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *model) copySelected() error {
	if m.selectedEdge == nil {
		return fmt.Errorf("no edge selected")
	}
	text, err := snapshotJSON(m.selectedEdge)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(text)
}

// edgeAt finds an edge drawn through a screen cell. A cell is far wider than
// an edge, so several points across it are tried.
func (m *model) edgeAt(col, row int) (*diagram.Edge, bool) {
	c := m.cellCenter(col, row)
	dx := m.config.CellWidth / 2 / m.view.zoom
	dy := m.config.CellHeight / 2 / m.view.zoom
	for _, off := range [...]geom.Point{
		{}, {X: -dx}, {X: dx}, {Y: -dy}, {Y: dy},
		{X: -dx, Y: -dy}, {X: dx, Y: -dy}, {X: -dx, Y: dy}, {X: dx, Y: dy},
	} {
		if e, ok := m.scene.EdgeAt(c.Add(off)); ok {
			return e, true
		}
	}
	return nil, false
}

// elementAt prefers nodes over edges under a screen cell.
func (m *model) elementAt(col, row int) (diagram.Element, bool) {
	if n, ok := m.scene.NodeAt(m.cellCenter(col, row)); ok {
		return n, true
	}
	if e, ok := m.edgeAt(col, row); ok {
		return e, true
	}
	return nil, false
}

func (m *model) syncStage() {
	w, h := m.screenPixels()
	if stage := m.view.stage(w, h); stage != m.scene.StageBoundary() {
		m.scene.SetStageBoundary(stage)
	}
}

// repaint redraws the scene without advancing animations.
func (m *model) repaint() {
	m.syncStage()
	m.canvas.Reset(m.width, m.canvasRows(), m.view)
	m.scene.PaintView(m.canvas)
	m.paintHighlights()
	m.render()
}

// tick advances animations one frame and redraws.
func (m *model) tick() {
	m.syncStage()
	if !m.scene.NeedsRepaint() {
		return
	}
	m.canvas.Reset(m.width, m.canvasRows(), m.view)
	m.markers.Reset(m.width, m.canvasRows(), m.view)
	m.scene.Frame(m.canvas, m.markers)
	m.paintHighlights()
	m.canvas.Merge(m.markers)
	m.frames++
	m.render()
}

func (m *model) paintHighlights() {
	if m.selectedEdge != nil && m.selectedEdge.IsVisible() {
		m.canvas.override = selectionColor
		m.selectedEdge.PaintView(m.canvas)
	}
	if m.movingNode != nil && m.movingNode.Viewable() {
		m.canvas.override = selectionColor
		m.movingNode.PaintView(m.canvas)
	}
	if m.connectFrom != nil && m.connectFrom.Viewable() {
		m.canvas.override = connectColor
		m.connectFrom.PaintView(m.canvas)
	}
	m.canvas.override = nil
}

func (m *model) render() {
	m.canvas.SetCursor(m.cursorX, m.cursorY)
	m.lines = m.canvas.Render()
}

func (m *model) displayName() string {
	if m.filename == "" {
		return "[untitled]"
	}
	return filepath.Base(m.filename)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
