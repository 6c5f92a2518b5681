package main

import (
	"fmt"
	"os"

	"linkmap/render"
)

func (m *model) exportPNG(filename string) error {
	opts := render.DefaultOptions()
	opts.Markers = true
	return render.SavePNG(m.config.GetSavePath(filename), m.scene, opts)
}

// exportVisualTXT writes the viewport exactly as shown, without colors,
// selection or cursor.
func (m *model) exportVisualTXT(filename string) error {
	file, err := os.Create(m.config.GetSavePath(filename))
	if err != nil {
		return err
	}
	defer file.Close()

	canvas := NewCanvas(m.config.CellWidth, m.config.CellHeight)
	w := m.width
	if w < 1 {
		w = 80
	}
	h := m.canvasRows()
	if m.height < 1 {
		h = 24
	}
	canvas.Reset(w, h, m.view)
	m.syncStage()
	m.scene.PaintView(canvas)

	for _, line := range canvas.PlainLines() {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}
