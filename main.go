package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"linkmap/diagram"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Bad.Sprint("linkmap: ", err))
		os.Exit(1)
	}
}

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (m model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m model) tickCmd() tea.Cmd {
	every := tickEvery
	if m.config.FPS > 0 {
		every = time.Second / time.Duration(m.config.FPS)
	}
	return tea.Tick(every, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		if !m.sized {
			m.sized = true
			if bounds, ok := m.scene.Bounds(); ok {
				w, h := m.screenPixels()
				m.view.center(bounds, w, h)
			}
		}
		m.repaint()
		return m, nil

	case tickMsg:
		m.tick()
		return m, m.tickCmd()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			return m.handleHelpKey(msg)
		}
		switch m.mode {
		case ModeFileInput:
			return m.handleFileInput(msg)
		case ModeConfirm:
			return m.handleConfirm(msg)
		case ModeMove:
			return m.handleMove(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		maxScroll := max(len(helpLines)-max(m.height-1, 1), 0)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "h", "j", "k", "l", "left", "down", "up", "right",
		"H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right":
		r, cmd := m.handleNavigation(key, m.getMoveSpeed(key))
		if mm, ok := r.(*model); ok {
			mm.render()
			return *mm, cmd
		}
		return r, cmd

	case "z":
		m.zPanMode = !m.zPanMode
	case "+", "=":
		m.zoom(m.config.PinchStep)
	case "-", "_":
		m.zoom(1 / m.config.PinchStep)
	case "0":
		m.fitView()

	case "tab", "shift+tab":
		m.cycleSelection(key == "tab")
	case "enter":
		if e, ok := m.edgeAt(m.cursorX, m.cursorY); ok {
			m.selectedEdge = e
		} else {
			m.selectedEdge = nil
		}
		m.repaint()

	case "m":
		m.startMove()
	case "c":
		m.connectAtCursor()
	case "d":
		if m.selectedEdge == nil || !m.selectedEdge.Attached() {
			m.errorMessage = "no connected edge selected"
			break
		}
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDetach
			break
		}
		m.detachSelected()
	case "a":
		m.toggleAnimation()
	case "A":
		startAnimations(m.scene, m.config.markerSpeed())
		m.successMessage = "animating all edges"

	case "u":
		m.undo()
	case "U":
		m.redo()
	case "y":
		if err := m.copySelected(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "copied edge to clipboard"
		}

	case "s":
		m.startFileInput(FileOpSave, m.filename)
	case "p":
		m.startFileInput(FileOpSavePNG, baseName(m.displayName())+".png")
	case "T":
		m.startFileInput(FileOpSaveVisualTXT, baseName(m.displayName())+".txt")

	case "?":
		m.help = true
		m.helpScroll = 0
	case "esc":
		m.mode = ModeNormal
		m.connectFrom = nil
		m.selectedEdge = nil
		m.repaint()
	case "q", "ctrl+c":
		if m.config.Confirmations && key == "q" {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			break
		}
		return m, tea.Quit
	}
	m.render()
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Ctrl && (msg.Type == tea.MouseWheelUp || msg.Type == tea.MouseWheelDown):
		ev := m.pinch.wheel(msg.X, msg.Y, msg.Type == tea.MouseWheelUp, m.config.PinchStep)
		if ev.PinchScale > 0 {
			m.view.zoomAt(ev.PinchScale, ev.PinchX, ev.PinchY)
			m.repaint()
		}
	case msg.Type == tea.MouseWheelUp:
		m.view.pan(0, -panStep)
		m.repaint()
	case msg.Type == tea.MouseWheelDown:
		m.view.pan(0, panStep)
		m.repaint()
	case msg.Type == tea.MouseLeft:
		m.cursorX, m.cursorY = msg.X, msg.Y
		m.ensureCursorInBounds()
		if e, ok := m.edgeAt(m.cursorX, m.cursorY); ok {
			m.selectedEdge = e
		}
		m.repaint()
	}
	return m, nil
}

// fitView centers the scene and zooms so all of it is on screen.
func (m *model) fitView() {
	bounds, ok := m.scene.Bounds()
	if !ok {
		return
	}
	w, h := m.screenPixels()
	if bw, bh := bounds.Width(), bounds.Height(); bw > 0 && bh > 0 {
		m.view.zoom = min(max(min(w/bw, h/bh)*0.9, minZoom), 1)
	}
	m.view.center(bounds, w, h)
	m.repaint()
}

// cycleSelection steps the selection through the visible edges.
func (m *model) cycleSelection(forward bool) {
	var edges []*diagram.Edge
	for _, e := range m.scene.Edges() {
		if e.IsVisible() {
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		m.selectedEdge = nil
		m.repaint()
		return
	}
	idx := -1
	for i, e := range edges {
		if e == m.selectedEdge {
			idx = i
		}
	}
	if forward {
		idx = (idx + 1) % len(edges)
	} else if idx <= 0 {
		idx = len(edges) - 1
	} else {
		idx--
	}
	m.selectedEdge = edges[idx]
	m.repaint()
}

// connectAtCursor picks the source on the first press and joins it to the
// element under the cursor on the second with a new edge.
func (m *model) connectAtCursor() {
	el, ok := m.elementAt(m.cursorX, m.cursorY)
	if !ok {
		m.errorMessage = "nothing under cursor"
		return
	}
	if m.mode != ModeConnect {
		m.mode = ModeConnect
		m.connectFrom = el
		m.repaint()
		return
	}

	from := m.connectFrom
	m.mode = ModeNormal
	m.connectFrom = nil
	e := diagram.NewEdge()
	if err := e.CanConnect(from, el); err != nil {
		m.errorMessage = err.Error()
		m.repaint()
		return
	}
	if err := m.scene.Add(e); err != nil {
		m.errorMessage = err.Error()
		m.repaint()
		return
	}
	e.Connect(from, el)
	m.recordAction(ActionConnect,
		ConnectionData{Edge: e, From: from, To: el, Added: true},
		ConnectionData{Edge: e})
	m.selectedEdge = e
	m.successMessage = fmt.Sprintf("connected %s to %s", from.ID(), el.ID())
	m.repaint()
}

// startMove picks up the node under the cursor.
func (m *model) startMove() {
	n, ok := m.scene.NodeAt(m.cellCenter(m.cursorX, m.cursorY))
	if !ok {
		m.errorMessage = "no node under cursor"
		return
	}
	m.mode = ModeMove
	m.movingNode = n
	m.moveOrigin = n.Position()
	m.repaint()
}

// handleMove steps the picked node a cell at a time; the cursor follows it.
// Enter places it and Esc puts it back.
func (m model) handleMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.movingNode
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "h", "j", "k", "l", "left", "down", "up", "right",
		"H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right":
		var dx, dy float64
		switch key {
		case "h", "left", "H", "shift+left":
			dx = -m.config.CellWidth
		case "l", "right", "L", "shift+right":
			dx = m.config.CellWidth
		case "k", "up", "K", "shift+up":
			dy = -m.config.CellHeight
		case "j", "down", "J", "shift+down":
			dy = m.config.CellHeight
		}
		speed := m.getMoveSpeed(key)
		step := float64(speed) / m.view.zoom
		n.MoveTo(n.X+dx*step, n.Y+dy*step)
		m.handleCursorMove(key, speed)
		m.repaint()
	case "enter", "m":
		m.mode = ModeNormal
		m.movingNode = nil
		if p := n.Position(); p != m.moveOrigin {
			m.recordAction(ActionMove,
				MoveData{Node: n, X: p.X, Y: p.Y},
				MoveData{Node: n, X: m.moveOrigin.X, Y: m.moveOrigin.Y})
			m.successMessage = "moved " + n.ID()
		}
		m.repaint()
	case "esc":
		n.MoveTo(m.moveOrigin.X, m.moveOrigin.Y)
		m.mode = ModeNormal
		m.movingNode = nil
		m.repaint()
	case "ctrl+c":
		return m, tea.Quit
	}
	m.render()
	return m, nil
}

func (m *model) detachSelected() {
	e := m.selectedEdge
	if e == nil || !e.Attached() {
		return
	}
	prev := ConnectionData{Edge: e, From: e.From(), To: e.To()}
	e.Detach()
	m.recordAction(ActionDetach, ConnectionData{Edge: e}, prev)
	m.successMessage = fmt.Sprintf("detached %s", e.ID())
	m.repaint()
}

func (m *model) toggleAnimation() {
	e := m.selectedEdge
	if e == nil {
		m.errorMessage = "no edge selected"
		return
	}
	if e.Animating() {
		cfg := markerConfig(e, m.config.markerSpeed())
		e.StopAnimation()
		m.recordAction(ActionStopAnimation, AnimateData{Edge: e}, AnimateData{Edge: e, Config: cfg})
		m.repaint()
		return
	}
	if !e.Attached() || e.IsLoop() {
		m.errorMessage = "only connected edges animate"
		return
	}
	cfg := markerConfig(e, m.config.markerSpeed())
	e.Animate(cfg)
	m.recordAction(ActionAnimate, AnimateData{Edge: e, Config: cfg}, AnimateData{Edge: e})
}

func (m *model) startFileInput(op FileOperation, name string) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.fileInput = name
}

func (m model) handleFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.fileInput = ""
		m.errorMessage = ""
	case tea.KeyEnter:
		name := strings.TrimSpace(m.fileInput)
		if name == "" {
			m.errorMessage = "filename required"
			return m, nil
		}
		if m.fileOp == FileOpSave && !strings.Contains(name, ".") {
			name += ".json"
		}
		m.fileInput = name
		if m.config.Confirmations && !(m.fileOp == FileOpSave && name == m.filename) {
			if _, err := os.Stat(m.config.GetSavePath(name)); err == nil {
				m.mode = ModeConfirm
				m.confirmAction = ConfirmOverwriteFile
				return m, nil
			}
		}
		m.writeFile()
	case tea.KeyBackspace:
		if r := []rune(m.fileInput); len(r) > 0 {
			m.fileInput = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.fileInput += string(msg.Runes)
	}
	return m, nil
}

// writeFile runs the pending file operation on m.fileInput.
func (m *model) writeFile() {
	name := m.fileInput
	var err error
	switch m.fileOp {
	case FileOpSave:
		if err = saveScene(m.scene, m.config.GetSavePath(name)); err == nil {
			m.filename = name
		}
	case FileOpSavePNG:
		err = m.exportPNG(name)
	case FileOpSaveVisualTXT:
		err = m.exportVisualTXT(name)
	}
	m.mode = ModeNormal
	m.fileInput = ""
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "wrote " + name
}

func (m model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmDetach:
			m.detachSelected()
		case ConfirmOverwriteFile:
			m.writeFile()
		case ConfirmQuit:
			return m, tea.Quit
		}
	case "n", "N", "esc":
		if m.confirmAction == ConfirmOverwriteFile {
			m.mode = ModeFileInput
			return m, nil
		}
		m.mode = ModeNormal
	}
	m.render()
	return m, nil
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	var b strings.Builder
	rows := m.canvasRows()
	for i := 0; i < rows; i++ {
		if i < len(m.lines) {
			b.WriteString(m.lines[i])
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeFileInput:
		var op string
		switch m.fileOp {
		case FileOpSave:
			op = "Save"
		case FileOpSavePNG:
			op = "Export PNG"
		case FileOpSaveVisualTXT:
			op = "Export TXT"
		}
		status = fmt.Sprintf("Mode: FILE | %s filename: %s | Enter=confirm, Esc=cancel", op, m.fileInput)
	case ModeConfirm:
		var message string
		switch m.confirmAction {
		case ConfirmDetach:
			message = fmt.Sprintf("Detach %s? (y/n)", m.selectedEdge.ID())
		case ConfirmQuit:
			message = "Quit linkmap? (y/n)"
		case ConfirmOverwriteFile:
			message = fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.fileInput)
		}
		status = "Mode: CONFIRM | " + message
	case ModeMove:
		status = fmt.Sprintf("Mode: MOVE | %s | hjkl=move, Enter=place, Esc=cancel", m.movingNode.ID())
	default:
		mode := m.modeString()
		if m.zPanMode {
			mode = "PAN"
		}
		status = fmt.Sprintf("Mode: %s | %s | Zoom: %.0f%%", mode, m.displayName(), m.view.zoom*100)
		if m.connectFrom != nil {
			status += fmt.Sprintf(" | Connect from %s (select target)", m.connectFrom.ID())
		}
		if m.selectedEdge != nil {
			status += " | Selected: " + m.selectedEdge.ID()
			if m.selectedEdge.Animating() {
				status += " (animating)"
			}
		}
	}

	line := statusStyle.Copy().Width(max(m.width, 1)).MaxHeight(1).Render(status)
	switch {
	case m.errorMessage != "":
		line = errorStyle.Render("ERROR: "+m.errorMessage) + " " + status
	case m.successMessage != "":
		line = okStyle.Render(m.successMessage) + " " + status
	}
	return line
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeConnect:
		return "CONNECT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	case ModeMove:
		return "MOVE"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"linkmap Help",
	"============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor, or pan the view in pan mode",
	"  Shift+h/j/k/l    Move 2x faster",
	"  z                Toggle pan mode",
	"  +/-              Zoom in/out",
	"  Ctrl+wheel       Pinch zoom around the mouse",
	"  wheel            Scroll the view",
	"  0                Fit the whole diagram on screen",
	"",
	"Nodes:",
	"------",
	"  m                Move the node under the cursor with h/j/k/l,",
	"                   Enter places it, Esc puts it back",
	"",
	"Edges:",
	"------",
	"  Tab/Shift+Tab    Select next/previous edge",
	"  Enter/click      Select edge under cursor",
	"  c                Start a connection on the node or edge under cursor,",
	"                   press again on the target to create an edge",
	"  d                Detach selected edge",
	"  a                Start/stop the marker on the selected edge",
	"  A                Animate every connected edge",
	"  y                Copy selected edge as JSON",
	"",
	"File Operations:",
	"----------------",
	"  s                Save diagram (.json or .msgpack)",
	"  p                Export as PNG image",
	"  T                Export the view as text",
	"",
	"General:",
	"  u                Undo last action",
	"  U                Redo last undone action",
	"  Esc              Clear selection/cancel current operation",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	end := min(start+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[start:end], "\n")
	result += "\n" + fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		start+1, end, len(helpLines))
	return result
}
