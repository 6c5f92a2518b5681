package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkmap/diagram"
	"linkmap/geom"
)

// newTestModel returns an 80×25 viewer over three nodes: a and b on row 2
// (columns 4 and 24) and c below a on row 12.
func newTestModel(t *testing.T) model {
	t.Helper()
	s := diagram.NewScene(geom.Rect{Right: 640, Bottom: 384})
	require.NoError(t, s.Add(
		diagram.NewNode("a", 40, 40, 32, 32, "a"),
		diagram.NewNode("b", 200, 40, 32, 32, "b"),
		diagram.NewNode("c", 40, 200, 32, 32, "c"),
	))
	cfg := DefaultConfig()
	cfg.Confirmations = false
	cfg.SaveDirectory = t.TempDir()

	m := newModel(s, "", cfg)
	m.width, m.height = 80, 25
	m.repaint()
	return m
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(model)
	require.True(t, ok)
	return mm
}

func press(t *testing.T, m model, key string) model {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return update(t, m, msg)
}

func at(m model, col, row int) model {
	m.cursorX, m.cursorY = col, row
	return m
}

func node(t *testing.T, m model, id string) *diagram.Node {
	t.Helper()
	n, ok := m.scene.Node(id)
	require.True(t, ok)
	return n
}

// connect joins the elements under two cells with the c key.
func connect(t *testing.T, m model, c1, r1, c2, r2 int) model {
	t.Helper()
	m = press(t, at(m, c1, r1), "c")
	require.Equal(t, ModeConnect, m.mode)
	return press(t, at(m, c2, r2), "c")
}

func TestConnectWithKeys(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)

	require.Len(t, m.scene.Edges(), 1)
	e := m.scene.Edges()[0]
	assert.Equal(t, ModeNormal, m.mode)
	assert.Same(t, node(t, m, "a"), e.From())
	assert.Same(t, node(t, m, "b"), e.To())
	assert.Same(t, e, m.selectedEdge)
	assert.Nil(t, m.connectFrom)
	assert.Empty(t, m.errorMessage)
	assert.Contains(t, strings.Join(m.canvas.PlainLines(), "\n"), "─")
}

func TestConnectToEdge(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	ab := m.scene.Edges()[0]

	m = connect(t, m, 4, 12, 15, 2)
	require.Len(t, m.scene.Edges(), 2)
	e := m.selectedEdge
	assert.Same(t, node(t, m, "c"), e.From())
	assert.Same(t, ab, e.To())
	_, ok := e.Terminals()
	assert.True(t, ok)
}

func TestConnectNothingUnderCursor(t *testing.T) {
	m := newTestModel(t)
	m = press(t, at(m, 60, 20), "c")
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotEmpty(t, m.errorMessage)

	m = press(t, at(m, 4, 2), "c")
	m = press(t, m, "esc")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, m.connectFrom)
}

func TestUndoRedoConnect(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	e := m.selectedEdge

	m = press(t, m, "u")
	assert.Empty(t, m.scene.Edges())
	assert.Nil(t, m.selectedEdge)
	assert.False(t, e.Attached())
	assert.Empty(t, node(t, m, "a").Outgoing())

	m = press(t, m, "U")
	require.Len(t, m.scene.Edges(), 1)
	assert.True(t, e.Attached())
	assert.Same(t, node(t, m, "b"), e.To())

	// a new action drops the redo history
	m = press(t, m, "u")
	m = connect(t, m, 4, 2, 4, 12)
	assert.Empty(t, m.redoStack)
}

func TestDetachAndUndo(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	e := m.selectedEdge

	m = press(t, m, "d")
	assert.False(t, e.Attached())
	assert.Len(t, m.scene.Edges(), 1)

	m = press(t, m, "u")
	assert.True(t, e.Attached())
	assert.Same(t, node(t, m, "a"), e.From())

	m = press(t, m, "U")
	assert.False(t, e.Attached())
}

func TestDetachNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	m.config.Confirmations = true
	m = connect(t, m, 4, 2, 24, 2)
	e := m.selectedEdge

	m = press(t, m, "d")
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), "Detach")
	m = press(t, m, "n")
	assert.True(t, e.Attached())

	m = press(t, m, "d")
	m = press(t, m, "y")
	assert.Equal(t, ModeNormal, m.mode)
	assert.False(t, e.Attached())
}

func TestSelection(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	m = connect(t, m, 4, 2, 4, 12)
	first, second := m.scene.Edges()[0], m.scene.Edges()[1]

	m = press(t, m, "esc")
	assert.Nil(t, m.selectedEdge)
	m = press(t, m, "tab")
	assert.Same(t, first, m.selectedEdge)
	m = press(t, m, "tab")
	assert.Same(t, second, m.selectedEdge)
	m = press(t, m, "tab")
	assert.Same(t, first, m.selectedEdge)

	m = press(t, at(m, 60, 20), "enter")
	assert.Nil(t, m.selectedEdge)
	m = press(t, at(m, 15, 2), "enter")
	assert.Same(t, first, m.selectedEdge)

	m = update(t, m, tea.MouseMsg{X: 4, Y: 7, Type: tea.MouseLeft})
	assert.Same(t, second, m.selectedEdge)
	assert.Equal(t, 4, m.cursorX)
	assert.Equal(t, 7, m.cursorY)
}

func TestAnimateToggleAndTick(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	e := m.selectedEdge

	m = press(t, m, "a")
	require.True(t, e.Animating())

	next, cmd := m.Update(tickMsg{})
	m = next.(model)
	assert.NotNil(t, cmd)
	assert.Greater(t, e.Progress(), 0.0)
	assert.Equal(t, 1, m.frames)
	assert.Contains(t, strings.Join(m.canvas.PlainLines(), ""), "●")

	m = press(t, m, "a")
	assert.False(t, e.Animating())
	m = press(t, m, "u")
	assert.True(t, e.Animating())
	m = press(t, m, "u")
	assert.False(t, e.Animating())
	m = press(t, m, "U")
	assert.True(t, e.Animating())
}

func TestAnimateRequiresConnectedEdge(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a")
	assert.NotEmpty(t, m.errorMessage)

	m = connect(t, m, 4, 2, 4, 2)
	require.True(t, m.selectedEdge.IsLoop())
	m = press(t, m, "a")
	assert.False(t, m.selectedEdge.Animating())
	assert.NotEmpty(t, m.errorMessage)
}

func TestAnimateAll(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	m = connect(t, m, 4, 2, 4, 12)
	m = press(t, m, "A")
	for _, e := range m.scene.Edges() {
		assert.True(t, e.Animating(), e.ID())
	}
}

func TestCtrlWheelPinchZoom(t *testing.T) {
	m := newTestModel(t)
	before := m.cellCenter(40, 12)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Ctrl: true, Type: tea.MouseWheelUp})
	assert.InDelta(t, m.config.PinchStep, m.view.zoom, 1e-9)
	after := m.cellCenter(40, 12)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Ctrl: true, Type: tea.MouseWheelDown})
	assert.InDelta(t, 1, m.view.zoom, 1e-9)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Type: tea.MouseWheelDown})
	assert.InDelta(t, panStep, m.view.panY, 1e-9)
}

func TestKeyZoom(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "+")
	assert.InDelta(t, m.config.PinchStep, m.view.zoom, 1e-9)
	m = press(t, m, "-")
	assert.InDelta(t, 1, m.view.zoom, 1e-9)
}

func typeName(t *testing.T, m model, name string) model {
	t.Helper()
	m.fileInput = ""
	m = press(t, m, name)
	return press(t, m, "enter")
}

func TestSaveAndLoad(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)

	m = press(t, m, "s")
	require.Equal(t, ModeFileInput, m.mode)
	m = typeName(t, m, "net")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.errorMessage)
	assert.Equal(t, "net.json", m.filename)

	path := filepath.Join(m.config.SaveDirectory, "net.json")
	s, err := loadScene(path, geom.Rect{Right: 640, Bottom: 384})
	require.NoError(t, err)
	assert.Len(t, s.Nodes(), 3)
	require.Len(t, s.Edges(), 1)
	assert.Equal(t, "a", s.Edges()[0].From().ID())

	_, err = loadScene(filepath.Join(m.config.SaveDirectory, "missing.json"), geom.Rect{})
	assert.Error(t, err)
}

func TestSaveMsgpack(t *testing.T) {
	m := newTestModel(t)
	path := filepath.Join(t.TempDir(), "net.msgpack")
	require.NoError(t, saveScene(m.scene, path))

	s, err := loadScene(path, geom.Rect{})
	require.NoError(t, err)
	assert.Len(t, s.Nodes(), 3)
}

func TestOverwriteAsks(t *testing.T) {
	m := newTestModel(t)
	m.config.Confirmations = true
	path := filepath.Join(m.config.SaveDirectory, "view.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	m = press(t, m, "T")
	m = typeName(t, m, "view.txt")
	require.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, ConfirmOverwriteFile, m.confirmAction)

	m = press(t, m, "n")
	assert.Equal(t, ModeFileInput, m.mode)
	m = press(t, m, "enter")
	m = press(t, m, "y")
	assert.Equal(t, ModeNormal, m.mode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "┌")
}

func TestExports(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)

	m = press(t, m, "T")
	m = typeName(t, m, "view.txt")
	assert.Empty(t, m.errorMessage)
	data, err := os.ReadFile(filepath.Join(m.config.SaveDirectory, "view.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "─")
	assert.Contains(t, string(data), "▶")

	m = press(t, m, "p")
	m = typeName(t, m, "net.png")
	assert.Empty(t, m.errorMessage)
	assert.FileExists(t, filepath.Join(m.config.SaveDirectory, "net.png"))
}

func TestSnapshotJSON(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	text, err := snapshotJSON(m.selectedEdge)
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoints":["a","b"]}`, text)

	m = press(t, m, "d")
	_, err = snapshotJSON(m.selectedEdge)
	assert.ErrorIs(t, err, diagram.ErrDetached)
}

func TestHelpAndView(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "Mode: NORMAL")

	m = press(t, m, "?")
	assert.True(t, m.help)
	assert.Contains(t, m.View(), "linkmap Help")
	m = press(t, m, "j")
	assert.Equal(t, 1, m.helpScroll)
	m = press(t, m, "x")
	assert.False(t, m.help)
}

func TestWindowSizeCentersOnce(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 41})
	assert.True(t, m.sized)
	bounds, _ := m.scene.Bounds()
	stage := m.scene.StageBoundary()
	assert.InDelta(t, bounds.Center().X, stage.Center().X, 1e-9)
	assert.InDelta(t, bounds.Center().Y, stage.Center().Y, 1e-9)

	m.view.pan(10, 0)
	m = update(t, m, tea.WindowSizeMsg{Width: 90, Height: 41})
	assert.NotEqual(t, bounds.Center().X, m.scene.StageBoundary().Center().X)
}

func TestMoveNode(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	e := m.selectedEdge
	before, ok := e.Terminals()
	require.True(t, ok)

	m = press(t, at(m, 4, 2), "m")
	require.Equal(t, ModeMove, m.mode)
	a := node(t, m, "a")
	assert.Same(t, a, m.movingNode)
	assert.Contains(t, m.View(), "MOVE")

	m = press(t, m, "j")
	m = press(t, m, "J")
	assert.Equal(t, geom.Pt(40, 88), a.Position())
	assert.Equal(t, 5, m.cursorY, "cursor follows the node")

	m = press(t, m, "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, m.movingNode)
	after, ok := e.Terminals()
	require.True(t, ok)
	assert.NotEqual(t, before[0], after[0], "edge follows the node")

	m = press(t, m, "u")
	assert.Equal(t, geom.Pt(40, 40), a.Position())
	m = press(t, m, "U")
	assert.Equal(t, geom.Pt(40, 88), a.Position())
}

func TestMoveNodeCancel(t *testing.T) {
	m := newTestModel(t)
	m = press(t, at(m, 4, 2), "m")
	m = press(t, m, "l")
	a := node(t, m, "a")
	assert.Equal(t, geom.Pt(48, 40), a.Position())

	m = press(t, m, "esc")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, geom.Pt(40, 40), a.Position())
	assert.Empty(t, m.undoStack)

	m = press(t, m, "m")
	m = press(t, m, "enter")
	assert.Empty(t, m.undoStack, "a move that goes nowhere is not recorded")

	m = press(t, at(m, 60, 20), "m")
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotEmpty(t, m.errorMessage)
}

func TestRedoKeepsActionWhenAddFails(t *testing.T) {
	m := newTestModel(t)
	m = connect(t, m, 4, 2, 24, 2)
	e := m.selectedEdge
	m = press(t, m, "u")

	blocker := diagram.NewNode(e.ID(), 400, 300, 32, 32, "x")
	require.NoError(t, m.scene.Add(blocker))
	m = press(t, m, "U")
	assert.NotEmpty(t, m.errorMessage)
	assert.Len(t, m.redoStack, 1)
	assert.Empty(t, m.undoStack)
	assert.False(t, e.Attached())

	m.scene.Remove(blocker)
	m = press(t, m, "U")
	assert.Empty(t, m.errorMessage)
	assert.True(t, e.Attached())
	assert.Empty(t, m.redoStack)
}
