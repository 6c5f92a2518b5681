package main

import (
	"linkmap/diagram"
	"linkmap/geom"
)

type model struct {
	width    int
	height   int
	cursorX  int
	cursorY  int
	zPanMode bool

	scene    *diagram.Scene
	canvas   *Canvas
	markers  *Canvas
	view     viewport
	lines    []string
	filename string
	config   *Config

	undoStack []Action
	redoStack []Action

	mode          Mode
	help          bool
	helpScroll    int
	selectedEdge  *diagram.Edge
	connectFrom   diagram.Element
	movingNode    *diagram.Node
	moveOrigin    geom.Point
	fileOp        FileOperation
	fileInput     string
	confirmAction ConfirmAction

	pinch  *pinchEmulator
	frames int
	sized  bool // first window size seen

	errorMessage   string
	successMessage string
}

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

// ConnectionData names an edge and the pair it joins.
type ConnectionData struct {
	Edge     *diagram.Edge
	From, To diagram.Element
	// Added is set when the edge was created by the action and must leave
	// the scene on undo.
	Added bool
}

type AnimateData struct {
	Edge   *diagram.Edge
	Config diagram.AnimateConfig
}

// MoveData is where a node was put.
type MoveData struct {
	Node *diagram.Node
	X, Y float64
}

type tickMsg struct{}

func newModel(scene *diagram.Scene, filename string, cfg *Config) model {
	m := model{
		scene:    scene,
		filename: filename,
		config:   cfg,
		view:     viewport{zoom: 1},
		canvas:   NewCanvas(cfg.CellWidth, cfg.CellHeight),
		markers:  NewCanvas(cfg.CellWidth, cfg.CellHeight),
	}
	m.pinch = newPinchEmulator(cfg.CellWidth, cfg.CellHeight)
	return m
}
