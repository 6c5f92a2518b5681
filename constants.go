package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeConnect
	ModeFileInput
	ModeConfirm
	ModeMove
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveVisualTXT
)

type ConfirmAction int

const (
	ConfirmDetach ConfirmAction = iota
	ConfirmQuit
	ConfirmOverwriteFile
)

type ActionType int

const (
	ActionConnect ActionType = iota
	ActionDetach
	ActionAnimate
	ActionStopAnimation
	ActionMove
)

const (
	minZoom = 0.125
	maxZoom = 8.0

	// pixels each pan keypress moves the view at zoom 1
	panStep = 32.0

	// base half-distance between the two synthetic touches of a wheel pinch
	pinchSpread = 50.0

	defaultFPS = 60
	statusRows = 1
)

var tickEvery = time.Second / defaultFPS
