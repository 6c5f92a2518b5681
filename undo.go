package main

func (m *model) recordAction(actionType ActionType, data, inverse interface{}) {
	m.undoStack = append(m.undoStack, Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	})
	m.redoStack = nil
}

func (m *model) undo() {
	if len(m.undoStack) == 0 {
		return
	}

	lastIndex := len(m.undoStack) - 1
	action := m.undoStack[lastIndex]
	m.undoStack = m.undoStack[:lastIndex]

	switch action.Type {
	case ActionConnect:
		data := action.Data.(ConnectionData)
		prev := action.Inverse.(ConnectionData)
		switch {
		case data.Added:
			m.scene.Remove(data.Edge)
			if m.selectedEdge == data.Edge {
				m.selectedEdge = nil
			}
		case prev.From != nil:
			data.Edge.Connect(prev.From, prev.To)
		default:
			data.Edge.Detach()
		}
	case ActionDetach:
		data := action.Inverse.(ConnectionData)
		data.Edge.Connect(data.From, data.To)
	case ActionAnimate:
		data := action.Data.(AnimateData)
		data.Edge.StopAnimation()
	case ActionStopAnimation:
		data := action.Inverse.(AnimateData)
		data.Edge.Animate(data.Config)
	case ActionMove:
		data := action.Inverse.(MoveData)
		data.Node.MoveTo(data.X, data.Y)
	}

	m.redoStack = append(m.redoStack, action)
	m.repaint()
}

func (m *model) redo() {
	if len(m.redoStack) == 0 {
		return
	}

	lastIndex := len(m.redoStack) - 1
	action := m.redoStack[lastIndex]
	m.redoStack = m.redoStack[:lastIndex]

	switch action.Type {
	case ActionConnect:
		data := action.Data.(ConnectionData)
		if data.Added {
			if err := m.scene.Add(data.Edge); err != nil {
				m.redoStack = append(m.redoStack, action)
				m.errorMessage = err.Error()
				return
			}
		}
		data.Edge.Connect(data.From, data.To)
	case ActionDetach:
		data := action.Data.(ConnectionData)
		data.Edge.Detach()
	case ActionAnimate:
		data := action.Data.(AnimateData)
		data.Edge.Animate(data.Config)
	case ActionStopAnimation:
		data := action.Data.(AnimateData)
		data.Edge.StopAnimation()
	case ActionMove:
		data := action.Data.(MoveData)
		data.Node.MoveTo(data.X, data.Y)
	}

	m.undoStack = append(m.undoStack, action)
	m.repaint()
}
