package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPinchWheel(t *testing.T) {
	p := newPinchEmulator(8, 16)

	ev := p.wheel(10, 5, true, 1.25)
	assert.InDelta(t, 1.25, ev.PinchScale, 1e-9)
	assert.InDelta(t, 84, ev.PinchX, 1e-9)
	assert.InDelta(t, 88, ev.PinchY, 1e-9)
	assert.Empty(t, p.rec.Track())

	ev = p.wheel(0, 0, false, 1.25)
	assert.InDelta(t, 0.8, ev.PinchScale, 1e-9)
	assert.InDelta(t, 4, ev.PinchX, 1e-9)
	assert.InDelta(t, 8, ev.PinchY, 1e-9)
}

func TestTouchPair(t *testing.T) {
	ev := touchPair(3, 4, 2)
	assert.Len(t, ev.Touches, 2)
	assert.Equal(t, 1.0, ev.Touches[0].X)
	assert.Equal(t, 5.0, ev.Touches[1].X)
	assert.Equal(t, 4.0, ev.Touches[1].Y)
}
