package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetButtonSetsAndClearsBits(t *testing.T) {
	s := NewSystem()

	s.SetButton(ButtonA, true)
	assert.Equal(t, uint8(1<<ButtonA), s.Controller0Buttons)

	s.SetButton(ButtonA, false)
	assert.Equal(t, uint8(0), s.Controller0Buttons)
}

func TestControllersAreIndependent(t *testing.T) {
	s := NewSystem()

	s.SetButton(ButtonUp, true)
	s.SetButton2(ButtonDown, true)

	assert.Equal(t, uint8(1<<ButtonUp), s.Controller0Buttons)
	assert.Equal(t, uint8(1<<ButtonDown), s.Controller1Buttons)
}

func TestQuitRequestedLatches(t *testing.T) {
	s := NewSystem()
	assert.False(t, s.QuitRequested())

	s.RequestQuit()
	assert.True(t, s.QuitRequested())
}
