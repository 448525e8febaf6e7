// Package input implements controller handling for the NES.
package input

import (
	"log"
)

// Button represents NES controller buttons. The bit order matches the
// serial order, A is shifted out first.
type Button uint8

const (
	ButtonRight Button = 1 << iota
	ButtonLeft
	ButtonDown
	ButtonUp
	ButtonStart
	ButtonSelect
	ButtonB
	ButtonA
)

// Controller represents a NES controller
type Controller struct {
	// Live button states
	buttons uint8

	// Snapshot taken by the last strobe write, shifted out MSB first
	shiftRegister uint8

	debugEnabled bool
}

// New creates a new Controller instance
func New() *Controller {
	return &Controller{}
}

// SetButton sets the state of a button
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces all button states at once
func (c *Controller) SetButtons(state uint8) {
	if c.debugEnabled && state != c.buttons {
		log.Printf("[INPUT] buttons 0x%02X -> 0x%02X", c.buttons, state)
	}
	c.buttons = state
}

// Buttons returns the live button byte
func (c *Controller) Buttons() uint8 {
	return c.buttons
}

// IsPressed returns true if the button is currently pressed
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Latch snapshots the live buttons into the shift register
func (c *Controller) Latch() {
	c.shiftRegister = c.buttons
}

// Read returns the next serial bit. After eight reads the register is
// empty and reads return 0.
func (c *Controller) Read() uint8 {
	var bit uint8
	if c.shiftRegister&0x80 != 0 {
		bit = 1
	}
	c.shiftRegister <<= 1
	return bit
}

// Peek returns the next serial bit without shifting
func (c *Controller) Peek() uint8 {
	return c.shiftRegister >> 7
}

// Reset resets the controller state
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
}

// EnableDebug enables debug logging for this controller
func (c *Controller) EnableDebug(enable bool) {
	c.debugEnabled = enable
}

// InputState represents the two controller ports
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a new input state with two controllers
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets all input devices
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// EnableDebug enables debug logging for all controllers
func (is *InputState) EnableDebug(enable bool) {
	is.Controller1.EnableDebug(enable)
	is.Controller2.EnableDebug(enable)
}

// Port returns the controller for port 0 or 1
func (is *InputState) Port(port int) *Controller {
	if port&1 == 0 {
		return is.Controller1
	}
	return is.Controller2
}

// Read reads from controller ports. A readOnly read does not shift.
func (is *InputState) Read(address uint16, readOnly bool) uint8 {
	var c *Controller
	switch address {
	case 0x4016:
		c = is.Controller1
	case 0x4017:
		c = is.Controller2
	default:
		return 0
	}
	if readOnly {
		return c.Peek()
	}
	return c.Read()
}

// Write handles the strobe register. Both ports latch on a write to $4016.
func (is *InputState) Write(address uint16, value uint8) {
	if address != 0x4016 {
		return
	}
	is.Controller1.Latch()
	is.Controller2.Latch()
}
