// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"image"
	"image/color"
	"strings"
)

// NES output resolution
const (
	NESWidth  = 256
	NESHeight = 240
)

// Backend represents a graphics rendering backend
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering target
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns input events gathered since the last call
	PollEvents() []InputEvent

	// RenderFrame presents a 256x240 NES frame
	RenderFrame(frame *image.RGBA) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// Rendering configuration
	Filter string // "nearest", "linear"

	// Backend-specific options
	Headless bool
	Debug    bool

	// Headless screenshots: every Nth frame (0 = final frame only) into
	// ScreenshotDir; empty dir disables them
	ScreenshotDir   string
	ScreenshotEvery int

	// Keyboard layout; nil selects DefaultKeyBindings
	KeyBindings KeyBindings
}

// DebugInfo is the content of the debug panel
type DebugInfo struct {
	// Text lines: registers, disassembly around PC
	Lines []string

	// Both pattern tables rendered with the selected palette
	PatternTables [2]*image.RGBA

	// The eight palettes as stored in palette RAM
	Palettes        [8][4]color.RGBA
	SelectedPalette int

	// Decoded OAM entries, drawn below the pattern tables
	Sprites []string
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Button  Button
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents the keyboard keys the host reacts to
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyTab
	KeyEnter
	KeyBackspace
	KeyShift
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Letters and digits are contiguous
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
)

var namedKeys = map[Key]string{
	KeyEscape:    "Escape",
	KeySpace:     "Space",
	KeyTab:       "Tab",
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyShift:     "Shift",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
}

// String returns the name used for k in configuration files
func (k Key) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + int(k-KeyA)))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + int(k-Key0)))
	}
	if name, ok := namedKeys[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKey looks a key up by its configuration name, ignoring case
func ParseKey(name string) (Key, bool) {
	name = strings.TrimSpace(name)
	if len(name) == 1 {
		c := strings.ToUpper(name)[0]
		switch {
		case c >= 'A' && c <= 'Z':
			return KeyA + Key(c-'A'), true
		case c >= '0' && c <= '9':
			return Key0 + Key(c-'0'), true
		}
	}
	for key, keyName := range namedKeys {
		if strings.EqualFold(keyName, name) {
			return key, true
		}
	}
	return KeyUnknown, false
}

// IsControlKey reports whether key is reserved for emulator control and
// cannot be bound to a controller button
func IsControlKey(key Key) bool {
	switch key {
	case KeyEscape, KeySpace, KeyTab, KeyC, KeyF, KeyR, KeyP:
		return true
	}
	return false
}

// Button represents controller buttons
type Button int

const (
	ButtonUnknown Button = iota
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	// Player 2 controller buttons
	Button2A
	Button2B
	Button2Select
	Button2Start
	Button2Up
	Button2Down
	Button2Left
	Button2Right
)

// KeyBindings maps keyboard keys to controller buttons
type KeyBindings map[Key]Button

// DefaultKeyBindings binds arrows and X/Z/A/S for player 1 and the numeric
// row for player 2
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		KeyUp:    ButtonUp,
		KeyDown:  ButtonDown,
		KeyLeft:  ButtonLeft,
		KeyRight: ButtonRight,
		KeyX:     ButtonA,
		KeyZ:     ButtonB,
		KeyA:     ButtonSelect,
		KeyS:     ButtonStart,
		Key1:     Button2Up,
		Key2:     Button2Down,
		Key3:     Button2Left,
		Key4:     Button2Right,
		Key5:     Button2A,
		Key6:     Button2B,
		Key7:     Button2Start,
		Key8:     Button2Select,
	}
}

// ButtonForKey returns the controller button bound to key
func (kb KeyBindings) ButtonForKey(key Key) (Button, bool) {
	b, ok := kb[key]
	return b, ok
}

// translate turns raw key transitions into button events where a binding
// exists; other keys pass through unchanged
func (kb KeyBindings) translate(raw []InputEvent) []InputEvent {
	events := make([]InputEvent, 0, len(raw))
	for _, event := range raw {
		if button, ok := kb.ButtonForKey(event.Key); ok {
			events = append(events, InputEvent{
				Type:    InputEventTypeButton,
				Button:  button,
				Pressed: event.Pressed,
			})
			continue
		}
		events = append(events, event)
	}
	return events
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	default:
		// Default to Ebitengine for GUI mode
		return NewEbitengineBackend(), nil
	}
}

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	w, ok := window.(*EbitengineWindow)
	return w, ok
}

// AsHeadlessWindow tries to cast a Window to HeadlessWindow
func AsHeadlessWindow(window Window) (*HeadlessWindow, bool) {
	w, ok := window.(*HeadlessWindow)
	return w, ok
}
