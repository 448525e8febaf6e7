package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Debug panel geometry, in screen pixels before window scaling
const (
	DebugPanelWidth = 300
	swatchSize      = 6
	lineHeight      = 16
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	events             []InputEvent
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the NES emulator
type EbitengineGame struct {
	window     *EbitengineWindow
	frameImage *ebiten.Image

	// Debug panel
	debugVisible  bool
	debugSource   func() *DebugInfo
	patternImages [2]*ebiten.Image

	bindings KeyBindings

	windowWidth  int
	windowHeight int
}

// keyMappings lists the host keys that produce events
var keyMappings = map[ebiten.Key]Key{
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyTab:        KeyTab,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeyBackspace:  KeyBackspace,
	ebiten.KeyShiftLeft:  KeyShift,
	ebiten.KeyShiftRight: KeyShift,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyA:          KeyA,
	ebiten.KeyB:          KeyB,
	ebiten.KeyC:          KeyC,
	ebiten.KeyD:          KeyD,
	ebiten.KeyE:          KeyE,
	ebiten.KeyF:          KeyF,
	ebiten.KeyG:          KeyG,
	ebiten.KeyH:          KeyH,
	ebiten.KeyI:          KeyI,
	ebiten.KeyJ:          KeyJ,
	ebiten.KeyK:          KeyK,
	ebiten.KeyL:          KeyL,
	ebiten.KeyM:          KeyM,
	ebiten.KeyN:          KeyN,
	ebiten.KeyO:          KeyO,
	ebiten.KeyP:          KeyP,
	ebiten.KeyQ:          KeyQ,
	ebiten.KeyR:          KeyR,
	ebiten.KeyS:          KeyS,
	ebiten.KeyT:          KeyT,
	ebiten.KeyU:          KeyU,
	ebiten.KeyV:          KeyV,
	ebiten.KeyW:          KeyW,
	ebiten.KeyX:          KeyX,
	ebiten.KeyY:          KeyY,
	ebiten.KeyZ:          KeyZ,
	ebiten.KeyDigit0:     Key0,
	ebiten.KeyDigit1:     Key1,
	ebiten.KeyDigit2:     Key2,
	ebiten.KeyDigit3:     Key3,
	ebiten.KeyDigit4:     Key4,
	ebiten.KeyDigit5:     Key5,
	ebiten.KeyDigit6:     Key6,
	ebiten.KeyDigit7:     Key7,
	ebiten.KeyDigit8:     Key8,
	ebiten.KeyDigit9:     Key9,
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	if b.config.KeyBindings == nil {
		b.config.KeyBindings = DefaultKeyBindings()
	}
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(NESWidth, NESHeight),
		debugVisible: b.config.Debug,
		bindings:     b.config.KeyBindings,
		patternImages: [2]*ebiten.Image{
			ebiten.NewImage(128, 128),
			ebiten.NewImage(128, 128),
		},
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(b.config.VSync)

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	ebiten.SetScreenFilterEnabled(b.config.Filter == "linear")

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns the events gathered since the last call
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame uploads a NES frame for the next Draw
func (w *EbitengineWindow) RenderFrame(frame *image.RGBA) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	if frame == nil || frame.Rect.Dx() != NESWidth || frame.Rect.Dy() != NESHeight {
		return fmt.Errorf("frame must be %dx%d", NESWidth, NESHeight)
	}

	w.game.frameImage.WritePixels(frame.Pix)
	return nil
}

// SetDebugSource installs the provider queried for panel contents on every
// Draw while the panel is visible
func (w *EbitengineWindow) SetDebugSource(source func() *DebugInfo) {
	w.game.debugSource = source
}

// SetDebugVisible shows or hides the debug panel
func (w *EbitengineWindow) SetDebugVisible(visible bool) {
	w.game.debugVisible = visible
}

// DebugVisible reports whether the debug panel is shown
func (w *EbitengineWindow) DebugVisible() bool {
	return w.game.debugVisible
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// SetEmulatorUpdateFunc sets the function run once per Ebitengine tick
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// Run starts the Ebitengine game loop and blocks until the window closes
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	err := ebiten.RunGame(w.game)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	g.processInput()

	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			log.Printf("[Ebitengine] Emulator update error: %v", err)
		}
	}

	if !g.window.running {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 255})

	areaWidth := g.windowWidth
	if g.debugVisible {
		areaWidth -= DebugPanelWidth
	}
	scale, offsetX, offsetY := fitFrame(areaWidth, g.windowHeight)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(g.frameImage, op)

	if g.debugVisible && g.debugSource != nil {
		if info := g.debugSource(); info != nil {
			g.drawDebugPanel(screen, areaWidth, info)
		}
	}
}

// fitFrame returns the largest scale at which the NES frame fits the area
// and the offsets that centre it
func fitFrame(width, height int) (scale, offsetX, offsetY float64) {
	if width <= 0 || height <= 0 {
		return 1, 0, 0
	}
	scaleX := float64(width) / NESWidth
	scaleY := float64(height) / NESHeight
	scale = scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	offsetX = (float64(width) - NESWidth*scale) / 2
	offsetY = (float64(height) - NESHeight*scale) / 2
	return scale, offsetX, offsetY
}

// drawDebugPanel lays out text lines, palette swatches and the two pattern
// tables in a column starting at x0
func (g *EbitengineGame) drawDebugPanel(screen *ebiten.Image, x0 int, info *DebugInfo) {
	x := x0 + 8
	y := 4
	for _, line := range info.Lines {
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += lineHeight
	}

	y += 4
	for p := 0; p < 8; p++ {
		px := x + p*(swatchSize*5)
		for i, c := range info.Palettes[p] {
			r := image.Rect(px+i*swatchSize, y, px+(i+1)*swatchSize, y+swatchSize)
			screen.SubImage(r).(*ebiten.Image).Fill(c)
		}
		if p == info.SelectedPalette {
			r := image.Rect(px, y+swatchSize+1, px+4*swatchSize, y+swatchSize+3)
			screen.SubImage(r).(*ebiten.Image).Fill(color.White)
		}
	}
	y += swatchSize + 8

	for i, table := range info.PatternTables {
		if table == nil {
			continue
		}
		g.patternImages[i].WritePixels(table.Pix)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(x+i*136), float64(y))
		screen.DrawImage(g.patternImages[i], op)
	}
	y += 128 + 8

	for _, line := range info.Sprites {
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += lineHeight
	}
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput turns key transitions into window events
func (g *EbitengineGame) processInput() {
	if ebiten.IsWindowBeingClosed() {
		g.window.events = append(g.window.events, InputEvent{
			Type:    InputEventTypeQuit,
			Pressed: true,
		})
	}

	var rawKeyEvents []InputEvent
	for ebitenKey, key := range keyMappings {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			rawKeyEvents = append(rawKeyEvents, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			rawKeyEvents = append(rawKeyEvents, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: false})
		}
	}

	g.window.events = append(g.window.events, g.bindings.translate(rawKeyEvents)...)
}
