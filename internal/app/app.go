package app

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"nesemu/internal/audio"
	"nesemu/internal/bus"
	"nesemu/internal/cartridge"
	"nesemu/internal/cpu"
	"nesemu/internal/graphics"
	"nesemu/internal/input"
)

const (
	debugPanelWidth = graphics.DebugPanelWidth

	// DefaultHeadlessFrames is the run length of headless mode when no
	// frame count is given
	DefaultHeadlessFrames = 120

	// OAM entries listed in the debug panel
	debugSprites = 8

	// Samples buffered ahead of the player
	audioQueueLength = 250 * time.Millisecond

	escConfirmWindow = 3 * time.Second
)

// Application represents the main NES emulator application
type Application struct {
	// Core emulation components
	bus *bus.Bus

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	// Audio output
	audioQueue *audio.SampleQueue
	player     *audio.Player
	recorder   *audio.Recorder

	// CPU trace output
	traceFile   *os.File
	traceWriter *bufio.Writer

	// Application state
	config   *Config
	emulator *Emulator

	// Control flags
	running     atomic.Bool // cleared by Stop from the signal goroutine
	initialized bool
	headless    bool
	maxFrames   int

	// Performance tracking
	frameCount uint64
	startTime  time.Time

	// ROM management
	romPath     string
	cartridge   *cartridge.Cartridge
	disassembly map[uint16]string
	disasmAddrs []uint16

	// Live controller state, one bit per button
	controllers [2]uint8

	// ESC key confirmation tracking
	lastESCTime time.Time
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates a new NES emulator application
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode loads configPath (defaults on failure) and creates
// the application, optionally headless
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			log.Printf("[APP] Could not load config from %s, using defaults: %v", configPath, err)
			config = NewConfig()
		}
	}
	return NewApplicationWithConfig(config, headless)
}

// NewApplicationWithConfig creates the application from a prepared config
func NewApplicationWithConfig(config *Config, headless bool) (*Application, error) {
	app := &Application{
		config:    config,
		headless:  headless || config.Video.Backend == "headless",
		maxFrames: DefaultHeadlessFrames,
		startTime: time.Now(),
	}

	if err := app.initializeComponents(); err != nil {
		app.Cleanup()
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.bus = bus.New()
	app.bus.SetSampleFrequency(app.config.Audio.SampleRate)

	if err := app.initializeGraphicsBackend(); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.emulator = NewEmulator(app.bus, app.config)

	if err := app.initializeAudio(); err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}

	if path := app.config.Debug.TracePath; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		app.traceFile = f
		app.traceWriter = bufio.NewWriter(f)
		app.bus.CPU.SetTrace(app.traceWriter)
		log.Printf("[APP] CPU trace written to %s", path)
	}

	app.ApplyDebugSettings()
	app.initialized = true
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend() error {
	backendType := graphics.BackendEbitengine
	if app.headless {
		backendType = graphics.BackendHeadless
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	bindings, err := app.config.Input.KeyBindings()
	if err != nil {
		return err
	}

	width, height := app.config.GetWindowResolution()
	graphicsConfig := graphics.Config{
		WindowTitle:     "nesemu",
		WindowWidth:     width,
		WindowHeight:    height,
		Fullscreen:      app.config.Window.Fullscreen,
		VSync:           app.config.Video.VSync,
		Filter:          app.config.Video.Filter,
		Headless:        app.headless,
		Debug:           app.config.Debug.ShowDebugPanel,
		ScreenshotDir:   app.config.Paths.Screenshots,
		ScreenshotEvery: app.config.Video.ScreenshotEvery,
		KeyBindings:     bindings,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.window, err = app.graphicsBackend.CreateWindow(graphicsConfig.WindowTitle, width, height)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	if w, ok := graphics.AsEbitengineWindow(app.window); ok {
		w.SetDebugSource(app.debugInfo)
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	return nil
}

// initializeAudio sets up the sample queue, the speaker player (GUI only)
// and the WAV recorder
func (app *Application) initializeAudio() error {
	rate := app.config.Audio.SampleRate

	var sink SampleSink
	if app.config.Audio.Enabled && !app.headless {
		app.audioQueue = audio.NewSampleQueue(int(float64(rate) * audioQueueLength.Seconds()))
		buffer := time.Duration(app.config.Audio.BufferMS) * time.Millisecond

		player, err := audio.NewPlayer(rate, app.config.Audio.Volume, buffer, app.audioQueue)
		if err != nil {
			return err
		}
		app.player = player
		sink = app.audioQueue
	}

	var writer SampleWriter
	if path := app.config.Audio.RecordPath; path != "" {
		recorder, err := audio.NewRecorder(path, rate)
		if err != nil {
			return err
		}
		app.recorder = recorder
		writer = recorder
		log.Printf("[AUDIO] Recording to %s at %d Hz", path, rate)
	}

	app.emulator.SetAudioOutput(sink, writer)
	return nil
}

// LoadROM loads a ROM file into the emulator
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{
			Component: "cartridge",
			Operation: "load ROM",
			Err:       err,
		}
	}

	if err := app.bus.InsertCartridge(cart); err != nil {
		return &ApplicationError{
			Component: "bus",
			Operation: "insert cartridge",
			Err:       err,
		}
	}

	app.cartridge = cart
	app.romPath = romPath
	app.emulator.Reset()

	// The program window is disassembled once; code elsewhere is decoded
	// on demand
	app.disassembly = app.bus.CPU.Disassemble(0x8000, 0xFFFF)
	app.disasmAddrs = cpu.SortedAddresses(app.disassembly)

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("nesemu - %s", filepath.Base(romPath)))
	}

	log.Printf("[APP] Loaded %s (%s)", romPath, cart)
	if cart.HasBattery() {
		log.Printf("[APP] %s has battery-backed RAM; it is not saved between sessions", filepath.Base(romPath))
	}
	return nil
}

// SetMaxFrames sets the number of frames a headless run executes
func (app *Application) SetMaxFrames(frames int) {
	if frames > 0 {
		app.maxFrames = frames
	}
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running.Store(true)
	app.startTime = time.Now()

	if ebitenWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
		if app.player != nil {
			app.player.Play()
		}
		ebitenWindow.SetEmulatorUpdateFunc(app.tick)
		return ebitenWindow.Run()
	}

	return app.runHeadless()
}

// runHeadless runs maxFrames frames as fast as possible
func (app *Application) runHeadless() error {
	if app.cartridge == nil {
		return errors.New("headless mode requires a ROM")
	}

	for i := 0; i < app.maxFrames && app.running.Load(); i++ {
		if err := app.emulator.StepFrame(); err != nil {
			return err
		}
		if err := app.render(); err != nil {
			return err
		}
	}

	log.Printf("[APP] Headless run finished after %d frames", app.frameCount)
	app.running.Store(false)
	return nil
}

// tick is one host update: input, emulation, presentation
func (app *Application) tick() error {
	app.processInput()

	if app.cartridge != nil {
		if err := app.emulator.Update(); err != nil {
			log.Printf("[APP] Emulator update error: %v", err)
		}
	}

	if err := app.render(); err != nil {
		return err
	}

	if app.window.ShouldClose() {
		app.Stop()
	}
	if !app.running.Load() {
		// Closing the window ends the ebiten loop
		return app.window.Cleanup()
	}
	return nil
}

// processInput applies window events to the controllers and run modes
func (app *Application) processInput() {
	if app.window == nil {
		return
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
		case graphics.InputEventTypeButton:
			app.handleButton(event.Button, event.Pressed)
		case graphics.InputEventTypeKey:
			if event.Pressed {
				app.handleKeyInput(event.Key)
			}
		}
	}
}

// handleButton updates one controller bit and pushes the port state to the bus
func (app *Application) handleButton(button graphics.Button, pressed bool) {
	port, nesButton, ok := graphicsButtonToInputButton(button)
	if !ok {
		return
	}

	if pressed {
		app.controllers[port] |= uint8(nesButton)
	} else {
		app.controllers[port] &^= uint8(nesButton)
	}
	app.bus.SetControllerState(port, app.controllers[port])
}

// handleKeyInput handles the emulator control keys
func (app *Application) handleKeyInput(key graphics.Key) {
	// Quitting requires a second ESC within the confirmation window
	if key == graphics.KeyEscape {
		now := time.Now()
		if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < escConfirmWindow {
			log.Printf("[APP] ESC confirmed, shutting down")
			app.Stop()
			return
		}
		log.Printf("[APP] Press ESC again within %v to quit", escConfirmWindow)
		app.lastESCTime = now
		return
	}
	app.lastESCTime = time.Time{}

	switch key {
	case graphics.KeySpace:
		app.TogglePause()
	case graphics.KeyC:
		if app.cartridge != nil && !app.emulator.IsRunning() {
			app.logStepError(app.emulator.StepInstruction())
		}
	case graphics.KeyF:
		if app.cartridge != nil && !app.emulator.IsRunning() {
			app.logStepError(app.emulator.StepFrame())
		}
	case graphics.KeyR:
		app.Reset()
	case graphics.KeyP:
		app.config.Debug.Palette = (app.config.Debug.Palette + 1) & 0x07
	case graphics.KeyTab:
		if w, ok := graphics.AsEbitengineWindow(app.window); ok {
			w.SetDebugVisible(!w.DebugVisible())
		}
	}
}

func (app *Application) logStepError(err error) {
	if err != nil {
		log.Printf("[APP] Step error: %v", err)
	}
}

// graphicsButtonToInputButton converts a window button to a controller
// port and NES button
func graphicsButtonToInputButton(gButton graphics.Button) (int, input.Button, bool) {
	switch gButton {
	case graphics.ButtonA:
		return 0, input.ButtonA, true
	case graphics.ButtonB:
		return 0, input.ButtonB, true
	case graphics.ButtonSelect:
		return 0, input.ButtonSelect, true
	case graphics.ButtonStart:
		return 0, input.ButtonStart, true
	case graphics.ButtonUp:
		return 0, input.ButtonUp, true
	case graphics.ButtonDown:
		return 0, input.ButtonDown, true
	case graphics.ButtonLeft:
		return 0, input.ButtonLeft, true
	case graphics.ButtonRight:
		return 0, input.ButtonRight, true
	case graphics.Button2A:
		return 1, input.ButtonA, true
	case graphics.Button2B:
		return 1, input.ButtonB, true
	case graphics.Button2Select:
		return 1, input.ButtonSelect, true
	case graphics.Button2Start:
		return 1, input.ButtonStart, true
	case graphics.Button2Up:
		return 1, input.ButtonUp, true
	case graphics.Button2Down:
		return 1, input.ButtonDown, true
	case graphics.Button2Left:
		return 1, input.ButtonLeft, true
	case graphics.Button2Right:
		return 1, input.ButtonRight, true
	}
	return 0, 0, false
}

// render presents the PPU screen through the video processor
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}

	frame := app.videoProcessor.ProcessFrame(app.bus.PPU.GetScreen())
	if err := app.window.RenderFrame(frame); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	app.frameCount++
	return nil
}

// debugInfo gathers the debug panel contents
func (app *Application) debugInfo() *graphics.DebugInfo {
	c := app.bus.CPU
	palette := uint8(app.config.Debug.Palette)

	info := &graphics.DebugInfo{
		Lines: []string{
			"STATUS: " + statusString(c),
			fmt.Sprintf("PC: $%04X", c.PC),
			fmt.Sprintf("A: $%02X  [%d]", c.A, c.A),
			fmt.Sprintf("X: $%02X  [%d]", c.X, c.X),
			fmt.Sprintf("Y: $%02X  [%d]", c.Y, c.Y),
			fmt.Sprintf("Stack P: $%04X", 0x0100+uint16(c.SP)),
			fmt.Sprintf("Mode: %s  Frame: %d", app.emulator.Mode(), app.bus.FrameCount()),
			"",
		},
		SelectedPalette: int(palette),
	}
	info.Lines = append(info.Lines, app.disassemblyAround(c.PC, 6, 7)...)

	for i := 0; i < 2; i++ {
		info.PatternTables[i] = app.bus.PPU.GetPatternTable(i, palette)
	}
	for p := uint8(0); p < 8; p++ {
		for i := uint8(0); i < 4; i++ {
			info.Palettes[p][i] = app.bus.PPU.GetColourFromPaletteRAM(p, i)
		}
	}

	oam := app.bus.PPU.OAMEntries()
	for i, e := range oam[:debugSprites] {
		info.Sprites = append(info.Sprites, fmt.Sprintf("%02X: (%3d, %3d) ID: %02X AT: %02X", i, e.X, e.Y, e.ID, e.Attribute))
	}
	return info
}

// statusString renders the flags from N down to C, set flags in capitals
func statusString(c *cpu.CPU) string {
	names := []struct {
		flag cpu.Flag
		name string
	}{
		{cpu.FlagN, "N"}, {cpu.FlagV, "V"}, {cpu.FlagU, "-"}, {cpu.FlagB, "B"},
		{cpu.FlagD, "D"}, {cpu.FlagI, "I"}, {cpu.FlagZ, "Z"}, {cpu.FlagC, "C"},
	}

	parts := make([]string, 0, len(names))
	for _, n := range names {
		if c.GetFlag(n.flag) {
			parts = append(parts, n.name)
		} else {
			parts = append(parts, strings.ToLower(n.name))
		}
	}
	return strings.Join(parts, " ")
}

// disassemblyAround returns up to before lines preceding pc, the line at
// pc and up to after lines following it
func (app *Application) disassemblyAround(pc uint16, before, after int) []string {
	i := sort.Search(len(app.disasmAddrs), func(i int) bool { return app.disasmAddrs[i] >= pc })
	if i == len(app.disasmAddrs) || app.disasmAddrs[i] != pc {
		// PC is off the precomputed instruction stream, e.g. running from RAM
		lines := app.bus.CPU.Disassemble(pc, pc+uint16(3*after))
		out := make([]string, 0, len(lines))
		for _, addr := range cpu.SortedAddresses(lines) {
			out = append(out, lines[addr])
		}
		return markCurrent(out, 0)
	}

	lo := i - before
	if lo < 0 {
		lo = 0
	}
	hi := i + after + 1
	if hi > len(app.disasmAddrs) {
		hi = len(app.disasmAddrs)
	}

	out := make([]string, 0, hi-lo)
	for _, addr := range app.disasmAddrs[lo:hi] {
		out = append(out, app.disassembly[addr])
	}
	return markCurrent(out, i-lo)
}

func markCurrent(lines []string, current int) []string {
	for i := range lines {
		if i == current {
			lines[i] = "> " + lines[i]
		} else {
			lines[i] = "  " + lines[i]
		}
	}
	return lines
}

// Stop ends the main loop
func (app *Application) Stop() {
	app.running.Store(false)
}

// Pause stops free running; stepping stays available
func (app *Application) Pause() {
	app.emulator.SetMode(ModePaused)
	if app.player != nil {
		app.player.Pause()
	}
}

// Resume continues free running
func (app *Application) Resume() {
	app.emulator.SetMode(ModeRunning)
	if app.player != nil {
		app.player.Play()
	}
}

// TogglePause toggles between running and paused
func (app *Application) TogglePause() {
	if app.emulator.IsRunning() {
		app.Pause()
	} else {
		app.Resume()
	}
}

// Reset presses the console's reset button
func (app *Application) Reset() {
	app.emulator.Reset()
	app.controllers = [2]uint8{}
	log.Printf("[APP] System reset")
}

// IsRunning returns whether the main loop is active
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// IsPaused returns whether free running is suspended
func (app *Application) IsPaused() bool {
	return !app.emulator.IsRunning()
}

// GetFPS returns presented frames per second since Run started
func (app *Application) GetFPS() float64 {
	uptime := app.GetUptime().Seconds()
	if uptime == 0 {
		return 0
	}
	return float64(app.frameCount) / uptime
}

// GetFrameCount returns the number of presented frames
func (app *Application) GetFrameCount() uint64 {
	return app.frameCount
}

// GetUptime returns the time since Run started
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROMPath returns the loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetBus returns the bus for direct access
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetEmulator returns the emulator driving the bus
func (app *Application) GetEmulator() *Emulator {
	return app.emulator
}

// GetWindow returns the rendering target
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// ApplyDebugSettings applies debug configuration to the core
func (app *Application) ApplyDebugSettings() {
	app.bus.EnableInputDebug(app.config.Debug.EnableLogging)
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	var errs []error

	if app.player != nil {
		errs = append(errs, app.player.Close())
		app.player = nil
	}

	if app.recorder != nil {
		errs = append(errs, app.recorder.Close())
		app.recorder = nil
	}

	if app.traceFile != nil {
		app.bus.CPU.SetTrace(nil)
		errs = append(errs, app.traceWriter.Flush(), app.traceFile.Close())
		app.traceFile = nil
	}

	if app.window != nil {
		errs = append(errs, app.window.Cleanup())
	}

	if app.graphicsBackend != nil {
		errs = append(errs, app.graphicsBackend.Cleanup())
	}

	app.initialized = false
	return errors.Join(errs...)
}
