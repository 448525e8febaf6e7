// Package app wires the emulator core to the host: configuration, window,
// audio output and the run loop.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nesemu/internal/graphics"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	VSync      bool    `json:"vsync"`
	Filter     string  `json:"filter"`  // "nearest", "linear"
	Backend    string  `json:"backend"` // "ebitengine", "headless"
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`

	// Headless mode writes a PNG every N frames (0 = final frame only)
	ScreenshotEvery int `json:"screenshot_every"`
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Volume     float64 `json:"volume"`
	BufferMS   int     `json:"buffer_ms"`   // Player buffer length
	RecordPath string  `json:"record_path"` // WAV file; empty disables recording
}

// InputConfig holds the keyboard layout of both controllers, by key name
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// KeyMapping represents keyboard key names for one NES controller
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// bindings pairs each key name with the controller button it drives
func (m KeyMapping) bindings(player int) []keyBinding {
	buttons := [8]graphics.Button{
		graphics.ButtonUp, graphics.ButtonDown, graphics.ButtonLeft, graphics.ButtonRight,
		graphics.ButtonA, graphics.ButtonB, graphics.ButtonStart, graphics.ButtonSelect,
	}
	if player == 2 {
		buttons = [8]graphics.Button{
			graphics.Button2Up, graphics.Button2Down, graphics.Button2Left, graphics.Button2Right,
			graphics.Button2A, graphics.Button2B, graphics.Button2Start, graphics.Button2Select,
		}
	}
	names := [8]string{m.Up, m.Down, m.Left, m.Right, m.A, m.B, m.Start, m.Select}
	fields := [8]string{"up", "down", "left", "right", "a", "b", "start", "select"}

	out := make([]keyBinding, len(names))
	for i := range names {
		out[i] = keyBinding{
			field:  fmt.Sprintf("input.player%d_keys.%s", player, fields[i]),
			name:   names[i],
			button: buttons[i],
		}
	}
	return out
}

type keyBinding struct {
	field  string
	name   string
	button graphics.Button
}

// KeyBindings resolves both key mappings. Every button needs a known key
// that is not reserved for emulator control, and no key may drive two
// buttons.
func (c InputConfig) KeyBindings() (graphics.KeyBindings, error) {
	bindings := make(graphics.KeyBindings)
	all := append(c.Player1Keys.bindings(1), c.Player2Keys.bindings(2)...)
	for _, b := range all {
		key, ok := graphics.ParseKey(b.name)
		if !ok {
			return nil, &ConfigError{Field: b.field, Value: b.name, Err: errors.New("unknown key")}
		}
		if graphics.IsControlKey(key) {
			return nil, &ConfigError{Field: b.field, Value: b.name, Err: errors.New("key is reserved for emulator control")}
		}
		if _, taken := bindings[key]; taken {
			return nil, &ConfigError{Field: b.field, Value: b.name, Err: errors.New("key already bound")}
		}
		bindings[key] = b.button
	}
	return bindings, nil
}

// Describe renders the layout of one player for help output, e.g.
// "Up/Down/Left/Right - D-Pad, X - A, Z - B, S - Start, A - Select"
func (m KeyMapping) Describe() string {
	return fmt.Sprintf("%s/%s/%s/%s - D-Pad, %s - A, %s - B, %s - Start, %s - Select",
		m.Up, m.Down, m.Left, m.Right, m.A, m.B, m.Start, m.Select)
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	FrameRate   float64 `json:"frame_rate"`   // Target frame rate when free running
	StartPaused bool    `json:"start_paused"` // Begin in paused mode for stepping
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	ShowDebugPanel bool   `json:"show_debug_panel"`
	EnableLogging  bool   `json:"enable_logging"`
	TracePath      string `json:"trace_path"` // CPU trace file; empty disables tracing
	Palette        int    `json:"palette"`    // Palette used for the pattern table view
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs        string `json:"roms"`
	Screenshots string `json:"screenshots"` // Headless PNG output; empty disables
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Fullscreen: false,
			Scale:      2, // 512x480 (256x240 * 2)
		},
		Video: VideoConfig{
			VSync:      true,
			Filter:     "nearest",
			Backend:    "ebitengine",
			Brightness: 1.0,
			Contrast:   1.0,
			Saturation: 1.0,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.5,
			BufferMS:   50,
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up:     "Up",
				Down:   "Down",
				Left:   "Left",
				Right:  "Right",
				A:      "X",
				B:      "Z",
				Start:  "S",
				Select: "A",
			},
			Player2Keys: KeyMapping{
				Up:     "1",
				Down:   "2",
				Left:   "3",
				Right:  "4",
				A:      "5",
				B:      "6",
				Start:  "7",
				Select: "8",
			},
		},
		Emulation: EmulationConfig{
			FrameRate: 60.0,
		},
		Paths: PathsConfig{
			ROMs: "./roms",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate rejects unusable values and clamps the rest to defaults
func (c *Config) validate() error {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	switch c.Video.Backend {
	case "", "ebitengine", "headless":
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: errors.New("unknown backend")}
	}

	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}
	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}
	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}

	if c.Video.ScreenshotEvery < 0 {
		c.Video.ScreenshotEvery = 0
	}

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return &ConfigError{Field: "audio.sample_rate", Value: c.Audio.SampleRate, Err: errors.New("out of range")}
	}
	if c.Audio.Volume < 0.0 || c.Audio.Volume > 1.0 {
		c.Audio.Volume = 0.5
	}
	if c.Audio.BufferMS <= 0 {
		c.Audio.BufferMS = 50
	}

	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 60.0
	}

	c.Debug.Palette &= 0x07

	if _, err := c.Input.KeyBindings(); err != nil {
		return err
	}

	return nil
}

// GetNESResolution returns the native NES resolution
func (c *Config) GetNESResolution() (int, int) {
	return 256, 240
}

// GetWindowResolution returns the window resolution based on scale. The
// debug panel widens the window when it starts visible.
func (c *Config) GetWindowResolution() (int, int) {
	nesWidth, nesHeight := c.GetNESResolution()
	width, height := nesWidth*c.Window.Scale, nesHeight*c.Window.Scale
	if c.Debug.ShowDebugPanel {
		width += debugPanelWidth
	}
	return width, height
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// UpdateAudio updates audio configuration
func (c *Config) UpdateAudio(enabled bool, volume float64, sampleRate int) {
	c.Audio.Enabled = enabled
	c.Audio.Volume = volume
	c.Audio.SampleRate = sampleRate
}

// UpdateDebug updates debug configuration
func (c *Config) UpdateDebug(showPanel, enableLogging bool, tracePath string) {
	c.Debug.ShowDebugPanel = showPanel
	c.Debug.EnableLogging = enableLogging
	c.Debug.TracePath = tracePath
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nesemu.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
