package graphics

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// Frames are kept in memory and optionally written out as PNG files.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int

	screenshotDir   string
	screenshotEvery int
	lastFrame       *image.RGBA
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.ScreenshotDir != "" {
		if err := os.MkdirAll(b.config.ScreenshotDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	return &HeadlessWindow{
		title:           title,
		width:           width,
		height:          height,
		running:         true,
		screenshotDir:   b.config.ScreenshotDir,
		screenshotEvery: b.config.ScreenshotEvery,
		lastFrame:       image.NewRGBA(image.Rect(0, 0, NESWidth, NESHeight)),
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame stores the frame and writes a screenshot when one is due
func (w *HeadlessWindow) RenderFrame(frame *image.RGBA) error {
	if frame == nil || frame.Rect.Dx() != NESWidth || frame.Rect.Dy() != NESHeight {
		return fmt.Errorf("frame must be %dx%d", NESWidth, NESHeight)
	}

	copy(w.lastFrame.Pix, frame.Pix)
	w.frameCount++

	if w.screenshotDir != "" && w.screenshotEvery > 0 && w.frameCount%w.screenshotEvery == 0 {
		return w.SaveScreenshot(w.screenshotPath(w.frameCount))
	}
	return nil
}

func (w *HeadlessWindow) screenshotPath(frame int) string {
	return filepath.Join(w.screenshotDir, fmt.Sprintf("frame_%05d.png", frame))
}

// SaveScreenshot writes the last rendered frame to path as PNG
func (w *HeadlessWindow) SaveScreenshot(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, w.lastFrame); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// LastFrame returns the most recently rendered frame
func (w *HeadlessWindow) LastFrame() *image.RGBA {
	return w.lastFrame
}

// Cleanup saves the final frame when screenshots are enabled
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	if w.screenshotDir == "" || w.frameCount == 0 {
		return nil
	}
	path := w.screenshotPath(w.frameCount)
	if err := w.SaveScreenshot(path); err != nil {
		return err
	}
	log.Printf("[APP] Final frame saved to %s", path)
	return nil
}

// GetFrameCount returns the current frame count
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}
