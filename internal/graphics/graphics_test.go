package graphics

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(c color.RGBA) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, NESWidth, NESHeight))
	for y := 0; y < NESHeight; y++ {
		for x := 0; x < NESWidth; x++ {
			frame.SetRGBA(x, y, c)
		}
	}
	return frame
}

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		backendType BackendType
		name        string
		headless    bool
	}{
		{BackendHeadless, "Headless", true},
		{BackendEbitengine, "Ebitengine", false},
		{"unknown", "Ebitengine", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.backendType), func(t *testing.T) {
			backend, err := CreateBackend(tt.backendType)
			require.NoError(t, err)
			assert.Equal(t, tt.name, backend.GetName())
			assert.Equal(t, tt.headless, backend.IsHeadless())
		})
	}
}

func TestEbitengineBackend_Initialize(t *testing.T) {
	backend := NewEbitengineBackend()

	_, err := backend.CreateWindow("test", 512, 480)
	assert.Error(t, err, "window before Initialize")

	require.NoError(t, backend.Initialize(Config{Headless: true}))
	assert.Error(t, backend.Initialize(Config{}), "second Initialize")

	_, err = backend.CreateWindow("test", 512, 480)
	assert.Error(t, err, "window in headless mode")

	require.NoError(t, backend.Cleanup())
	assert.NoError(t, backend.Initialize(Config{}))
}

func TestHeadlessBackend_Lifecycle(t *testing.T) {
	backend := NewHeadlessBackend()

	_, err := backend.CreateWindow("test", 256, 240)
	assert.Error(t, err)

	require.NoError(t, backend.Initialize(Config{}))
	window, err := backend.CreateWindow("test", 256, 240)
	require.NoError(t, err)

	w, h := window.GetSize()
	assert.Equal(t, 256, w)
	assert.Equal(t, 240, h)
	assert.False(t, window.ShouldClose())
	assert.Empty(t, window.PollEvents())

	require.NoError(t, window.Cleanup())
	assert.True(t, window.ShouldClose())
}

func TestHeadlessWindow_RenderFrame(t *testing.T) {
	backend := NewHeadlessBackend()
	require.NoError(t, backend.Initialize(Config{}))
	window, err := backend.CreateWindow("test", 256, 240)
	require.NoError(t, err)

	hw, ok := AsHeadlessWindow(window)
	require.True(t, ok)

	assert.Error(t, window.RenderFrame(nil))
	assert.Error(t, window.RenderFrame(image.NewRGBA(image.Rect(0, 0, 16, 16))))
	assert.Equal(t, 0, hw.GetFrameCount())

	red := color.RGBA{R: 255, A: 255}
	require.NoError(t, window.RenderFrame(testFrame(red)))
	assert.Equal(t, 1, hw.GetFrameCount())
	assert.Equal(t, red, hw.LastFrame().RGBAAt(100, 100))

	_, isEbiten := AsEbitengineWindow(window)
	assert.False(t, isEbiten)
}

func TestHeadlessWindow_Screenshots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")

	backend := NewHeadlessBackend()
	require.NoError(t, backend.Initialize(Config{ScreenshotDir: dir, ScreenshotEvery: 2}))
	window, err := backend.CreateWindow("test", 256, 240)
	require.NoError(t, err)

	blue := color.RGBA{B: 200, A: 255}
	for i := 0; i < 3; i++ {
		require.NoError(t, window.RenderFrame(testFrame(blue)))
	}

	assert.FileExists(t, filepath.Join(dir, "frame_00002.png"))
	assert.NoFileExists(t, filepath.Join(dir, "frame_00001.png"))
	assert.NoFileExists(t, filepath.Join(dir, "frame_00003.png"))

	// The final frame is written on cleanup
	require.NoError(t, window.Cleanup())
	path := filepath.Join(dir, "frame_00003.png")
	require.FileExists(t, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, NESWidth, NESHeight), img.Bounds())

	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(200), b>>8)
}

func TestHeadlessWindow_CleanupWithoutFrames(t *testing.T) {
	dir := t.TempDir()

	backend := NewHeadlessBackend()
	require.NoError(t, backend.Initialize(Config{ScreenshotDir: dir}))
	window, err := backend.CreateWindow("test", 256, 240)
	require.NoError(t, err)

	require.NoError(t, window.Cleanup())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultKeyBindings(t *testing.T) {
	bindings := DefaultKeyBindings()
	tests := []struct {
		key    Key
		button Button
	}{
		{KeyUp, ButtonUp},
		{KeyDown, ButtonDown},
		{KeyLeft, ButtonLeft},
		{KeyRight, ButtonRight},
		{KeyX, ButtonA},
		{KeyZ, ButtonB},
		{KeyA, ButtonSelect},
		{KeyS, ButtonStart},
		{Key1, Button2Up},
		{Key5, Button2A},
		{Key8, Button2Select},
	}

	for _, tt := range tests {
		button, ok := bindings.ButtonForKey(tt.key)
		if !ok || button != tt.button {
			t.Errorf("ButtonForKey(%v) = %d, %v; want %d", tt.key, button, ok, tt.button)
		}
	}

	for key := range bindings {
		if IsControlKey(key) {
			t.Errorf("control key %v is bound to a button", key)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		key  Key
	}{
		{"Up", KeyUp},
		{"right", KeyRight},
		{"x", KeyX},
		{"J", KeyJ},
		{"0", Key0},
		{"9", Key9},
		{" Enter ", KeyEnter},
		{"SHIFT", KeyShift},
	}
	for _, tt := range tests {
		key, ok := ParseKey(tt.name)
		assert.True(t, ok, tt.name)
		assert.Equal(t, tt.key, key, tt.name)
	}

	for _, name := range []string{"", "F1", "Ctrl", "?"} {
		_, ok := ParseKey(name)
		assert.False(t, ok, "%q", name)
	}

	for key := KeyEscape; key <= Key9; key++ {
		parsed, ok := ParseKey(key.String())
		assert.True(t, ok, key.String())
		assert.Equal(t, key, parsed)
	}
	assert.Equal(t, "Unknown", KeyUnknown.String())
}

func TestKeyBindingsTranslate(t *testing.T) {
	bindings := KeyBindings{KeyJ: ButtonA, KeyLeft: ButtonLeft}
	events := bindings.translate([]InputEvent{
		{Type: InputEventTypeKey, Key: KeyJ, Pressed: true},
		{Type: InputEventTypeKey, Key: KeySpace, Pressed: true},
		{Type: InputEventTypeKey, Key: KeyLeft, Pressed: false},
		{Type: InputEventTypeKey, Key: KeyX, Pressed: true},
	})

	require.Len(t, events, 4)
	assert.Equal(t, InputEvent{Type: InputEventTypeButton, Button: ButtonA, Pressed: true}, events[0])
	assert.Equal(t, InputEvent{Type: InputEventTypeKey, Key: KeySpace, Pressed: true}, events[1])
	assert.Equal(t, InputEvent{Type: InputEventTypeButton, Button: ButtonLeft, Pressed: false}, events[2])
	assert.Equal(t, InputEvent{Type: InputEventTypeKey, Key: KeyX, Pressed: true}, events[3], "unbound keys pass through")
}

func TestFitFrame(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		scale, ox, oy float64
	}{
		{"exact 2x", 512, 480, 2, 0, 0},
		{"wide window", 1024, 480, 2, 256, 0},
		{"tall window", 256, 480, 1, 0, 120},
		{"degenerate", 0, 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, ox, oy := fitFrame(tt.width, tt.height)
			assert.InDelta(t, tt.scale, scale, 1e-9)
			assert.InDelta(t, tt.ox, ox, 1e-9)
			assert.InDelta(t, tt.oy, oy, 1e-9)
		})
	}
}

func TestVideoProcessor_Identity(t *testing.T) {
	vp := NewVideoProcessor(1.0, 1.0, 1.0)
	frame := testFrame(color.RGBA{R: 10, G: 20, B: 30, A: 255})

	assert.True(t, vp.IsIdentity())
	assert.Same(t, frame, vp.ProcessFrame(frame))
}

func TestVideoProcessor_Adjustments(t *testing.T) {
	frame := testFrame(color.RGBA{R: 200, G: 100, B: 50, A: 255})

	t.Run("zero brightness", func(t *testing.T) {
		vp := NewVideoProcessor(0.0, 1.0, 1.0)
		out := vp.ProcessFrame(frame)
		assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(5, 5))
	})

	t.Run("zero saturation is grey", func(t *testing.T) {
		vp := NewVideoProcessor(1.0, 1.0, 0.0)
		c := vp.ProcessFrame(frame).RGBAAt(5, 5)
		assert.InDelta(t, int(c.R), int(c.G), 1)
		assert.InDelta(t, int(c.G), int(c.B), 1)
	})

	t.Run("brightness clamps", func(t *testing.T) {
		vp := NewVideoProcessor(2.0, 1.0, 1.0)
		c := vp.ProcessFrame(frame).RGBAAt(0, 0)
		assert.Equal(t, uint8(255), c.R)
		assert.InDelta(t, 200, int(c.G), 1)
		assert.InDelta(t, 100, int(c.B), 1)
	})

	t.Run("source is untouched", func(t *testing.T) {
		vp := NewVideoProcessor(0.5, 1.0, 1.0)
		vp.ProcessFrame(frame)
		assert.Equal(t, uint8(200), frame.RGBAAt(0, 0).R)
	})
}

func TestHSLRoundTrip(t *testing.T) {
	colors := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0.5, 0.5, 0.5}, {0.2, 0.4, 0.8}}
	for _, c := range colors {
		h, s, l := rgbToHSL(c[0], c[1], c[2])
		r, g, b := hslToRGB(h, s, l)
		assert.InDelta(t, c[0], r, 1e-9)
		assert.InDelta(t, c[1], g, 1e-9)
		assert.InDelta(t, c[2], b, 1e-9)
	}
}
