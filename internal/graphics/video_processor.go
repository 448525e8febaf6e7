package graphics

import (
	"image"
	"math"
)

// VideoProcessor applies brightness, contrast and saturation adjustments
// to NES frames
type VideoProcessor struct {
	brightness float64
	contrast   float64
	saturation float64

	out *image.RGBA
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(brightness, contrast, saturation float64) *VideoProcessor {
	return &VideoProcessor{
		brightness: brightness,
		contrast:   contrast,
		saturation: saturation,
	}
}

// IsIdentity reports whether processing would leave frames unchanged
func (vp *VideoProcessor) IsIdentity() bool {
	return vp.brightness == 1.0 && vp.contrast == 1.0 && vp.saturation == 1.0
}

// ProcessFrame returns frame with the adjustments applied. The result is
// a buffer owned by the processor and is overwritten by the next call;
// when no adjustment is configured frame itself is returned.
func (vp *VideoProcessor) ProcessFrame(frame *image.RGBA) *image.RGBA {
	if vp.IsIdentity() {
		return frame
	}

	if vp.out == nil || vp.out.Rect != frame.Rect {
		vp.out = image.NewRGBA(frame.Rect)
	}

	src, dst := frame.Pix, vp.out.Pix
	for i := 0; i+3 < len(src); i += 4 {
		r := float64(src[i]) * vp.brightness
		g := float64(src[i+1]) * vp.brightness
		b := float64(src[i+2]) * vp.brightness

		r = ((r/255.0-0.5)*vp.contrast + 0.5) * 255.0
		g = ((g/255.0-0.5)*vp.contrast + 0.5) * 255.0
		b = ((b/255.0-0.5)*vp.contrast + 0.5) * 255.0

		if vp.saturation != 1.0 {
			h, s, l := rgbToHSL(clamp(r, 0, 255)/255.0, clamp(g, 0, 255)/255.0, clamp(b, 0, 255)/255.0)
			s = math.Min(s*vp.saturation, 1.0)
			r, g, b = hslToRGB(h, s, l)
			r *= 255.0
			g *= 255.0
			b *= 255.0
		}

		dst[i] = uint8(clamp(r, 0, 255))
		dst[i+1] = uint8(clamp(g, 0, 255))
		dst[i+2] = uint8(clamp(b, 0, 255))
		dst[i+3] = src[i+3]
	}

	return vp.out
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// rgbToHSL converts RGB to HSL color space
func rgbToHSL(r, g, b float64) (h, s, l float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))

	l = (max + min) / 2.0
	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2.0 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

// hslToRGB converts HSL to RGB color space
func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3.0), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3.0)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

// SetBrightness updates the brightness value
func (vp *VideoProcessor) SetBrightness(brightness float64) {
	vp.brightness = brightness
}

// SetContrast updates the contrast value
func (vp *VideoProcessor) SetContrast(contrast float64) {
	vp.contrast = contrast
}

// SetSaturation updates the saturation value
func (vp *VideoProcessor) SetSaturation(saturation float64) {
	vp.saturation = saturation
}
