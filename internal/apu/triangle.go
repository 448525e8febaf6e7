package apu

// TriangleChannel represents the triangle wave channel
type TriangleChannel struct {
	control bool // halts the length counter and holds the linear reload flag

	linearLoad   uint8 // 7-bit reload value
	linear       uint8
	linearReload bool

	period uint16
	timer  uint16

	length lengthCounter

	sequencerPos uint8 // position in the 32-step sequence
}

// writeControl handles $4008
func (t *TriangleChannel) writeControl(value uint8) {
	t.control = value&0x80 != 0
	t.length.halt = t.control
	t.linearLoad = value & 0x7F
}

// writeTimerLow handles $400A
func (t *TriangleChannel) writeTimerLow(value uint8) {
	t.period = t.period&0xFF00 | uint16(value)
}

// writeTimerHigh handles $400B
func (t *TriangleChannel) writeTimerHigh(value uint8) {
	t.period = t.period&0x00FF | uint16(value&0x07)<<8
	t.length.load(value)
	t.linearReload = true
}

// clockTimer runs every CPU cycle. The sequencer only advances while both
// counters are non-zero.
func (t *TriangleChannel) clockTimer() {
	if t.timer == 0 {
		t.timer = t.period
		if t.length.active() && t.linear > 0 {
			t.sequencerPos = (t.sequencerPos + 1) & 0x1F
		}
	} else {
		t.timer--
	}
}

// clockLinear runs on quarter-frame ticks
func (t *TriangleChannel) clockLinear() {
	if t.linearReload {
		t.linear = t.linearLoad
	} else if t.linear > 0 {
		t.linear--
	}
	if !t.control {
		t.linearReload = false
	}
}

func (t *TriangleChannel) output() uint8 {
	// Ultrasonic periods are silenced rather than aliased
	if !t.length.active() || t.linear == 0 || t.period < 2 {
		return 0
	}
	return triangleTable[t.sequencerPos]
}
