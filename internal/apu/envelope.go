package apu

// envelope is the volume unit shared by the pulse and noise channels
type envelope struct {
	loop     bool  // also halts the length counter
	constant bool  // constant volume flag
	volume   uint8 // constant volume, or the divider period
	start    bool
	divider  uint8
	decay    uint8
}

// write loads the control bits common to $4000/$4004/$400C
func (e *envelope) write(value uint8) {
	e.loop = value&0x20 != 0
	e.constant = value&0x10 != 0
	e.volume = value & 0x0F
}

// clock runs on quarter-frame ticks
func (e *envelope) clock() {
	switch {
	case e.start:
		e.start = false
		e.decay = 15
		e.divider = e.volume
	case e.divider == 0:
		e.divider = e.volume
		if e.decay > 0 {
			e.decay--
		} else if e.loop {
			e.decay = 15
		}
	default:
		e.divider--
	}
}

func (e *envelope) output() uint8 {
	if e.constant {
		return e.volume
	}
	return e.decay
}

// lengthCounter silences a channel after a programmed number of
// half-frame ticks
type lengthCounter struct {
	value   uint8
	halt    bool
	enabled bool
}

// load sets the counter from the top five bits of a register write. A
// disabled channel ignores it.
func (l *lengthCounter) load(value uint8) {
	if l.enabled {
		l.value = lengthTable[value>>3]
	}
}

func (l *lengthCounter) setEnabled(enabled bool) {
	l.enabled = enabled
	if !enabled {
		l.value = 0
	}
}

// clock runs on half-frame ticks
func (l *lengthCounter) clock() {
	if !l.halt && l.value > 0 {
		l.value--
	}
}

func (l *lengthCounter) active() bool {
	return l.value > 0
}
