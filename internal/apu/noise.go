package apu

// NoiseChannel represents the noise channel
type NoiseChannel struct {
	envelope envelope
	length   lengthCounter

	mode   bool // short mode: feedback from bit 6 instead of bit 1
	period uint16
	timer  uint16

	shiftRegister uint16 // 15-bit LFSR, never zero
}

// writeControl handles $400C
func (n *NoiseChannel) writeControl(value uint8) {
	n.envelope.write(value)
	n.length.halt = n.envelope.loop
}

// writePeriod handles $400E
func (n *NoiseChannel) writePeriod(value uint8) {
	n.mode = value&0x80 != 0
	n.period = noisePeriodTable[value&0x0F]
}

// writeLength handles $400F
func (n *NoiseChannel) writeLength(value uint8) {
	n.length.load(value)
	n.envelope.start = true
}

// clockTimer runs every CPU cycle
func (n *NoiseChannel) clockTimer() {
	if n.timer > 0 {
		n.timer--
		return
	}
	n.timer = n.period

	tap := uint16(1)
	if n.mode {
		tap = 6
	}
	feedback := (n.shiftRegister ^ n.shiftRegister>>tap) & 0x01
	n.shiftRegister = n.shiftRegister>>1 | feedback<<14
}

func (n *NoiseChannel) output() uint8 {
	if !n.length.active() || n.shiftRegister&0x01 != 0 {
		return 0
	}
	return n.envelope.output()
}
