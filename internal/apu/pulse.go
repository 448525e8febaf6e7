package apu

// PulseChannel represents a pulse wave channel
type PulseChannel struct {
	// onesComplement selects pulse 1's sweep negate behaviour
	onesComplement bool

	duty         uint8 // 0-3 (12.5%, 25%, 50%, 75%)
	sequencerPos uint8 // position in the 8-step duty sequence

	period uint16 // 11-bit timer period
	timer  uint16

	envelope envelope
	length   lengthCounter

	// Sweep unit
	sweepEnable  bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepDivider uint8
}

// writeControl handles $4000/$4004
func (p *PulseChannel) writeControl(value uint8) {
	p.duty = value >> 6
	p.envelope.write(value)
	p.length.halt = p.envelope.loop
}

// writeSweep handles $4001/$4005
func (p *PulseChannel) writeSweep(value uint8) {
	p.sweepEnable = value&0x80 != 0
	p.sweepPeriod = (value >> 4) & 0x07
	p.sweepNegate = value&0x08 != 0
	p.sweepShift = value & 0x07
	p.sweepReload = true
}

// writeTimerLow handles $4002/$4006
func (p *PulseChannel) writeTimerLow(value uint8) {
	p.period = p.period&0xFF00 | uint16(value)
}

// writeTimerHigh handles $4003/$4007; it also restarts the envelope and
// the duty sequence
func (p *PulseChannel) writeTimerHigh(value uint8) {
	p.period = p.period&0x00FF | uint16(value&0x07)<<8
	p.length.load(value)
	p.envelope.start = true
	p.sequencerPos = 0
}

// clockTimer runs once per APU cycle (every second CPU cycle)
func (p *PulseChannel) clockTimer() {
	if p.timer == 0 {
		p.timer = p.period
		p.sequencerPos = (p.sequencerPos + 1) & 0x07
	} else {
		p.timer--
	}
}

// sweepTarget computes the period the sweep unit is heading towards
func (p *PulseChannel) sweepTarget() uint16 {
	change := p.period >> p.sweepShift
	if !p.sweepNegate {
		return p.period + change
	}
	if p.onesComplement {
		change++
	}
	if change > p.period {
		return 0
	}
	return p.period - change
}

// muted reports the sweep unit's silencing conditions, which apply even
// when the sweep is disabled
func (p *PulseChannel) muted() bool {
	return p.period < 8 || p.sweepTarget() > 0x7FF
}

// clockSweep runs on half-frame ticks
func (p *PulseChannel) clockSweep() {
	if p.sweepDivider == 0 && p.sweepEnable && p.sweepShift > 0 && !p.muted() {
		p.period = p.sweepTarget()
	}

	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *PulseChannel) output() uint8 {
	if !p.length.active() || p.muted() {
		return 0
	}
	if dutyTable[p.duty][p.sequencerPos] == 0 {
		return 0
	}
	return p.envelope.output()
}
