// Package apu implements the Audio Processing Unit for the NES.
package apu

// Frame sequencer step positions, in CPU cycles
const (
	stepQuarter1    = 7457
	stepHalf1       = 14913
	stepQuarter3    = 22371
	stepFourStepEnd = 29829
	stepFiveStepEnd = 37281
)

// Status ($4015) bits
const (
	StatusPulse1   uint8 = 0x01
	StatusPulse2   uint8 = 0x02
	StatusTriangle uint8 = 0x04
	StatusNoise    uint8 = 0x08
	StatusFrameIRQ uint8 = 0x40
)

// APU represents the NES Audio Processing Unit
type APU struct {
	pulse1   PulseChannel
	pulse2   PulseChannel
	triangle TriangleChannel
	noise    NoiseChannel

	// Frame sequencer
	frameCounter   uint32 // CPU cycles into the current sequence
	fiveStepMode   bool
	frameIRQEnable bool
	frameIRQFlag   bool

	// clockCounter counts system clocks; three make a CPU cycle and six an
	// APU cycle
	clockCounter uint64
}

// New creates a new APU instance
func New() *APU {
	apu := &APU{}
	apu.Reset()
	return apu
}

// Reset resets the APU to its power-on state
func (apu *APU) Reset() {
	apu.pulse1 = PulseChannel{onesComplement: true}
	apu.pulse2 = PulseChannel{}
	apu.triangle = TriangleChannel{}
	apu.noise = NoiseChannel{shiftRegister: 1, period: noisePeriodTable[0]}

	apu.frameCounter = 0
	apu.fiveStepMode = false
	apu.frameIRQEnable = true
	apu.frameIRQFlag = false
	apu.clockCounter = 0
}

// Clock advances the APU by one system clock
func (apu *APU) Clock() {
	if apu.clockCounter%3 == 0 {
		apu.clockCPUCycle()
	}
	apu.clockCounter++
}

func (apu *APU) clockCPUCycle() {
	apu.clockFrameSequencer()

	apu.triangle.clockTimer()
	apu.noise.clockTimer()
	if apu.clockCounter%6 == 0 {
		apu.pulse1.clockTimer()
		apu.pulse2.clockTimer()
	}
}

// clockFrameSequencer emits quarter and half frame ticks on the 4 or 5
// step schedule
func (apu *APU) clockFrameSequencer() {
	apu.frameCounter++

	switch apu.frameCounter {
	case stepQuarter1, stepQuarter3:
		apu.quarterFrame()
	case stepHalf1:
		apu.quarterFrame()
		apu.halfFrame()
	case stepFourStepEnd:
		if apu.fiveStepMode {
			return
		}
		apu.quarterFrame()
		apu.halfFrame()
		if apu.frameIRQEnable {
			apu.frameIRQFlag = true
		}
		apu.frameCounter = 0
	case stepFiveStepEnd:
		apu.quarterFrame()
		apu.halfFrame()
		apu.frameCounter = 0
	}
}

// quarterFrame clocks envelopes and the triangle's linear counter
func (apu *APU) quarterFrame() {
	apu.pulse1.envelope.clock()
	apu.pulse2.envelope.clock()
	apu.noise.envelope.clock()
	apu.triangle.clockLinear()
}

// halfFrame clocks length counters and sweep units
func (apu *APU) halfFrame() {
	apu.pulse1.length.clock()
	apu.pulse1.clockSweep()
	apu.pulse2.length.clock()
	apu.pulse2.clockSweep()
	apu.triangle.length.clock()
	apu.noise.length.clock()
}

// CPUWrite writes to an APU register ($4000-$4013, $4015, $4017)
func (apu *APU) CPUWrite(addr uint16, data uint8) {
	switch addr {
	// Pulse 1
	case 0x4000:
		apu.pulse1.writeControl(data)
	case 0x4001:
		apu.pulse1.writeSweep(data)
	case 0x4002:
		apu.pulse1.writeTimerLow(data)
	case 0x4003:
		apu.pulse1.writeTimerHigh(data)

	// Pulse 2
	case 0x4004:
		apu.pulse2.writeControl(data)
	case 0x4005:
		apu.pulse2.writeSweep(data)
	case 0x4006:
		apu.pulse2.writeTimerLow(data)
	case 0x4007:
		apu.pulse2.writeTimerHigh(data)

	// Triangle
	case 0x4008:
		apu.triangle.writeControl(data)
	case 0x400A:
		apu.triangle.writeTimerLow(data)
	case 0x400B:
		apu.triangle.writeTimerHigh(data)

	// Noise
	case 0x400C:
		apu.noise.writeControl(data)
	case 0x400E:
		apu.noise.writePeriod(data)
	case 0x400F:
		apu.noise.writeLength(data)

	// 0x4010-0x4013 belong to the DMC, which is not emulated

	case 0x4015:
		apu.pulse1.length.setEnabled(data&StatusPulse1 != 0)
		apu.pulse2.length.setEnabled(data&StatusPulse2 != 0)
		apu.triangle.length.setEnabled(data&StatusTriangle != 0)
		apu.noise.length.setEnabled(data&StatusNoise != 0)

	case 0x4017:
		apu.fiveStepMode = data&0x80 != 0
		apu.frameIRQEnable = data&0x40 == 0
		if !apu.frameIRQEnable {
			apu.frameIRQFlag = false
		}
		apu.frameCounter = 0
		// Five step mode clocks all units immediately
		if apu.fiveStepMode {
			apu.quarterFrame()
			apu.halfFrame()
		}
	}
}

// CPURead reads the status register. Reading clears the frame IRQ flag.
func (apu *APU) CPURead(addr uint16) uint8 {
	if addr != 0x4015 {
		return 0x00
	}

	status := apu.Status()
	apu.frameIRQFlag = false
	return status
}

// Status returns the $4015 value without side effects
func (apu *APU) Status() uint8 {
	var status uint8
	if apu.pulse1.length.active() {
		status |= StatusPulse1
	}
	if apu.pulse2.length.active() {
		status |= StatusPulse2
	}
	if apu.triangle.length.active() {
		status |= StatusTriangle
	}
	if apu.noise.length.active() {
		status |= StatusNoise
	}
	if apu.frameIRQFlag {
		status |= StatusFrameIRQ
	}
	return status
}

// IRQ reports whether the frame sequencer is asserting its interrupt line
func (apu *APU) IRQ() bool {
	return apu.frameIRQFlag
}

// GetOutputSample mixes the current channel outputs into one sample in
// the range [0, 1)
func (apu *APU) GetOutputSample() float64 {
	return mix(apu.pulse1.output(), apu.pulse2.output(), apu.triangle.output(), apu.noise.output())
}

// ChannelOutputs returns the raw 4-bit levels of pulse 1, pulse 2,
// triangle and noise
func (apu *APU) ChannelOutputs() [4]uint8 {
	return [4]uint8{apu.pulse1.output(), apu.pulse2.output(), apu.triangle.output(), apu.noise.output()}
}

// mix applies the NES nonlinear mixer approximation
func mix(pulse1, pulse2, triangle, noise uint8) float64 {
	var pulseOut float64
	if pulseSum := float64(pulse1) + float64(pulse2); pulseSum != 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	var tndOut float64
	if tndSum := float64(triangle)/8227.0 + float64(noise)/12241.0; tndSum != 0 {
		tndOut = 159.79 / (1.0/tndSum + 100.0)
	}

	return pulseOut + tndOut
}
