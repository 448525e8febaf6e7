package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clocksPerCPUCycle = 3

// runCPUCycles advances the APU by whole CPU cycles
func runCPUCycles(apu *APU, n int) {
	for i := 0; i < n*clocksPerCPUCycle; i++ {
		apu.Clock()
	}
}

func TestAPUReset(t *testing.T) {
	apu := New()

	assert.Equal(t, uint8(0), apu.Status())
	assert.False(t, apu.IRQ())
	assert.Equal(t, 0.0, apu.GetOutputSample())
	assert.Equal(t, uint16(1), apu.noise.shiftRegister)
}

func TestFrameIRQFourStepMode(t *testing.T) {
	apu := New()

	runCPUCycles(apu, stepFourStepEnd-1)
	require.False(t, apu.IRQ(), "IRQ raised early")

	runCPUCycles(apu, 1)
	require.True(t, apu.IRQ())

	status := apu.CPURead(0x4015)
	assert.Equal(t, StatusFrameIRQ, status&StatusFrameIRQ)
	assert.False(t, apu.IRQ(), "status read should acknowledge the IRQ")
}

func TestFrameIRQInhibit(t *testing.T) {
	apu := New()
	runCPUCycles(apu, stepFourStepEnd)
	require.True(t, apu.IRQ())

	apu.CPUWrite(0x4017, 0x40)
	assert.False(t, apu.IRQ(), "setting inhibit clears the flag")

	runCPUCycles(apu, 2*stepFourStepEnd)
	assert.False(t, apu.IRQ())
}

func TestFiveStepModeHasNoIRQ(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4017, 0x80)

	runCPUCycles(apu, 2*stepFiveStepEnd)

	assert.False(t, apu.IRQ())
}

func TestLengthCounterLoadAndStatus(t *testing.T) {
	apu := New()

	// Disabled channels ignore length loads
	apu.CPUWrite(0x4003, 0x08)
	assert.Equal(t, uint8(0), apu.Status()&StatusPulse1)

	apu.CPUWrite(0x4015, 0x0F)
	apu.CPUWrite(0x4003, 0x08)
	apu.CPUWrite(0x4007, 0x08)
	apu.CPUWrite(0x400B, 0x08)
	apu.CPUWrite(0x400F, 0x08)
	assert.Equal(t, StatusPulse1|StatusPulse2|StatusTriangle|StatusNoise, apu.Status())
	assert.Equal(t, uint8(254), apu.pulse1.length.value)

	// Disabling clears the counter
	apu.CPUWrite(0x4015, 0x0E)
	assert.Equal(t, uint8(0), apu.Status()&StatusPulse1)
}

func TestLengthCounterExpires(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4015, 0x01)
	apu.CPUWrite(0x4003, 0x18) // length index 3 -> 2

	runCPUCycles(apu, stepHalf1)
	assert.Equal(t, uint8(1), apu.pulse1.length.value)

	runCPUCycles(apu, stepFourStepEnd-stepHalf1)
	assert.Equal(t, uint8(0), apu.Status()&StatusPulse1)
}

func TestLengthCounterHalt(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4015, 0x01)
	apu.CPUWrite(0x4000, 0x20) // halt
	apu.CPUWrite(0x4003, 0x18)

	runCPUCycles(apu, 2*stepFourStepEnd)

	assert.Equal(t, uint8(2), apu.pulse1.length.value)
}

func TestFiveStepWriteClocksImmediately(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4015, 0x01)
	apu.CPUWrite(0x4003, 0x18)

	apu.CPUWrite(0x4017, 0x80)

	assert.Equal(t, uint8(1), apu.pulse1.length.value)
}

func TestPulseProducesSquareWave(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4015, 0x01)
	apu.CPUWrite(0x4000, 0xBF) // 50% duty, halt, constant volume 15
	apu.CPUWrite(0x4002, 0x40)
	apu.CPUWrite(0x4003, 0x00)

	var high, low int
	for i := 0; i < 4000; i++ {
		runCPUCycles(apu, 1)
		if apu.GetOutputSample() > 0 {
			high++
		} else {
			low++
		}
	}

	assert.Greater(t, high, 1000)
	assert.Greater(t, low, 1000)
}

func TestPulseMutedBelowPeriodEight(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4015, 0x01)
	apu.CPUWrite(0x4000, 0xBF)
	apu.CPUWrite(0x4002, 0x07)
	apu.CPUWrite(0x4003, 0x00)

	for i := 0; i < 200; i++ {
		runCPUCycles(apu, 1)
		require.Equal(t, uint8(0), apu.ChannelOutputs()[0])
	}
}

func TestSweepTargetMutesAndNegates(t *testing.T) {
	p := PulseChannel{period: 0x600}
	p.writeSweep(0x81) // enabled, shift 1
	assert.Equal(t, uint16(0x900), p.sweepTarget())
	assert.True(t, p.muted(), "target above 0x7FF mutes")

	p.writeSweep(0x89) // negate
	assert.Equal(t, uint16(0x300), p.sweepTarget())
	p.onesComplement = true
	assert.Equal(t, uint16(0x2FF), p.sweepTarget())
}

func TestSweepAdjustsPeriod(t *testing.T) {
	p := PulseChannel{period: 0x100}
	p.writeSweep(0x89) // enabled, period 0, negate, shift 1

	p.clockSweep()
	assert.Equal(t, uint16(0x080), p.period)

	p.clockSweep()
	assert.Equal(t, uint16(0x040), p.period)
}

func TestEnvelopeDecay(t *testing.T) {
	var e envelope
	e.write(0x00) // divider period 0, decaying
	e.start = true

	e.clock()
	assert.Equal(t, uint8(15), e.output())
	for i := 0; i < 15; i++ {
		e.clock()
	}
	assert.Equal(t, uint8(0), e.output())

	e.clock()
	assert.Equal(t, uint8(0), e.output(), "non-looping envelope stays at zero")

	e.loop = true
	e.clock()
	assert.Equal(t, uint8(15), e.output())
}

func TestTriangleNeedsLinearCounter(t *testing.T) {
	apu := New()
	apu.CPUWrite(0x4015, 0x04)
	apu.CPUWrite(0x4008, 0x00) // linear reload 0
	apu.CPUWrite(0x400A, 0x40)
	apu.CPUWrite(0x400B, 0x00)

	runCPUCycles(apu, stepHalf1)
	assert.Equal(t, uint8(0), apu.ChannelOutputs()[2])

	apu.CPUWrite(0x4008, 0xFF) // control set, reload 127
	apu.CPUWrite(0x400B, 0x00)
	runCPUCycles(apu, stepFourStepEnd)

	seen := map[uint8]bool{}
	for i := 0; i < 5000; i++ {
		runCPUCycles(apu, 1)
		seen[apu.ChannelOutputs()[2]] = true
	}
	assert.Len(t, seen, 16, "triangle should sweep all 16 levels")
}

func TestNoiseShiftRegisterNeverZero(t *testing.T) {
	for _, mode := range []uint8{0x00, 0x80} {
		n := NoiseChannel{shiftRegister: 1}
		n.writePeriod(mode)
		for i := 0; i < 100000; i++ {
			n.clockTimer()
			require.NotZero(t, n.shiftRegister)
		}
	}
}

func TestMixer(t *testing.T) {
	assert.Equal(t, 0.0, mix(0, 0, 0, 0))
	assert.InDelta(t, 0.2585, mix(15, 15, 0, 0), 0.0005)
	assert.InDelta(t, 0.2464, mix(0, 0, 15, 0), 0.0005)
	assert.InDelta(t, 0.6318, mix(15, 15, 15, 15), 0.001)

	// Monotonic in every input
	assert.Greater(t, mix(1, 0, 0, 0), mix(0, 0, 0, 0))
	assert.Greater(t, mix(0, 0, 0, 1), mix(0, 0, 0, 0))
}

func TestOtherAddressesReadZero(t *testing.T) {
	apu := New()
	runCPUCycles(apu, stepFourStepEnd)

	assert.Equal(t, uint8(0), apu.CPURead(0x4000))
	assert.True(t, apu.IRQ(), "reading other registers must not acknowledge")
}
