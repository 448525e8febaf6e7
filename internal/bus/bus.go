// Package bus implements the system bus for communication between NES components.
package bus

import (
	"errors"
	"fmt"
	"log"

	"nesemu/internal/apu"
	"nesemu/internal/cartridge"
	"nesemu/internal/cpu"
	"nesemu/internal/input"
	"nesemu/internal/memory"
	"nesemu/internal/ppu"
)

// SystemClockRate is the NTSC master rate the bus is ticked at, in Hz
const SystemClockRate = 5369318.0

// DefaultSampleRate is used until the host calls SetSampleFrequency
const DefaultSampleRate = 44100

// ErrInvalidCartridge is returned when a cartridge failed to load
var ErrInvalidCartridge = errors.New("invalid cartridge")

// Bus connects all NES components together
type Bus struct {
	// Core components
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Input *input.InputState

	ram  memory.RAM
	cart *cartridge.Cartridge

	systemClockCounter uint64

	// OAM DMA state
	dmaPage     uint8
	dmaAddr     uint8
	dmaData     uint8
	dmaDummy    bool
	dmaTransfer bool

	// Audio resampling
	audioSample              float64
	audioTime                float64
	audioTimePerSample       float64
	audioTimePerSystemSample float64
}

// New creates a new system bus with all components
func New() *Bus {
	b := &Bus{
		PPU:      ppu.New(),
		APU:      apu.New(),
		Input:    input.NewInputState(),
		dmaDummy: true,
	}
	b.CPU = cpu.New(b)
	b.SetSampleFrequency(DefaultSampleRate)

	// Reset all components to proper initial state
	b.Reset()

	return b
}

// InsertCartridge connects a cartridge to the CPU and PPU address spaces
func (b *Bus) InsertCartridge(cart *cartridge.Cartridge) error {
	if !cart.IsValid() {
		return fmt.Errorf("insert cartridge: %w", ErrInvalidCartridge)
	}
	b.cart = cart
	b.PPU.ConnectCartridge(cart)
	log.Printf("[BUS] Cartridge inserted: %s", cart)
	return nil
}

// Cartridge returns the inserted cartridge, or nil
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}

// Reset resets all components to their initial state. Work RAM keeps its
// contents.
func (b *Bus) Reset() {
	if b.cart != nil {
		b.cart.Reset()
	}
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.systemClockCounter = 0

	b.dmaPage = 0
	b.dmaAddr = 0
	b.dmaData = 0
	b.dmaDummy = true
	b.dmaTransfer = false

	b.audioSample = 0
	b.audioTime = 0
}

// Clock advances the system by one PPU dot. The CPU (or an active DMA)
// runs on every third call. It returns true when a new audio sample is
// ready in AudioSample.
func (b *Bus) Clock() bool {
	b.PPU.Clock()
	b.APU.Clock()

	if b.systemClockCounter%3 == 0 {
		if b.dmaTransfer {
			b.clockDMA()
		} else {
			b.CPU.Clock()
		}
	}

	sampleReady := false
	b.audioTime += b.audioTimePerSystemSample
	if b.audioTime >= b.audioTimePerSample {
		b.audioTime -= b.audioTimePerSample
		b.audioSample = b.APU.GetOutputSample()
		sampleReady = true
	}

	if b.PPU.NMI() {
		b.CPU.TriggerNMI()
	}

	if b.cart != nil {
		if m := b.cart.Mapper(); m.IRQState() {
			m.IRQClear()
			b.CPU.TriggerIRQ()
		}
	}

	// The frame counter holds its line until $4015 is read
	if b.APU.IRQ() {
		b.CPU.TriggerIRQ()
	}

	b.systemClockCounter++
	return sampleReady
}

// clockDMA runs one CPU slot of an OAM transfer. The transfer idles until
// an even slot has passed, then reads on odd slots and writes on even ones.
func (b *Bus) clockDMA() {
	slot := b.systemClockCounter / 3

	if b.dmaDummy {
		if slot%2 == 0 {
			b.dmaDummy = false
		}
		return
	}

	if slot%2 == 1 {
		b.dmaData = b.CPURead(uint16(b.dmaPage)<<8|uint16(b.dmaAddr), false)
		return
	}

	b.PPU.WriteOAM(b.dmaAddr, b.dmaData)
	b.dmaAddr++
	if b.dmaAddr == 0 {
		b.dmaTransfer = false
		b.dmaDummy = true
	}
}

// DMAActive reports whether an OAM transfer is suspending the CPU
func (b *Bus) DMAActive() bool {
	return b.dmaTransfer
}

// CPURead reads from the CPU address space. The cartridge sees every
// access first.
func (b *Bus) CPURead(addr uint16, readOnly bool) uint8 {
	if b.cart != nil {
		if data, ok := b.cart.CPURead(addr); ok {
			return data
		}
	}

	switch {
	case addr <= 0x1FFF:
		return b.ram.Read(addr)
	case addr <= 0x3FFF:
		return b.PPU.CPURead(uint8(addr&0x0007), readOnly)
	case addr == 0x4015:
		if readOnly {
			return b.APU.Status()
		}
		return b.APU.CPURead(addr)
	case addr == 0x4016 || addr == 0x4017:
		return b.Input.Read(addr, readOnly)
	}
	return 0x00
}

// CPUWrite writes to the CPU address space
func (b *Bus) CPUWrite(addr uint16, data uint8) {
	if b.cart != nil && b.cart.CPUWrite(addr, data) {
		return
	}

	switch {
	case addr <= 0x1FFF:
		b.ram.Write(addr, data)
	case addr <= 0x3FFF:
		b.PPU.CPUWrite(uint8(addr&0x0007), data)
	case addr <= 0x4013 || addr == 0x4015 || addr == 0x4017:
		b.APU.CPUWrite(addr, data)
	case addr == 0x4014:
		b.dmaPage = data
		b.dmaAddr = 0x00
		b.dmaTransfer = true
	case addr == 0x4016:
		b.Input.Write(addr, data)
	}
}

// SetSampleFrequency sets the host audio rate that Clock resamples to
func (b *Bus) SetSampleFrequency(rate int) {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	b.audioTimePerSample = 1.0 / float64(rate)
	b.audioTimePerSystemSample = 1.0 / SystemClockRate
}

// AudioSample returns the last sample produced by Clock
func (b *Bus) AudioSample() float64 {
	return b.audioSample
}

// SetControllerState replaces the live buttons of port 0 or 1
func (b *Bus) SetControllerState(port int, state uint8) {
	b.Input.Port(port).SetButtons(state)
}

// SetControllerButton sets the state of a single controller button
func (b *Bus) SetControllerButton(port int, button input.Button, pressed bool) {
	b.Input.Port(port).SetButton(button, pressed)
}

// EnableInputDebug enables debug logging for input system
func (b *Bus) EnableInputDebug(enable bool) {
	b.Input.EnableDebug(enable)
}

// SystemClockCounter returns the number of Clock calls since reset
func (b *Bus) SystemClockCounter() uint64 {
	return b.systemClockCounter
}

// FrameCount returns the number of frames the PPU has completed
func (b *Bus) FrameCount() uint64 {
	return b.PPU.FrameCount()
}

// StepInstruction finishes the current instruction and runs the next one
func (b *Bus) StepInstruction() {
	for {
		b.Clock()
		if b.CPU.Complete() {
			break
		}
	}
	for {
		b.Clock()
		if !b.CPU.Complete() {
			break
		}
	}
}

// StepFrame runs until the PPU completes a frame, then lets the CPU
// finish its current instruction
func (b *Bus) StepFrame() {
	for !b.PPU.FrameComplete() {
		b.Clock()
	}
	for {
		b.Clock()
		if b.CPU.Complete() {
			break
		}
	}
	b.PPU.ClearFrameComplete()
}
