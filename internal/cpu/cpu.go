// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

import "io"

// Flag is one bit of the status register
type Flag uint8

// Status register flags
const (
	FlagC Flag = 1 << iota // Carry
	FlagZ                  // Zero
	FlagI                  // Interrupt disable
	FlagD                  // Decimal mode (not used in NES)
	FlagB                  // Break
	FlagU                  // Unused, reads back as 1
	FlagV                  // Overflow
	FlagN                  // Negative
)

const (
	stackBase   = 0x0100
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Bus is the CPU's view of the system address space. A readOnly read must
// not trigger any register side effects.
type Bus interface {
	CPURead(address uint16, readOnly bool) uint8
	CPUWrite(address uint16, value uint8)
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	// Registers
	A      uint8  // Accumulator
	X      uint8  // X register
	Y      uint8  // Y register
	SP     uint8  // Stack pointer
	PC     uint16 // Program counter
	Status uint8  // Packed Flag bits

	bus Bus

	// Per-instruction working state
	fetched uint8
	addrAbs uint16
	addrRel uint16
	opcode  uint8
	cycles  uint8 // remaining cycles of the current instruction

	clockCount uint64

	// Interrupt requests latched by the bus, serviced at the next
	// instruction boundary
	nmiPending bool
	irqPending bool

	trace io.Writer
}

// New creates a new CPU instance attached to a bus
func New(bus Bus) *CPU {
	return &CPU{
		bus:    bus,
		SP:     0xFD,
		Status: uint8(FlagU),
	}
}

// Reset performs a CPU reset. The program counter is loaded from the reset
// vector and the next 8 clocks are spent before the first fetch.
func (cpu *CPU) Reset() {
	cpu.PC = cpu.read16(resetVector)

	cpu.A = 0x00
	cpu.X = 0x00
	cpu.Y = 0x00
	cpu.SP = 0xFD
	cpu.Status = uint8(FlagU)

	cpu.addrRel = 0x0000
	cpu.addrAbs = 0x0000
	cpu.fetched = 0x00

	cpu.nmiPending = false
	cpu.irqPending = false

	cpu.cycles = 8
}

// Clock advances the CPU by one cycle. Work is done only when the previous
// instruction has used up its cycles; every call then counts one cycle down.
func (cpu *CPU) Clock() {
	if cpu.cycles == 0 {
		switch {
		case cpu.nmiPending:
			cpu.nmiPending = false
			cpu.NMI()
		case cpu.irqPending && !cpu.GetFlag(FlagI):
			cpu.irqPending = false
			cpu.IRQ()
		default:
			// A masked request is dropped, as the line is not held
			cpu.irqPending = false
			cpu.execute()
		}
	}

	cpu.clockCount++
	cpu.cycles--
}

// execute fetches, decodes and runs one instruction
func (cpu *CPU) execute() {
	cpu.opcode = cpu.read(cpu.PC)
	if cpu.trace != nil {
		cpu.traceInstruction(cpu.PC)
	}

	cpu.setFlag(FlagU, true)
	cpu.PC++

	inst := &instructions[cpu.opcode]
	cpu.cycles = inst.Cycles

	// The extra cycle is only paid when both the addressing mode crossed a
	// page and the operation is one that cares
	modeExtra := cpu.resolveAddress(inst.Mode)
	opExtra := cpu.operate(inst)
	cpu.cycles += modeExtra & opExtra

	cpu.setFlag(FlagU, true)
}

// Complete reports whether the current instruction has finished
func (cpu *CPU) Complete() bool {
	return cpu.cycles == 0
}

// Cycles returns the number of clocks executed since creation
func (cpu *CPU) Cycles() uint64 {
	return cpu.clockCount
}

// TriggerNMI latches a non-maskable interrupt request
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// TriggerIRQ latches a maskable interrupt request
func (cpu *CPU) TriggerIRQ() {
	cpu.irqPending = true
}

// IRQ services a maskable interrupt immediately if interrupts are enabled
func (cpu *CPU) IRQ() {
	if cpu.GetFlag(FlagI) {
		return
	}
	cpu.interrupt(irqVector)
	cpu.cycles = 7
}

// NMI services a non-maskable interrupt immediately
func (cpu *CPU) NMI() {
	cpu.interrupt(nmiVector)
	cpu.cycles = 8
}

// interrupt pushes the return state (B clear, U set) and jumps through vector
func (cpu *CPU) interrupt(vector uint16) {
	cpu.push16(cpu.PC)
	cpu.push((cpu.Status &^ uint8(FlagB)) | uint8(FlagU))
	cpu.setFlag(FlagI, true)
	cpu.PC = cpu.read16(vector)
}

// GetFlag returns the state of one status flag
func (cpu *CPU) GetFlag(f Flag) bool {
	return cpu.Status&uint8(f) != 0
}

func (cpu *CPU) setFlag(f Flag, v bool) {
	if v {
		cpu.Status |= uint8(f)
	} else {
		cpu.Status &^= uint8(f)
	}
}

// setZN sets Zero and Negative flags based on value
func (cpu *CPU) setZN(value uint8) {
	cpu.setFlag(FlagZ, value == 0)
	cpu.setFlag(FlagN, value&0x80 != 0)
}

// SetTrace attaches a writer that receives one line per executed
// instruction, or detaches it when w is nil
func (cpu *CPU) SetTrace(w io.Writer) {
	cpu.trace = w
}

func (cpu *CPU) read(address uint16) uint8 {
	return cpu.bus.CPURead(address, false)
}

func (cpu *CPU) peek(address uint16) uint8 {
	return cpu.bus.CPURead(address, true)
}

func (cpu *CPU) write(address uint16, value uint8) {
	cpu.bus.CPUWrite(address, value)
}

func (cpu *CPU) read16(address uint16) uint16 {
	lo := uint16(cpu.read(address))
	hi := uint16(cpu.read(address + 1))
	return hi<<8 | lo
}

// Stack operations; SP wraps within page one
func (cpu *CPU) push(value uint8) {
	cpu.write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) push16(value uint16) {
	cpu.push(uint8(value >> 8)) // High byte first
	cpu.push(uint8(value))
}

func (cpu *CPU) pop16() uint16 {
	lo := uint16(cpu.pop())
	hi := uint16(cpu.pop())
	return hi<<8 | lo
}

// resolveAddress runs the addressing mode, leaving the effective address in
// addrAbs (or the branch offset in addrRel). It returns 1 when an indexed
// access crossed a page boundary.
func (cpu *CPU) resolveAddress(mode AddressingMode) uint8 {
	switch mode {
	case Implied:
		cpu.fetched = cpu.A
		return 0

	case Immediate:
		cpu.addrAbs = cpu.PC
		cpu.PC++
		return 0

	case ZeroPage:
		cpu.addrAbs = uint16(cpu.read(cpu.PC))
		cpu.PC++
		return 0

	case ZeroPageX:
		cpu.addrAbs = uint16(cpu.read(cpu.PC) + cpu.X) // wraps within zero page
		cpu.PC++
		return 0

	case ZeroPageY:
		cpu.addrAbs = uint16(cpu.read(cpu.PC) + cpu.Y)
		cpu.PC++
		return 0

	case Relative:
		cpu.addrRel = uint16(cpu.read(cpu.PC))
		cpu.PC++
		if cpu.addrRel&0x80 != 0 {
			cpu.addrRel |= 0xFF00
		}
		return 0

	case Absolute:
		cpu.addrAbs = cpu.read16(cpu.PC)
		cpu.PC += 2
		return 0

	case AbsoluteX:
		base := cpu.read16(cpu.PC)
		cpu.PC += 2
		cpu.addrAbs = base + uint16(cpu.X)
		return pageCrossed(base, cpu.addrAbs)

	case AbsoluteY:
		base := cpu.read16(cpu.PC)
		cpu.PC += 2
		cpu.addrAbs = base + uint16(cpu.Y)
		return pageCrossed(base, cpu.addrAbs)

	case Indirect:
		ptr := cpu.read16(cpu.PC)
		cpu.PC += 2
		// A pointer ending in 0xFF fetches its high byte from the start of
		// the same page
		hiAddr := ptr + 1
		if ptr&0x00FF == 0x00FF {
			hiAddr = ptr & 0xFF00
		}
		cpu.addrAbs = uint16(cpu.read(hiAddr))<<8 | uint16(cpu.read(ptr))
		return 0

	case IndexedIndirect:
		t := cpu.read(cpu.PC)
		cpu.PC++
		lo := uint16(cpu.read(uint16(t + cpu.X)))
		hi := uint16(cpu.read(uint16(t + cpu.X + 1)))
		cpu.addrAbs = hi<<8 | lo
		return 0

	case IndirectIndexed:
		t := cpu.read(cpu.PC)
		cpu.PC++
		lo := uint16(cpu.read(uint16(t)))
		hi := uint16(cpu.read(uint16(t + 1)))
		base := hi<<8 | lo
		cpu.addrAbs = base + uint16(cpu.Y)
		return pageCrossed(base, cpu.addrAbs)
	}
	return 0
}

func pageCrossed(a, b uint16) uint8 {
	if a&0xFF00 != b&0xFF00 {
		return 1
	}
	return 0
}

// fetch loads the operand for the current instruction. Implied mode has
// already bound the accumulator.
func (cpu *CPU) fetch() uint8 {
	if instructions[cpu.opcode].Mode != Implied {
		cpu.fetched = cpu.read(cpu.addrAbs)
	}
	return cpu.fetched
}
