package cpu

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Disassemble decodes the inclusive range [start, stop] into one line per
// instruction, keyed by the instruction's address. Memory is read with
// side-effect free reads.
func (cpu *CPU) Disassemble(start, stop uint16) map[uint16]string {
	lines := make(map[uint16]string)

	addr := uint32(start)
	for addr <= uint32(stop) {
		lineAddr := uint16(addr)
		inst := instructions[cpu.peek(lineAddr)]

		operand := cpu.formatOperand(inst, lineAddr)
		lines[lineAddr] = fmt.Sprintf("$%04X: %s %s {%s}", lineAddr, inst.Name, operand, inst.Mode)

		addr += uint32(inst.Size())
	}
	return lines
}

// SortedAddresses returns the keys of a disassembly in ascending order
func SortedAddresses(lines map[uint16]string) []uint16 {
	addrs := make([]uint16, 0, len(lines))
	for addr := range lines {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// formatOperand renders the operand of the instruction at pc
func (cpu *CPU) formatOperand(inst Instruction, pc uint16) string {
	lo := cpu.peek(pc + 1)
	word := uint16(cpu.peek(pc+2))<<8 | uint16(lo)

	switch inst.Mode {
	case Immediate:
		return fmt.Sprintf("#$%02X", lo)
	case ZeroPage:
		return fmt.Sprintf("$%02X", lo)
	case ZeroPageX:
		return fmt.Sprintf("$%02X,X", lo)
	case ZeroPageY:
		return fmt.Sprintf("$%02X,Y", lo)
	case IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", lo)
	case IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", lo)
	case Absolute:
		return fmt.Sprintf("$%04X", word)
	case AbsoluteX:
		return fmt.Sprintf("$%04X,X", word)
	case AbsoluteY:
		return fmt.Sprintf("$%04X,Y", word)
	case Indirect:
		return fmt.Sprintf("($%04X)", word)
	case Relative:
		target := pc + 2 + uint16(int16(int8(lo)))
		return fmt.Sprintf("$%02X [$%04X]", lo, target)
	}
	return ""
}

// traceInstruction writes a nestest-style log line for the instruction at
// pc, using the register state before it executes
func (cpu *CPU) traceInstruction(pc uint16) {
	inst := instructions[cpu.opcode]

	raw := make([]string, 0, 3)
	for i := uint16(0); i < inst.Size(); i++ {
		raw = append(raw, fmt.Sprintf("%02X", cpu.peek(pc+i)))
	}

	operand := cpu.formatOperand(inst, pc)
	if inst.Mode == Relative {
		operand = fmt.Sprintf("$%04X", pc+2+uint16(int16(int8(cpu.peek(pc+1)))))
	} else if inst.Mode == Implied && isAccumulatorShift(inst.Op) {
		operand = "A"
	}

	fmt.Fprintf(cpu.trace, "%04X  %-8s %4s %-27s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		pc, strings.Join(raw, " "), inst.Name, operand,
		cpu.A, cpu.X, cpu.Y, cpu.Status, cpu.SP, cpu.clockCount)
}

func isAccumulatorShift(op Op) bool {
	return op == ASL || op == LSR || op == ROL || op == ROR
}

// Trace is a convenience that attaches w and returns a function restoring
// the previous writer
func (cpu *CPU) Trace(w io.Writer) (restore func()) {
	prev := cpu.trace
	cpu.trace = w
	return func() { cpu.trace = prev }
}
