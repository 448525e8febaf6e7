package cpu

// operate runs the operation for inst. It returns 1 for operations that
// pay the page-crossing penalty of their addressing mode.
func (cpu *CPU) operate(inst *Instruction) uint8 {
	switch inst.Op {
	// Load/store
	case LDA:
		cpu.A = cpu.fetch()
		cpu.setZN(cpu.A)
		return 1
	case LDX:
		cpu.X = cpu.fetch()
		cpu.setZN(cpu.X)
		return 1
	case LDY:
		cpu.Y = cpu.fetch()
		cpu.setZN(cpu.Y)
		return 1
	case STA:
		cpu.write(cpu.addrAbs, cpu.A)
	case STX:
		cpu.write(cpu.addrAbs, cpu.X)
	case STY:
		cpu.write(cpu.addrAbs, cpu.Y)

	// Arithmetic
	case ADC:
		cpu.addWithCarry(cpu.fetch())
		return 1
	case SBC:
		// Subtraction is addition of the inverted operand
		cpu.addWithCarry(cpu.fetch() ^ 0xFF)
		return 1
	case INC:
		value := cpu.fetch() + 1
		cpu.write(cpu.addrAbs, value)
		cpu.setZN(value)
	case DEC:
		value := cpu.fetch() - 1
		cpu.write(cpu.addrAbs, value)
		cpu.setZN(value)
	case INX:
		cpu.X++
		cpu.setZN(cpu.X)
	case INY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case DEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case DEY:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// Logic
	case AND:
		cpu.A &= cpu.fetch()
		cpu.setZN(cpu.A)
		return 1
	case ORA:
		cpu.A |= cpu.fetch()
		cpu.setZN(cpu.A)
		return 1
	case EOR:
		cpu.A ^= cpu.fetch()
		cpu.setZN(cpu.A)
		return 1
	case BIT:
		value := cpu.fetch()
		cpu.setFlag(FlagZ, cpu.A&value == 0)
		cpu.setFlag(FlagN, value&0x80 != 0)
		cpu.setFlag(FlagV, value&0x40 != 0)

	// Compare
	case CMP:
		cpu.compare(cpu.A)
		return 1
	case CPX:
		cpu.compare(cpu.X)
	case CPY:
		cpu.compare(cpu.Y)

	// Shifts and rotates
	case ASL:
		value := cpu.fetch()
		cpu.setFlag(FlagC, value&0x80 != 0)
		cpu.writeBack(value << 1)
	case LSR:
		value := cpu.fetch()
		cpu.setFlag(FlagC, value&0x01 != 0)
		cpu.writeBack(value >> 1)
	case ROL:
		value := cpu.fetch()
		carry := cpu.Status & uint8(FlagC)
		cpu.setFlag(FlagC, value&0x80 != 0)
		cpu.writeBack(value<<1 | carry)
	case ROR:
		value := cpu.fetch()
		carry := (cpu.Status & uint8(FlagC)) << 7
		cpu.setFlag(FlagC, value&0x01 != 0)
		cpu.writeBack(value>>1 | carry)

	// Branches
	case BCC:
		cpu.branch(!cpu.GetFlag(FlagC))
	case BCS:
		cpu.branch(cpu.GetFlag(FlagC))
	case BNE:
		cpu.branch(!cpu.GetFlag(FlagZ))
	case BEQ:
		cpu.branch(cpu.GetFlag(FlagZ))
	case BPL:
		cpu.branch(!cpu.GetFlag(FlagN))
	case BMI:
		cpu.branch(cpu.GetFlag(FlagN))
	case BVC:
		cpu.branch(!cpu.GetFlag(FlagV))
	case BVS:
		cpu.branch(cpu.GetFlag(FlagV))

	// Jumps and subroutines
	case JMP:
		cpu.PC = cpu.addrAbs
	case JSR:
		cpu.PC--
		cpu.push16(cpu.PC)
		cpu.PC = cpu.addrAbs
	case RTS:
		cpu.PC = cpu.pop16() + 1
	case BRK:
		// Skip the padding byte so RTI returns past it
		cpu.PC++
		cpu.push16(cpu.PC)
		cpu.push(cpu.Status | uint8(FlagB) | uint8(FlagU))
		cpu.setFlag(FlagI, true)
		cpu.PC = cpu.read16(irqVector)
	case RTI:
		cpu.Status = (cpu.pop() &^ uint8(FlagB)) | uint8(FlagU)
		cpu.PC = cpu.pop16()

	// Stack
	case PHA:
		cpu.push(cpu.A)
	case PHP:
		cpu.push(cpu.Status | uint8(FlagB) | uint8(FlagU))
	case PLA:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case PLP:
		cpu.Status = (cpu.pop() &^ uint8(FlagB)) | uint8(FlagU)

	// Flags
	case CLC:
		cpu.setFlag(FlagC, false)
	case CLD:
		cpu.setFlag(FlagD, false)
	case CLI:
		cpu.setFlag(FlagI, false)
	case CLV:
		cpu.setFlag(FlagV, false)
	case SEC:
		cpu.setFlag(FlagC, true)
	case SED:
		cpu.setFlag(FlagD, true)
	case SEI:
		cpu.setFlag(FlagI, true)

	// Transfers
	case TAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case TAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case TSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case TXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case TXS:
		cpu.SP = cpu.X
	case TYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)

	case NOP:
		// The absolute,X forms pay for page crossings like a read
		switch cpu.opcode {
		case 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
			return 1
		}

	case XXX:
	}
	return 0
}

// addWithCarry implements ADC in a 16-bit intermediate so the carry out
// lands in bit 8
func (cpu *CPU) addWithCarry(value uint8) {
	sum := uint16(cpu.A) + uint16(value) + uint16(cpu.Status&uint8(FlagC))
	result := uint8(sum)

	cpu.setFlag(FlagC, sum > 0xFF)
	// Overflow when both operands share a sign the result does not
	cpu.setFlag(FlagV, (^(cpu.A^value))&(cpu.A^result)&0x80 != 0)
	cpu.A = result
	cpu.setZN(cpu.A)
}

func (cpu *CPU) compare(register uint8) {
	value := cpu.fetch()
	cpu.setFlag(FlagC, register >= value)
	cpu.setZN(register - value)
}

// writeBack stores a shift result to A in implied mode, else to memory
func (cpu *CPU) writeBack(value uint8) {
	cpu.setZN(value)
	if instructions[cpu.opcode].Mode == Implied {
		cpu.A = value
	} else {
		cpu.write(cpu.addrAbs, value)
	}
}

// branch takes the relative jump when cond holds, charging one cycle for
// the branch and another when the target lies on a different page
func (cpu *CPU) branch(cond bool) {
	if !cond {
		return
	}
	cpu.cycles++
	cpu.addrAbs = cpu.PC + cpu.addrRel
	if cpu.addrAbs&0xFF00 != cpu.PC&0xFF00 {
		cpu.cycles++
	}
	cpu.PC = cpu.addrAbs
}
