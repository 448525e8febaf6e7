package cpu

import "fmt"

// AddressingMode selects how an instruction resolves its operand
type AddressingMode uint8

const (
	Implied AddressingMode = iota // also the accumulator form of shifts
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

var modeNames = [...]string{
	Implied:         "IMP",
	Immediate:       "IMM",
	ZeroPage:        "ZP0",
	ZeroPageX:       "ZPX",
	ZeroPageY:       "ZPY",
	Relative:        "REL",
	Absolute:        "ABS",
	AbsoluteX:       "ABX",
	AbsoluteY:       "ABY",
	Indirect:        "IND",
	IndexedIndirect: "IZX",
	IndirectIndexed: "IZY",
}

func (m AddressingMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Size returns the instruction length in bytes for this mode
func (m AddressingMode) Size() uint16 {
	switch m {
	case Implied:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	default:
		return 2
	}
}

// Op identifies the operation an opcode performs
type Op uint8

const (
	ADC Op = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
	XXX // illegal opcode, executes as a no-op
)

// Instruction represents one entry of the 6502 decode table
type Instruction struct {
	Name   string
	Op     Op
	Mode   AddressingMode
	Cycles uint8
}

// Size returns the instruction length in bytes
func (i Instruction) Size() uint16 {
	return i.Mode.Size()
}

// Lookup returns the decode table entry for an opcode
func Lookup(opcode uint8) Instruction {
	return instructions[opcode]
}

// instructions is the full decode table. Unofficial opcodes other than the
// NOP family decode as single-byte no-ops.
var instructions = [256]Instruction{
	0x00: {"BRK", BRK, Implied, 7},
	0x01: {"ORA", ORA, IndexedIndirect, 6},
	0x02: {"???", XXX, Implied, 2},
	0x03: {"???", XXX, Implied, 8},
	0x04: {"*NOP", NOP, ZeroPage, 3},
	0x05: {"ORA", ORA, ZeroPage, 3},
	0x06: {"ASL", ASL, ZeroPage, 5},
	0x07: {"???", XXX, Implied, 5},
	0x08: {"PHP", PHP, Implied, 3},
	0x09: {"ORA", ORA, Immediate, 2},
	0x0A: {"ASL", ASL, Implied, 2},
	0x0B: {"???", XXX, Implied, 2},
	0x0C: {"*NOP", NOP, Absolute, 4},
	0x0D: {"ORA", ORA, Absolute, 4},
	0x0E: {"ASL", ASL, Absolute, 6},
	0x0F: {"???", XXX, Implied, 6},
	0x10: {"BPL", BPL, Relative, 2},
	0x11: {"ORA", ORA, IndirectIndexed, 5},
	0x12: {"???", XXX, Implied, 2},
	0x13: {"???", XXX, Implied, 8},
	0x14: {"*NOP", NOP, ZeroPageX, 4},
	0x15: {"ORA", ORA, ZeroPageX, 4},
	0x16: {"ASL", ASL, ZeroPageX, 6},
	0x17: {"???", XXX, Implied, 6},
	0x18: {"CLC", CLC, Implied, 2},
	0x19: {"ORA", ORA, AbsoluteY, 4},
	0x1A: {"*NOP", NOP, Implied, 2},
	0x1B: {"???", XXX, Implied, 7},
	0x1C: {"*NOP", NOP, AbsoluteX, 4},
	0x1D: {"ORA", ORA, AbsoluteX, 4},
	0x1E: {"ASL", ASL, AbsoluteX, 7},
	0x1F: {"???", XXX, Implied, 7},
	0x20: {"JSR", JSR, Absolute, 6},
	0x21: {"AND", AND, IndexedIndirect, 6},
	0x22: {"???", XXX, Implied, 2},
	0x23: {"???", XXX, Implied, 8},
	0x24: {"BIT", BIT, ZeroPage, 3},
	0x25: {"AND", AND, ZeroPage, 3},
	0x26: {"ROL", ROL, ZeroPage, 5},
	0x27: {"???", XXX, Implied, 5},
	0x28: {"PLP", PLP, Implied, 4},
	0x29: {"AND", AND, Immediate, 2},
	0x2A: {"ROL", ROL, Implied, 2},
	0x2B: {"???", XXX, Implied, 2},
	0x2C: {"BIT", BIT, Absolute, 4},
	0x2D: {"AND", AND, Absolute, 4},
	0x2E: {"ROL", ROL, Absolute, 6},
	0x2F: {"???", XXX, Implied, 6},
	0x30: {"BMI", BMI, Relative, 2},
	0x31: {"AND", AND, IndirectIndexed, 5},
	0x32: {"???", XXX, Implied, 2},
	0x33: {"???", XXX, Implied, 8},
	0x34: {"*NOP", NOP, ZeroPageX, 4},
	0x35: {"AND", AND, ZeroPageX, 4},
	0x36: {"ROL", ROL, ZeroPageX, 6},
	0x37: {"???", XXX, Implied, 6},
	0x38: {"SEC", SEC, Implied, 2},
	0x39: {"AND", AND, AbsoluteY, 4},
	0x3A: {"*NOP", NOP, Implied, 2},
	0x3B: {"???", XXX, Implied, 7},
	0x3C: {"*NOP", NOP, AbsoluteX, 4},
	0x3D: {"AND", AND, AbsoluteX, 4},
	0x3E: {"ROL", ROL, AbsoluteX, 7},
	0x3F: {"???", XXX, Implied, 7},
	0x40: {"RTI", RTI, Implied, 6},
	0x41: {"EOR", EOR, IndexedIndirect, 6},
	0x42: {"???", XXX, Implied, 2},
	0x43: {"???", XXX, Implied, 8},
	0x44: {"*NOP", NOP, ZeroPage, 3},
	0x45: {"EOR", EOR, ZeroPage, 3},
	0x46: {"LSR", LSR, ZeroPage, 5},
	0x47: {"???", XXX, Implied, 5},
	0x48: {"PHA", PHA, Implied, 3},
	0x49: {"EOR", EOR, Immediate, 2},
	0x4A: {"LSR", LSR, Implied, 2},
	0x4B: {"???", XXX, Implied, 2},
	0x4C: {"JMP", JMP, Absolute, 3},
	0x4D: {"EOR", EOR, Absolute, 4},
	0x4E: {"LSR", LSR, Absolute, 6},
	0x4F: {"???", XXX, Implied, 6},
	0x50: {"BVC", BVC, Relative, 2},
	0x51: {"EOR", EOR, IndirectIndexed, 5},
	0x52: {"???", XXX, Implied, 2},
	0x53: {"???", XXX, Implied, 8},
	0x54: {"*NOP", NOP, ZeroPageX, 4},
	0x55: {"EOR", EOR, ZeroPageX, 4},
	0x56: {"LSR", LSR, ZeroPageX, 6},
	0x57: {"???", XXX, Implied, 6},
	0x58: {"CLI", CLI, Implied, 2},
	0x59: {"EOR", EOR, AbsoluteY, 4},
	0x5A: {"*NOP", NOP, Implied, 2},
	0x5B: {"???", XXX, Implied, 7},
	0x5C: {"*NOP", NOP, AbsoluteX, 4},
	0x5D: {"EOR", EOR, AbsoluteX, 4},
	0x5E: {"LSR", LSR, AbsoluteX, 7},
	0x5F: {"???", XXX, Implied, 7},
	0x60: {"RTS", RTS, Implied, 6},
	0x61: {"ADC", ADC, IndexedIndirect, 6},
	0x62: {"???", XXX, Implied, 2},
	0x63: {"???", XXX, Implied, 8},
	0x64: {"*NOP", NOP, ZeroPage, 3},
	0x65: {"ADC", ADC, ZeroPage, 3},
	0x66: {"ROR", ROR, ZeroPage, 5},
	0x67: {"???", XXX, Implied, 5},
	0x68: {"PLA", PLA, Implied, 4},
	0x69: {"ADC", ADC, Immediate, 2},
	0x6A: {"ROR", ROR, Implied, 2},
	0x6B: {"???", XXX, Implied, 2},
	0x6C: {"JMP", JMP, Indirect, 5},
	0x6D: {"ADC", ADC, Absolute, 4},
	0x6E: {"ROR", ROR, Absolute, 6},
	0x6F: {"???", XXX, Implied, 6},
	0x70: {"BVS", BVS, Relative, 2},
	0x71: {"ADC", ADC, IndirectIndexed, 5},
	0x72: {"???", XXX, Implied, 2},
	0x73: {"???", XXX, Implied, 8},
	0x74: {"*NOP", NOP, ZeroPageX, 4},
	0x75: {"ADC", ADC, ZeroPageX, 4},
	0x76: {"ROR", ROR, ZeroPageX, 6},
	0x77: {"???", XXX, Implied, 6},
	0x78: {"SEI", SEI, Implied, 2},
	0x79: {"ADC", ADC, AbsoluteY, 4},
	0x7A: {"*NOP", NOP, Implied, 2},
	0x7B: {"???", XXX, Implied, 7},
	0x7C: {"*NOP", NOP, AbsoluteX, 4},
	0x7D: {"ADC", ADC, AbsoluteX, 4},
	0x7E: {"ROR", ROR, AbsoluteX, 7},
	0x7F: {"???", XXX, Implied, 7},
	0x80: {"*NOP", NOP, Immediate, 2},
	0x81: {"STA", STA, IndexedIndirect, 6},
	0x82: {"*NOP", NOP, Immediate, 2},
	0x83: {"???", XXX, Implied, 6},
	0x84: {"STY", STY, ZeroPage, 3},
	0x85: {"STA", STA, ZeroPage, 3},
	0x86: {"STX", STX, ZeroPage, 3},
	0x87: {"???", XXX, Implied, 3},
	0x88: {"DEY", DEY, Implied, 2},
	0x89: {"*NOP", NOP, Immediate, 2},
	0x8A: {"TXA", TXA, Implied, 2},
	0x8B: {"???", XXX, Implied, 2},
	0x8C: {"STY", STY, Absolute, 4},
	0x8D: {"STA", STA, Absolute, 4},
	0x8E: {"STX", STX, Absolute, 4},
	0x8F: {"???", XXX, Implied, 4},
	0x90: {"BCC", BCC, Relative, 2},
	0x91: {"STA", STA, IndirectIndexed, 6},
	0x92: {"???", XXX, Implied, 2},
	0x93: {"???", XXX, Implied, 6},
	0x94: {"STY", STY, ZeroPageX, 4},
	0x95: {"STA", STA, ZeroPageX, 4},
	0x96: {"STX", STX, ZeroPageY, 4},
	0x97: {"???", XXX, Implied, 4},
	0x98: {"TYA", TYA, Implied, 2},
	0x99: {"STA", STA, AbsoluteY, 5},
	0x9A: {"TXS", TXS, Implied, 2},
	0x9B: {"???", XXX, Implied, 5},
	0x9C: {"???", NOP, Implied, 5},
	0x9D: {"STA", STA, AbsoluteX, 5},
	0x9E: {"???", XXX, Implied, 5},
	0x9F: {"???", XXX, Implied, 5},
	0xA0: {"LDY", LDY, Immediate, 2},
	0xA1: {"LDA", LDA, IndexedIndirect, 6},
	0xA2: {"LDX", LDX, Immediate, 2},
	0xA3: {"???", XXX, Implied, 6},
	0xA4: {"LDY", LDY, ZeroPage, 3},
	0xA5: {"LDA", LDA, ZeroPage, 3},
	0xA6: {"LDX", LDX, ZeroPage, 3},
	0xA7: {"???", XXX, Implied, 3},
	0xA8: {"TAY", TAY, Implied, 2},
	0xA9: {"LDA", LDA, Immediate, 2},
	0xAA: {"TAX", TAX, Implied, 2},
	0xAB: {"???", XXX, Implied, 2},
	0xAC: {"LDY", LDY, Absolute, 4},
	0xAD: {"LDA", LDA, Absolute, 4},
	0xAE: {"LDX", LDX, Absolute, 4},
	0xAF: {"???", XXX, Implied, 4},
	0xB0: {"BCS", BCS, Relative, 2},
	0xB1: {"LDA", LDA, IndirectIndexed, 5},
	0xB2: {"???", XXX, Implied, 2},
	0xB3: {"???", XXX, Implied, 5},
	0xB4: {"LDY", LDY, ZeroPageX, 4},
	0xB5: {"LDA", LDA, ZeroPageX, 4},
	0xB6: {"LDX", LDX, ZeroPageY, 4},
	0xB7: {"???", XXX, Implied, 4},
	0xB8: {"CLV", CLV, Implied, 2},
	0xB9: {"LDA", LDA, AbsoluteY, 4},
	0xBA: {"TSX", TSX, Implied, 2},
	0xBB: {"???", XXX, Implied, 4},
	0xBC: {"LDY", LDY, AbsoluteX, 4},
	0xBD: {"LDA", LDA, AbsoluteX, 4},
	0xBE: {"LDX", LDX, AbsoluteY, 4},
	0xBF: {"???", XXX, Implied, 4},
	0xC0: {"CPY", CPY, Immediate, 2},
	0xC1: {"CMP", CMP, IndexedIndirect, 6},
	0xC2: {"*NOP", NOP, Immediate, 2},
	0xC3: {"???", XXX, Implied, 8},
	0xC4: {"CPY", CPY, ZeroPage, 3},
	0xC5: {"CMP", CMP, ZeroPage, 3},
	0xC6: {"DEC", DEC, ZeroPage, 5},
	0xC7: {"???", XXX, Implied, 5},
	0xC8: {"INY", INY, Implied, 2},
	0xC9: {"CMP", CMP, Immediate, 2},
	0xCA: {"DEX", DEX, Implied, 2},
	0xCB: {"???", XXX, Implied, 2},
	0xCC: {"CPY", CPY, Absolute, 4},
	0xCD: {"CMP", CMP, Absolute, 4},
	0xCE: {"DEC", DEC, Absolute, 6},
	0xCF: {"???", XXX, Implied, 6},
	0xD0: {"BNE", BNE, Relative, 2},
	0xD1: {"CMP", CMP, IndirectIndexed, 5},
	0xD2: {"???", XXX, Implied, 2},
	0xD3: {"???", XXX, Implied, 8},
	0xD4: {"*NOP", NOP, ZeroPageX, 4},
	0xD5: {"CMP", CMP, ZeroPageX, 4},
	0xD6: {"DEC", DEC, ZeroPageX, 6},
	0xD7: {"???", XXX, Implied, 6},
	0xD8: {"CLD", CLD, Implied, 2},
	0xD9: {"CMP", CMP, AbsoluteY, 4},
	0xDA: {"*NOP", NOP, Implied, 2},
	0xDB: {"???", XXX, Implied, 7},
	0xDC: {"*NOP", NOP, AbsoluteX, 4},
	0xDD: {"CMP", CMP, AbsoluteX, 4},
	0xDE: {"DEC", DEC, AbsoluteX, 7},
	0xDF: {"???", XXX, Implied, 7},
	0xE0: {"CPX", CPX, Immediate, 2},
	0xE1: {"SBC", SBC, IndexedIndirect, 6},
	0xE2: {"*NOP", NOP, Immediate, 2},
	0xE3: {"???", XXX, Implied, 8},
	0xE4: {"CPX", CPX, ZeroPage, 3},
	0xE5: {"SBC", SBC, ZeroPage, 3},
	0xE6: {"INC", INC, ZeroPage, 5},
	0xE7: {"???", XXX, Implied, 5},
	0xE8: {"INX", INX, Implied, 2},
	0xE9: {"SBC", SBC, Immediate, 2},
	0xEA: {"NOP", NOP, Implied, 2},
	0xEB: {"*SBC", SBC, Immediate, 2},
	0xEC: {"CPX", CPX, Absolute, 4},
	0xED: {"SBC", SBC, Absolute, 4},
	0xEE: {"INC", INC, Absolute, 6},
	0xEF: {"???", XXX, Implied, 6},
	0xF0: {"BEQ", BEQ, Relative, 2},
	0xF1: {"SBC", SBC, IndirectIndexed, 5},
	0xF2: {"???", XXX, Implied, 2},
	0xF3: {"???", XXX, Implied, 8},
	0xF4: {"*NOP", NOP, ZeroPageX, 4},
	0xF5: {"SBC", SBC, ZeroPageX, 4},
	0xF6: {"INC", INC, ZeroPageX, 6},
	0xF7: {"???", XXX, Implied, 6},
	0xF8: {"SED", SED, Implied, 2},
	0xF9: {"SBC", SBC, AbsoluteY, 4},
	0xFA: {"*NOP", NOP, Implied, 2},
	0xFB: {"???", XXX, Implied, 7},
	0xFC: {"*NOP", NOP, AbsoluteX, 4},
	0xFD: {"SBC", SBC, AbsoluteX, 4},
	0xFE: {"INC", INC, AbsoluteX, 7},
	0xFF: {"???", XXX, Implied, 7},
}
