package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0x8000,
		0xA9, 0x42, // LDA #$42
		0x8D, 0x00, 0x02, // STA $0200
		0xD0, 0xFC, // BNE -4
		0xEA,       // NOP
		0xB1, 0x10, // LDA ($10),Y
		0x6C, 0xFC, 0xFF, // JMP ($FFFC)
	)

	lines := h.CPU.Disassemble(0x8000, 0x800C)

	assert.Equal(t, "$8000: LDA #$42 {IMM}", lines[0x8000])
	assert.Equal(t, "$8002: STA $0200 {ABS}", lines[0x8002])
	assert.Equal(t, "$8005: BNE $FC [$8003] {REL}", lines[0x8005])
	assert.Equal(t, "$8007: NOP  {IMP}", lines[0x8007])
	assert.Equal(t, "$8008: LDA ($10),Y {IZY}", lines[0x8008])
	assert.Equal(t, "$800A: JMP ($FFFC) {IND}", lines[0x800A])
	assert.Len(t, lines, 6)

	assert.Equal(t, []uint16{0x8000, 0x8002, 0x8005, 0x8007, 0x8008, 0x800A}, SortedAddresses(lines))
}

func TestDisassembleHasNoSideEffects(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0x8000, 0xAD, 0x02, 0x20)
	before := len(h.Memory.readCount)

	h.CPU.Disassemble(0x8000, 0x8002)

	assert.Equal(t, before, len(h.Memory.readCount), "disassembly must only peek")
}

func TestDisassembleToEndOfAddressSpace(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(0xFFFE, 0xEA, 0xEA)

	lines := h.CPU.Disassemble(0xFFFE, 0xFFFF)

	assert.Len(t, lines, 2)
}

func TestTraceWritesNestestLines(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0x8000,
		0xA9, 0x42, // LDA #$42
		0x0A, // ASL A
		0x4C, 0x00, 0x80, // JMP $8000
	)

	var buf bytes.Buffer
	restore := h.CPU.Trace(&buf)
	h.Step()
	h.Step()
	h.Step()
	restore()
	h.Step()

	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, out, 3)
	assert.True(t, strings.HasPrefix(out[0], "8000  A9 42     LDA #$42"), out[0])
	assert.Contains(t, out[0], "A:00 X:00 Y:00 P:20 SP:FD")
	assert.True(t, strings.HasPrefix(out[1], "8002  0A        ASL A"), out[1])
	assert.Contains(t, out[1], "A:42")
	assert.True(t, strings.HasPrefix(out[2], "8003  4C 00 80  JMP $8000"), out[2])
}
