package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type arithmeticResult struct {
	a                    uint8
	carry, zero, over, n bool
}

func referenceADC(a, v uint8, c bool) arithmeticResult {
	sum := int(a) + int(v)
	if c {
		sum++
	}
	r := uint8(sum)
	return arithmeticResult{
		a:     r,
		carry: sum > 0xFF,
		zero:  r == 0,
		over:  (a^r)&(v^r)&0x80 != 0,
		n:     r&0x80 != 0,
	}
}

func referenceSBC(a, v uint8, c bool) arithmeticResult {
	diff := int(a) - int(v)
	if !c {
		diff--
	}
	r := uint8(diff)
	return arithmeticResult{
		a:     r,
		carry: diff >= 0,
		zero:  r == 0,
		over:  (a^v)&(a^r)&0x80 != 0,
		n:     r&0x80 != 0,
	}
}

func runArithmeticGrid(t *testing.T, opcode uint8, reference func(a, v uint8, c bool) arithmeticResult) {
	h := NewCPUTestHelper()
	cpu := h.CPU

	for a := 0; a < 256; a++ {
		for v := 0; v < 256; v++ {
			for _, c := range []bool{false, true} {
				h.Memory.SetBytes(0x8000, opcode, uint8(v))
				cpu.PC = 0x8000
				cpu.A = uint8(a)
				cpu.Status = uint8(FlagU)
				cpu.setFlag(FlagC, c)

				h.Step()

				want := reference(uint8(a), uint8(v), c)
				got := arithmeticResult{
					a:     cpu.A,
					carry: cpu.GetFlag(FlagC),
					zero:  cpu.GetFlag(FlagZ),
					over:  cpu.GetFlag(FlagV),
					n:     cpu.GetFlag(FlagN),
				}
				if got != want {
					require.Equal(t, want, got, "A=0x%02X M=0x%02X C=%v", a, v, c)
				}
			}
		}
	}
}

func TestADCMatchesReference(t *testing.T) {
	runArithmeticGrid(t, 0x69, referenceADC)
}

func TestSBCMatchesReference(t *testing.T) {
	runArithmeticGrid(t, 0xE9, referenceSBC)
}

func TestUnofficialSBCMatchesOfficial(t *testing.T) {
	runArithmeticGrid(t, 0xEB, referenceSBC)
}

func TestDecimalFlagIsIgnored(t *testing.T) {
	h := NewCPUTestHelper()
	h.LoadProgram(0x8000,
		0xF8,       // SED
		0xA9, 0x09, // LDA #$09
		0x69, 0x01, // ADC #$01
	)

	h.Step()
	h.Step()
	h.Step()

	require.True(t, h.CPU.GetFlag(FlagD))
	require.Equal(t, uint8(0x0A), h.CPU.A, "binary result expected with D set")
}

func TestFlagInstructions(t *testing.T) {
	tests := []struct {
		opcode uint8
		flag   Flag
		want   bool
	}{
		{0x38, FlagC, true},
		{0x18, FlagC, false},
		{0x78, FlagI, true},
		{0x58, FlagI, false},
		{0xF8, FlagD, true},
		{0xD8, FlagD, false},
		{0xB8, FlagV, false},
	}

	for _, tt := range tests {
		h := NewCPUTestHelper()
		h.CPU.Status = 0xFF
		if tt.want {
			h.CPU.Status = uint8(FlagU)
		}
		h.LoadProgram(0x8000, tt.opcode)
		h.Step()
		h.AssertFlag(t, Lookup(tt.opcode).Name, tt.flag, tt.want)
		h.AssertFlag(t, Lookup(tt.opcode).Name+" keeps U", FlagU, true)
	}
}
