package cartridge

import "fmt"

// MirrorMode represents nametable mirroring mode
type MirrorMode uint8

const (
	// MirrorHardware defers to the mirroring declared in the iNES header
	MirrorHardware MirrorMode = iota
	MirrorHorizontal
	MirrorVertical
	MirrorOneScreenLo
	MirrorOneScreenHi
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHardware:
		return "hardware"
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorOneScreenLo:
		return "one-screen low"
	case MirrorOneScreenHi:
		return "one-screen high"
	}
	return fmt.Sprintf("mirror(%d)", uint8(m))
}

// MappedDirect is returned as the mapped offset when the mapper has already
// serviced the access itself (internal RAM or a register write).
const MappedDirect uint32 = 0xFFFFFFFF

// Mapper translates CPU and PPU addresses into offsets within the cartridge's
// PRG and CHR storage. Every method returns ok == false for addresses the
// mapper does not claim, letting the bus decode them elsewhere.
type Mapper interface {
	CPUMapRead(addr uint16) (mapped uint32, data uint8, ok bool)
	CPUMapWrite(addr uint16, data uint8) (mapped uint32, ok bool)
	PPUMapRead(addr uint16) (mapped uint32, ok bool)
	PPUMapWrite(addr uint16) (mapped uint32, ok bool)

	Reset()

	// Mirror returns MirrorHardware unless the mapper controls mirroring
	Mirror() MirrorMode

	IRQState() bool
	IRQClear()

	// Scanline is called once per rendered scanline
	Scanline()
}

// banks holds the bank counts every mapper needs and supplies the no-op
// parts of the Mapper interface.
type banks struct {
	prgBanks uint8 // 16KB units
	chrBanks uint8 // 8KB units, zero means CHR RAM
}

func (banks) Mirror() MirrorMode { return MirrorHardware }
func (banks) IRQState() bool     { return false }
func (banks) IRQClear()          {}
func (banks) Scanline()          {}

// chrRAMWrite claims pattern writes when the cartridge carries CHR RAM
func (b banks) chrRAMWrite(addr uint16) (uint32, bool) {
	if addr < 0x2000 && b.chrBanks == 0 {
		return uint32(addr), true
	}
	return 0, false
}

// wrapBank folds a bank select into the banks that actually exist
func wrapBank(value uint8, count int) uint8 {
	if count <= 0 {
		return 0
	}
	return uint8(int(value) % count)
}

// newMapper creates the appropriate mapper for the given ID
func newMapper(id, prgBanks, chrBanks uint8) (Mapper, error) {
	b := banks{prgBanks: prgBanks, chrBanks: chrBanks}

	var m Mapper
	switch id {
	case 0:
		m = &Mapper000{banks: b}
	case 1:
		m = &Mapper001{banks: b}
	case 2:
		m = &Mapper002{banks: b}
	case 3:
		m = &Mapper003{banks: b}
	case 4:
		m = &Mapper004{banks: b}
	case 66:
		m = &Mapper066{banks: b}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, id)
	}
	m.Reset()
	return m, nil
}

// SupportedMappers lists the mapper numbers this package can load
func SupportedMappers() []uint8 {
	return []uint8{0, 1, 2, 3, 4, 66}
}
