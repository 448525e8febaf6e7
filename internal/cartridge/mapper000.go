package cartridge

// Mapper000 implements NROM (mapper 0)
// NROM is the simplest mapper with no bank switching capabilities.
// It supports:
// - 16KB or 32KB PRG ROM (16KB is mirrored to fill 32KB address space)
// - 8KB CHR ROM or CHR RAM
// - 8KB PRG RAM at 0x6000-0x7FFF
type Mapper000 struct {
	banks
	prgRAM [0x2000]uint8
}

// CPUMapRead maps the CPU window
// Memory map:
// 0x6000-0x7FFF: 8KB PRG RAM
// 0x8000-0xFFFF: 32KB PRG ROM space, a 16KB ROM mirrors into both halves
func (m *Mapper000) CPUMapRead(addr uint16) (uint32, uint8, bool) {
	switch {
	case addr >= 0x8000:
		return uint32(addr & m.prgMask()), 0, true
	case addr >= 0x6000:
		return MappedDirect, m.prgRAM[addr&0x1FFF], true
	}
	return 0, 0, false
}

// CPUMapWrite accepts PRG RAM writes; writes to ROM are swallowed
func (m *Mapper000) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	switch {
	case addr >= 0x8000:
		return MappedDirect, true
	case addr >= 0x6000:
		m.prgRAM[addr&0x1FFF] = data
		return MappedDirect, true
	}
	return 0, false
}

func (m *Mapper000) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *Mapper000) PPUMapWrite(addr uint16) (uint32, bool) {
	return m.chrRAMWrite(addr)
}

// Reset has no bank state to restore
func (m *Mapper000) Reset() {}

func (m *Mapper000) prgMask() uint16 {
	if m.prgBanks > 1 {
		return 0x7FFF
	}
	return 0x3FFF
}
