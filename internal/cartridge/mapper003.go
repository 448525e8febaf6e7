package cartridge

// Mapper003 implements CNROM (mapper 3). PRG is mapped like NROM; any write
// to 0x8000-0xFFFF selects the 8KB CHR bank.
type Mapper003 struct {
	banks

	chrBankSelect uint8
}

func (m *Mapper003) CPUMapRead(addr uint16) (uint32, uint8, bool) {
	if addr < 0x8000 {
		return 0, 0, false
	}
	if m.prgBanks == 1 {
		return uint32(addr & 0x3FFF), 0, true
	}
	return uint32(addr & 0x7FFF), 0, true
}

func (m *Mapper003) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	m.chrBankSelect = wrapBank(data&0x03, int(m.chrBanks))
	return MappedDirect, true
}

func (m *Mapper003) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(m.chrBankSelect)*0x2000 + uint32(addr), true
	}
	return 0, false
}

func (m *Mapper003) PPUMapWrite(addr uint16) (uint32, bool) {
	return m.chrRAMWrite(addr)
}

func (m *Mapper003) Reset() {
	m.chrBankSelect = 0
}
