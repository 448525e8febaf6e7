package cartridge

// Mapper066 implements GxROM (mapper 66). One register selects a 32KB PRG
// bank (bits 4-5) and an 8KB CHR bank (bits 0-1).
type Mapper066 struct {
	banks

	prgBankSelect uint8
	chrBankSelect uint8
}

func (m *Mapper066) CPUMapRead(addr uint16) (uint32, uint8, bool) {
	if addr < 0x8000 {
		return 0, 0, false
	}
	return uint32(m.prgBankSelect)*0x8000 + uint32(addr&0x7FFF), 0, true
}

func (m *Mapper066) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	m.prgBankSelect = wrapBank((data>>4)&0x03, int(m.prgBanks)/2)
	m.chrBankSelect = wrapBank(data&0x03, int(m.chrBanks))
	return MappedDirect, true
}

func (m *Mapper066) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(m.chrBankSelect)*0x2000 + uint32(addr), true
	}
	return 0, false
}

func (m *Mapper066) PPUMapWrite(addr uint16) (uint32, bool) {
	return m.chrRAMWrite(addr)
}

func (m *Mapper066) Reset() {
	m.prgBankSelect = 0
	m.chrBankSelect = 0
}
