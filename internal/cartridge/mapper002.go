package cartridge

// Mapper002 implements UxROM (mapper 2): a switchable 16KB bank at 0x8000
// and the last bank fixed at 0xC000. Pattern memory is unbanked.
type Mapper002 struct {
	banks

	prgBankSelectLo uint8
	prgBankSelectHi uint8
}

func (m *Mapper002) CPUMapRead(addr uint16) (uint32, uint8, bool) {
	switch {
	case addr >= 0xC000:
		return uint32(m.prgBankSelectHi)*0x4000 + uint32(addr&0x3FFF), 0, true
	case addr >= 0x8000:
		return uint32(m.prgBankSelectLo)*0x4000 + uint32(addr&0x3FFF), 0, true
	}
	return 0, 0, false
}

func (m *Mapper002) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	m.prgBankSelectLo = wrapBank(data&0x0F, int(m.prgBanks))
	return MappedDirect, true
}

func (m *Mapper002) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *Mapper002) PPUMapWrite(addr uint16) (uint32, bool) {
	return m.chrRAMWrite(addr)
}

func (m *Mapper002) Reset() {
	m.prgBankSelectLo = 0
	m.prgBankSelectHi = m.prgBanks - 1
}
