package cartridge

// Mapper001 implements MMC1 (mapper 1).
// Registers are loaded serially: five writes to 0x8000-0xFFFF shift one bit
// each into a load register, and the fifth write commits the value to the
// register selected by address bits 13-14. A write with bit 7 set resets the
// shift register and forces 16KB PRG mode with the last bank fixed.
type Mapper001 struct {
	banks

	loadRegister    uint8
	loadCount       uint8
	controlRegister uint8

	// Raw 5-bit values, resolved under the current control mode
	chrRegister0 uint8
	chrRegister1 uint8
	prgRegister  uint8

	chrBankSelect4Lo uint8
	chrBankSelect4Hi uint8
	chrBankSelect8   uint8

	prgBankSelect16Lo uint8
	prgBankSelect16Hi uint8
	prgBankSelect32   uint8

	mirror MirrorMode
	prgRAM [0x2000]uint8
}

func (m *Mapper001) CPUMapRead(addr uint16) (uint32, uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return MappedDirect, m.prgRAM[addr&0x1FFF], true
	case addr >= 0x8000:
		if m.controlRegister&0x08 != 0 {
			// 16KB mode
			if addr < 0xC000 {
				return uint32(m.prgBankSelect16Lo)*0x4000 + uint32(addr&0x3FFF), 0, true
			}
			return uint32(m.prgBankSelect16Hi)*0x4000 + uint32(addr&0x3FFF), 0, true
		}
		return uint32(m.prgBankSelect32)*0x8000 + uint32(addr&0x7FFF), 0, true
	}
	return 0, 0, false
}

func (m *Mapper001) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr&0x1FFF] = data
		return MappedDirect, true
	}
	if addr < 0x8000 {
		return 0, false
	}

	if data&0x80 != 0 {
		m.loadRegister = 0
		m.loadCount = 0
		m.controlRegister |= 0x0C
		m.updateBanks()
		return MappedDirect, true
	}

	m.loadRegister >>= 1
	m.loadRegister |= (data & 0x01) << 4
	m.loadCount++

	if m.loadCount == 5 {
		m.commit((addr>>13)&0x03, m.loadRegister)
		m.loadRegister = 0
		m.loadCount = 0
	}
	return MappedDirect, true
}

// commit writes a completed 5-bit value into the target register
func (m *Mapper001) commit(target uint16, value uint8) {
	switch target {
	case 0: // 0x8000-0x9FFF control
		m.controlRegister = value & 0x1F
		switch m.controlRegister & 0x03 {
		case 0:
			m.mirror = MirrorOneScreenLo
		case 1:
			m.mirror = MirrorOneScreenHi
		case 2:
			m.mirror = MirrorVertical
		case 3:
			m.mirror = MirrorHorizontal
		}
	case 1: // 0xA000-0xBFFF CHR bank 0
		m.chrRegister0 = value & 0x1F
	case 2: // 0xC000-0xDFFF CHR bank 1
		m.chrRegister1 = value & 0x1F
	case 3: // 0xE000-0xFFFF PRG bank
		m.prgRegister = value & 0x1F
	}
	m.updateBanks()
}

// updateBanks resolves the bank windows from the raw registers
func (m *Mapper001) updateBanks() {
	if m.controlRegister&0x10 != 0 {
		m.chrBankSelect4Lo = wrapBank(m.chrRegister0, m.chr4KBanks())
		m.chrBankSelect4Hi = wrapBank(m.chrRegister1, m.chr4KBanks())
	} else {
		m.chrBankSelect8 = wrapBank(m.chrRegister0&0x1E, m.chr4KBanks())
	}

	bank := wrapBank(m.prgRegister&0x0F, int(m.prgBanks))
	switch (m.controlRegister >> 2) & 0x03 {
	case 0, 1:
		m.prgBankSelect32 = wrapBank((m.prgRegister&0x0E)>>1, m.prg32KBanks())
	case 2:
		// Fix first bank at 0x8000, switch 16KB at 0xC000
		m.prgBankSelect16Lo = 0
		m.prgBankSelect16Hi = bank
	case 3:
		// Switch 16KB at 0x8000, fix last bank at 0xC000
		m.prgBankSelect16Lo = bank
		m.prgBankSelect16Hi = m.prgBanks - 1
	}
}

func (m *Mapper001) PPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if m.chrBanks == 0 {
		return uint32(addr), true
	}
	if m.controlRegister&0x10 != 0 {
		// 4KB mode
		if addr < 0x1000 {
			return uint32(m.chrBankSelect4Lo)*0x1000 + uint32(addr&0x0FFF), true
		}
		return uint32(m.chrBankSelect4Hi)*0x1000 + uint32(addr&0x0FFF), true
	}
	return uint32(m.chrBankSelect8)*0x1000 + uint32(addr&0x1FFF), true
}

func (m *Mapper001) PPUMapWrite(addr uint16) (uint32, bool) {
	return m.chrRAMWrite(addr)
}

func (m *Mapper001) Reset() {
	m.controlRegister = 0x1C
	m.loadRegister = 0
	m.loadCount = 0

	m.chrRegister0 = 0
	m.chrRegister1 = 0
	m.prgRegister = 0

	m.chrBankSelect4Lo = 0
	m.chrBankSelect4Hi = 0
	m.chrBankSelect8 = 0
	m.prgBankSelect32 = 0
	m.updateBanks()

	m.mirror = MirrorHorizontal
}

func (m *Mapper001) Mirror() MirrorMode {
	return m.mirror
}

func (m *Mapper001) chr4KBanks() int {
	if m.chrBanks == 0 {
		return 2
	}
	return int(m.chrBanks) * 2
}

func (m *Mapper001) prg32KBanks() int {
	if m.prgBanks < 2 {
		return 1
	}
	return int(m.prgBanks) / 2
}
