package cartridge

// Mapper004 implements MMC3 (mapper 4).
// Eight bank registers are written through a select/data pair at
// 0x8000/0x8001. PRG is mapped in four 8KB windows and CHR in eight 1KB
// windows, each with an inversion mode. A scanline counter clocked by the
// PPU raises an IRQ when it reaches zero while enabled.
type Mapper004 struct {
	banks

	targetRegister uint8
	prgBankMode    bool
	chrInversion   bool
	mirror         MirrorMode

	registers  [8]uint32
	chrBanks1K [8]uint32
	prgBanks8K [4]uint32

	irqActive  bool
	irqEnable  bool
	irqCounter uint16
	irqReload  uint16

	prgRAM [0x2000]uint8
}

func (m *Mapper004) CPUMapRead(addr uint16) (uint32, uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return MappedDirect, m.prgRAM[addr&0x1FFF], true
	case addr >= 0x8000:
		window := (addr - 0x8000) >> 13
		return m.prgBanks8K[window] + uint32(addr&0x1FFF), 0, true
	}
	return 0, 0, false
}

func (m *Mapper004) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr&0x1FFF] = data
		return MappedDirect, true
	}
	if addr < 0x8000 {
		return 0, false
	}

	even := addr&0x0001 == 0
	switch {
	case addr < 0xA000:
		// Bank select / bank data
		if even {
			m.targetRegister = data & 0x07
			m.prgBankMode = data&0x40 != 0
			m.chrInversion = data&0x80 != 0
		} else {
			m.registers[m.targetRegister] = uint32(data)
		}
		m.updateBanks()

	case addr < 0xC000:
		// Mirroring; the odd register is PRG RAM protect, which is not modelled
		if even {
			if data&0x01 != 0 {
				m.mirror = MirrorHorizontal
			} else {
				m.mirror = MirrorVertical
			}
		}

	case addr < 0xE000:
		if even {
			m.irqReload = uint16(data)
		} else {
			m.irqCounter = 0
		}

	default:
		if even {
			m.irqEnable = false
			m.irqActive = false
		} else {
			m.irqEnable = true
		}
	}
	return MappedDirect, true
}

// updateBanks recomputes the window offsets from the bank registers
func (m *Mapper004) updateBanks() {
	r := &m.registers
	chr := func(bank uint32) uint32 {
		return (bank % m.chr1KCount()) * 0x0400
	}
	prg := func(bank uint32) uint32 {
		return (bank % m.prg8KCount()) * 0x2000
	}

	if m.chrInversion {
		m.chrBanks1K[0] = chr(r[2])
		m.chrBanks1K[1] = chr(r[3])
		m.chrBanks1K[2] = chr(r[4])
		m.chrBanks1K[3] = chr(r[5])
		m.chrBanks1K[4] = chr(r[0] & 0xFE)
		m.chrBanks1K[5] = chr(r[0] | 0x01)
		m.chrBanks1K[6] = chr(r[1] & 0xFE)
		m.chrBanks1K[7] = chr(r[1] | 0x01)
	} else {
		m.chrBanks1K[0] = chr(r[0] & 0xFE)
		m.chrBanks1K[1] = chr(r[0] | 0x01)
		m.chrBanks1K[2] = chr(r[1] & 0xFE)
		m.chrBanks1K[3] = chr(r[1] | 0x01)
		m.chrBanks1K[4] = chr(r[2])
		m.chrBanks1K[5] = chr(r[3])
		m.chrBanks1K[6] = chr(r[4])
		m.chrBanks1K[7] = chr(r[5])
	}

	secondLast := m.prg8KCount() - 2
	if m.prgBankMode {
		m.prgBanks8K[0] = prg(secondLast)
		m.prgBanks8K[2] = prg(r[6] & 0x3F)
	} else {
		m.prgBanks8K[0] = prg(r[6] & 0x3F)
		m.prgBanks8K[2] = prg(secondLast)
	}
	m.prgBanks8K[1] = prg(r[7] & 0x3F)
	m.prgBanks8K[3] = prg(m.prg8KCount() - 1)
}

func (m *Mapper004) PPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return m.chrBanks1K[addr>>10] + uint32(addr&0x03FF), true
}

func (m *Mapper004) PPUMapWrite(addr uint16) (uint32, bool) {
	if addr < 0x2000 && m.chrBanks == 0 {
		return m.chrBanks1K[addr>>10] + uint32(addr&0x03FF), true
	}
	return 0, false
}

func (m *Mapper004) Reset() {
	m.targetRegister = 0
	m.prgBankMode = false
	m.chrInversion = false
	m.mirror = MirrorHorizontal

	m.irqActive = false
	m.irqEnable = false
	m.irqCounter = 0
	m.irqReload = 0

	m.registers = [8]uint32{}
	m.chrBanks1K = [8]uint32{}

	m.prgBanks8K[0] = 0
	m.prgBanks8K[1] = 0x2000
	m.prgBanks8K[2] = (m.prg8KCount() - 2) * 0x2000
	m.prgBanks8K[3] = (m.prg8KCount() - 1) * 0x2000
}

func (m *Mapper004) Mirror() MirrorMode {
	return m.mirror
}

func (m *Mapper004) IRQState() bool {
	return m.irqActive
}

func (m *Mapper004) IRQClear() {
	m.irqActive = false
}

// Scanline clocks the IRQ counter: reload at zero, otherwise count down,
// and raise the IRQ when it lands on zero while enabled.
func (m *Mapper004) Scanline() {
	if m.irqCounter == 0 {
		m.irqCounter = m.irqReload
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnable {
		m.irqActive = true
	}
}

func (m *Mapper004) prg8KCount() uint32 {
	return uint32(m.prgBanks) * 2
}

func (m *Mapper004) chr1KCount() uint32 {
	if m.chrBanks == 0 {
		return 8
	}
	return uint32(m.chrBanks) * 8
}
