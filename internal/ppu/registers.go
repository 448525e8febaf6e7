package ppu

// PPUCTRL ($2000) bits
const (
	ctrlNametableX        uint8 = 0x01
	ctrlNametableY        uint8 = 0x02
	ctrlIncrementMode     uint8 = 0x04 // 0: add 1 across, 1: add 32 down
	ctrlPatternSprite     uint8 = 0x08
	ctrlPatternBackground uint8 = 0x10
	ctrlSpriteSize        uint8 = 0x20 // 0: 8x8, 1: 8x16
	ctrlSlaveMode         uint8 = 0x40 // unused
	ctrlEnableNMI         uint8 = 0x80
)

// PPUMASK ($2001) bits
const (
	maskGrayscale            uint8 = 0x01
	maskRenderBackgroundLeft uint8 = 0x02
	maskRenderSpritesLeft    uint8 = 0x04
	maskRenderBackground     uint8 = 0x08
	maskRenderSprites        uint8 = 0x10
	maskEnhanceRed           uint8 = 0x20
	maskEnhanceGreen         uint8 = 0x40
	maskEnhanceBlue          uint8 = 0x80
)

// PPUSTATUS ($2002) bits
const (
	statusSpriteOverflow uint8 = 0x20
	statusSpriteZeroHit  uint8 = 0x40
	statusVerticalBlank  uint8 = 0x80
)

// loopy is a 15-bit scroll/VRAM address:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X
//	||| || +++++-------- coarse Y
//	||| |+-------------- nametable X
//	||| +--------------- nametable Y
//	+++----------------- fine Y
type loopy uint16

const (
	loopyCoarseX    loopy = 0x001F
	loopyCoarseY    loopy = 0x03E0
	loopyNametableX loopy = 0x0400
	loopyNametableY loopy = 0x0800
	loopyFineY      loopy = 0x7000
)

func (l loopy) coarseX() uint16    { return uint16(l & loopyCoarseX) }
func (l loopy) coarseY() uint16    { return uint16(l&loopyCoarseY) >> 5 }
func (l loopy) nametableX() uint16 { return uint16(l&loopyNametableX) >> 10 }
func (l loopy) nametableY() uint16 { return uint16(l&loopyNametableY) >> 11 }
func (l loopy) fineY() uint16      { return uint16(l&loopyFineY) >> 12 }

func (l *loopy) setCoarseX(v uint16) { *l = *l&^loopyCoarseX | loopy(v&0x1F) }
func (l *loopy) setCoarseY(v uint16) { *l = *l&^loopyCoarseY | loopy(v&0x1F)<<5 }
func (l *loopy) setNametableX(v uint16) {
	*l = *l&^loopyNametableX | loopy(v&1)<<10
}
func (l *loopy) setNametableY(v uint16) {
	*l = *l&^loopyNametableY | loopy(v&1)<<11
}
func (l *loopy) setFineY(v uint16) { *l = *l&^loopyFineY | loopy(v&7)<<12 }

// CPURead reads one of the eight CPU-visible registers. A readOnly read
// returns the raw register without clearing flags or advancing the data
// port.
func (p *PPU) CPURead(addr uint8, readOnly bool) uint8 {
	addr &= 0x07

	if readOnly {
		switch addr {
		case 0x00:
			return p.control
		case 0x01:
			return p.mask
		case 0x02:
			return p.status
		case 0x04:
			return p.oam[p.oamAddr]
		}
		return 0x00
	}

	switch addr {
	case 0x02: // Status
		// The low bits are whatever was last left on the data bus
		data := p.status&0xE0 | p.dataBuffer&0x1F
		p.status &^= statusVerticalBlank
		p.addressLatch = false
		return data

	case 0x04: // OAM data
		return p.oam[p.oamAddr]

	case 0x07: // PPU data
		// Reads are delayed one access, except palette memory
		data := p.dataBuffer
		p.dataBuffer = p.PPURead(uint16(p.vramAddr))
		if uint16(p.vramAddr)&0x3FFF >= 0x3F00 {
			data = p.dataBuffer
		}
		p.incrementVRAM()
		return data
	}

	// Control, mask, OAM address, scroll and address are write-only
	return 0x00
}

// CPUWrite writes one of the eight CPU-visible registers
func (p *PPU) CPUWrite(addr uint8, data uint8) {
	switch addr & 0x07 {
	case 0x00: // Control
		wasEnabled := p.control&ctrlEnableNMI != 0
		p.control = data
		p.tramAddr.setNametableX(uint16(data & ctrlNametableX))
		p.tramAddr.setNametableY(uint16(data&ctrlNametableY) >> 1)
		// Enabling NMI during vertical blank raises it immediately
		if !wasEnabled && data&ctrlEnableNMI != 0 && p.status&statusVerticalBlank != 0 {
			p.nmi = true
		}

	case 0x01: // Mask
		p.mask = data

	case 0x02: // Status is read-only

	case 0x03: // OAM address
		p.oamAddr = data

	case 0x04: // OAM data
		p.oam[p.oamAddr] = data
		p.oamAddr++

	case 0x05: // Scroll
		if !p.addressLatch {
			p.fineX = data & 0x07
			p.tramAddr.setCoarseX(uint16(data >> 3))
		} else {
			p.tramAddr.setFineY(uint16(data & 0x07))
			p.tramAddr.setCoarseY(uint16(data >> 3))
		}
		p.addressLatch = !p.addressLatch

	case 0x06: // PPU address, high byte first
		if !p.addressLatch {
			p.tramAddr = loopy(uint16(data&0x3F)<<8) | p.tramAddr&0x00FF
		} else {
			p.tramAddr = p.tramAddr&0xFF00 | loopy(data)
			p.vramAddr = p.tramAddr
		}
		p.addressLatch = !p.addressLatch

	case 0x07: // PPU data
		p.PPUWrite(uint16(p.vramAddr), data)
		p.incrementVRAM()
	}
}

func (p *PPU) incrementVRAM() {
	if p.control&ctrlIncrementMode != 0 {
		p.vramAddr += 32
	} else {
		p.vramAddr++
	}
	p.vramAddr &= 0x7FFF
}

// PPURead reads the PPU address space. Palette reads honour greyscale mode.
func (p *PPU) PPURead(addr uint16) uint8 {
	addr &= 0x3FFF
	data := p.memory.Read(addr)
	if addr >= 0x3F00 {
		if p.mask&maskGrayscale != 0 {
			return data & 0x30
		}
		return data & 0x3F
	}
	return data
}

// PPUWrite writes the PPU address space
func (p *PPU) PPUWrite(addr uint16, data uint8) {
	p.memory.Write(addr&0x3FFF, data)
}

// WriteOAM stores one byte of object memory, used by DMA
func (p *PPU) WriteOAM(addr uint8, data uint8) {
	p.oam[addr] = data
}

// ReadOAM returns one byte of object memory
func (p *PPU) ReadOAM(addr uint8) uint8 {
	return p.oam[addr]
}
