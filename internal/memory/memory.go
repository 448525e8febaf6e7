// Package memory implements the NES work RAM and the PPU's internal
// nametable, palette and fallback pattern storage.
package memory

import "nesemu/internal/cartridge"

// RAM is the 2KB CPU work RAM, mirrored four times across 0x0000-0x1FFF
type RAM struct {
	data [0x0800]uint8
}

// Read reads a byte; the address is masked to the physical 2KB
func (r *RAM) Read(address uint16) uint8 {
	return r.data[address&0x07FF]
}

// Write writes a byte; the address is masked to the physical 2KB
func (r *RAM) Write(address uint16, value uint8) {
	r.data[address&0x07FF] = value
}

// Clear zeroes the RAM
func (r *RAM) Clear() {
	r.data = [0x0800]uint8{}
}

// PatternSource is the cartridge side of the PPU address space. Accesses
// it declines fall through to internal storage.
type PatternSource interface {
	PPURead(address uint16) (uint8, bool)
	PPUWrite(address uint16, value uint8) bool
	Mirror() cartridge.MirrorMode
}

// PPUMemory represents the PPU's memory space ($0000-$3FFF)
type PPUMemory struct {
	nameTables   [2][0x0400]uint8 // 2KB VRAM
	paletteRAM   [32]uint8
	patternTable [2][0x1000]uint8 // used only when no cartridge claims the access

	cartridge PatternSource
}

// NewPPUMemory creates a new PPU memory instance
func NewPPUMemory() *PPUMemory {
	return &PPUMemory{}
}

// ConnectCartridge binds the pattern/mirroring source
func (pm *PPUMemory) ConnectCartridge(cart PatternSource) {
	pm.cartridge = cart
}

// Reset clears VRAM and palette RAM
func (pm *PPUMemory) Reset() {
	pm.nameTables = [2][0x0400]uint8{}
	pm.paletteRAM = [32]uint8{}
}

// Read reads from PPU memory space
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF // Mask to 14-bit address space

	if pm.cartridge != nil {
		if value, ok := pm.cartridge.PPURead(address); ok {
			return value
		}
	}

	switch {
	case address < 0x2000:
		return pm.patternTable[(address&0x1000)>>12][address&0x0FFF]
	case address < 0x3F00:
		table, offset := pm.nametableIndex(address)
		return pm.nameTables[table][offset]
	default:
		return pm.paletteRAM[paletteIndex(address)]
	}
}

// Write writes to PPU memory space
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	if pm.cartridge != nil && pm.cartridge.PPUWrite(address, value) {
		return
	}

	switch {
	case address < 0x2000:
		pm.patternTable[(address&0x1000)>>12][address&0x0FFF] = value
	case address < 0x3F00:
		table, offset := pm.nametableIndex(address)
		pm.nameTables[table][offset] = value
	default:
		pm.paletteRAM[paletteIndex(address)] = value
	}
}

// Mirror returns the active mirroring, horizontal when no cartridge is present
func (pm *PPUMemory) Mirror() cartridge.MirrorMode {
	if pm.cartridge == nil {
		return cartridge.MirrorHorizontal
	}
	return pm.cartridge.Mirror()
}

// NameTable exposes one physical nametable for debug views
func (pm *PPUMemory) NameTable(i int) *[0x0400]uint8 {
	return &pm.nameTables[i&1]
}

// nametableIndex resolves $2000-$3EFF to a physical table and offset
func (pm *PPUMemory) nametableIndex(address uint16) (int, uint16) {
	address &= 0x0FFF               // $3000-$3EFF mirrors $2000-$2EFF
	nametable := (address >> 10) & 3 // Which logical nametable (0-3)
	offset := address & 0x03FF

	switch pm.Mirror() {
	case cartridge.MirrorVertical:
		// $2000/$2800 share table 0, $2400/$2C00 share table 1
		return int(nametable & 1), offset
	case cartridge.MirrorOneScreenLo:
		return 0, offset
	case cartridge.MirrorOneScreenHi:
		return 1, offset
	default:
		// Horizontal: $2000/$2400 share table 0, $2800/$2C00 share table 1
		return int(nametable >> 1), offset
	}
}

// paletteIndex folds $3F00-$3FFF onto 32 bytes. The sprite palettes'
// transparent entries alias the background ones.
func paletteIndex(address uint16) uint16 {
	index := address & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	return index
}
