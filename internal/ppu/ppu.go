// Package ppu implements the Picture Processing Unit (2C02) for the NES.
package ppu

import (
	"image"

	"nesemu/internal/cartridge"
	"nesemu/internal/memory"
)

const (
	// ScreenWidth and ScreenHeight are the visible frame dimensions
	ScreenWidth  = 256
	ScreenHeight = 240

	dotsPerScanline = 341
	preRenderLine   = -1
	postRenderLine  = 240
	vblankLine      = 241
	lastScanline    = 260
)

// Cartridge is the PPU's view of the cartridge: pattern memory, the
// mirroring mode, and the mapper for scanline notifications
type Cartridge interface {
	memory.PatternSource
	Mapper() cartridge.Mapper
}

// objectAttribute is one OAM entry
type objectAttribute struct {
	y         uint8
	id        uint8
	attribute uint8
	x         uint8
}

// Sprite attribute bits
const (
	attrPalette  uint8 = 0x03
	attrPriority uint8 = 0x20 // 1: behind background
	attrFlipH    uint8 = 0x40
	attrFlipV    uint8 = 0x80
)

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	// CPU-visible registers
	control uint8
	mask    uint8
	status  uint8

	// Scroll state
	vramAddr     loopy
	tramAddr     loopy
	fineX        uint8
	addressLatch bool
	dataBuffer   uint8

	memory *memory.PPUMemory
	cart   Cartridge

	// Timing
	scanline   int
	cycle      int
	oddFrame   bool
	frameCount uint64

	// Background pipeline
	bgNextTileID     uint8
	bgNextTileAttrib uint8
	bgNextTileLSB    uint8
	bgNextTileMSB    uint8
	bgShifterPatLo   uint16
	bgShifterPatHi   uint16
	bgShifterAttrLo  uint16
	bgShifterAttrHi  uint16

	// Object memory, 64 entries of 4 bytes
	oam     [256]uint8
	oamAddr uint8

	// Sprites selected for the next scanline
	spriteScanline   [8]objectAttribute
	spriteCount      int
	spriteShifterLo  [8]uint8
	spriteShifterHi  [8]uint8
	spriteZeroOnLine bool
	spriteZeroDrawn  bool

	screen        *image.RGBA
	nameTables    [2]*image.RGBA
	patternTables [2]*image.RGBA

	nmi           bool
	frameComplete bool
}

// New creates a new PPU with its own nametable and palette memory
func New() *PPU {
	p := &PPU{
		memory: memory.NewPPUMemory(),
		screen: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
	}
	for i := range p.nameTables {
		p.nameTables[i] = image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
		p.patternTables[i] = image.NewRGBA(image.Rect(0, 0, 128, 128))
	}
	p.Reset()
	return p
}

// ConnectCartridge attaches the cartridge's pattern memory and mirroring
func (p *PPU) ConnectCartridge(cart Cartridge) {
	p.cart = cart
	p.memory.ConnectCartridge(cart)
}

// Reset returns the PPU to its power-on state. Nametable and palette
// contents survive, as on hardware.
func (p *PPU) Reset() {
	p.control = 0
	p.mask = 0
	p.status = 0
	p.vramAddr = 0
	p.tramAddr = 0
	p.fineX = 0
	p.addressLatch = false
	p.dataBuffer = 0

	p.scanline = 0
	p.cycle = 0
	p.oddFrame = false
	p.frameCount = 0

	p.bgNextTileID = 0
	p.bgNextTileAttrib = 0
	p.bgNextTileLSB = 0
	p.bgNextTileMSB = 0
	p.bgShifterPatLo = 0
	p.bgShifterPatHi = 0
	p.bgShifterAttrLo = 0
	p.bgShifterAttrHi = 0

	p.oamAddr = 0
	p.spriteCount = 0
	p.spriteShifterLo = [8]uint8{}
	p.spriteShifterHi = [8]uint8{}
	p.spriteZeroOnLine = false
	p.spriteZeroDrawn = false

	p.nmi = false
	p.frameComplete = false
}

// Clock advances the PPU by one dot
func (p *PPU) Clock() {
	if p.scanline >= preRenderLine && p.scanline < postRenderLine {
		// Odd frames skip the first idle dot when rendering
		if p.scanline == 0 && p.cycle == 0 && p.oddFrame && p.renderingEnabled() {
			p.cycle = 1
		}

		if p.scanline == preRenderLine && p.cycle == 1 {
			p.status &^= statusVerticalBlank | statusSpriteZeroHit | statusSpriteOverflow
			p.spriteCount = 0
			p.spriteShifterLo = [8]uint8{}
			p.spriteShifterHi = [8]uint8{}
		}

		p.backgroundCycle()
		p.spriteCycle()
	}

	if p.scanline == vblankLine && p.cycle == 1 {
		p.status |= statusVerticalBlank
		if p.control&ctrlEnableNMI != 0 {
			p.nmi = true
		}
	}

	p.composePixel()

	p.cycle++
	if p.renderingEnabled() && p.cycle == 260 && p.scanline < postRenderLine && p.cart != nil {
		if mapper := p.cart.Mapper(); mapper != nil {
			mapper.Scanline()
		}
	}

	if p.cycle >= dotsPerScanline {
		p.cycle = 0
		p.scanline++
		if p.scanline > lastScanline {
			p.scanline = preRenderLine
			p.frameComplete = true
			p.frameCount++
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskRenderBackground|maskRenderSprites) != 0
}

// NMI reports and consumes a pending vertical blank interrupt request
func (p *PPU) NMI() bool {
	if p.nmi {
		p.nmi = false
		return true
	}
	return false
}

// FrameComplete reports whether a full frame has been produced since the
// last ClearFrameComplete
func (p *PPU) FrameComplete() bool {
	return p.frameComplete
}

// ClearFrameComplete acknowledges a completed frame
func (p *PPU) ClearFrameComplete() {
	p.frameComplete = false
}

// GetScreen returns the frame buffer. It is updated in place.
func (p *PPU) GetScreen() *image.RGBA {
	return p.screen
}

// Scanline returns the current scanline (-1 to 260)
func (p *PPU) Scanline() int {
	return p.scanline
}

// Cycle returns the current dot within the scanline
func (p *PPU) Cycle() int {
	return p.cycle
}

// FrameCount returns the number of frames completed since reset
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// Memory exposes the nametable and palette storage
func (p *PPU) Memory() *memory.PPUMemory {
	return p.memory
}
