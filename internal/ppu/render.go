package ppu

import "math/bits"

// backgroundCycle runs the tile fetch pipeline and scroll updates for one
// dot of a visible or pre-render scanline
func (p *PPU) backgroundCycle() {
	if (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338) {
		p.updateShifters()

		switch (p.cycle - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.bgNextTileID = p.PPURead(0x2000 | uint16(p.vramAddr)&0x0FFF)
		case 2:
			v := p.vramAddr
			attr := p.PPURead(0x23C0 | v.nametableY()<<11 | v.nametableX()<<10 |
				(v.coarseY()>>2)<<3 | v.coarseX()>>2)
			// Each attribute byte covers a 4x4 tile area in 2x2 quadrants
			if v.coarseY()&0x02 != 0 {
				attr >>= 4
			}
			if v.coarseX()&0x02 != 0 {
				attr >>= 2
			}
			p.bgNextTileAttrib = attr & 0x03
		case 4:
			p.bgNextTileLSB = p.PPURead(p.backgroundPatternAddr())
		case 6:
			p.bgNextTileMSB = p.PPURead(p.backgroundPatternAddr() + 8)
		case 7:
			p.incrementScrollX()
		}
	}

	if p.cycle == 256 {
		p.incrementScrollY()
	}

	if p.cycle == 257 {
		p.loadBackgroundShifters()
		p.transferAddressX()
	}

	// Unused nametable fetches at the end of the line
	if p.cycle == 338 || p.cycle == 340 {
		p.bgNextTileID = p.PPURead(0x2000 | uint16(p.vramAddr)&0x0FFF)
	}

	if p.scanline == preRenderLine && p.cycle >= 280 && p.cycle < 305 {
		p.transferAddressY()
	}
}

func (p *PPU) backgroundPatternAddr() uint16 {
	var table uint16
	if p.control&ctrlPatternBackground != 0 {
		table = 0x1000
	}
	return table + uint16(p.bgNextTileID)<<4 + p.vramAddr.fineY()
}

// spriteCycle evaluates sprites for the next line at dot 257 and fetches
// their patterns at dot 340
func (p *PPU) spriteCycle() {
	if p.cycle == 257 && p.scanline >= 0 {
		p.evaluateSprites()
	}
	if p.cycle == 340 {
		p.fetchSpritePatterns()
	}
}

func (p *PPU) spriteHeight() int {
	if p.control&ctrlSpriteSize != 0 {
		return 16
	}
	return 8
}

// evaluateSprites selects, in table order, up to eight sprites whose Y
// range covers the next scanline
func (p *PPU) evaluateSprites() {
	for i := range p.spriteScanline {
		p.spriteScanline[i] = objectAttribute{0xFF, 0xFF, 0xFF, 0xFF}
		p.spriteShifterLo[i] = 0
		p.spriteShifterHi[i] = 0
	}
	p.spriteCount = 0
	p.spriteZeroOnLine = false

	height := p.spriteHeight()
	found := 0
	for entry := 0; entry < 64 && found < 9; entry++ {
		diff := p.scanline - int(p.oam[entry*4])
		if diff < 0 || diff >= height {
			continue
		}
		if found < 8 {
			if entry == 0 {
				p.spriteZeroOnLine = true
			}
			p.spriteScanline[found] = objectAttribute{
				y:         p.oam[entry*4],
				id:        p.oam[entry*4+1],
				attribute: p.oam[entry*4+2],
				x:         p.oam[entry*4+3],
			}
		}
		found++
	}

	if found > 8 {
		p.status |= statusSpriteOverflow
		found = 8
	}
	p.spriteCount = found
}

// fetchSpritePatterns loads the shifters of each selected sprite
func (p *PPU) fetchSpritePatterns() {
	for i := 0; i < p.spriteCount; i++ {
		sprite := p.spriteScanline[i]
		row := uint16(p.scanline - int(sprite.y))
		flipV := sprite.attribute&attrFlipV != 0

		var addr uint16
		if p.spriteHeight() == 8 {
			var table uint16
			if p.control&ctrlPatternSprite != 0 {
				table = 0x1000
			}
			if flipV {
				row = 7 - row
			}
			addr = table | uint16(sprite.id)<<4 | row&0x07
		} else {
			// 8x16 sprites pick their table from bit 0 of the tile id and
			// use an even/odd tile pair
			table := uint16(sprite.id&0x01) << 12
			tile := uint16(sprite.id & 0xFE)
			bottom := row >= 8
			if flipV {
				bottom = !bottom
				row = 7 - row&0x07
			}
			if bottom {
				tile++
			}
			addr = table | tile<<4 | row&0x07
		}

		lo := p.PPURead(addr)
		hi := p.PPURead(addr + 8)
		if sprite.attribute&attrFlipH != 0 {
			lo = bits.Reverse8(lo)
			hi = bits.Reverse8(hi)
		}
		p.spriteShifterLo[i] = lo
		p.spriteShifterHi[i] = hi
	}
}

// loadBackgroundShifters moves the prefetched tile into the low byte of the
// shifters, expanding the attribute bits to a full byte
func (p *PPU) loadBackgroundShifters() {
	p.bgShifterPatLo = p.bgShifterPatLo&0xFF00 | uint16(p.bgNextTileLSB)
	p.bgShifterPatHi = p.bgShifterPatHi&0xFF00 | uint16(p.bgNextTileMSB)

	p.bgShifterAttrLo &= 0xFF00
	if p.bgNextTileAttrib&0x01 != 0 {
		p.bgShifterAttrLo |= 0x00FF
	}
	p.bgShifterAttrHi &= 0xFF00
	if p.bgNextTileAttrib&0x02 != 0 {
		p.bgShifterAttrHi |= 0x00FF
	}
}

func (p *PPU) updateShifters() {
	if p.mask&maskRenderBackground != 0 {
		p.bgShifterPatLo <<= 1
		p.bgShifterPatHi <<= 1
		p.bgShifterAttrLo <<= 1
		p.bgShifterAttrHi <<= 1
	}

	if p.mask&maskRenderSprites != 0 && p.cycle >= 1 && p.cycle < 258 {
		for i := 0; i < p.spriteCount; i++ {
			if p.spriteScanline[i].x > 0 {
				p.spriteScanline[i].x--
			} else {
				p.spriteShifterLo[i] <<= 1
				p.spriteShifterHi[i] <<= 1
			}
		}
	}
}

func (p *PPU) incrementScrollX() {
	if !p.renderingEnabled() {
		return
	}
	if p.vramAddr.coarseX() == 31 {
		p.vramAddr.setCoarseX(0)
		p.vramAddr.setNametableX(^p.vramAddr.nametableX())
	} else {
		p.vramAddr.setCoarseX(p.vramAddr.coarseX() + 1)
	}
}

func (p *PPU) incrementScrollY() {
	if !p.renderingEnabled() {
		return
	}
	if p.vramAddr.fineY() < 7 {
		p.vramAddr.setFineY(p.vramAddr.fineY() + 1)
		return
	}

	p.vramAddr.setFineY(0)
	switch p.vramAddr.coarseY() {
	case 29:
		// Last row of tiles; the attribute rows follow
		p.vramAddr.setCoarseY(0)
		p.vramAddr.setNametableY(^p.vramAddr.nametableY())
	case 31:
		// Pointer is in attribute memory, wrap without switching
		p.vramAddr.setCoarseY(0)
	default:
		p.vramAddr.setCoarseY(p.vramAddr.coarseY() + 1)
	}
}

func (p *PPU) transferAddressX() {
	if !p.renderingEnabled() {
		return
	}
	p.vramAddr = p.vramAddr&^(loopyCoarseX|loopyNametableX) | p.tramAddr&(loopyCoarseX|loopyNametableX)
}

func (p *PPU) transferAddressY() {
	if !p.renderingEnabled() {
		return
	}
	yBits := loopyFineY | loopyNametableY | loopyCoarseY
	p.vramAddr = p.vramAddr&^yBits | p.tramAddr&yBits
}

// composePixel muxes the background and sprite pipelines into the pixel for
// the current dot and tracks sprite zero collisions
func (p *PPU) composePixel() {
	if p.scanline < 0 || p.scanline >= postRenderLine {
		return
	}

	var bgPixel, bgPalette uint8
	if p.mask&maskRenderBackground != 0 && (p.mask&maskRenderBackgroundLeft != 0 || p.cycle >= 9) {
		mux := uint16(0x8000) >> p.fineX
		bgPixel = bit(p.bgShifterPatHi&mux)<<1 | bit(p.bgShifterPatLo&mux)
		bgPalette = bit(p.bgShifterAttrHi&mux)<<1 | bit(p.bgShifterAttrLo&mux)
	}

	var fgPixel, fgPalette uint8
	var fgInFront bool
	if p.mask&maskRenderSprites != 0 && (p.mask&maskRenderSpritesLeft != 0 || p.cycle >= 9) {
		p.spriteZeroDrawn = false
		for i := 0; i < p.spriteCount; i++ {
			if p.spriteScanline[i].x != 0 {
				continue
			}
			fgPixel = bit(uint16(p.spriteShifterHi[i]&0x80))<<1 | bit(uint16(p.spriteShifterLo[i]&0x80))
			fgPalette = p.spriteScanline[i].attribute&attrPalette + 0x04
			fgInFront = p.spriteScanline[i].attribute&attrPriority == 0
			if fgPixel != 0 {
				// Sprites earlier in the table win
				if i == 0 {
					p.spriteZeroDrawn = true
				}
				break
			}
		}
	}

	var pixel, palette uint8
	switch {
	case bgPixel == 0 && fgPixel == 0:
	case bgPixel == 0:
		pixel, palette = fgPixel, fgPalette
	case fgPixel == 0:
		pixel, palette = bgPixel, bgPalette
	default:
		if fgInFront {
			pixel, palette = fgPixel, fgPalette
		} else {
			pixel, palette = bgPixel, bgPalette
		}
		p.checkSpriteZeroHit()
	}

	x, y := p.cycle-1, p.scanline
	if x >= 0 && x < ScreenWidth {
		c := p.GetColourFromPaletteRAM(palette, pixel)
		i := p.screen.PixOffset(x, y)
		p.screen.Pix[i+0] = c.R
		p.screen.Pix[i+1] = c.G
		p.screen.Pix[i+2] = c.B
		p.screen.Pix[i+3] = 0xFF
	}
}

// checkSpriteZeroHit is called when an opaque sprite and background pixel
// meet. The hit cannot occur in the left column when either is clipped.
func (p *PPU) checkSpriteZeroHit() {
	if !p.spriteZeroOnLine || !p.spriteZeroDrawn {
		return
	}
	if p.mask&maskRenderBackground == 0 || p.mask&maskRenderSprites == 0 {
		return
	}

	first := 1
	if p.mask&(maskRenderBackgroundLeft|maskRenderSpritesLeft) != maskRenderBackgroundLeft|maskRenderSpritesLeft {
		first = 9
	}
	if p.cycle >= first && p.cycle < 256 {
		p.status |= statusSpriteZeroHit
	}
}

func bit(v uint16) uint8 {
	if v != 0 {
		return 1
	}
	return 0
}
