package ppu

import "image"

// GetPatternTable renders one 4KB pattern table as a 16x16 grid of tiles
// using the given palette
func (p *PPU) GetPatternTable(i int, palette uint8) *image.RGBA {
	img := p.patternTables[i&1]
	base := uint16(i&1) * 0x1000

	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := uint16(tileY*256 + tileX*16)
			for row := 0; row < 8; row++ {
				lsb := p.PPURead(base + offset + uint16(row))
				msb := p.PPURead(base + offset + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					pixel := (msb&0x01)<<1 | lsb&0x01
					lsb >>= 1
					msb >>= 1
					img.SetRGBA(tileX*8+(7-col), tileY*8+row, p.GetColourFromPaletteRAM(palette, pixel))
				}
			}
		}
	}
	return img
}

// GetNameTable renders one physical nametable with the current background
// pattern table and its own attribute bytes
func (p *PPU) GetNameTable(i int) *image.RGBA {
	img := p.nameTables[i&1]
	table := p.memory.NameTable(i)

	var patternBase uint16
	if p.control&ctrlPatternBackground != 0 {
		patternBase = 0x1000
	}

	for tileY := 0; tileY < 30; tileY++ {
		for tileX := 0; tileX < 32; tileX++ {
			id := uint16(table[tileY*32+tileX])
			attr := table[0x3C0+(tileY>>2)*8+(tileX>>2)]
			if tileY&0x02 != 0 {
				attr >>= 4
			}
			if tileX&0x02 != 0 {
				attr >>= 2
			}
			palette := attr & 0x03

			for row := 0; row < 8; row++ {
				lsb := p.PPURead(patternBase + id<<4 + uint16(row))
				msb := p.PPURead(patternBase + id<<4 + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					pixel := (msb>>(7-col)&0x01)<<1 | lsb>>(7-col)&0x01
					pal := palette
					if pixel == 0 {
						pal = 0 // backdrop
					}
					img.SetRGBA(tileX*8+col, tileY*8+row, p.GetColourFromPaletteRAM(pal, pixel))
				}
			}
		}
	}
	return img
}

// OAMEntry is a decoded object attribute entry for debug views
type OAMEntry struct {
	Y, ID, Attribute, X uint8
}

// OAMEntries decodes all 64 sprites
func (p *PPU) OAMEntries() [64]OAMEntry {
	var entries [64]OAMEntry
	for i := range entries {
		entries[i] = OAMEntry{
			Y:         p.oam[i*4],
			ID:        p.oam[i*4+1],
			Attribute: p.oam[i*4+2],
			X:         p.oam[i*4+3],
		}
	}
	return entries
}
