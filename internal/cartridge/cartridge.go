// Package cartridge implements iNES loading and the mapper abstraction for NES cartridges.
package cartridge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Load errors. Callers match them with errors.Is.
var (
	ErrInvalidHeader     = errors.New("invalid iNES header")
	ErrUnsupportedMapper = errors.New("unsupported mapper")
	ErrTruncated         = errors.New("truncated ROM data")
)

const (
	prgBankSize = 0x4000
	chrBankSize = 0x2000
	trainerSize = 512
)

// Cartridge represents a NES cartridge
type Cartridge struct {
	// ROM data
	prgMemory []uint8
	chrMemory []uint8

	prgBanks uint8
	chrBanks uint8

	// Mapper information
	mapperID uint8
	mapper   Mapper

	// Mirroring declared by the header
	hwMirror MirrorMode

	hasBattery bool
	valid      bool
}

// iNES header structure
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// LoadFromFile loads a cartridge from an iNES file
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cart, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cart, nil
}

// LoadFromBytes loads a cartridge from an in-memory iNES image
func LoadFromBytes(data []byte) (*Cartridge, error) {
	return LoadFromReader(bytes.NewReader(data))
}

// LoadFromReader loads a cartridge from an io.Reader
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return nil, ErrInvalidHeader
	}
	if header.PRGROMSize == 0 {
		return nil, fmt.Errorf("%w: PRG ROM size cannot be zero", ErrInvalidHeader)
	}

	cart := &Cartridge{
		prgBanks:   header.PRGROMSize,
		chrBanks:   header.CHRROMSize,
		mapperID:   (header.Flags7 & 0xF0) | (header.Flags6 >> 4),
		hasBattery: (header.Flags6 & 0x02) != 0,
		hwMirror:   MirrorHorizontal,
	}
	if (header.Flags6 & 0x01) != 0 {
		cart.hwMirror = MirrorVertical
	}

	mapper, err := newMapper(cart.mapperID, cart.prgBanks, cart.chrBanks)
	if err != nil {
		return nil, err
	}

	// Skip trainer if present
	if (header.Flags6 & 0x04) != 0 {
		if _, err := io.CopyN(io.Discard, r, trainerSize); err != nil {
			return nil, fmt.Errorf("%w: trainer: %v", ErrTruncated, err)
		}
	}

	cart.prgMemory = make([]uint8, int(cart.prgBanks)*prgBankSize)
	if _, err := io.ReadFull(r, cart.prgMemory); err != nil {
		return nil, fmt.Errorf("%w: PRG ROM: %v", ErrTruncated, err)
	}

	if cart.chrBanks == 0 {
		// CHR RAM
		cart.chrMemory = make([]uint8, chrBankSize)
	} else {
		cart.chrMemory = make([]uint8, int(cart.chrBanks)*chrBankSize)
		if _, err := io.ReadFull(r, cart.chrMemory); err != nil {
			return nil, fmt.Errorf("%w: CHR ROM: %v", ErrTruncated, err)
		}
	}

	cart.mapper = mapper
	cart.valid = true
	return cart, nil
}

// IsValid reports whether the cartridge was fully loaded and may be inserted
func (c *Cartridge) IsValid() bool {
	return c != nil && c.valid && c.mapper != nil
}

// CPURead offers a CPU read to the mapper. The bool is false when the
// cartridge does not claim the address.
func (c *Cartridge) CPURead(addr uint16) (uint8, bool) {
	mapped, data, ok := c.mapper.CPUMapRead(addr)
	if !ok {
		return 0, false
	}
	if mapped == MappedDirect {
		return data, true
	}
	return readBank(c.prgMemory, mapped), true
}

// CPUWrite offers a CPU write to the mapper
func (c *Cartridge) CPUWrite(addr uint16, data uint8) bool {
	mapped, ok := c.mapper.CPUMapWrite(addr, data)
	if !ok {
		return false
	}
	if mapped != MappedDirect {
		writeBank(c.prgMemory, mapped, data)
	}
	return true
}

// PPURead offers a PPU read (pattern space) to the mapper
func (c *Cartridge) PPURead(addr uint16) (uint8, bool) {
	mapped, ok := c.mapper.PPUMapRead(addr)
	if !ok {
		return 0, false
	}
	return readBank(c.chrMemory, mapped), true
}

// PPUWrite offers a PPU write to the mapper. Only CHR RAM accepts writes.
func (c *Cartridge) PPUWrite(addr uint16, data uint8) bool {
	mapped, ok := c.mapper.PPUMapWrite(addr)
	if !ok {
		return false
	}
	writeBank(c.chrMemory, mapped, data)
	return true
}

// Mirror returns the active nametable mirroring, honoring mapper overrides
func (c *Cartridge) Mirror() MirrorMode {
	if m := c.mapper.Mirror(); m != MirrorHardware {
		return m
	}
	return c.hwMirror
}

// Reset returns the mapper to its power-on state
func (c *Cartridge) Reset() {
	if c.mapper != nil {
		c.mapper.Reset()
	}
}

// Mapper returns the bank-switching logic bound to this cartridge
func (c *Cartridge) Mapper() Mapper {
	return c.mapper
}

// MapperID returns the iNES mapper number
func (c *Cartridge) MapperID() uint8 {
	return c.mapperID
}

// PRGBanks returns the number of 16KB PRG banks
func (c *Cartridge) PRGBanks() uint8 {
	return c.prgBanks
}

// CHRBanks returns the number of 8KB CHR banks; zero means CHR RAM
func (c *Cartridge) CHRBanks() uint8 {
	return c.chrBanks
}

// HasCHRRAM reports whether pattern memory is writable
func (c *Cartridge) HasCHRRAM() bool {
	return c.chrBanks == 0
}

// HasBattery reports whether the header declares battery-backed RAM
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// String summarises the cartridge for logs
func (c *Cartridge) String() string {
	return fmt.Sprintf("mapper %03d, PRG %dx16KB, CHR %dx8KB, %s", c.mapperID, c.prgBanks, c.chrBanks, c.hwMirror)
}

// readBank indexes storage defensively so a bad bank select never panics
func readBank(mem []uint8, mapped uint32) uint8 {
	if int(mapped) < len(mem) {
		return mem[mapped]
	}
	return 0
}

func writeBank(mem []uint8, mapped uint32, data uint8) {
	if int(mapped) < len(mem) {
		mem[mapped] = data
	}
}
