package cartridge

import (
	"fmt"
)

// TestROMConfig describes an iNES image to synthesise for tests and demos
type TestROMConfig struct {
	PRGSize      uint8            // PRG ROM size in 16KB units
	CHRSize      uint8            // CHR ROM size in 8KB units (0 = CHR RAM)
	MapperID     uint8            // Mapper number
	Mirroring    MirrorMode       // Nametable mirroring
	HasBattery   bool             // Battery-backed SRAM
	HasTrainer   bool             // 512-byte trainer
	Instructions []uint8          // Program placed at the start of PRG ROM
	InitialData  map[uint16]uint8 // Bytes at specific PRG offsets
	ResetVector  uint16
	IRQVector    uint16
	NMIVector    uint16
	CHRData      []uint8
	TrainerData  []uint8

	// FillBanks stamps every 8KB PRG bank and every 1KB CHR bank with its
	// own index so bank switching can be observed through reads.
	FillBanks bool
}

// TestROMBuilder provides a fluent interface for building test ROMs
type TestROMBuilder struct {
	config TestROMConfig
}

// NewTestROMBuilder creates a new test ROM builder with default configuration
func NewTestROMBuilder() *TestROMBuilder {
	return &TestROMBuilder{
		config: TestROMConfig{
			PRGSize:     1,
			CHRSize:     1,
			Mirroring:   MirrorHorizontal,
			InitialData: make(map[uint16]uint8),
			ResetVector: 0x8000,
			IRQVector:   0x8000,
			NMIVector:   0x8000,
		},
	}
}

// WithPRGSize sets the PRG ROM size in 16KB units
func (b *TestROMBuilder) WithPRGSize(size uint8) *TestROMBuilder {
	b.config.PRGSize = size
	return b
}

// WithCHRSize sets the CHR ROM size in 8KB units (0 = CHR RAM)
func (b *TestROMBuilder) WithCHRSize(size uint8) *TestROMBuilder {
	b.config.CHRSize = size
	return b
}

// WithCHRRAM configures the ROM to use CHR RAM instead of CHR ROM
func (b *TestROMBuilder) WithCHRRAM() *TestROMBuilder {
	b.config.CHRSize = 0
	return b
}

// WithMapper sets the mapper ID
func (b *TestROMBuilder) WithMapper(mapperID uint8) *TestROMBuilder {
	b.config.MapperID = mapperID
	return b
}

// WithMirroring sets the nametable mirroring mode
func (b *TestROMBuilder) WithMirroring(mirroring MirrorMode) *TestROMBuilder {
	b.config.Mirroring = mirroring
	return b
}

// WithBattery sets the battery flag
func (b *TestROMBuilder) WithBattery() *TestROMBuilder {
	b.config.HasBattery = true
	return b
}

// WithTrainer adds a 512-byte trainer
func (b *TestROMBuilder) WithTrainer(data []uint8) *TestROMBuilder {
	b.config.HasTrainer = true
	b.config.TrainerData = make([]uint8, trainerSize)
	copy(b.config.TrainerData, data)
	return b
}

// WithInstructions places a program at the start of PRG ROM (CPU 0x8000)
func (b *TestROMBuilder) WithInstructions(instructions []uint8) *TestROMBuilder {
	b.config.Instructions = append([]uint8(nil), instructions...)
	return b
}

// WithData sets bytes starting at a PRG ROM offset
func (b *TestROMBuilder) WithData(offset uint16, data []uint8) *TestROMBuilder {
	for i, value := range data {
		b.config.InitialData[offset+uint16(i)] = value
	}
	return b
}

// WithResetVector sets the reset vector
func (b *TestROMBuilder) WithResetVector(address uint16) *TestROMBuilder {
	b.config.ResetVector = address
	return b
}

// WithIRQVector sets the IRQ vector
func (b *TestROMBuilder) WithIRQVector(address uint16) *TestROMBuilder {
	b.config.IRQVector = address
	return b
}

// WithNMIVector sets the NMI vector
func (b *TestROMBuilder) WithNMIVector(address uint16) *TestROMBuilder {
	b.config.NMIVector = address
	return b
}

// WithCHRData sets the CHR ROM initial data
func (b *TestROMBuilder) WithCHRData(data []uint8) *TestROMBuilder {
	b.config.CHRData = append([]uint8(nil), data...)
	return b
}

// WithFilledBanks stamps each bank with its index
func (b *TestROMBuilder) WithFilledBanks() *TestROMBuilder {
	b.config.FillBanks = true
	return b
}

// Build generates the ROM image
func (b *TestROMBuilder) Build() ([]byte, error) {
	return GenerateTestROM(b.config)
}

// BuildCartridge generates and loads the ROM as a cartridge
func (b *TestROMBuilder) BuildCartridge() (*Cartridge, error) {
	rom, err := b.Build()
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(rom)
}

// GenerateTestROM creates an iNES image based on the provided configuration
func GenerateTestROM(config TestROMConfig) ([]byte, error) {
	header, err := createINESHeader(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create iNES header: %w", err)
	}

	result := append([]byte{}, header...)

	if config.HasTrainer {
		trainer := make([]uint8, trainerSize)
		copy(trainer, config.TrainerData)
		result = append(result, trainer...)
	}

	prgROM, err := createPRGROM(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create PRG ROM: %w", err)
	}
	result = append(result, prgROM...)

	if config.CHRSize > 0 {
		result = append(result, createCHRROM(config)...)
	}

	return result, nil
}

// createINESHeader creates an iNES header based on configuration
func createINESHeader(config TestROMConfig) ([]byte, error) {
	if config.PRGSize == 0 {
		return nil, fmt.Errorf("PRG ROM size cannot be zero")
	}

	header := make([]byte, 16)
	copy(header[0:4], "NES\x1A")
	header[4] = config.PRGSize
	header[5] = config.CHRSize

	flags6 := uint8(0)
	if config.Mirroring == MirrorVertical {
		flags6 |= 0x01
	}
	if config.HasBattery {
		flags6 |= 0x02
	}
	if config.HasTrainer {
		flags6 |= 0x04
	}
	flags6 |= (config.MapperID & 0x0F) << 4
	header[6] = flags6
	header[7] = config.MapperID & 0xF0

	return header, nil
}

// createPRGROM lays out the program, data and vectors. Vectors live at the
// end of the last bank, which every supported mapper fixes at 0xE000-0xFFFF
// after reset.
func createPRGROM(config TestROMConfig) ([]byte, error) {
	size := int(config.PRGSize) * prgBankSize
	prgROM := make([]byte, size)

	if config.FillBanks {
		for i := range prgROM {
			prgROM[i] = uint8(i / 0x2000)
		}
	}

	if len(config.Instructions) > size-6 {
		return nil, fmt.Errorf("instructions too large for PRG ROM")
	}
	copy(prgROM, config.Instructions)

	for offset, value := range config.InitialData {
		if int(offset) < size {
			prgROM[offset] = value
		}
	}

	vectors := size - 6
	prgROM[vectors+0] = uint8(config.NMIVector & 0xFF)
	prgROM[vectors+1] = uint8(config.NMIVector >> 8)
	prgROM[vectors+2] = uint8(config.ResetVector & 0xFF)
	prgROM[vectors+3] = uint8(config.ResetVector >> 8)
	prgROM[vectors+4] = uint8(config.IRQVector & 0xFF)
	prgROM[vectors+5] = uint8(config.IRQVector >> 8)

	return prgROM, nil
}

// createCHRROM creates CHR ROM data based on configuration
func createCHRROM(config TestROMConfig) []byte {
	size := int(config.CHRSize) * chrBankSize
	chrROM := make([]byte, size)

	if config.FillBanks {
		for i := range chrROM {
			chrROM[i] = uint8(i / 0x0400)
		}
	}
	copy(chrROM, config.CHRData)

	return chrROM
}
