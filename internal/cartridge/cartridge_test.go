package cartridge

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const (
	validINESMagic = "NES\x1A"
	invalidMagic   = "ROM\x1A"
)

// createValidINESHeader creates a 16-byte iNES header for testing
func createValidINESHeader(prgSize, chrSize, mapper, flags6, flags7 uint8) []byte {
	header := make([]byte, 16)
	copy(header[0:4], validINESMagic)
	header[4] = prgSize
	header[5] = chrSize
	header[6] = (mapper << 4) | (flags6 & 0x0F)
	header[7] = (mapper & 0xF0) | (flags7 & 0x0F)
	return header
}

// createMinimalValidROM creates a minimal valid iNES ROM with specified sizes
func createMinimalValidROM(prgSize, chrSize uint8) []byte {
	header := createValidINESHeader(prgSize, chrSize, 0, 0, 0)

	prgData := make([]byte, int(prgSize)*16384)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}

	chrData := make([]byte, int(chrSize)*8192)
	for i := range chrData {
		chrData[i] = uint8((i + 128) % 256)
	}

	rom := append(header, prgData...)
	return append(rom, chrData...)
}

func TestLoadFromReader_ValidiNESFormat_ShouldSucceed(t *testing.T) {
	tests := []struct {
		name        string
		prgSize     uint8
		chrSize     uint8
		expectedPRG int
		expectedCHR int
	}{
		{"16KB PRG, 8KB CHR", 1, 1, 16384, 8192},
		{"32KB PRG, 8KB CHR", 2, 1, 32768, 8192},
		{"16KB PRG, CHR RAM", 1, 0, 16384, 8192},
		{"32KB PRG, 16KB CHR", 2, 2, 32768, 16384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(tt.prgSize, tt.chrSize)))
			if err != nil {
				t.Fatalf("Expected successful load, got error: %v", err)
			}
			if !cart.IsValid() {
				t.Fatal("Expected valid cartridge")
			}
			if len(cart.prgMemory) != tt.expectedPRG {
				t.Errorf("Expected PRG ROM size %d, got %d", tt.expectedPRG, len(cart.prgMemory))
			}
			if len(cart.chrMemory) != tt.expectedCHR {
				t.Errorf("Expected CHR size %d, got %d", tt.expectedCHR, len(cart.chrMemory))
			}
			if cart.HasCHRRAM() != (tt.chrSize == 0) {
				t.Errorf("HasCHRRAM = %v for CHR size %d", cart.HasCHRRAM(), tt.chrSize)
			}
		})
	}
}

func TestLoadFromReader_InvalidMagicNumber_ShouldFail(t *testing.T) {
	rom := createMinimalValidROM(1, 1)
	copy(rom[0:4], invalidMagic)

	cart, err := LoadFromReader(bytes.NewReader(rom))
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("Expected ErrInvalidHeader, got %v", err)
	}
	if cart.IsValid() {
		t.Fatal("Expected invalid cartridge for bad magic")
	}
}

func TestLoadFromReader_MapperIdentification_ShouldExtractCorrectly(t *testing.T) {
	tests := []struct {
		name   string
		mapper uint8
	}{
		{"NROM", 0},
		{"MMC1", 1},
		{"UxROM", 2},
		{"CNROM", 3},
		{"MMC3", 4},
		{"GxROM", 66},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := append(createValidINESHeader(2, 1, tt.mapper, 0, 0), make([]byte, 2*16384+8192)...)
			cart, err := LoadFromBytes(rom)
			if err != nil {
				t.Fatalf("Expected success, got error: %v", err)
			}
			if cart.MapperID() != tt.mapper {
				t.Errorf("Expected mapper %d, got %d", tt.mapper, cart.MapperID())
			}
		})
	}
}

func TestLoadFromReader_UnsupportedMapper_ShouldFail(t *testing.T) {
	rom := append(createValidINESHeader(1, 1, 99, 0, 0), make([]byte, 16384+8192)...)

	_, err := LoadFromBytes(rom)
	if !errors.Is(err, ErrUnsupportedMapper) {
		t.Fatalf("Expected ErrUnsupportedMapper, got %v", err)
	}
}

func TestLoadFromReader_MirroringModes_ShouldDetectCorrectly(t *testing.T) {
	tests := []struct {
		name     string
		flags6   uint8
		expected MirrorMode
	}{
		{"horizontal", 0x00, MirrorHorizontal},
		{"vertical", 0x01, MirrorVertical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := append(createValidINESHeader(1, 1, 0, tt.flags6, 0), make([]byte, 16384+8192)...)
			cart, err := LoadFromBytes(rom)
			if err != nil {
				t.Fatalf("Expected success, got error: %v", err)
			}
			if cart.Mirror() != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, cart.Mirror())
			}
		})
	}
}

func TestLoadFromReader_BatteryFlag_ShouldBeReported(t *testing.T) {
	plain, err := NewTestROMBuilder().BuildCartridge()
	if err != nil {
		t.Fatalf("build plain ROM: %v", err)
	}
	if plain.HasBattery() {
		t.Error("ROM without the battery flag reports a battery")
	}

	battery, err := NewTestROMBuilder().WithMapper(1).WithBattery().BuildCartridge()
	if err != nil {
		t.Fatalf("build battery ROM: %v", err)
	}
	if !battery.HasBattery() {
		t.Error("battery flag in flags 6 not reported")
	}
}

func TestLoadFromReader_TrainerHandling_ShouldSkipCorrectly(t *testing.T) {
	header := createValidINESHeader(1, 1, 0, 0x04, 0)
	trainer := bytes.Repeat([]byte{0xFF}, 512)
	prgData := make([]byte, 16384)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}

	rom := append(header, trainer...)
	rom = append(rom, prgData...)
	rom = append(rom, make([]byte, 8192)...)

	cart, err := LoadFromBytes(rom)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if cart.prgMemory[0] != 0 || cart.prgMemory[1] != 1 {
		t.Error("PRG ROM data doesn't match expected pattern, trainer may not have been skipped")
	}
}

func TestLoadFromReader_TruncatedData_ShouldFail(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"incomplete header", []byte("NES\x1A\x01\x01")},
		{"incomplete PRG", append(createValidINESHeader(1, 1, 0, 0, 0), make([]byte, 8192)...)},
		{"incomplete CHR", append(createValidINESHeader(1, 1, 0, 0, 0), make([]byte, 16384+4096)...)},
		{"missing trainer", append(createValidINESHeader(1, 1, 0, 0x04, 0), make([]byte, 100)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := LoadFromBytes(tt.data)
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("Expected ErrTruncated, got %v", err)
			}
			if cart != nil {
				t.Fatal("Expected nil cartridge for truncated data")
			}
		})
	}
}

func TestLoadFromReader_ZeroPRGSize_ShouldFail(t *testing.T) {
	rom := append(createValidINESHeader(0, 1, 0, 0, 0), make([]byte, 8192)...)

	if _, err := LoadFromBytes(rom); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("Expected ErrInvalidHeader for zero PRG size, got %v", err)
	}
}

func createTestROMFile(t *testing.T, data []byte) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "test.nes")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		t.Fatalf("Failed to create test ROM file: %v", err)
	}
	return filename
}

func TestLoadFromFile_ValidFile_ShouldSucceed(t *testing.T) {
	cart, err := LoadFromFile(createTestROMFile(t, createMinimalValidROM(1, 1)))
	if err != nil {
		t.Fatalf("Expected success loading from file, got error: %v", err)
	}
	if !cart.IsValid() {
		t.Fatal("Expected valid cartridge")
	}
}

func TestLoadFromFile_EmptyFile_ShouldFail(t *testing.T) {
	cart, err := LoadFromFile(createTestROMFile(t, []byte{}))
	if err == nil {
		t.Fatal("Expected error for empty file, got success")
	}
	if cart != nil {
		t.Fatal("Expected nil cartridge for empty file")
	}
}

func TestLoadFromFile_NonexistentFile_ShouldFail(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.nes")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestCartridge_CPURead_UnclaimedAddressFallsThrough(t *testing.T) {
	cart, err := LoadFromBytes(createMinimalValidROM(1, 1))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, addr := range []uint16{0x0000, 0x2002, 0x4016, 0x5FFF} {
		if _, ok := cart.CPURead(addr); ok {
			t.Errorf("Expected 0x%04X to be unclaimed", addr)
		}
		if cart.CPUWrite(addr, 0x55) {
			t.Errorf("Expected write to 0x%04X to be unclaimed", addr)
		}
	}
}

func TestCartridge_CHRRAMAccess_ShouldAllowWriteRead(t *testing.T) {
	cart, err := NewTestROMBuilder().WithCHRRAM().BuildCartridge()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !cart.PPUWrite(0x1234, 0xAB) {
		t.Fatal("Expected CHR RAM write to be claimed")
	}
	if v, ok := cart.PPURead(0x1234); !ok || v != 0xAB {
		t.Errorf("Expected 0xAB from CHR RAM, got 0x%02X (ok=%v)", v, ok)
	}
}

func TestCartridge_CHRROM_ShouldIgnoreWrites(t *testing.T) {
	cart, err := NewTestROMBuilder().WithCHRData([]uint8{0x11, 0x22}).BuildCartridge()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if cart.PPUWrite(0x0001, 0xFF) {
		t.Error("Expected CHR ROM write to be rejected")
	}
	if v, _ := cart.PPURead(0x0001); v != 0x22 {
		t.Errorf("Expected CHR ROM byte 0x22, got 0x%02X", v)
	}
}

func BenchmarkLoadFromReader_LargeROM(b *testing.B) {
	rom := createMinimalValidROM(16, 16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadFromBytes(rom); err != nil {
			b.Fatalf("Failed to load ROM: %v", err)
		}
	}
}
