// Package cartridge parses the DMG ROM header, selects the matching MBC,
// and owns the raw ROM/RAM buffers plus battery-save persistence.
package cartridge

import (
	"bytes"
	"fmt"
	"os"
)

// Header is the subset of the 0x150-byte cartridge header the core needs.
type Header struct {
	Title          string
	CGBFlag        uint8
	Type           uint8
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	HeaderChecksum uint8
}

const (
	offTitle    = 0x134
	titleLen    = 11
	offCGBFlag  = 0x143
	offType     = 0x147
	offROMSize  = 0x148
	offRAMSize  = 0x149
	offChecksum = 0x14D
)

// ParseHeader reads and validates the header embedded in a raw ROM image.
// data must be at least 0x150 bytes.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < 0x150 {
		return Header{}, fmt.Errorf("cartridge: image too small for header (%d bytes)", len(data))
	}

	var x uint8
	for i := offTitle; i <= 0x14C; i++ {
		x = x - data[i] - 1
	}
	if data[offChecksum] != x {
		return Header{}, fmt.Errorf("cartridge: header checksum mismatch: got 0x%02X, want 0x%02X", data[offChecksum], x)
	}

	title := bytes.TrimRight(data[offTitle:offTitle+titleLen], "\x00")
	h := Header{
		Title:          string(title),
		CGBFlag:        data[offCGBFlag],
		Type:           data[offType],
		ROMSizeCode:    data[offROMSize],
		RAMSizeCode:    data[offRAMSize],
		HeaderChecksum: data[offChecksum],
	}
	return h, nil
}

func romSize(code uint8) int { return 32 * 1024 << code }

func ramSize(code uint8) int {
	n := 512 << (2 * int(code))
	if n < 2048 {
		return 2048
	}
	return n
}

// MBC is the memory-bank-controller seam: bank switching and RAM gating
// over the shared ROM/RAM buffers it never outlives.
type MBC interface {
	ReadROM(addr uint16) uint8
	WriteROM(addr uint16, v uint8)
	ReadRAM(addr uint16) uint8
	WriteRAM(addr uint16, v uint8)

	snapshot() MBCState
	restore(MBCState)
}

// MBCState is a gob-serializable union of every MBC variant's
// bank-select registers; only the fields relevant to the cartridge's
// actual MBC type are populated at snapshot time.
type MBCState struct {
	ROMBankLow5, ROMBankHigh2 uint8
	ROMBank                   uint8
	RAMBank                   uint8
	RAMEnable                 bool
	Mode                      uint8
	RTC, Latched              rtcState
	LastLatchVal              uint8
}

// rtcState mirrors the rtc struct for gob serialization.
type rtcState struct {
	Seconds, Minutes, Hours, DayLow, DayHigh uint8
}

// Cartridge owns the ROM/RAM buffers and the active MBC, and tracks
// whether RAM needs flushing to the save file.
type Cartridge struct {
	Header   Header
	rom      []byte
	ram      []byte
	mbc      MBC
	dirty    bool
	savePath string
}

// Load parses header, allocates ROM/RAM, selects the MBC from the
// cartridge type code, and attempts to load a matching .sav file.
func Load(data []byte, savePath string) (*Cartridge, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	size := romSize(h.ROMSizeCode)
	if len(data) < size {
		return nil, fmt.Errorf("cartridge: ROM data too small: want %d bytes, got %d", size, len(data))
	}
	rom := make([]byte, size)
	copy(rom, data[:size])

	ram := make([]byte, ramSize(h.RAMSizeCode))

	c := &Cartridge{Header: h, rom: rom, ram: ram, savePath: savePath}

	mbc, err := newMBC(h.Type, rom, ram)
	if err != nil {
		return nil, err
	}
	c.mbc = mbc

	if savePath != "" {
		if saved, err := os.ReadFile(savePath); err == nil {
			copy(c.ram, saved)
		}
	}

	return c, nil
}

func newMBC(typeCode uint8, rom, ram []byte) (MBC, error) {
	switch typeCode {
	case 0x00, 0x08, 0x09:
		return &mbc0{rom: rom}, nil
	case 0x01, 0x02, 0x03:
		return &mbc1{rom: rom, ram: ram}, nil
	case 0x05, 0x06:
		return &mbc2{rom: rom, ram: ram}, nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return &mbc3{rom: rom, ram: ram, hasTimer: typeCode == 0x0F || typeCode == 0x10}, nil
	default:
		return nil, fmt.Errorf("cartridge: unknown cartridge type code 0x%02X", typeCode)
	}
}

// Read dispatches a ROM or cartridge-RAM read by absolute bus address.
// Callers (the Bus) are expected to only forward addresses in
// [0x0000,0x8000) and [0xA000,0xC000).
func (c *Cartridge) Read(addr uint16) uint8 {
	if addr < 0x8000 {
		return c.mbc.ReadROM(addr)
	}
	return c.mbc.ReadRAM(addr)
}

// Write dispatches a control-register or cartridge-RAM write.
func (c *Cartridge) Write(addr uint16, v uint8) {
	if addr < 0x8000 {
		c.mbc.WriteROM(addr, v)
		return
	}
	before := c.readRAMRaw(addr)
	c.mbc.WriteRAM(addr, v)
	if c.readRAMRaw(addr) != before {
		c.dirty = true
	}
}

func (c *Cartridge) readRAMRaw(addr uint16) uint8 { return c.mbc.ReadRAM(addr) }

// IsRAMDirty reports whether a write has changed RAM contents, or a
// savestate restore has replaced them, since the last flush. A RAM write
// that stores the value already there does not set the flag.
func (c *Cartridge) IsRAMDirty() bool { return c.dirty }

// FlushSave writes RAM to the save path and clears the dirty flag, if a
// save path was configured. A write failure is reported but does not
// clear the dirty flag, so the host can retry later.
func (c *Cartridge) FlushSave() error {
	if c.savePath == "" || !c.dirty {
		return nil
	}
	if err := os.WriteFile(c.savePath, c.ram, 0o644); err != nil {
		return fmt.Errorf("cartridge: save flush failed: %w", err)
	}
	c.dirty = false
	return nil
}

// State is a gob-serializable snapshot of cartridge RAM and the active
// MBC's bank-select registers, for savestates. ROM is never captured:
// it is immutable and reloaded from the ROM file.
type State struct {
	RAM []byte
	MBC MBCState
}

// Snapshot captures cartridge RAM and MBC register state.
func (c *Cartridge) Snapshot() State {
	ram := make([]byte, len(c.ram))
	copy(ram, c.ram)
	return State{RAM: ram, MBC: c.mbc.snapshot()}
}

// Restore replaces cartridge RAM and MBC register state with a
// previously captured snapshot.
func (c *Cartridge) Restore(s State) {
	copy(c.ram, s.RAM)
	c.mbc.restore(s.MBC)
	c.dirty = true
}
