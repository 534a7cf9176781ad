// Package rom builds in-memory DMG cartridge images for tests: a real
// 0x150-byte header with a correct checksum, backed by a full ROM-size
// buffer callers can patch arbitrary bytes into.
package rom

import "os"

const (
	offTitle    = 0x134
	titleLen    = 11
	offType     = 0x147
	offROMSize  = 0x148
	offRAMSize  = 0x149
	offChecksum = 0x14D
)

// Builder accumulates a ROM image and recomputes the header checksum on
// demand.
type Builder struct {
	data []byte
}

// NewBuilder allocates a ROM of size `32 KiB << romSizeCode`, fills in
// the title/type/size header fields, and zero-fills the rest (0xNOP).
func NewBuilder(title string, typeCode, romSizeCode, ramSizeCode uint8) *Builder {
	size := 32 * 1024 << romSizeCode
	b := &Builder{data: make([]byte, size)}

	copy(b.data[offTitle:offTitle+titleLen], title)
	b.data[offType] = typeCode
	b.data[offROMSize] = romSizeCode
	b.data[offRAMSize] = ramSizeCode
	b.fixChecksum()
	return b
}

// SetByte patches one byte of the image and keeps the header checksum
// valid (the checksum only covers 0x134..0x14C, so a patch outside that
// range needs no recompute, but we do it unconditionally for simplicity).
func (b *Builder) SetByte(addr int, v uint8) {
	b.data[addr] = v
	b.fixChecksum()
}

// FillBank writes value across an entire 0x4000-byte ROM bank, useful for
// constructing MBC1 bank-switch fixtures.
func (b *Builder) FillBank(bank int, value uint8) {
	start := bank * 0x4000
	for i := start; i < start+0x4000 && i < len(b.data); i++ {
		b.data[i] = value
	}
}

func (b *Builder) fixChecksum() {
	var x uint8
	for i := offTitle; i <= 0x14C; i++ {
		x = x - b.data[i] - 1
	}
	b.data[offChecksum] = x
}

// Bytes returns the built image.
func (b *Builder) Bytes() []byte { return b.data }

// WriteFile persists the built image to path, for end-to-end tests that
// exercise file-based loading.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, b.data, 0o644)
}
