package memory

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/irq"
)

// stubReg is a trivial RegisterIO/PPURegisters double for bus-level tests
// that don't need real Timer/Joypad/PPU semantics.
type stubReg struct{ last uint8 }

func (s *stubReg) Read8(addr uint16) uint8     { return s.last }
func (s *stubReg) Write8(addr uint16, v uint8) { s.last = v }
func (s *stubReg) ReadReg(addr uint16) uint8   { return s.last }
func (s *stubReg) WriteReg(addr uint16, v uint8) { s.last = v }

func newTestBus() *Bus {
	b := New(irq.New())
	b.Timer = &stubReg{}
	b.Joypad = &stubReg{}
	b.PPU = &stubReg{}
	return b
}

func TestEchoRAMMirrorsWRAM(t *testing.T) {
	b := newTestBus()
	b.Write(0xC010, 0x42)
	if got := b.Read(0xE010); got != 0x42 {
		t.Fatalf("echo read = %#x, want 0x42", got)
	}
	b.Write(0xE020, 0x99)
	if got := b.Read(0xC020); got != 0x99 {
		t.Fatalf("WRAM read after echo write = %#x, want 0x99", got)
	}
}

func TestDMACopiesToOAM(t *testing.T) {
	b := newTestBus()
	for i := uint16(0); i < 0xA0; i++ {
		b.Write(0xC000+i, uint8(i))
	}
	b.Write(0xFF46, 0xC0)

	entry := 5
	base := uint16(entry * 4)
	if b.OAM[base] != 0x14 || b.OAM[base+1] != 0x15 || b.OAM[base+2] != 0x16 || b.OAM[base+3] != 0x17 {
		t.Fatalf("OAM entry 5 = %02x %02x %02x %02x, want 14 15 16 17",
			b.OAM[base], b.OAM[base+1], b.OAM[base+2], b.OAM[base+3])
	}
}

func TestUnusedRegionReadsFF(t *testing.T) {
	b := newTestBus()
	if got := b.Read(0xFEA5); got != 0xFF {
		t.Fatalf("unused region read = %#x, want 0xFF", got)
	}
}

func TestIEIFRouting(t *testing.T) {
	b := newTestBus()
	b.Write(0xFFFF, 0x1F)
	if b.IRQ.ReadIE() != 0x1F {
		t.Fatal("write to 0xFFFF did not reach IE")
	}
	b.Write(0xFF0F, 0x05)
	if b.IRQ.ReadIF() != 0x05 {
		t.Fatal("write to 0xFF0F did not reach IF")
	}
}
