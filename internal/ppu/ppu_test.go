package ppu

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/irq"
)

func newTestPPU() *PPU {
	vram := make([]uint8, 0x2000)
	oam := make([]uint8, 0xA0)
	return New(vram, oam, irq.New())
}

func TestVBlankCadenceOneFrame(t *testing.T) {
	p := newTestPPU()
	p.WriteReg(0xFF40, 0x80) // LCD enable only
	p.WriteReg(0xFF47, 0xE4) // BGP: identity mapping

	startLY := p.LY()
	vblankCount := 0
	remaining := 70224
	for remaining > 0 {
		step := 4
		if step > remaining {
			step = remaining
		}
		ifBefore := testReadIF(p)
		p.Advance(step)
		ifAfter := testReadIF(p)
		if ifAfter&(1<<irq.VBlank) != 0 && ifBefore&(1<<irq.VBlank) == 0 {
			vblankCount++
		}
		remaining -= step
	}

	if p.LY() != startLY {
		t.Fatalf("LY = %d after a full frame, want %d", p.LY(), startLY)
	}
	if vblankCount != 1 {
		t.Fatalf("VBlank observed %d times, want exactly 1", vblankCount)
	}

	for i, c := range p.FrameBuffer {
		if c != Palette[0] {
			t.Fatalf("pixel %d = %#x, want background color %#x", i, c, Palette[0])
		}
	}
}

// testReadIF peeks the interrupt controller's IF register through the
// PPU's irq field for edge detection in the test above.
func testReadIF(p *PPU) uint8 {
	return p.irq.ReadIF()
}

func TestLYStaysInRange(t *testing.T) {
	p := newTestPPU()
	p.WriteReg(0xFF40, 0x80)
	for i := 0; i < 100000; i += 20 {
		p.Advance(20)
		if p.LY() >= linesTotal {
			t.Fatalf("LY = %d, want < %d", p.LY(), linesTotal)
		}
	}
}

func TestLYWriteResetsToZero(t *testing.T) {
	p := newTestPPU()
	p.WriteReg(0xFF40, 0x80)
	p.Advance(1000)
	p.WriteReg(0xFF44, 0x55)
	if p.LY() != 0 {
		t.Fatalf("LY after write = %d, want 0", p.LY())
	}
}

func TestCoincidenceFlagInSTAT(t *testing.T) {
	p := newTestPPU()
	p.WriteReg(0xFF45, 0) // LYC = 0
	stat := p.ReadReg(0xFF41)
	if stat&0x04 == 0 {
		t.Fatal("coincidence bit not set when LY==LYC==0")
	}
}
