package emulator

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/rom"
)

// loopROM builds a minimal cartridge whose entry point is a NOP followed
// by a JR -2 that jumps back onto itself forever, enough to drive CPU
// cycles deterministically without ever halting or faulting.
func loopROM() []byte {
	b := rom.NewBuilder("LOOP", 0x00, 0x00, 0x00)
	b.SetByte(0x100, 0x00) // NOP
	b.SetByte(0x101, 0x18) // JR
	b.SetByte(0x102, 0xFE) // -2
	return b.Bytes()
}

func newTestEmulator(t *testing.T) *Emulator {
	t.Helper()
	e := New()
	e.Limiter.Enabled = false
	if err := e.LoadROM(loopROM(), ""); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	e.Start()
	return e
}

func TestRunFrameAdvancesApproximatelyOneFrame(t *testing.T) {
	e := newTestEmulator(t)
	before := e.CPU.Cycles
	if err := e.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	delta := e.CPU.Cycles - before
	if delta < CyclesPerFrame {
		t.Fatalf("frame advanced %d cycles, want >= %d", delta, CyclesPerFrame)
	}
	// The tight NOP/JR loop only uses 4- and 12-cycle steps, so overshoot
	// past the 70,224 boundary is small.
	if delta > CyclesPerFrame+12 {
		t.Fatalf("frame advanced %d cycles, overshoot too large past %d", delta, CyclesPerFrame)
	}
	if e.FrameCount != 1 {
		t.Fatalf("FrameCount = %d, want 1", e.FrameCount)
	}
}

func TestSaveLoadStateRoundTripDeterminism(t *testing.T) {
	data := loopROM()

	reference := New()
	reference.Limiter.Enabled = false
	if err := reference.LoadROM(data, ""); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	reference.Start()
	for i := 0; i < 5; i++ {
		if err := reference.RunFrame(); err != nil {
			t.Fatalf("reference RunFrame: %v", err)
		}
	}
	saved, err := reference.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := reference.RunFrame(); err != nil {
			t.Fatalf("reference RunFrame (continued): %v", err)
		}
	}
	wantCycles := reference.CPU.Cycles
	wantFrame := reference.FrameCount
	wantBuf := append([]uint32(nil), reference.FrameBuffer()...)

	restored := New()
	restored.Limiter.Enabled = false
	if err := restored.LoadROM(data, ""); err != nil {
		t.Fatalf("LoadROM (restored): %v", err)
	}
	if err := restored.LoadState(saved); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	restored.Start()
	for i := 0; i < 5; i++ {
		if err := restored.RunFrame(); err != nil {
			t.Fatalf("restored RunFrame: %v", err)
		}
	}

	if restored.CPU.Cycles != wantCycles {
		t.Fatalf("CPU.Cycles after restore+replay = %d, want %d", restored.CPU.Cycles, wantCycles)
	}
	if restored.FrameCount != wantFrame {
		t.Fatalf("FrameCount after restore+replay = %d, want %d", restored.FrameCount, wantFrame)
	}
	gotBuf := restored.FrameBuffer()
	if len(gotBuf) != len(wantBuf) {
		t.Fatalf("frame buffer length mismatch: %d vs %d", len(gotBuf), len(wantBuf))
	}
	for i := range gotBuf {
		if gotBuf[i] != wantBuf[i] {
			t.Fatalf("frame buffer diverged at pixel %d: %#x vs %#x", i, gotBuf[i], wantBuf[i])
		}
	}
}

func TestLoadROMRejectsBadChecksum(t *testing.T) {
	e := New()
	data := loopROM()
	data[0x14D] ^= 0xFF // corrupt the header checksum
	if err := e.LoadROM(data, ""); err == nil {
		t.Fatal("LoadROM accepted a corrupt header checksum")
	}
}

func TestResetReturnsToCartridgeEntryPoint(t *testing.T) {
	e := newTestEmulator(t)
	for i := 0; i < 3; i++ {
		_ = e.RunFrame()
	}
	e.Reset()
	if e.CPU.PC != 0x0100 {
		t.Fatalf("PC after Reset = %#04x, want 0x0100", e.CPU.PC)
	}
	if e.FrameCount != 0 {
		t.Fatalf("FrameCount after Reset = %d, want 0", e.FrameCount)
	}
}

func TestFrameBufferIsScreenSized(t *testing.T) {
	e := newTestEmulator(t)
	if len(e.FrameBuffer()) != 160*144 {
		t.Fatalf("frame buffer length = %d, want %d", len(e.FrameBuffer()), 160*144)
	}
}
