package cpu

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/irq"
)

// flatMem is a 64 KiB byte array satisfying MemoryInterface, used to
// exercise the CPU in isolation from the real bus.
type flatMem [0x10000]byte

func (m *flatMem) Read(addr uint16) uint8     { return m[addr] }
func (m *flatMem) Write(addr uint16, v uint8) { m[addr] = v }

func newTestCPU() (*CPU, *flatMem) {
	mem := &flatMem{}
	ic := irq.New()
	c := New(mem, ic)
	return c, mem
}

func TestFlagLowNibbleAlwaysZero(t *testing.T) {
	c, _ := newTestCPU()
	c.F = 0xFF
	c.setFlag(flagZ, true)
	if c.F&0x0F != 0 {
		t.Fatalf("F low nibble = %#x, want 0", c.F&0x0F)
	}
	c.SetAF(0xABCD)
	if c.F&0x0F != 0 {
		t.Fatalf("SetAF left F low nibble = %#x, want 0", c.F&0x0F)
	}
}

func TestAddAOverflow(t *testing.T) {
	c, _ := newTestCPU()
	c.A = 1
	c.aluAdd(0xFF, false)
	if c.A != 0 {
		t.Fatalf("A = %#x, want 0", c.A)
	}
	if !c.flag(flagZ) || !c.flag(flagH) || !c.flag(flagC) || c.flag(flagN) {
		t.Fatalf("flags = %#x, want Z=1 H=1 C=1 N=0", c.F)
	}
}

func TestIncMemoryWrap(t *testing.T) {
	c, mem := newTestCPU()
	c.SetHL(0xC000)
	mem[0xC000] = 0xFF
	cBefore := c.flag(flagC)
	c.incReg(6)
	if mem[0xC000] != 0x00 {
		t.Fatalf("[HL] = %#x, want 0", mem[0xC000])
	}
	if !c.flag(flagZ) || !c.flag(flagH) || c.flag(flagN) {
		t.Fatalf("flags = %#x, want Z=1 H=1 N=0", c.F)
	}
	if c.flag(flagC) != cBefore {
		t.Fatalf("C flag changed by INC, want unchanged")
	}
}

func TestDAAAfterAdd(t *testing.T) {
	c, _ := newTestCPU()
	c.A = 0x0A
	c.aluAdd(0x06, false)
	c.daa()
	if c.A != 0x10 {
		t.Fatalf("A = %#x, want 0x10", c.A)
	}
	if c.flag(flagZ) || c.flag(flagH) || c.flag(flagC) {
		t.Fatalf("flags = %#x, want Z=0 H=0 C=0", c.F)
	}
}

func TestAddSPSignedNegative(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0xFFFE
	c.SP = c.addSPSigned(-2)
	if c.SP != 0xFFFC {
		t.Fatalf("SP = %#x, want 0xFFFC", c.SP)
	}
	if c.flag(flagZ) || c.flag(flagN) || !c.flag(flagH) || !c.flag(flagC) {
		t.Fatalf("flags = %#x, want Z=0 N=0 H=1 C=1", c.F)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0xFFFE
	c.SetBC(0x1234)
	c.push16(c.BC())
	c.SetBC(0)
	c.SetBC(c.pop16())
	if c.BC() != 0x1234 {
		t.Fatalf("BC = %#x, want 0x1234", c.BC())
	}

	c.SetAF(0xAB0F) // low nibble of F must be masked to 0 on write
	if c.AF() != 0xAB00 {
		t.Fatalf("AF = %#x, want 0xAB00", c.AF())
	}
	c.push16(c.AF())
	c.SetAF(0)
	c.SetAF(c.pop16())
	if c.AF() != 0xAB00 {
		t.Fatalf("AF round-trip = %#x, want 0xAB00", c.AF())
	}
}

func TestInvalidOpcodeFaults(t *testing.T) {
	c, mem := newTestCPU()
	mem[c.PC] = 0xD3
	c.Step()
	if c.Fault == nil {
		t.Fatal("expected Fault after invalid opcode 0xD3")
	}
}

func TestEIDelaysIMEByOneInstruction(t *testing.T) {
	c, mem := newTestCPU()
	c.IME = false
	pc := c.PC
	mem[pc] = 0xFB   // EI
	mem[pc+1] = 0x00 // NOP
	mem[pc+2] = 0x00 // NOP

	c.Step() // executes EI
	c.ServiceInterrupts()
	if c.IME {
		t.Fatal("IME set immediately after EI, want delayed")
	}

	c.Step() // executes the instruction following EI
	c.ServiceInterrupts()
	if !c.IME {
		t.Fatal("IME not set after the instruction following EI completed")
	}
}

func TestHaltWakesOnPendingRegardlessOfIME(t *testing.T) {
	c, _ := newTestCPU()
	c.halted = true
	c.IME = false
	c.IRQ.WriteIE(1 << 0)
	c.IRQ.Raise(irq.VBlank)

	c.ServiceInterrupts()
	if c.halted {
		t.Fatal("HALT did not clear on pending interrupt with IME=0")
	}
	if c.PC != 0x0100 {
		t.Fatal("HALT wake with IME=0 should not vector")
	}
}

func TestInterruptDispatchPushesPCAndVectors(t *testing.T) {
	c, mem := newTestCPU()
	c.IME = true
	c.SP = 0xFFFE
	c.PC = 0x0200
	c.IRQ.WriteIE(1 << irq.Timer)
	c.IRQ.Raise(irq.Timer)

	c.ServiceInterrupts()

	if c.PC != irq.Timer.Vector() {
		t.Fatalf("PC = %#x, want %#x", c.PC, irq.Timer.Vector())
	}
	if c.IME {
		t.Fatal("IME should be cleared on dispatch")
	}
	pushed := uint16(mem[0xFFFC]) | uint16(mem[0xFFFD])<<8
	if pushed != 0x0200 {
		t.Fatalf("pushed return PC = %#x, want 0x0200", pushed)
	}
}

func TestBitSetResClearFlags(t *testing.T) {
	c, _ := newTestCPU()
	c.B = 0x00
	c.executeCB(0x40) // BIT 0,B
	if !c.flag(flagZ) || c.flag(flagN) || !c.flag(flagH) {
		t.Fatalf("BIT flags = %#x, want Z=1 N=0 H=1", c.F)
	}

	c.executeCB(0xC0) // SET 0,B
	if c.B != 0x01 {
		t.Fatalf("B = %#x after SET 0,B, want 0x01", c.B)
	}

	c.executeCB(0x80) // RES 0,B
	if c.B != 0x00 {
		t.Fatalf("B = %#x after RES 0,B, want 0x00", c.B)
	}
}
