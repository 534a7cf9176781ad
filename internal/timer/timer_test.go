package timer

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/irq"
)

func TestTimerOverflowRaisesInterrupt(t *testing.T) {
	ic := irq.New()
	tm := New(ic)
	tm.Write8(regTMA, 0xAB)
	tm.Write8(regTAC, 0x05) // enable, 01 -> 262144 Hz, period 16
	tm.Write8(regTIMA, 0xFE)

	tm.Advance(64)

	if got := tm.Read8(regTIMA); got != 0xAB {
		t.Fatalf("TIMA = %#x, want 0xAB", got)
	}
	if ic.ReadIF()&(1<<irq.Timer) == 0 {
		t.Fatal("Timer IF bit not set after overflow")
	}
}

func TestDivWriteResets(t *testing.T) {
	ic := irq.New()
	tm := New(ic)
	tm.Advance(300)
	if tm.Read8(regDIV) == 0 {
		t.Fatal("DIV did not advance")
	}
	tm.Write8(regDIV, 0x99)
	if tm.Read8(regDIV) != 0 {
		t.Fatalf("DIV = %#x after write, want 0 (any write resets)", tm.Read8(regDIV))
	}
}

func TestTimerDisabledDoesNotIncrementTIMA(t *testing.T) {
	ic := irq.New()
	tm := New(ic)
	tm.Write8(regTAC, 0x00) // disabled
	tm.Advance(10000)
	if tm.Read8(regTIMA) != 0 {
		t.Fatalf("TIMA = %#x, want 0 while disabled", tm.Read8(regTIMA))
	}
}
