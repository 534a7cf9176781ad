package joypad

import (
	"testing"

	"github.com/retrocoderamen/gbcore/internal/irq"
)

func TestNoButtonsPressedReadsAllHigh(t *testing.T) {
	ic := irq.New()
	p := New(ic)
	p.Write8(regJOYP, 0xDF) // select action row, deselect direction
	p.Advance()
	if got := p.Read8(regJOYP); got != 0xDF {
		t.Fatalf("JOYP = %#x, want 0xDF", got)
	}
}

func TestPressRaisesInputOnEdge(t *testing.T) {
	ic := irq.New()
	p := New(ic)
	p.Write8(regJOYP, 0xDF)
	p.Advance()

	p.SetPressed(A, true)
	p.Advance()

	if got := p.Read8(regJOYP); got != 0xDE {
		t.Fatalf("JOYP = %#x, want 0xDE", got)
	}
	if ic.ReadIF()&(1<<irq.Input) == 0 {
		t.Fatal("Input IF bit not set after button press edge")
	}
}

func TestNoEdgeNoInterrupt(t *testing.T) {
	ic := irq.New()
	p := New(ic)
	p.SetPressed(A, true)
	p.Write8(regJOYP, 0xDF)
	p.Advance() // first observation: lastNibble starts high, so A pressed counts as an edge; IF is cleared next
	ic.WriteIF(0)
	p.Advance() // steady state, no new transition
	if ic.ReadIF() != 0 {
		t.Fatal("Input raised again with no new button edge")
	}
}
