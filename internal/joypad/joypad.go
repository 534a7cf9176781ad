// Package joypad implements the DMG JOYP register: row-selected button
// state with edge-triggered Input interrupt raise.
package joypad

import "github.com/retrocoderamen/gbcore/internal/irq"

const regJOYP = 0xFF00

// Button identifies one of the eight physical buttons and its bit
// position in the internal key bitmap (1 = released).
type Button uint8

const (
	A      Button = 0
	B      Button = 1
	Select Button = 2
	Start  Button = 3
	Right  Button = 4
	Left   Button = 5
	Up     Button = 6
	Down   Button = 7
)

// Pad owns the pressed-button bitmap and the row-select bits of JOYP,
// rebuilding the low nibble and raising Input on a high-to-low edge.
type Pad struct {
	selectBits uint8 // bits 5-4 of JOYP as last written
	keys       uint8 // 1 = released, per Button bit position; starts all-ones

	lastNibble uint8
	irq        *irq.Controller
}

// New creates a Pad with nothing pressed and both rows deselected.
func New(ic *irq.Controller) *Pad {
	return &Pad{selectBits: 0x30, keys: 0xFF, lastNibble: 0x0F, irq: ic}
}

// Reset releases all buttons and deselects both rows.
func (p *Pad) Reset() {
	p.selectBits = 0x30
	p.keys = 0xFF
	p.lastNibble = 0x0F
}

// SetPressed updates the internal bitmap for one button.
func (p *Pad) SetPressed(b Button, down bool) {
	if down {
		p.keys &^= 1 << uint8(b)
	} else {
		p.keys |= 1 << uint8(b)
	}
}

// currentNibble computes the low nibble JOYP would read right now,
// gated by which row(s) are selected (select bit clear selects a row).
// Deselected rows contribute all-ones.
func (p *Pad) currentNibble() uint8 {
	n := uint8(0x0F)
	if p.selectBits&0x20 == 0 { // action row: keys bits 0-3
		n &= p.keys & 0x0F
	}
	if p.selectBits&0x10 == 0 { // direction row: keys bits 4-7
		n &= (p.keys >> 4) & 0x0F
	}
	return n
}

// Advance recomputes JOYP's low nibble and raises Input on any bit that
// was high and is now low (a newly-pressed, currently-selected button).
func (p *Pad) Advance() {
	n := p.currentNibble()
	if p.lastNibble&^n != 0 {
		p.irq.Raise(irq.Input)
	}
	p.lastNibble = n
}

// Read8 reads JOYP: bits 7-6 always read 1.
func (p *Pad) Read8(addr uint16) uint8 {
	if addr != regJOYP {
		return 0xFF
	}
	return 0xC0 | p.selectBits | p.currentNibble()
}

// Write8 writes the row-select bits of JOYP; bits 3-0 are read-only.
func (p *Pad) Write8(addr uint16, v uint8) {
	if addr != regJOYP {
		return
	}
	p.selectBits = v & 0x30
}

// State is a gob-serializable snapshot of Pad state, for savestates.
type State struct {
	SelectBits, Keys, LastNibble uint8
}

// Snapshot captures the current state for serialization.
func (p *Pad) Snapshot() State {
	return State{SelectBits: p.selectBits, Keys: p.keys, LastNibble: p.lastNibble}
}

// Restore replaces the current state with a previously captured one.
func (p *Pad) Restore(s State) {
	p.selectBits, p.keys, p.lastNibble = s.SelectBits, s.Keys, s.LastNibble
}
