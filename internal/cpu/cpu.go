// Package cpu implements the Sharp LR35902 core: the 8-bit register file,
// flag semantics, opcode dispatch (primary and 0xCB-prefixed tables), and
// interrupt servicing.
package cpu

import (
	"fmt"

	"github.com/retrocoderamen/gbcore/internal/irq"
)

// MemoryInterface is the seam the CPU uses to reach the bus. It never
// touches cartridge or peripheral state directly.
type MemoryInterface interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// LoggerInterface receives a callback after each executed instruction,
// with its PC, opcode and T-cycle cost, for host-side tracing. Passing
// nil disables logging entirely.
type LoggerInterface interface {
	LogCPU(pc uint16, opcode uint8, cycles int)
}

// FaultError marks a fatal CPU condition (an invalid opcode) distinct
// from the soft HALT/STOP states, which the emulator handles and
// resumes from.
type FaultError struct {
	PC     uint16
	Opcode uint8
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("invalid opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// CPU holds the full architectural state of the LR35902 core.
type CPU struct {
	A, F, B, C, D, E, H, L uint8
	PC, SP                 uint16

	IME     bool
	halted  bool
	stopped bool
	eiDelay int

	Cycles uint64

	Mem MemoryInterface
	IRQ *irq.Controller
	Log LoggerInterface

	Fault *FaultError
}

// New creates a CPU wired to the given bus and interrupt controller.
func New(mem MemoryInterface, ic *irq.Controller) *CPU {
	c := &CPU{Mem: mem, IRQ: ic}
	c.Reset(false)
	return c
}

// Reset zeros the register file. With biosLoaded, SP/PC start at 0 so the
// boot ROM can initialize them; without one, SP/PC start at the values
// the boot ROM would have left (0xFFFE / 0x0100).
func (c *CPU) Reset(biosLoaded bool) {
	c.A, c.F = 0, 0
	c.B, c.C = 0, 0
	c.D, c.E = 0, 0
	c.H, c.L = 0, 0
	c.halted = false
	c.stopped = false
	c.eiDelay = 0
	c.Cycles = 0
	c.Fault = nil
	c.IME = true
	if biosLoaded {
		c.SP = 0
		c.PC = 0
	} else {
		c.SP = 0xFFFE
		c.PC = 0x0100
	}
}

// AF returns the AF register pair; the low nibble of F is always zero.
func (c *CPU) AF() uint16 { return uint16(c.A)<<8 | uint16(c.F&0xF0) }

// SetAF writes the AF pair, masking F to its defined nibble.
func (c *CPU) SetAF(v uint16) {
	c.A = uint8(v >> 8)
	c.F = uint8(v) & 0xF0
}

func (c *CPU) BC() uint16    { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) SetBC(v uint16) { c.B = uint8(v >> 8); c.C = uint8(v) }
func (c *CPU) DE() uint16    { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) SetDE(v uint16) { c.D = uint8(v >> 8); c.E = uint8(v) }
func (c *CPU) HL() uint16    { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) SetHL(v uint16) { c.H = uint8(v >> 8); c.L = uint8(v) }

// Flag bit positions within F.
const (
	flagZ uint8 = 1 << 7
	flagN uint8 = 1 << 6
	flagH uint8 = 1 << 5
	flagC uint8 = 1 << 4
)

func (c *CPU) setFlag(mask uint8, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
	c.F &= 0xF0
}

func (c *CPU) flag(mask uint8) bool { return c.F&mask != 0 }

func (c *CPU) read8(addr uint16) uint8       { return c.Mem.Read(addr) }
func (c *CPU) write8(addr uint16, v uint8)   { c.Mem.Write(addr, v) }

func (c *CPU) fetch8() uint8 {
	v := c.read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read8(addr)
	hi := c.read8(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, uint8(v))
	c.write8(addr+1, uint8(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// Step executes one instruction (or one idle tick if HALT/STOP is
// latched) and returns its T-cycle cost. Interrupt dispatch is a
// separate call, ServiceInterrupts, per the frame loop's ordering.
func (c *CPU) Step() int {
	if c.Fault != nil {
		return 4
	}
	if c.stopped || c.halted {
		return 4
	}

	pc := c.PC
	opcode := c.fetch8()

	cycles, err := c.execute(opcode)
	if c.Log != nil {
		c.Log.LogCPU(pc, opcode, cycles)
	}
	if err != nil {
		c.Fault = err.(*FaultError)
		return 4
	}
	c.Cycles += uint64(cycles)
	return cycles
}

// ServiceInterrupts applies a pending EI-delayed IME enable, wakes the
// CPU from HALT/STOP as appropriate, and dispatches the
// highest-priority pending interrupt if one is enabled and IME is set.
// Returns the extra cycle cost: 20 on dispatch, else 0.
func (c *CPU) ServiceInterrupts() int {
	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	if c.stopped {
		if c.IRQ.InputRequested() {
			c.stopped = false
		}
	}

	if c.halted && c.IRQ.Pending() {
		c.halted = false
	}

	if !c.IME {
		return 0
	}

	src, ok := c.IRQ.Highest()
	if !ok {
		return 0
	}

	c.IME = false
	c.push16(c.PC)
	c.PC = src.Vector()
	c.IRQ.Clear(src)
	c.Cycles += 20
	return 20
}

// Halted reports whether the CPU is in the HALT idle state.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU is in the STOP idle state.
func (c *CPU) Stopped() bool { return c.stopped }

// State is a gob-serializable snapshot of the full architectural and
// internal CPU state, for savestates.
type State struct {
	A, F, B, C, D, E, H, L uint8
	PC, SP                 uint16
	IME                    bool
	Halted, Stopped        bool
	EIDelay                int
	Cycles                 uint64
}

// Snapshot captures the current state for serialization.
func (c *CPU) Snapshot() State {
	return State{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		PC: c.PC, SP: c.SP,
		IME:     c.IME,
		Halted:  c.halted,
		Stopped: c.stopped,
		EIDelay: c.eiDelay,
		Cycles:  c.Cycles,
	}
}

// Restore replaces the current state with a previously captured one.
// Any in-progress fault is cleared, matching a real savestate load.
func (c *CPU) Restore(s State) {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.PC, c.SP = s.PC, s.SP
	c.IME = s.IME
	c.halted = s.Halted
	c.stopped = s.Stopped
	c.eiDelay = s.EIDelay
	c.Cycles = s.Cycles
	c.Fault = nil
}
