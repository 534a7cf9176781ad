package emulator

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/retrocoderamen/gbcore/internal/cartridge"
	"github.com/retrocoderamen/gbcore/internal/cpu"
	"github.com/retrocoderamen/gbcore/internal/irq"
	"github.com/retrocoderamen/gbcore/internal/joypad"
	"github.com/retrocoderamen/gbcore/internal/memory"
	"github.com/retrocoderamen/gbcore/internal/ppu"
	"github.com/retrocoderamen/gbcore/internal/timer"
)

const saveStateVersion = 1

func init() {
	gob.Register(cpu.State{})
	gob.Register(ppu.State{})
	gob.Register(timer.State{})
	gob.Register(joypad.State{})
	gob.Register(irq.State{})
	gob.Register(memory.State{})
	gob.Register(cartridge.State{})
	gob.Register(SaveState{})
}

// SaveState is a complete, versioned snapshot of every component's
// mutable state, excluding the ROM image itself (which is assumed
// unchanged between save and load).
type SaveState struct {
	Version uint16

	CPU    cpu.State
	PPU    ppu.State
	Timer  timer.State
	Joypad joypad.State
	IRQ    irq.State
	Bus    memory.State
	Cart   cartridge.State

	FrameCount uint64
	Running    bool
	Paused     bool
}

// SaveState serializes the emulator's full state to a byte slice.
func (e *Emulator) SaveState() ([]byte, error) {
	state := SaveState{
		Version:    saveStateVersion,
		CPU:        e.CPU.Snapshot(),
		PPU:        e.PPU.Snapshot(),
		Timer:      e.Timer.Snapshot(),
		Joypad:     e.Joypad.Snapshot(),
		IRQ:        e.IRQ.Snapshot(),
		Bus:        e.Bus.Snapshot(),
		FrameCount: e.FrameCount,
		Running:    e.Running,
		Paused:     e.Paused,
	}
	if e.Cart != nil {
		state.Cart = e.Cart.Snapshot()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("emulator: failed to encode savestate: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores the emulator's full state from a byte slice
// previously produced by SaveState. The cartridge must already be
// loaded (via LoadROM) with the same ROM the savestate was taken
// against; only cartridge RAM and MBC registers are restored, not ROM.
func (e *Emulator) LoadState(data []byte) error {
	var state SaveState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("emulator: failed to decode savestate: %w", err)
	}
	if state.Version != saveStateVersion {
		return fmt.Errorf("emulator: unsupported savestate version %d (want %d)", state.Version, saveStateVersion)
	}

	e.CPU.Restore(state.CPU)
	e.PPU.Restore(state.PPU)
	e.Timer.Restore(state.Timer)
	e.Joypad.Restore(state.Joypad)
	e.IRQ.Restore(state.IRQ)
	e.Bus.Restore(state.Bus)
	if e.Cart != nil {
		e.Cart.Restore(state.Cart)
	}

	e.FrameCount = state.FrameCount
	e.Running = state.Running
	e.Paused = state.Paused
	e.Limiter.Reset()
	return nil
}
