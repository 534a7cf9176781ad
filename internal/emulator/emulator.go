// Package emulator wires the CPU, Bus, PPU, Timer, Joypad, and interrupt
// controller into one cooperative frame loop, and owns ROM loading,
// reset, and savestate serialization.
package emulator

import (
	"fmt"
	"time"

	"github.com/retrocoderamen/gbcore/internal/cartridge"
	"github.com/retrocoderamen/gbcore/internal/clock"
	"github.com/retrocoderamen/gbcore/internal/cpu"
	"github.com/retrocoderamen/gbcore/internal/debug"
	"github.com/retrocoderamen/gbcore/internal/irq"
	"github.com/retrocoderamen/gbcore/internal/joypad"
	"github.com/retrocoderamen/gbcore/internal/memory"
	"github.com/retrocoderamen/gbcore/internal/ppu"
	"github.com/retrocoderamen/gbcore/internal/timer"
)

// CyclesPerFrame is the number of T-cycles in one DMG video frame
// (154 scanlines x 456 cycles).
const CyclesPerFrame = 70224

// Emulator owns every core component and drives them one frame at a
// time via RunFrame.
type Emulator struct {
	CPU    *cpu.CPU
	Bus    *memory.Bus
	Cart   *cartridge.Cartridge
	PPU    *ppu.PPU
	Timer  *timer.Timer
	Joypad *joypad.Pad
	IRQ    *irq.Controller
	Logger *debug.Logger

	Limiter *clock.FrameLimiter

	FrameCount uint64
	FPS        float64
	fpsWindow  time.Time
	fpsFrames  uint64

	Running bool
	Paused  bool
}

// New creates a fully wired, reset Emulator with its own logger.
func New() *Emulator {
	return NewWithLogger(debug.NewLogger(10000))
}

// NewWithLogger creates a fully wired Emulator using the given logger
// for CPU tracing.
func NewWithLogger(logger *debug.Logger) *Emulator {
	irqC := irq.New()
	bus := memory.New(irqC)

	p := ppu.New(bus.VRAM[:], bus.OAM[:], irqC)
	t := timer.New(irqC)
	pad := joypad.New(irqC)

	bus.PPU = p
	bus.Timer = t
	bus.Joypad = pad

	c := cpu.New(bus, irqC)
	c.Log = cpu.NewLoggerAdapter(logger, cpu.LogNone)

	e := &Emulator{
		CPU:       c,
		Bus:       bus,
		PPU:       p,
		Timer:     t,
		Joypad:    pad,
		IRQ:       irqC,
		Logger:    logger,
		Limiter:   clock.NewFrameLimiter(clock.DMGFrameRate),
		fpsWindow: time.Now(),
	}
	return e
}

// LoadROM parses and attaches a cartridge image, flushing any prior
// cartridge's save data first. savePath may be empty to disable
// battery-save persistence.
func (e *Emulator) LoadROM(data []byte, savePath string) error {
	if e.Cart != nil {
		if err := e.Cart.FlushSave(); err != nil {
			return err
		}
	}
	cart, err := cartridge.Load(data, savePath)
	if err != nil {
		return fmt.Errorf("emulator: failed to load ROM: %w", err)
	}
	e.Cart = cart
	e.Bus.AttachCartridge(cart)
	e.Reset()
	return nil
}

// LoadBIOS installs a boot ROM image to run before the cartridge entry
// point. It returns false and installs nothing unless data is exactly
// 256 bytes; without a boot ROM, execution starts directly at 0x0100.
func (e *Emulator) LoadBIOS(data []byte) bool {
	return e.Bus.LoadBIOS(data)
}

// Reset reinitializes the bus, interrupt controller, timer, joypad, PPU
// and CPU and rewinds the frame counters. With a boot ROM loaded the CPU
// restarts at 0x0000; otherwise it starts at 0x0100 with SP=0xFFFE.
func (e *Emulator) Reset() {
	e.Bus.Reset()
	e.IRQ.Reset()
	e.Timer.Reset()
	e.Joypad.Reset()
	e.PPU.Reset()
	e.CPU.Reset(e.Bus.BIOSActive())
	e.FrameCount = 0
	e.Limiter.Reset()
}

// Start marks the emulator as running.
func (e *Emulator) Start() { e.Running = true; e.Paused = false }

// Stop marks the emulator as not running.
func (e *Emulator) Stop() { e.Running = false }

// Pause suspends frame execution without resetting state.
func (e *Emulator) Pause() { e.Paused = true }

// Resume resumes frame execution after Pause.
func (e *Emulator) Resume() { e.Paused = false }

// SetButton updates one joypad button's pressed state.
func (e *Emulator) SetButton(b joypad.Button, down bool) {
	e.Joypad.SetPressed(b, down)
}

// RunFrame runs one video frame: the literal step/service-interrupts/
// advance-peripherals loop until at least 70,224 cycles have elapsed
// (the last instruction may overshoot the boundary), then paces real
// time against the emulated frame via the frame limiter. Returns the
// CPU's fault, if one was raised during the frame.
func (e *Emulator) RunFrame() error {
	if !e.Running || e.Paused {
		return nil
	}

	frameCycles := 0
	for frameCycles < CyclesPerFrame {
		n := e.CPU.Step()
		n += e.CPU.ServiceInterrupts()
		e.PPU.Advance(n)
		e.Timer.Advance(n)
		e.Joypad.Advance()
		frameCycles += n

		if e.CPU.Fault != nil {
			e.Running = false
			return e.CPU.Fault
		}
	}

	e.FrameCount++
	e.fpsFrames++
	now := time.Now()
	if elapsed := now.Sub(e.fpsWindow); elapsed >= time.Second {
		e.FPS = float64(e.fpsFrames) / elapsed.Seconds()
		e.fpsFrames = 0
		e.fpsWindow = now
	}

	e.Limiter.Wait()
	return nil
}

// FrameBuffer returns the most recently rendered frame, 160x144 ARGB.
func (e *Emulator) FrameBuffer() []uint32 {
	return e.PPU.FrameBuffer[:]
}

// FlushSave persists cartridge RAM if dirty and a save path was
// configured at LoadROM time.
func (e *Emulator) FlushSave() error {
	if e.Cart == nil {
		return nil
	}
	return e.Cart.FlushSave()
}
