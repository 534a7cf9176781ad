package debug

import (
	"fmt"
	"os"
	"sync"
)

// MemoryReader reads a byte from the 64 KiB address space (to avoid import cycles).
type MemoryReader interface {
	Read(addr uint16) uint8
}

// PPUStateReader exposes PPU timing state for logging (to avoid import cycles).
type PPUStateReader interface {
	LY() uint8
	Mode() uint8
	FrameCount() uint64
}

// CPUStateSnapshot captures CPU register state for cycle logging.
type CPUStateSnapshot struct {
	A, F, B, C, D, E, H, L uint8
	PC, SP                 uint16
	IME                    bool
	Halted, Stopped        bool
	Cycles                 uint64
}

// CycleLogger logs CPU register and PPU timing state, one line per step.
// Useful for diffing traces against a known-good reference run.
type CycleLogger struct {
	file         *os.File
	maxCycles    uint64
	startCycle   uint64
	currentCycle uint64
	totalCycles  uint64
	enabled      bool
	mu           sync.Mutex

	bus MemoryReader
	ppu PPUStateReader
}

// NewCycleLogger creates a new cycle logger.
// maxCycles: maximum number of steps to log (0 = unlimited).
// startCycle: start logging after this many steps (0 = start immediately).
func NewCycleLogger(filename string, maxCycles uint64, startCycle uint64, bus MemoryReader, ppu PPUStateReader) (*CycleLogger, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create cycle log file: %w", err)
	}

	logger := &CycleLogger{
		file:       file,
		maxCycles:  maxCycles,
		startCycle: startCycle,
		enabled:    true,
		bus:        bus,
		ppu:        ppu,
	}

	fmt.Fprintf(file, "Cycle-by-Cycle Debug Log\n")
	fmt.Fprintf(file, "========================\n\n")
	if startCycle > 0 {
		fmt.Fprintf(file, "Start step offset: %d\n", startCycle)
	}
	if maxCycles > 0 {
		fmt.Fprintf(file, "Max steps to log: %d\n", maxCycles)
	}
	fmt.Fprintf(file, "\nFormat: Step | PC | AF BC DE HL | SP | IME | LY | Mode | Frame\n\n")

	return logger, nil
}

// LogCycle logs CPU and PPU state for one step.
func (c *CycleLogger) LogCycle(cpu *CPUStateSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	c.totalCycles++
	if c.totalCycles <= c.startCycle {
		return
	}
	if c.maxCycles > 0 && c.currentCycle >= c.maxCycles {
		c.enabled = false
		return
	}
	c.currentCycle++

	ly, mode, frame := uint8(0), uint8(0), uint64(0)
	if c.ppu != nil {
		ly = c.ppu.LY()
		mode = c.ppu.Mode()
		frame = c.ppu.FrameCount()
	}

	fmt.Fprintf(c.file, "Step %8d | PC:%04X | AF:%02X%02X BC:%02X%02X DE:%02X%02X HL:%02X%02X | SP:%04X | IME:%v | LY:%03d | Mode:%d | Frame:%d\n",
		c.totalCycles, cpu.PC,
		cpu.A, cpu.F, cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L,
		cpu.SP, cpu.IME, ly, mode, frame)
}

// SetEnabled enables or disables logging.
func (c *CycleLogger) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Toggle toggles logging on/off.
func (c *CycleLogger) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = !c.enabled
}

// Close closes the log file.
func (c *CycleLogger) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = false
	if c.file != nil {
		fmt.Fprintf(c.file, "\n\nLog complete. Total steps logged: %d\n", c.currentCycle)
		err := c.file.Close()
		c.file = nil
		return err
	}
	return nil
}

// IsEnabled returns whether logging is enabled.
func (c *CycleLogger) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && (c.maxCycles == 0 || c.currentCycle < c.maxCycles)
}

// GetStatus returns the current logging status.
func (c *CycleLogger) GetStatus() (enabled bool, currentCycle uint64, totalCycles uint64, maxCycles uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled, c.currentCycle, c.totalCycles, c.maxCycles
}
