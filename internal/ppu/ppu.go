// Package ppu implements the DMG picture-processing unit: LCDC/STAT and
// friends, the per-scanline mode state machine, and the background/
// window/sprite scanline renderer into a 160x144 ARGB frame buffer.
package ppu

import "github.com/retrocoderamen/gbcore/internal/irq"

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	cyclesOAMScan  = 80
	cyclesTransfer = 252 // 80 + 172
	cyclesLine     = 456
	linesVisible   = 144
	linesTotal     = 154
)

// Mode is one of the four PPU scan modes, numerically equal to STAT's
// low two bits.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

// Palette is the fixed DMG green 4-shade ramp, index 0 through 3.
var Palette = [4]uint32{0xFF9BBC0F, 0xFF82A80F, 0xFF306230, 0xFF0F380F}

// PPU owns the display registers, scan-cycle state machine, and frame
// buffer. VRAM and OAM are non-owning references into the Bus's backing
// arrays (the Bus is the one true owner per the address-map contract).
type PPU struct {
	lcdc, stat               uint8
	scx, scy, ly, lyc        uint8
	bgp, obp0, obp1, wx, wy  uint8

	mode       Mode
	scanCycles int

	FrameBuffer [ScreenWidth * ScreenHeight]uint32
	bgRaw       [ScreenWidth]uint8

	VRAM []uint8
	OAM  []uint8

	irq *irq.Controller
}

// New creates a PPU sharing vram/oam with its Bus and wired to irqC.
func New(vram, oam []uint8, irqC *irq.Controller) *PPU {
	p := &PPU{VRAM: vram, OAM: oam, irq: irqC}
	p.Reset()
	return p
}

// Reset zeros every register and the scan-cycle state, clears the frame
// buffer to the background color, and starts at line 0 / OAMScan.
func (p *PPU) Reset() {
	p.lcdc, p.stat = 0, 0
	p.scx, p.scy, p.ly, p.lyc = 0, 0, 0, 0
	p.bgp, p.obp0, p.obp1, p.wx, p.wy = 0, 0, 0, 0, 0
	p.mode = ModeOAMScan
	p.scanCycles = 0
	for i := range p.FrameBuffer {
		p.FrameBuffer[i] = Palette[0]
	}
}

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }

// LY exposes the current scanline for host/debug tooling.
func (p *PPU) LY() uint8 { return p.ly }

// Mode exposes the current scan mode for host/debug tooling.
func (p *PPU) Mode() Mode { return p.mode }

// ReadReg reads one PPU register by absolute bus address (0xFF46/DMA is
// handled by the Bus itself, not here).
func (p *PPU) ReadReg(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		coincidence := uint8(0)
		if p.ly == p.lyc {
			coincidence = 1 << 2
		}
		return 0x80 | p.stat | coincidence | uint8(p.mode)
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

// WriteReg writes one PPU register. STAT's mode/coincidence bits (0-2)
// are read-only; writes to LY reset it to 0.
func (p *PPU) WriteReg(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		p.lcdc = v
	case 0xFF41:
		p.stat = v & 0x78
	case 0xFF42:
		p.scy = v
	case 0xFF43:
		p.scx = v
	case 0xFF44:
		p.ly = 0
	case 0xFF45:
		p.lyc = v
	case 0xFF47:
		p.bgp = v
	case 0xFF48:
		p.obp0 = v
	case 0xFF49:
		p.obp1 = v
	case 0xFF4A:
		p.wy = v
	case 0xFF4B:
		p.wx = v
	}
}

// Advance steps the PPU's scan-cycle state machine by elapsed T-cycles,
// rendering each finished visible line and raising VBlank/LCDStatus at
// the documented transitions.
func (p *PPU) Advance(cycles int) {
	for cycles > 0 {
		next := p.distanceToNextEvent()
		step := cycles
		if step > next {
			step = next
		}
		p.scanCycles += step
		cycles -= step
		if step == next {
			p.handleBoundary()
		}
	}
}

func (p *PPU) distanceToNextEvent() int {
	if p.ly < linesVisible {
		switch {
		case p.scanCycles < cyclesOAMScan:
			return cyclesOAMScan - p.scanCycles
		case p.scanCycles < cyclesTransfer:
			return cyclesTransfer - p.scanCycles
		}
	}
	return cyclesLine - p.scanCycles
}

func (p *PPU) handleBoundary() {
	if p.ly < linesVisible {
		switch p.scanCycles {
		case cyclesOAMScan:
			p.setMode(ModeTransfer)
			return
		case cyclesTransfer:
			p.setMode(ModeHBlank)
			return
		}
	}
	if p.scanCycles == cyclesLine {
		p.finishLine()
	}
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	switch m {
	case ModeOAMScan:
		if p.stat&0x20 != 0 {
			p.irq.Raise(irq.LCDStatus)
		}
	case ModeHBlank:
		if p.stat&0x08 != 0 {
			p.irq.Raise(irq.LCDStatus)
		}
	case ModeVBlank:
		if p.stat&0x10 != 0 {
			p.irq.Raise(irq.LCDStatus)
		}
	}
}

func (p *PPU) finishLine() {
	if p.lcdEnabled() && p.ly < linesVisible {
		p.renderLine(p.ly)
	}
	p.scanCycles = 0
	p.ly++

	if p.ly == linesVisible {
		p.setMode(ModeVBlank)
		p.irq.Raise(irq.VBlank)
	} else if p.ly >= linesTotal {
		p.ly = 0
		p.setMode(ModeOAMScan)
	} else if p.ly < linesVisible {
		p.setMode(ModeOAMScan)
	}

	p.updateCoincidence()
}

func (p *PPU) updateCoincidence() {
	if p.ly == p.lyc && p.stat&0x40 != 0 {
		p.irq.Raise(irq.LCDStatus)
	}
}

// State is a gob-serializable snapshot of PPU register and scan-state,
// for savestates. VRAM/OAM are captured separately by whoever owns
// their backing storage (the Bus).
type State struct {
	LCDC, STAT              uint8
	SCX, SCY, LY, LYC       uint8
	BGP, OBP0, OBP1, WX, WY uint8
	Mode                    Mode
	ScanCycles              int
}

// Snapshot captures the current register/scan-state for serialization.
func (p *PPU) Snapshot() State {
	return State{
		LCDC: p.lcdc, STAT: p.stat,
		SCX: p.scx, SCY: p.scy, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1, WX: p.wx, WY: p.wy,
		Mode: p.mode, ScanCycles: p.scanCycles,
	}
}

// Restore replaces the current register/scan-state with a previously
// captured one.
func (p *PPU) Restore(s State) {
	p.lcdc, p.stat = s.LCDC, s.STAT
	p.scx, p.scy, p.ly, p.lyc = s.SCX, s.SCY, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1, p.wx, p.wy = s.BGP, s.OBP0, s.OBP1, s.WX, s.WY
	p.mode, p.scanCycles = s.Mode, s.ScanCycles
}
