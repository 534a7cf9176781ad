package cpu

import "github.com/retrocoderamen/gbcore/internal/debug"

// LogLevel is a granular CPU trace level, coarser settings logging less.
type LogLevel int

const (
	LogNone LogLevel = iota
	LogBranches
	LogInstructions
)

// LoggerAdapter adapts a debug.Logger to the CPU's LoggerInterface.
type LoggerAdapter struct {
	logger  *debug.Logger
	level   LogLevel
	enabled bool
}

// NewLoggerAdapter creates an adapter at the given trace level.
func NewLoggerAdapter(logger *debug.Logger, level LogLevel) *LoggerAdapter {
	return &LoggerAdapter{logger: logger, level: level, enabled: true}
}

// SetLevel changes the trace level.
func (a *LoggerAdapter) SetLevel(level LogLevel) { a.level = level }

// SetEnabled toggles logging without discarding the configured level.
func (a *LoggerAdapter) SetEnabled(enabled bool) { a.enabled = enabled }

var branchOpcodes = map[uint8]bool{
	0x18: true, 0x20: true, 0x28: true, 0x30: true, 0x38: true, // JR
	0xC2: true, 0xC3: true, 0xCA: true, 0xD2: true, 0xDA: true, // JP
	0xC4: true, 0xCC: true, 0xCD: true, 0xD4: true, 0xDC: true, // CALL
	0xC0: true, 0xC8: true, 0xC9: true, 0xD0: true, 0xD8: true, 0xD9: true, // RET
	0xE9: true, // JP (HL)
}

// LogCPU implements cpu.LoggerInterface by forwarding a formatted trace
// line to the shared debug logger at ComponentCPU.
func (a *LoggerAdapter) LogCPU(pc uint16, opcode uint8, cycles int) {
	if !a.enabled || a.logger == nil || a.level == LogNone {
		return
	}
	if a.level == LogBranches && !branchOpcodes[opcode] {
		return
	}
	a.logger.LogCPUTrace(debug.LogLevelTrace, pc, opcode, cycles)
}
