package debug

import (
	"fmt"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "NONE"
	case LogLevelError:
		return "ERROR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Component represents the subsystem that generated the log entry
type Component string

const (
	ComponentCPU       Component = "CPU"
	ComponentPPU       Component = "PPU"
	ComponentTimer     Component = "Timer"
	ComponentJoypad    Component = "Joypad"
	ComponentMemory    Component = "Memory"
	ComponentCartridge Component = "Cartridge"
	ComponentHost      Component = "Host"
)

// CPUTrace is the structured payload for a per-instruction CPU trace
// entry, the one event shape actually produced in the hot step loop
// (see internal/cpu/cpu_logger.go's LoggerAdapter).
type CPUTrace struct {
	PC     uint16
	Opcode uint8
	Cycles int
}

// LogEntry represents a single log entry. CPU is populated only for
// ComponentCPU entries logged via Logger.LogCPUTrace; other components
// currently only carry a formatted Message.
type LogEntry struct {
	Timestamp time.Time
	Component Component
	Level     LogLevel
	Message   string
	CPU       *CPUTrace
}

// Format formats the log entry as a string
func (e *LogEntry) Format() string {
	timestamp := e.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] [%s] %s: %s", timestamp, e.Component, e.Level, e.Message)
}

