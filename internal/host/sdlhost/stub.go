//go:build !sdl2

// Package sdlhost stub: SDL2 development headers aren't assumed present
// on every build machine, so the default build gets this no-op and the
// `sdl2` build tag enables the real backend in sdlhost.go.
package sdlhost

import (
	"fmt"

	"github.com/retrocoderamen/gbcore/internal/emulator"
)

// Host is a stand-in that reports SDL2 was not compiled in.
type Host struct{}

// New returns a stub Host; Init always fails.
func New(emu *emulator.Emulator, scale int) *Host {
	return &Host{}
}

func (h *Host) Init() error {
	return fmt.Errorf("sdlhost: built without -tags sdl2")
}

func (h *Host) Run() error {
	return fmt.Errorf("sdlhost: built without -tags sdl2")
}

func (h *Host) Cleanup() error { return nil }
