//go:build sdl2

// Package sdlhost is an alternate windowed frontend built on go-sdl2,
// used when built with `-tags sdl2`. Without that tag, Host falls back
// to the stub in stub.go (see go-jeebie's backend/sdl2 for the same
// build-tag/stub pairing).
package sdlhost

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/retrocoderamen/gbcore/internal/emulator"
	"github.com/retrocoderamen/gbcore/internal/joypad"
	"github.com/retrocoderamen/gbcore/internal/ppu"
)

// keyMapping maps SDL2 keycodes to joypad buttons.
var keyMapping = map[sdl.Keycode]joypad.Button{
	sdl.K_RETURN: joypad.Start,
	sdl.K_TAB:    joypad.Select,
	sdl.K_a:      joypad.A,
	sdl.K_s:      joypad.B,
	sdl.K_UP:     joypad.Up,
	sdl.K_DOWN:   joypad.Down,
	sdl.K_LEFT:   joypad.Left,
	sdl.K_RIGHT:  joypad.Right,
}

// Host drives the emulator via an SDL2 window, texture, and event pump.
type Host struct {
	emu   *emulator.Emulator
	scale int

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pixelBuffer []byte
	running     bool
}

// New creates an uninitialized Host; call Init before Run.
func New(emu *emulator.Emulator, scale int) *Host {
	return &Host{emu: emu, scale: scale}
}

// Init opens the SDL2 window, renderer, and texture.
func (h *Host) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdlhost: init SDL: %w", err)
	}

	window, err := sdl.CreateWindow(
		"gbcore",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(ppu.ScreenWidth*h.scale), int32(ppu.ScreenHeight*h.scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdlhost: create window: %w", err)
	}
	h.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdlhost: create renderer: %w", err)
	}
	h.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		int32(ppu.ScreenWidth), int32(ppu.ScreenHeight),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdlhost: create texture: %w", err)
	}
	h.texture = texture

	h.pixelBuffer = make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)
	h.running = true
	return nil
}

// Run starts the emulator and drives frames until the window is closed
// or the core faults.
func (h *Host) Run() error {
	h.emu.Start()
	for h.running {
		h.pollEvents()
		if !h.running {
			break
		}
		if err := h.emu.RunFrame(); err != nil {
			return err
		}
		h.renderFrame()
	}
	return nil
}

func (h *Host) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			h.running = false
		case *sdl.KeyboardEvent:
			btn, ok := keyMapping[e.Keysym.Sym]
			if !ok {
				continue
			}
			h.emu.SetButton(btn, e.Type == sdl.KEYDOWN)
		}
	}
}

func (h *Host) renderFrame() {
	buf := h.emu.FrameBuffer()
	for i, c := range buf {
		r := byte(c >> 16)
		g := byte(c >> 8)
		b := byte(c)
		off := i * 4
		h.pixelBuffer[off] = 0xFF
		h.pixelBuffer[off+1] = b
		h.pixelBuffer[off+2] = g
		h.pixelBuffer[off+3] = r
	}
	h.texture.Update(nil, unsafe.Pointer(&h.pixelBuffer[0]), ppu.ScreenWidth*4)
	h.renderer.Clear()
	h.renderer.Copy(h.texture, nil, nil)
	h.renderer.Present()
}

// Cleanup tears down the SDL2 window, renderer, and texture.
func (h *Host) Cleanup() error {
	if h.texture != nil {
		h.texture.Destroy()
	}
	if h.renderer != nil {
		h.renderer.Destroy()
	}
	if h.window != nil {
		h.window.Destroy()
	}
	sdl.Quit()
	return nil
}
