// Package termhost is a headless/CI-friendly frontend that downsamples
// the 160x144 frame buffer to half-block characters in a tcell.Screen,
// grounded on go-jeebie's terminal backend.
package termhost

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/retrocoderamen/gbcore/internal/emulator"
	"github.com/retrocoderamen/gbcore/internal/joypad"
	"github.com/retrocoderamen/gbcore/internal/ppu"
)

const (
	minTermWidth  = ppu.ScreenWidth + 2
	minTermHeight = ppu.ScreenHeight/2 + 2
)

// keyMapping maps tcell keys to joypad buttons.
var keyMapping = map[tcell.Key]joypad.Button{
	tcell.KeyEnter: joypad.Start,
	tcell.KeyUp:    joypad.Up,
	tcell.KeyDown:  joypad.Down,
	tcell.KeyLeft:  joypad.Left,
	tcell.KeyRight: joypad.Right,
}

// runeMapping maps plain runes to joypad buttons (A/B and select, which
// have no dedicated tcell.Key).
var runeMapping = map[rune]joypad.Button{
	'z': joypad.A,
	'x': joypad.B,
	' ': joypad.Select,
}

// Host drives the emulator and renders its frames to a terminal screen.
type Host struct {
	emu    *emulator.Emulator
	screen tcell.Screen

	running bool
}

// New creates an uninitialized Host; call Init before Run.
func New(emu *emulator.Emulator) *Host {
	return &Host{emu: emu}
}

// Init opens the terminal screen.
func (h *Host) Init() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("termhost: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("termhost: init screen: %w", err)
	}
	h.screen = screen
	h.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	h.screen.Clear()
	h.running = true
	return nil
}

// Run starts the emulator and renders at ~60Hz until Ctrl-C or Esc.
func (h *Host) Run() error {
	h.emu.Start()
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for h.running {
		h.pollEvents()
		if !h.running {
			break
		}
		<-ticker.C
		if err := h.emu.RunFrame(); err != nil {
			return err
		}
		h.render()
	}
	return nil
}

func (h *Host) pollEvents() {
	for h.screen.HasPendingEvent() {
		switch ev := h.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
				h.running = false
				return
			}
			if b, ok := keyMapping[ev.Key()]; ok {
				h.emu.SetButton(b, true)
			} else if b, ok := runeMapping[ev.Rune()]; ok {
				h.emu.SetButton(b, true)
			}
		case *tcell.EventResize:
			h.screen.Sync()
		}
	}
}

// Cleanup tears down the terminal screen.
func (h *Host) Cleanup() error {
	if h.screen != nil {
		h.screen.Fini()
	}
	return nil
}

func (h *Host) render() {
	w, ht := h.screen.Size()
	if w < minTermWidth || ht < minTermHeight {
		h.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			h.screen.SetContent(i, ht/2, ch, nil, tcell.StyleDefault.Foreground(tcell.ColorRed))
		}
		h.screen.Show()
		return
	}

	buf := h.emu.FrameBuffer()
	for y := 0; y < ppu.ScreenHeight; y += 2 {
		for x := 0; x < ppu.ScreenWidth; x++ {
			top := buf[y*ppu.ScreenWidth+x]
			bottom := uint32(0xFFFFFFFF)
			if y+1 < ppu.ScreenHeight {
				bottom = buf[(y+1)*ppu.ScreenWidth+x]
			}
			char, fg, bg := halfBlock(shadeOf(top), shadeOf(bottom))
			h.screen.SetContent(x+1, y/2+1, char, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
	h.screen.Show()
}

// shadeOf maps a rendered ARGB pixel back to one of the four DMG shades.
func shadeOf(pixel uint32) int {
	for i, c := range ppu.Palette {
		if c == pixel {
			return i
		}
	}
	return 0
}

var shadeColors = [4]tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

func halfBlock(topShade, bottomShade int) (rune, tcell.Color, tcell.Color) {
	top, bottom := shadeColors[topShade], shadeColors[bottomShade]
	if topShade == bottomShade {
		return '█', top, tcell.ColorDefault
	}
	return '▀', top, bottom
}
