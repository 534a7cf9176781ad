// Package fyneui is a desktop GUI frontend for the core emulator, built
// on fyne.io/fyne. It is never imported by the core packages: it only
// reads frames and forwards key events.
package fyneui

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/retrocoderamen/gbcore/internal/emulator"
	"github.com/retrocoderamen/gbcore/internal/joypad"
	"github.com/retrocoderamen/gbcore/internal/ppu"
)

// UI wraps a fyne.App/fyne.Window around an Emulator, blitting its
// frame buffer to a canvas.Image once per emulated frame.
type UI struct {
	app    fyne.App
	window fyne.Window
	emu    *emulator.Emulator
	scale  int

	image       *canvas.Image
	status      *widget.Label
	frameImages [2]*image.RGBA
	frameIdx    int

	keyMu     sync.Mutex
	keyStates map[fyne.KeyName]bool

	running bool
}

// keyBindings maps a desktop key to the joypad button it drives.
var keyBindings = map[fyne.KeyName]joypad.Button{
	fyne.KeyUp:        joypad.Up,
	fyne.KeyDown:      joypad.Down,
	fyne.KeyLeft:      joypad.Left,
	fyne.KeyRight:     joypad.Right,
	fyne.KeyZ:         joypad.A,
	fyne.KeyX:         joypad.B,
	fyne.KeyReturn:    joypad.Start,
	fyne.KeyBackspace: joypad.Select,
}

// New creates the window and wires keyboard input, but does not show it.
func New(emu *emulator.Emulator, scale int) *UI {
	fyneApp := app.NewWithID("io.gbcore.emulator")
	window := fyneApp.NewWindow("gbcore")

	frame0 := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	frame1 := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	img := canvas.NewImageFromImage(frame0)
	img.FillMode = canvas.ImageFillContain

	status := widget.NewLabel("FPS: 0.0 | Frame: 0")

	ui := &UI{
		app: fyneApp, window: window, emu: emu, scale: scale,
		image:       img,
		status:      status,
		frameImages: [2]*image.RGBA{frame0, frame1},
		keyStates:   make(map[fyne.KeyName]bool),
	}

	window.SetContent(container.NewBorder(nil, status, nil, nil, img))
	window.Resize(fyne.NewSize(float32(ppu.ScreenWidth*scale), float32(ppu.ScreenHeight*scale)+30))
	window.CenterOnScreen()

	ui.setupMenus()
	ui.setupKeyboard()
	return ui
}

func (ui *UI) setupKeyboard() {
	if c, ok := ui.window.Canvas().(desktop.Canvas); ok {
		c.SetOnKeyDown(func(k *fyne.KeyEvent) { ui.setKey(k.Name, true) })
		c.SetOnKeyUp(func(k *fyne.KeyEvent) { ui.setKey(k.Name, false) })
	}
}

func (ui *UI) setKey(name fyne.KeyName, down bool) {
	ui.keyMu.Lock()
	ui.keyStates[name] = down
	ui.keyMu.Unlock()

	if b, ok := keyBindings[name]; ok {
		ui.emu.SetButton(b, down)
	}
}

func (ui *UI) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open ROM...", func() {
			open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil || reader == nil {
					return
				}
				defer reader.Close()
				data, readErr := io.ReadAll(reader)
				if readErr != nil {
					dialog.ShowError(readErr, ui.window)
					return
				}
				if loadErr := ui.emu.LoadROM(data, ""); loadErr != nil {
					dialog.ShowError(loadErr, ui.window)
					return
				}
				ui.emu.Start()
			}, ui.window)
			open.SetFilter(storage.NewExtensionFileFilter([]string{".gb"}))
			open.Show()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { ui.window.Close() }),
	)
	emuMenu := fyne.NewMenu("Emulation",
		fyne.NewMenuItem("Pause", func() { ui.emu.Pause() }),
		fyne.NewMenuItem("Resume", func() { ui.emu.Resume() }),
		fyne.NewMenuItem("Reset", func() { ui.emu.Reset() }),
	)
	ui.window.SetMainMenu(fyne.NewMainMenu(fileMenu, emuMenu))
}

// Run starts the emulation/render loop and blocks until the window
// closes.
func (ui *UI) Run() {
	ui.emu.Limiter.Enabled = false // the UI ticker paces frames instead
	ui.emu.Start()
	ui.running = true

	go ui.loop()
	ui.window.ShowAndRun()
	ui.running = false
}

func (ui *UI) loop() {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	for ui.running {
		<-ticker.C
		if err := ui.emu.RunFrame(); err != nil {
			fmt.Println("emulation fault:", err)
			ui.emu.Stop()
			continue
		}
		ui.render()
	}
}

func (ui *UI) render() {
	buf := ui.emu.FrameBuffer()
	img := ui.frameImages[ui.frameIdx]
	ui.frameIdx ^= 1
	w, h := ppu.ScreenWidth, ppu.ScreenHeight

	pix := img.Pix
	stride := img.Stride
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := buf[y*w+x]
			r := uint8(c >> 16)
			g := uint8(c >> 8)
			b := uint8(c)
			baseX, baseY := x*ui.scale, y*ui.scale
			for sy := 0; sy < ui.scale; sy++ {
				row := (baseY + sy) * stride
				for sx := 0; sx < ui.scale; sx++ {
					off := row + (baseX+sx)*4
					pix[off], pix[off+1], pix[off+2], pix[off+3] = r, g, b, 0xFF
				}
			}
		}
	}

	fyne.Do(func() {
		ui.image.Image = img
		ui.image.Refresh()
		ui.status.SetText(fmt.Sprintf("FPS: %.1f | Frame: %d", ui.emu.FPS, ui.emu.FrameCount))
	})
}
