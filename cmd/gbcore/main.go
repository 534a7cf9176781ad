// Command gbcore runs the DMG core against a ROM file using one of the
// desktop/terminal host adapters.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/retrocoderamen/gbcore/internal/config"
	"github.com/retrocoderamen/gbcore/internal/emulator"
	"github.com/retrocoderamen/gbcore/internal/host/fyneui"
	"github.com/retrocoderamen/gbcore/internal/host/sdlhost"
	"github.com/retrocoderamen/gbcore/internal/host/termhost"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Description = "A cycle-approximate DMG (original Game Boy) emulator core"
	app.Usage = "gbcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to the ROM file"},
		cli.StringFlag{Name: "config", Usage: "path to a TOML config file"},
		cli.StringFlag{Name: "bios", Usage: "path to a DMG boot ROM"},
		cli.StringFlag{Name: "save-dir", Usage: "directory for .sav cartridge RAM files"},
		cli.IntFlag{Name: "scale", Usage: "window scale factor (default 3)"},
		cli.StringFlag{Name: "backend", Usage: "host backend: fyne, sdl2, or term (default fyne)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbcore exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Defaults()
	if v := c.String("bios"); v != "" {
		cfg.BIOSPath = v
	}
	if v := c.String("save-dir"); v != "" {
		cfg.SaveDir = v
	}
	if v := c.Int("scale"); v > 0 {
		cfg.Scale = v
	}
	if v := c.String("backend"); v != "" {
		cfg.Backend = v
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("gbcore: reading ROM: %w", err)
	}

	emu := emulator.New()
	if cfg.BIOSPath != "" {
		bios, err := os.ReadFile(cfg.BIOSPath)
		if err != nil {
			return fmt.Errorf("gbcore: reading BIOS: %w", err)
		}
		if !emu.LoadBIOS(bios) {
			return errors.New("gbcore: BIOS file is the wrong size")
		}
	}

	romName := filepath.Base(romPath)
	savePath := filepath.Join(cfg.SaveDir, romName+".sav")
	if err := emu.LoadROM(data, savePath); err != nil {
		return fmt.Errorf("gbcore: loading ROM: %w", err)
	}

	slog.Info("loaded ROM", "path", romPath, "backend", cfg.Backend)

	switch cfg.Backend {
	case "sdl2":
		host := sdlhost.New(emu, cfg.Scale)
		if err := host.Init(); err != nil {
			return err
		}
		defer host.Cleanup()
		return host.Run()
	case "term":
		host := termhost.New(emu)
		if err := host.Init(); err != nil {
			return err
		}
		defer host.Cleanup()
		return host.Run()
	default:
		ui := fyneui.New(emu, cfg.Scale)
		ui.Run()
		return emu.FlushSave()
	}
}
