// Package config loads host-level configuration (boot ROM path, save
// directory, display scale, backend choice, key bindings) from a TOML
// file, with CLI flags from cmd/gbcore free to override individual
// fields afterward.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds every setting a host frontend needs that the core
// emulator itself has no opinion about.
type Config struct {
	BIOSPath string `toml:"bios_path"`
	SaveDir  string `toml:"save_dir"`
	Scale    int    `toml:"scale"`
	Backend  string `toml:"backend"` // "fyne", "sdl2", or "term"

	KeyBindings map[string]string `toml:"key_bindings"`
}

// Defaults fills unset fields with reasonable defaults, mirroring the
// teacher's Config.Defaults pattern.
func (c *Config) Defaults() {
	if c.SaveDir == "" {
		c.SaveDir = "."
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.Backend == "" {
		c.Backend = "fyne"
	}
	if c.KeyBindings == nil {
		c.KeyBindings = defaultKeyBindings()
	}
}

func defaultKeyBindings() map[string]string {
	return map[string]string{
		"a":     "A",
		"s":     "B",
		"enter": "Start",
		"shift": "Select",
		"up":    "Up",
		"down":  "Down",
		"left":  "Left",
		"right": "Right",
	}
}

// Load reads and decodes a TOML config file at path, filling in
// defaults for anything the file leaves unset.
func Load(path string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	c.Defaults()
	return &c, nil
}
