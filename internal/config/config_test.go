package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`backend = "sdl2"`+"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sdl2", c.Backend)
	assert.Equal(t, 3, c.Scale)
	assert.Equal(t, ".", c.SaveDir)
	assert.Equal(t, "A", c.KeyBindings["a"])
}

func TestLoadPreservesExplicitKeyBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[key_bindings]\nz = \"A\"\nx = \"B\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "A", c.KeyBindings["z"])
	assert.Equal(t, "B", c.KeyBindings["x"])
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	assert.Error(t, err)
}
