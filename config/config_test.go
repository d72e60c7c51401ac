package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearXKBEnv makes sure the host's keyboard setup does not leak into the tests
func clearXKBEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"XKB_DEFAULT_RULES", "XKB_DEFAULT_MODEL", "XKB_DEFAULT_LAYOUT",
		"XKB_DEFAULT_VARIANT", "XKB_DEFAULT_OPTIONS", "LOG_LEVEL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearXKBEnv(t)
	conf, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *conf)
}

func TestLoadFile(t *testing.T) {
	clearXKBEnv(t)
	path := writeConfig(t, `
start_type = 2
log_level = "debug"
surface_scale = 1.0

[seat]
default = "main"

[keyboard]
repeat_rate = 40

[keyboard.xkb]
layout = "de"
options = "caps:escape"

[cursor]
theme = "Adwaita"
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, START_NONE, conf.StartType)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, 1.0, conf.SurfaceScale)
	assert.Equal(t, "main", conf.Seat.Default)
	assert.Equal(t, int32(40), conf.Keyboard.RepeatRate)
	assert.Equal(t, int32(600), conf.Keyboard.RepeatDelay, "unset fields keep their default")
	assert.Equal(t, XKBConfig{Layout: "de", Options: "caps:escape"}, conf.Keyboard.XKB)
	assert.Equal(t, "Adwaita", conf.Cursor.Theme)
	assert.Equal(t, "left_ptr", conf.Cursor.Image)
}

func TestLoadInvalidFile(t *testing.T) {
	clearXKBEnv(t)
	path := writeConfig(t, "[seat\ndefault = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearXKBEnv(t)
	path := writeConfig(t, `
[keyboard.xkb]
layout = "de"
model = "pc105"
`)
	t.Setenv("XKB_DEFAULT_LAYOUT", "us")
	t.Setenv("XKB_DEFAULT_VARIANT", "dvorak")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SEATWM_SEAT_DEFAULT", "seat9")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, XKBConfig{Layout: "us", Model: "pc105", Variant: "dvorak"}, conf.Keyboard.XKB)
	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, "seat9", conf.Seat.Default)
}

func TestOnlyPrefixedEnvironmentApplies(t *testing.T) {
	clearXKBEnv(t)
	t.Setenv("DEFAULT", "not-a-seat")
	t.Setenv("IMAGE", "wallpaper.png")
	t.Setenv("THEME", "dark")
	t.Setenv("REPEAT_RATE", "99")
	t.Setenv("REPEAT_DELAY", "1")
	t.Setenv("SURFACE_SCALE", "3")

	conf, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *conf)

	t.Setenv("SEATWM_CURSOR_THEME", "dark")
	t.Setenv("SEATWM_KEYBOARD_REPEAT_RATE", "40")
	t.Setenv("SEATWM_SURFACE_SCALE", "1.5")

	conf, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "dark", conf.Cursor.Theme)
	assert.Equal(t, int32(40), conf.Keyboard.RepeatRate)
	assert.Equal(t, 1.5, conf.SurfaceScale)
	assert.Equal(t, "seat0", conf.Seat.Default)
}
