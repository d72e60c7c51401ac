// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
)

type StartType int

const (
	// Tells seatwm to start a repl in parallel for interacting with it
	START_REPL = StartType(iota)
	// Tells seatwm to execute a specific command on startup
	START_SINGLE_COMMAND
	// Tells seatwm to start without any specific targets
	// Note: Good luck interacting with it :3
	START_NONE
)

// Path of the config file relative to the xdg config dirs
const RelativePath = "seatwm/config.toml"

// Prefix for environment overrides, e.g. SEATWM_SEAT_DEFAULT or
// SEATWM_KEYBOARD_REPEAT_RATE. Only LOG_LEVEL and the XKB_DEFAULT_* names are
// also read without it
const EnvPrefix = "seatwm"

type Config struct {
	StartType StartType `split_words:"true" toml:"start_type,omitempty"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand *string `split_words:"true" toml:"start_command,omitempty"`
	// Anything logrus.ParseLevel understands. Also read from LOG_LEVEL
	LogLevel string `envconfig:"LOG_LEVEL" toml:"log_level,omitempty"`
	// Surface scale the cursor coordinate translation starts out with
	SurfaceScale float64 `split_words:"true" toml:"surface_scale,omitempty"`

	Seat     SeatConfig     `toml:"seat"`
	Keyboard KeyboardConfig `toml:"keyboard"`
	Cursor   CursorConfig   `toml:"cursor"`
}

type SeatConfig struct {
	// Seat that gets keyboard focus changes and devices without a seat of their own
	Default string `toml:"default,omitempty"`
}

type KeyboardConfig struct {
	RepeatRate  int32 `split_words:"true" toml:"repeat_rate,omitempty"`
	RepeatDelay int32 `split_words:"true" toml:"repeat_delay,omitempty"`
	// Empty rule names mean the xkb default
	XKB XKBConfig `toml:"xkb"`
}

// Names are also picked up from the usual XKB_DEFAULT_* variables
type XKBConfig struct {
	Rules   string `envconfig:"XKB_DEFAULT_RULES" toml:"rules,omitempty"`
	Model   string `envconfig:"XKB_DEFAULT_MODEL" toml:"model,omitempty"`
	Layout  string `envconfig:"XKB_DEFAULT_LAYOUT" toml:"layout,omitempty"`
	Variant string `envconfig:"XKB_DEFAULT_VARIANT" toml:"variant,omitempty"`
	Options string `envconfig:"XKB_DEFAULT_OPTIONS" toml:"options,omitempty"`
}

type CursorConfig struct {
	// Empty for the default xcursor theme
	Theme string `toml:"theme,omitempty"`
	// Image set when a seat gets its pointer
	Image string `toml:"image,omitempty"`
}

func Default() Config {
	return Config{
		StartType:    START_REPL,
		LogLevel:     "info",
		SurfaceScale: 2.0,
		Seat: SeatConfig{
			Default: "seat0",
		},
		Keyboard: KeyboardConfig{
			RepeatRate:  25,
			RepeatDelay: 600,
		},
		Cursor: CursorConfig{
			Image: "left_ptr",
		},
	}
}

// Load builds the config from the config file and the environment, then fills
// every unset field from Default. If path is empty, the xdg config dirs are
// searched. A missing file is not an error
func Load(path string) (*Config, error) {
	conf := Config{}

	if path == "" {
		found, err := xdg.SearchConfigFile(RelativePath)
		if err == nil {
			path = found
		}
	}
	if path != "" {
		if err := loadFile(path, &conf); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &conf); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	conf.applyDefaults()
	return &conf, nil
}

func (conf *Config) applyDefaults() {
	def := Default()
	if conf.LogLevel == "" {
		conf.LogLevel = def.LogLevel
	}
	if conf.SurfaceScale <= 0 {
		conf.SurfaceScale = def.SurfaceScale
	}
	if conf.Seat.Default == "" {
		conf.Seat.Default = def.Seat.Default
	}
	if conf.Keyboard.RepeatRate <= 0 {
		conf.Keyboard.RepeatRate = def.Keyboard.RepeatRate
	}
	if conf.Keyboard.RepeatDelay <= 0 {
		conf.Keyboard.RepeatDelay = def.Keyboard.RepeatDelay
	}
	if conf.Cursor.Image == "" {
		conf.Cursor.Image = def.Cursor.Image
	}
}

func loadFile(path string, conf *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err = toml.Unmarshal(data, conf); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns where a new config file should be written
func DefaultPath() (string, error) {
	return xdg.ConfigFile(RelativePath)
}
