// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type KeyboardID uint64

// Keyboard binds one physical keyboard to a seat
type Keyboard struct {
	id          KeyboardID
	seat        *Seat
	device      KeyboardDevice
	repeatRate  int32
	repeatDelay int32
	hasKeymap   bool
	destroyed   bool
}

// AttachKeyboardDevice always creates a new keyboard binding for dev.
// Failing to get a keymap context is fatal and logged as such. A keymap that
// fails to compile leaves the keyboard attached without a keymap and is
// returned as ErrKeymapCompile
func (seat *Seat) AttachKeyboardDevice(dev KeyboardDevice) (*Keyboard, error) {
	server := seat.server
	logger := server.log.WithField("seat", seat.name)

	context, err := server.backend.NewKeymapContext()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrKeymapContext, err)
		logger.WithError(err).Fatalln("Failed to create XKB context")
		return nil, err
	}
	defer context.Destroy()

	server.lastKeyboardID++
	keyboard := &Keyboard{
		id:          server.lastKeyboardID,
		seat:        seat,
		device:      dev,
		repeatRate:  server.opts.RepeatRate,
		repeatDelay: server.opts.RepeatDelay,
	}
	seat.keyboards = append(seat.keyboards, keyboard)

	dev.SetRepeatInfo(keyboard.repeatRate, keyboard.repeatDelay)
	dev.OnKey(keyboard.handleKey)
	dev.OnModifiers(keyboard.handleModifiers)
	dev.OnDestroy(keyboard.handleDestroy)
	seat.focus.SetKeyboard(dev)
	seat.updateCapabilities()

	logger = logger.WithField("keyboard", keyboard.id)
	keymap, err := context.Compile(server.opts.KeymapRules)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrKeymapCompile, err)
		logger.WithError(err).Errorln("Keyboard left without keymap")
		return keyboard, err
	}
	dev.SetKeymap(keymap)
	keymap.Destroy()
	keyboard.hasKeymap = true

	logger.Debugln("Attached keyboard")
	return keyboard, nil
}

func (keyboard *Keyboard) ID() KeyboardID {
	return keyboard.id
}

func (keyboard *Keyboard) Seat() *Seat {
	return keyboard.seat
}

func (keyboard *Keyboard) Device() KeyboardDevice {
	return keyboard.device
}

// RepeatInfo returns the key repeat rate (per second) and delay (ms)
func (keyboard *Keyboard) RepeatInfo() (int32, int32) {
	return keyboard.repeatRate, keyboard.repeatDelay
}

func (keyboard *Keyboard) HasKeymap() bool {
	return keyboard.hasKeymap
}

func (keyboard *Keyboard) handleKey(event KeyEvent) {
	if keyboard.destroyed {
		return
	}
	keyboard.seat.focus.SetKeyboard(keyboard.device)
	keyboard.seat.focus.NotifyKeyboardKey(event)
}

func (keyboard *Keyboard) handleModifiers() {
	if keyboard.destroyed {
		return
	}
	keyboard.seat.focus.SetKeyboard(keyboard.device)
	keyboard.seat.focus.NotifyKeyboardModifiers(keyboard.device)
}

func (keyboard *Keyboard) handleDestroy() {
	if keyboard.destroyed {
		return
	}
	keyboard.destroyed = true

	seat := keyboard.seat
	seat.removeKeyboard(keyboard)
	if n := len(seat.keyboards); n > 0 {
		seat.focus.SetKeyboard(seat.keyboards[n-1].device)
	}
	seat.updateCapabilities()

	seat.server.log.WithFields(logrus.Fields{
		"seat":      seat.name,
		"keyboard":  keyboard.id,
		"remaining": len(seat.keyboards),
	}).Debugln("Destroyed keyboard")
	seat.server.publish()
}
