// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

// Everything in this file is implemented outside of the core, usually by the
// wlroots binding in package main. The core only ever calls these from the
// dispatch thread.

type (
	// A protocol level surface owned by the backend.
	// The core never looks inside, it only passes it back to a SeatFocus
	ClientSurface any

	DeviceType  int
	ButtonState int
	KeyState    int
	Capability  uint32
)

const (
	DeviceTypeUnknown = DeviceType(iota)
	DeviceTypePointer
	DeviceTypeKeyboard
)

const (
	ButtonReleased = ButtonState(iota)
	ButtonPressed
)

const (
	KeyReleased = KeyState(iota)
	KeyPressed
)

const (
	CapabilityPointer = Capability(1 << iota)
	CapabilityKeyboard
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypePointer:
		return "pointer"
	case DeviceTypeKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

type (
	// Backend creates the external objects the core binds its entities to
	Backend interface {
		// CreateSeat returns a fresh seat-focus object advertised under the given name
		CreateSeat(name string) SeatFocus
		CreateCursor() Cursor
		// NewKeymapContext fails only if no keymap compilation context can be allocated
		NewKeymapContext() (KeymapContext, error)
	}

	// SeatFocus is the protocol side of a seat.
	// It tells clients about pointer and keyboard focus and input
	SeatFocus interface {
		NotifyPointerEnter(surface ClientSurface, sx, sy float64)
		NotifyPointerMotion(timeMsec uint32, sx, sy float64)
		NotifyPointerButton(timeMsec uint32, button uint32, state ButtonState)
		ClearPointerFocus()
		NotifyKeyboardEnter(surface ClientSurface)
		NotifyKeyboardKey(event KeyEvent)
		NotifyKeyboardModifiers(keyboard KeyboardDevice)
		// SetKeyboard makes the given device the active keyboard of the seat
		SetKeyboard(keyboard KeyboardDevice)
		SetCapabilities(caps Capability)
		OnDestroy(func())
	}

	// Cursor tracks the absolute pointer position across the output layout
	// and aggregates the events of all attached pointing devices
	Cursor interface {
		X() float64
		Y() float64
		Move(dev InputDevice, dx, dy float64)
		WarpAbsolute(dev InputDevice, x, y float64)
		AttachInputDevice(dev InputDevice)
		AttachOutputLayout(layout OutputLayout)
		SetImage(name string)
		MapToOutput(output Output)
		OnMotion(func(MotionEvent))
		OnMotionAbsolute(func(MotionEvent))
		OnButton(func(ButtonEvent))
	}

	InputDevice interface {
		Type() DeviceType
		// Name of the seat the device is assigned to. Empty means the default seat
		SeatName() string
	}

	KeyboardDevice interface {
		InputDevice
		SetRepeatInfo(rate, delay int32)
		SetKeymap(keymap Keymap)
		OnKey(func(KeyEvent))
		OnModifiers(func())
		OnDestroy(func())
	}

	KeymapContext interface {
		Compile(names RuleNames) (Keymap, error)
		Destroy()
	}

	Keymap interface {
		Destroy()
	}

	Output interface {
		Name() string
	}

	OutputLayout interface {
		Add(output Output)
		Remove(output Output)
	}
)

type (
	// Motion from either a relative or an absolute pointer event.
	// DX/DY are deltas for relative motion, X/Y are 0..1 for absolute motion
	MotionEvent struct {
		Device   InputDevice
		TimeMsec uint32
		DX, DY   float64
		X, Y     float64
	}

	ButtonEvent struct {
		Device   InputDevice
		TimeMsec uint32
		Button   uint32
		State    ButtonState
	}

	KeyEvent struct {
		TimeMsec    uint32
		KeyCode     uint32
		UpdateState bool
		State       KeyState
	}

	// Names of the xkb rules used to compile a keymap.
	// Empty fields mean "use the backend default"
	RuleNames struct {
		Rules   string
		Model   string
		Layout  string
		Variant string
		Options string
	}
)
