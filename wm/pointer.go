// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"github.com/sirupsen/logrus"
)

type PointerMode int

const (
	// Motion is routed to whatever is under the cursor
	PointerModeFree = PointerMode(iota)
	// Motion drags the topmost window. Lasts until the next button release
	PointerModeMove
)

func (m PointerMode) String() string {
	switch m {
	case PointerModeFree:
		return "free"
	case PointerModeMove:
		return "move"
	default:
		return "unknown"
	}
}

// Pointer is the one pointer binding of a seat. It owns the cursor all
// pointing devices of the seat are attached to
type Pointer struct {
	seat    *Seat
	cursor  Cursor
	mode    PointerMode
	devices []InputDevice

	lastX, lastY   float64
	deltaX, deltaY float64

	destroyed bool
}

// AttachPointingDevice attaches dev to the seat's cursor.
// The pointer binding is created on the first call, later calls reuse it
func (seat *Seat) AttachPointingDevice(dev InputDevice) *Pointer {
	if seat.pointer == nil {
		seat.pointer = seat.newPointer()
		seat.updateCapabilities()
	}
	seat.pointer.cursor.AttachInputDevice(dev)
	seat.pointer.devices = append(seat.pointer.devices, dev)
	seat.server.log.WithFields(logrus.Fields{
		"seat":    seat.name,
		"devices": len(seat.pointer.devices),
	}).Debugln("Attached pointing device")
	return seat.pointer
}

func (seat *Seat) newPointer() *Pointer {
	server := seat.server
	pointer := &Pointer{
		seat:   seat,
		cursor: server.backend.CreateCursor(),
		mode:   PointerModeFree,
	}
	pointer.cursor.AttachOutputLayout(server.layout)
	pointer.cursor.SetImage(server.opts.CursorImage)
	for _, output := range server.outputs {
		pointer.cursor.MapToOutput(output)
	}
	pointer.lastX, pointer.lastY = pointer.cursor.X(), pointer.cursor.Y()

	pointer.cursor.OnMotion(pointer.handleMotion)
	pointer.cursor.OnMotionAbsolute(pointer.handleMotionAbsolute)
	pointer.cursor.OnButton(pointer.handleButton)

	server.log.WithField("seat", seat.name).Debugln("Created pointer")
	return pointer
}

func (pointer *Pointer) Seat() *Seat {
	return pointer.seat
}

func (pointer *Pointer) Cursor() Cursor {
	return pointer.cursor
}

func (pointer *Pointer) Mode() PointerMode {
	return pointer.mode
}

// Devices returns the attached pointing devices in attach order
func (pointer *Pointer) Devices() []InputDevice {
	return append([]InputDevice(nil), pointer.devices...)
}

// Delta returns the cursor displacement sampled by the last motion event
func (pointer *Pointer) Delta() (float64, float64) {
	return pointer.deltaX, pointer.deltaY
}

func (pointer *Pointer) handleMotion(event MotionEvent) {
	if pointer.destroyed {
		return
	}
	pointer.cursor.Move(event.Device, event.DX, event.DY)
	pointer.processMotion(event.TimeMsec)
}

func (pointer *Pointer) handleMotionAbsolute(event MotionEvent) {
	if pointer.destroyed {
		return
	}
	pointer.cursor.WarpAbsolute(event.Device, event.X, event.Y)
	pointer.processMotion(event.TimeMsec)
}

// processMotion runs after the cursor position was updated.
// The target is always the head of the window list, not whatever lies under the cursor
func (pointer *Pointer) processMotion(timeMsec uint32) {
	server := pointer.seat.server
	defer server.publish()

	x, y := pointer.cursor.X(), pointer.cursor.Y()
	pointer.deltaX = x - pointer.lastX
	pointer.deltaY = y - pointer.lastY
	pointer.lastX, pointer.lastY = x, y

	window := server.TopWindow()
	if window == nil {
		return
	}

	if pointer.mode == PointerModeMove {
		window.moveBy(pointer.deltaX, pointer.deltaY)
	}

	localX, localY := window.localCoords(x, y)
	sub, subX, subY, ok := window.surface.variant.surfaceAt(localX, localY)
	if !ok {
		// Otherwise buttons keep going to whoever had the pointer last
		pointer.seat.focus.ClearPointerFocus()
		return
	}
	pointer.seat.focus.NotifyPointerEnter(sub, subX, subY)
	pointer.seat.focus.NotifyPointerMotion(timeMsec, subX, subY)
}

func (pointer *Pointer) handleButton(event ButtonEvent) {
	if pointer.destroyed {
		return
	}
	pointer.seat.focus.NotifyPointerButton(event.TimeMsec, event.Button, event.State)
	if event.State == ButtonReleased {
		pointer.resetMode()
	}
}

func (pointer *Pointer) beginMove() {
	pointer.seat.server.log.WithField("seat", pointer.seat.name).Debugln("Entering move mode")
	pointer.mode = PointerModeMove
	pointer.seat.server.publish()
}

func (pointer *Pointer) resetMode() {
	if pointer.mode == PointerModeFree {
		return
	}
	pointer.seat.server.log.WithField("seat", pointer.seat.name).Debugln("Leaving move mode")
	pointer.mode = PointerModeFree
	pointer.seat.server.publish()
}
