// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// A seat groups up to one pointer and any number of keyboards under one name.
// It is the unit of input focus
type Seat struct {
	server    *Server
	name      string
	focus     SeatFocus
	pointer   *Pointer
	keyboards []*Keyboard
	destroyed bool
}

// FindOrCreateSeat returns the seat with the given name, creating it if
// there is none yet. Names are compared exactly
func (server *Server) FindOrCreateSeat(name string) *Seat {
	if seat := server.Seat(name); seat != nil {
		return seat
	}

	seat := &Seat{
		server: server,
		name:   name,
		focus:  server.backend.CreateSeat(name),
	}
	seat.focus.OnDestroy(seat.handleDestroy)
	server.seats = append(server.seats, seat)
	server.log.WithField("seat", name).Infoln("Created seat")
	server.publish()
	return seat
}

// Seat looks up a seat without creating it
func (server *Server) Seat(name string) *Seat {
	for _, seat := range server.seats {
		if seat.name == name {
			return seat
		}
	}
	return nil
}

func (seat *Seat) Name() string {
	return seat.name
}

func (seat *Seat) Focus() SeatFocus {
	return seat.focus
}

// Pointer returns the seat's pointer binding or nil if no pointing device
// was ever attached
func (seat *Seat) Pointer() *Pointer {
	return seat.pointer
}

func (seat *Seat) Keyboards() []*Keyboard {
	return append([]*Keyboard(nil), seat.keyboards...)
}

func (seat *Seat) Destroyed() bool {
	return seat.destroyed
}

func (seat *Seat) capabilities() Capability {
	var caps Capability
	if seat.pointer != nil {
		caps |= CapabilityPointer
	}
	if len(seat.keyboards) > 0 {
		caps |= CapabilityKeyboard
	}
	return caps
}

func (seat *Seat) updateCapabilities() {
	seat.focus.SetCapabilities(seat.capabilities())
}

func (seat *Seat) removeKeyboard(keyboard *Keyboard) {
	seat.keyboards = sliceutils.Filter(seat.keyboards, func(k *Keyboard) bool {
		return k != keyboard
	})
}

// Called when the external seat object goes away. Takes every device binding with it
func (seat *Seat) handleDestroy() {
	if seat.destroyed {
		return
	}
	seat.destroyed = true

	for _, keyboard := range seat.keyboards {
		keyboard.destroyed = true
	}
	seat.keyboards = nil
	if seat.pointer != nil {
		seat.pointer.destroyed = true
		seat.pointer = nil
	}
	seat.server.removeSeat(seat)

	seat.server.log.WithFields(logrus.Fields{
		"seat":  seat.name,
		"seats": len(seat.server.seats),
	}).Infoln("Destroyed seat")
	seat.server.publish()
}
