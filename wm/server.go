// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package wm is the input routing and window focus core of the compositor.
// It keeps track of seats and their devices, the list of mapped windows and
// the pointer interaction mode. All external objects (wlroots or otherwise)
// are reached through the interfaces in types.go.
//
// Nothing in here is safe for concurrent use. Every method has to be called
// from the thread running the display event loop, with the exception of
// Server.Snapshot.
package wm

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

const (
	DefaultSeatName     = "seat0"
	DefaultRepeatRate   = 25
	DefaultRepeatDelay  = 600
	DefaultCursorImage  = "left_ptr"
	DefaultSurfaceScale = 2.0
)

type Options struct {
	// Defaults to logrus.StandardLogger()
	Logger *logrus.Logger
	// Seat used for keyboard focus on map/unmap and for devices without a seat name
	DefaultSeat string
	RepeatRate  int32
	RepeatDelay int32
	KeymapRules RuleNames
	CursorImage string
	// Scale new surfaces start out with
	SurfaceScale float64
}

func (o *Options) fillDefaults() {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.DefaultSeat == "" {
		o.DefaultSeat = DefaultSeatName
	}
	if o.RepeatRate <= 0 {
		o.RepeatRate = DefaultRepeatRate
	}
	if o.RepeatDelay <= 0 {
		o.RepeatDelay = DefaultRepeatDelay
	}
	if o.CursorImage == "" {
		o.CursorImage = DefaultCursorImage
	}
	if o.SurfaceScale <= 0 {
		o.SurfaceScale = DefaultSurfaceScale
	}
}

// Server is the composition root. It owns every seat, window and output
type Server struct {
	backend Backend
	layout  OutputLayout
	opts    Options
	log     *logrus.Logger

	// Most recently mapped window first
	windows []*Window
	seats   []*Seat
	outputs []Output

	// Surface that was last granted keyboard focus through the default seat
	keyboardFocus *Surface

	lastWindowID   WindowID
	lastKeyboardID KeyboardID

	snapshot atomic.Pointer[Snapshot]
}

func NewServer(backend Backend, layout OutputLayout, opts Options) *Server {
	opts.fillDefaults()
	server := &Server{
		backend: backend,
		layout:  layout,
		opts:    opts,
		log:     opts.Logger,
	}
	server.publish()
	return server
}

func (server *Server) Options() Options {
	return server.opts
}

// Windows returns a copy of the window list, most recently mapped first
func (server *Server) Windows() []*Window {
	return append([]*Window(nil), server.windows...)
}

// TopWindow returns the head of the window list or nil if nothing is mapped
func (server *Server) TopWindow() *Window {
	if len(server.windows) == 0 {
		return nil
	}
	return server.windows[0]
}

func (server *Server) Seats() []*Seat {
	return append([]*Seat(nil), server.seats...)
}

func (server *Server) Outputs() []Output {
	return append([]Output(nil), server.outputs...)
}

// KeyboardFocus returns the surface last granted keyboard focus, or nil
func (server *Server) KeyboardFocus() *Surface {
	return server.keyboardFocus
}

// AddOutput registers a new output, puts it into the layout and maps every
// existing cursor onto it
func (server *Server) AddOutput(output Output) {
	server.log.WithField("name", output.Name()).Infoln("New output added")
	server.outputs = append(server.outputs, output)
	server.layout.Add(output)
	for _, seat := range server.seats {
		if seat.pointer != nil {
			seat.pointer.cursor.MapToOutput(output)
		}
	}
	server.publish()
}

func (server *Server) RemoveOutput(output Output) {
	server.log.WithField("name", output.Name()).Infoln("Output removed")
	server.outputs = sliceutils.Filter(server.outputs, func(o Output) bool {
		return o != output
	})
	server.layout.Remove(output)
	server.publish()
}

// ConnectInput attaches a freshly announced input device to its seat
func (server *Server) ConnectInput(dev InputDevice) error {
	seatName := dev.SeatName()
	if seatName == "" {
		seatName = server.opts.DefaultSeat
	}
	logger := server.log.WithFields(logrus.Fields{
		"seat": seatName,
		"type": dev.Type(),
	})
	logger.Debugln("New input device")

	defer server.publish()
	switch dev.Type() {
	case DeviceTypePointer:
		server.FindOrCreateSeat(seatName).AttachPointingDevice(dev)
	case DeviceTypeKeyboard:
		keyboard, ok := dev.(KeyboardDevice)
		if !ok {
			logger.WithError(ErrNotKeyboard).Warnln("Ignoring input device")
			return ErrNotKeyboard
		}
		_, err := server.FindOrCreateSeat(seatName).AttachKeyboardDevice(keyboard)
		return err
	default:
		logger.Debugln("Ignoring input device of unsupported type")
		return fmt.Errorf("%w: %s", ErrUnknownDevice, dev.Type())
	}
	return nil
}

func (server *Server) insertWindow(surface *Surface) *Window {
	server.lastWindowID++
	window := &Window{
		id:      server.lastWindowID,
		surface: surface,
	}
	server.windows = append([]*Window{window}, server.windows...)
	return window
}

func (server *Server) removeWindow(window *Window) {
	server.windows = sliceutils.Filter(server.windows, func(w *Window) bool {
		return w != window
	})
}

func (server *Server) removeSeat(seat *Seat) {
	server.seats = sliceutils.Filter(server.seats, func(s *Seat) bool {
		return s != seat
	})
}

// focusKeyboard grants keyboard focus to the given surface through the default seat
func (server *Server) focusKeyboard(surface *Surface) {
	seat := server.FindOrCreateSeat(server.opts.DefaultSeat)
	server.log.WithFields(logrus.Fields{
		"seat":    seat.name,
		"surface": surface.Kind(),
	}).Debugln("Granting keyboard focus")
	seat.focus.NotifyKeyboardEnter(surface.client)
	server.keyboardFocus = surface
}
