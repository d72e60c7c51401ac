// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"github.com/sirupsen/logrus"
)

type SurfaceKind int

const (
	SurfaceKindX11 = SurfaceKind(iota)
	SurfaceKindXDG
	// Unstable xdg-shell v6
	SurfaceKindXDGV6
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceKindX11:
		return "x11"
	case SurfaceKindXDG:
		return "xdg"
	case SurfaceKindXDGV6:
		return "xdg-v6"
	default:
		return "unknown"
	}
}

type XDGRole int

const (
	XDGRoleNone = XDGRole(iota)
	XDGRoleToplevel
	XDGRolePopup
)

type (
	// Signals every protocol variant has to offer
	SurfaceSignals interface {
		OnMap(func())
		OnUnmap(func())
		// The seat name may be empty, in which case the default seat is meant
		OnRequestMove(func(seatName string))
	}

	// An XWayland surface
	X11Surface interface {
		SurfaceSignals
		// The backing surface. Only valid once mapped
		Surface() ClientSurface
		// SurfaceAt finds the sub-surface at the given surface local coordinates
		// and translates them into coordinates local to that sub-surface
		SurfaceAt(sx, sy float64) (sub ClientSurface, subX, subY float64, ok bool)
	}

	XDGSurface interface {
		SurfaceSignals
		Surface() ClientSurface
		SurfaceAt(sx, sy float64) (sub ClientSurface, subX, subY float64, ok bool)
		Role() XDGRole
		SetActivated(activated bool)
	}

	// Legacy xdg-shell v6 surface. Same contract as XDGSurface
	XDGV6Surface interface {
		SurfaceSignals
		Surface() ClientSurface
		SurfaceAt(sx, sy float64) (sub ClientSurface, subX, subY float64, ok bool)
		Role() XDGRole
		SetActivated(activated bool)
	}

	// Positioner is optionally implemented by protocol surfaces that want to
	// know where their window ended up after a drag
	Positioner interface {
		SetPosition(x, y float64)
	}
)

// shellVariant is what the core needs from any of the protocol variants.
// Picked once when the Surface gets created
type shellVariant interface {
	kind() SurfaceKind
	surface() ClientSurface
	surfaceAt(sx, sy float64) (ClientSurface, float64, float64, bool)
	activate()
	native() any
}

type x11Variant struct{ s X11Surface }

func (v x11Variant) kind() SurfaceKind      { return SurfaceKindX11 }
func (v x11Variant) surface() ClientSurface { return v.s.Surface() }
func (v x11Variant) activate()              {}
func (v x11Variant) native() any            { return v.s }
func (v x11Variant) surfaceAt(sx, sy float64) (ClientSurface, float64, float64, bool) {
	return v.s.SurfaceAt(sx, sy)
}

type xdgVariant struct{ s XDGSurface }

func (v xdgVariant) kind() SurfaceKind      { return SurfaceKindXDG }
func (v xdgVariant) surface() ClientSurface { return v.s.Surface() }
func (v xdgVariant) native() any            { return v.s }
func (v xdgVariant) surfaceAt(sx, sy float64) (ClientSurface, float64, float64, bool) {
	return v.s.SurfaceAt(sx, sy)
}

func (v xdgVariant) activate() {
	if v.s.Role() == XDGRoleToplevel {
		v.s.SetActivated(true)
	}
}

type xdgV6Variant struct{ s XDGV6Surface }

func (v xdgV6Variant) kind() SurfaceKind      { return SurfaceKindXDGV6 }
func (v xdgV6Variant) surface() ClientSurface { return v.s.Surface() }
func (v xdgV6Variant) native() any            { return v.s }
func (v xdgV6Variant) surfaceAt(sx, sy float64) (ClientSurface, float64, float64, bool) {
	return v.s.SurfaceAt(sx, sy)
}

func (v xdgV6Variant) activate() {
	if v.s.Role() == XDGRoleToplevel {
		v.s.SetActivated(true)
	}
}

// Surface adapts one protocol surface to the shared map/unmap/move handling.
// It lives from creation until it gets unmapped, after which it ignores every signal
type Surface struct {
	server  *Server
	variant shellVariant
	// Resolved on map
	client ClientSurface
	scale  float64
	window *Window

	destroyed bool
}

func (server *Server) NewX11Surface(surface X11Surface) *Surface {
	return server.newSurface(x11Variant{surface}, surface)
}

// NewXDGSurface wraps an xdg-shell surface. Toplevels get activated right away
func (server *Server) NewXDGSurface(surface XDGSurface) *Surface {
	return server.newSurface(xdgVariant{surface}, surface)
}

// NewXDGV6Surface wraps an xdg-shell v6 surface. Toplevels get activated right away
func (server *Server) NewXDGV6Surface(surface XDGV6Surface) *Surface {
	return server.newSurface(xdgV6Variant{surface}, surface)
}

func (server *Server) newSurface(variant shellVariant, signals SurfaceSignals) *Surface {
	surface := &Surface{
		server:  server,
		variant: variant,
		scale:   server.opts.SurfaceScale,
	}
	variant.activate()

	signals.OnMap(surface.handleMap)
	signals.OnUnmap(surface.handleUnmap)
	signals.OnRequestMove(surface.handleRequestMove)

	server.log.WithField("kind", variant.kind()).Debugln("New surface inbound")
	return surface
}

func (surface *Surface) Kind() SurfaceKind {
	return surface.variant.kind()
}

// Client returns the backing protocol surface, nil before the first map
func (surface *Surface) Client() ClientSurface {
	return surface.client
}

// Window returns the window of a mapped surface, nil otherwise
func (surface *Surface) Window() *Window {
	return surface.window
}

func (surface *Surface) Mapped() bool {
	return surface.window != nil
}

func (surface *Surface) Destroyed() bool {
	return surface.destroyed
}

func (surface *Surface) Scale() float64 {
	return surface.scale
}

// SetScale changes the scale used to translate cursor coordinates.
// Non-positive values reset it to the configured default
func (surface *Surface) SetScale(scale float64) {
	if scale <= 0 {
		scale = surface.server.opts.SurfaceScale
	}
	surface.scale = scale
}

func (surface *Surface) handleMap() {
	server := surface.server
	logger := server.log.WithField("kind", surface.Kind())
	if surface.destroyed {
		logger.WithError(ErrNotMapped).Warnln("Ignoring map of a destroyed surface")
		return
	}
	if surface.window != nil {
		logger.WithError(ErrAlreadyMapped).Warnln("Ignoring repeated map")
		return
	}

	surface.client = surface.variant.surface()
	surface.window = server.insertWindow(surface)
	logger.WithFields(logrus.Fields{
		"window":  surface.window.id,
		"windows": len(server.windows),
	}).Infoln("Mapped window")

	server.focusKeyboard(surface)
	server.publish()
}

func (surface *Surface) handleUnmap() {
	server := surface.server
	logger := server.log.WithField("kind", surface.Kind())
	if surface.window == nil {
		logger.WithError(ErrNotMapped).Warnln("Ignoring unmap")
		return
	}

	window := surface.window
	server.removeWindow(window)
	surface.window = nil
	surface.destroyed = true
	if server.keyboardFocus == surface {
		server.keyboardFocus = nil
	}
	logger.WithFields(logrus.Fields{
		"window":  window.id,
		"windows": len(server.windows),
	}).Infoln("Unmapped window")

	// The head is the oldest remaining window, not the previously focused one
	if top := server.TopWindow(); top != nil {
		server.focusKeyboard(top.surface)
	}
	server.publish()
}

func (surface *Surface) handleRequestMove(seatName string) {
	server := surface.server
	if surface.destroyed {
		return
	}
	if seatName == "" {
		seatName = server.opts.DefaultSeat
	}
	seat := server.FindOrCreateSeat(seatName)
	if seat.pointer == nil {
		server.log.WithError(ErrNoPointer).WithField("seat", seatName).Warnln("Ignoring move request")
		return
	}
	seat.pointer.beginMove()
}
