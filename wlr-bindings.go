package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mstarongithub/seatwm/wm"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/swaywm/go-wlroots/xkb"
)

// Glue between the wm core and go-wlroots. Every type in here implements one
// of the interfaces from wm/types.go

// wlrBackend hands out wlroots objects to the core
type wlrBackend struct {
	compositor *Compositor
}

func (b *wlrBackend) CreateSeat(name string) wm.SeatFocus {
	seat := &wlrSeat{
		name: name,
		seat: b.compositor.display.SeatCreate(name),
	}
	seat.seat.OnSetCursorRequest(func(client wlroots.SeatClient, surface wlroots.Surface, _ uint32, hotspotX int32, hotspotY int32) {
		b.compositor.handleSetCursorRequest(seat, client, surface, hotspotX, hotspotY)
	})
	b.compositor.seats = append(b.compositor.seats, seat)
	return seat
}

func (b *wlrBackend) CreateCursor() wm.Cursor {
	cursor := &wlrCursor{
		cursor: wlroots.NewCursor(),
		mgr:    b.compositor.cursorMgr,
	}
	/* The frame event groups multiple pointer events together, the axis event
	 * is the scroll wheel. Neither matters to the core, so they go straight to
	 * the seat with pointer focus. */
	cursor.cursor.OnAxis(func(_ wlroots.InputDevice, time uint32, source wlroots.AxisSource, orientation wlroots.AxisOrientation, delta float64, deltaDiscrete int32) {
		for _, seat := range b.compositor.seatsOfCursor(cursor) {
			seat.seat.NotifyPointerAxis(time, orientation, delta, deltaDiscrete, source)
		}
	})
	cursor.cursor.OnFrame(func() {
		for _, seat := range b.compositor.seatsOfCursor(cursor) {
			seat.seat.NotifyPointerFrame()
		}
	})
	return cursor
}

func (b *wlrBackend) NewKeymapContext() (wm.KeymapContext, error) {
	context, err := newKeymapContext(xkb.NewContext(xkb.KeySymFlagNoFlags))
	if err != nil {
		return nil, err
	}
	return context, nil
}

func newKeymapContext(context xkb.Context) (*wlrKeymapContext, error) {
	if context == (xkb.Context{}) {
		return nil, errXKBContext
	}
	return &wlrKeymapContext{
		compile: func(names wm.RuleNames) (*wlrKeymap, error) {
			exportRuleNames(names)
			return wrapKeymap(context.KeyMap(), names)
		},
		destroy: func() { context.Destroy() },
	}, nil
}

func wrapKeymap(keymap xkb.Keymap, names wm.RuleNames) (*wlrKeymap, error) {
	if keymap.Ptr() == nil {
		return nil, fmt.Errorf("%w (rules %q, model %q, layout %q, variant %q, options %q)",
			errXKBKeymap, names.Rules, names.Model, names.Layout, names.Variant, names.Options)
	}
	return &wlrKeymap{
		apply:   func(keyboard wlroots.Keyboard) { keyboard.SetKeymap(keymap) },
		destroy: func() { keymap.Destroy() },
	}, nil
}

// xkbcommon falls back to the XKB_DEFAULT_* variables for every rule name it
// is not given, so configured names are handed over through the environment
func exportRuleNames(names wm.RuleNames) {
	for variable, value := range map[string]string{
		"XKB_DEFAULT_RULES":   names.Rules,
		"XKB_DEFAULT_MODEL":   names.Model,
		"XKB_DEFAULT_LAYOUT":  names.Layout,
		"XKB_DEFAULT_VARIANT": names.Variant,
		"XKB_DEFAULT_OPTIONS": names.Options,
	} {
		if value == "" {
			continue
		}
		if err := os.Setenv(variable, value); err != nil {
			logrus.WithError(err).WithField("variable", variable).Warnln("Failed to export xkb rule name")
		}
	}
}

var (
	errXKBContext = errors.New("xkb_context_new returned NULL")
	errXKBKeymap  = errors.New("xkb could not compile a keymap")
)

type wlrKeymapContext struct {
	compile func(wm.RuleNames) (*wlrKeymap, error)
	destroy func()
}

func (c *wlrKeymapContext) Compile(names wm.RuleNames) (wm.Keymap, error) {
	keymap, err := c.compile(names)
	if err != nil {
		return nil, err
	}
	return keymap, nil
}

func (c *wlrKeymapContext) Destroy() {
	c.destroy()
}

type wlrKeymap struct {
	apply   func(wlroots.Keyboard)
	destroy func()
}

func (k *wlrKeymap) Destroy() {
	k.destroy()
}

// wlrSeat is the protocol side of a wm.Seat
type wlrSeat struct {
	name      string
	seat      wlroots.Seat
	onDestroy []func()
}

func (s *wlrSeat) NotifyPointerEnter(surface wm.ClientSurface, sx, sy float64) {
	if surf, ok := surface.(wlroots.Surface); ok {
		s.seat.NotifyPointerEnter(surf, sx, sy)
	}
}

func (s *wlrSeat) NotifyPointerMotion(timeMsec uint32, sx, sy float64) {
	s.seat.NotifyPointerMotion(timeMsec, sx, sy)
}

func (s *wlrSeat) NotifyPointerButton(timeMsec uint32, button uint32, state wm.ButtonState) {
	wlrState := wlroots.ButtonStatePressed
	if state == wm.ButtonReleased {
		wlrState = wlroots.ButtonStateReleased
	}
	s.seat.NotifyPointerButton(timeMsec, button, wlrState)
}

func (s *wlrSeat) ClearPointerFocus() {
	s.seat.ClearPointerFocus()
}

func (s *wlrSeat) NotifyKeyboardEnter(surface wm.ClientSurface) {
	if surf, ok := surface.(wlroots.Surface); ok {
		s.seat.NotifyKeyboardEnter(surf, s.seat.Keyboard())
	}
}

func (s *wlrSeat) NotifyKeyboardKey(event wm.KeyEvent) {
	state := wlroots.KeyStateReleased
	if event.State == wm.KeyPressed {
		state = wlroots.KeyStatePressed
	}
	s.seat.NotifyKeyboardKey(event.TimeMsec, event.KeyCode, state)
}

func (s *wlrSeat) NotifyKeyboardModifiers(keyboard wm.KeyboardDevice) {
	if kb, ok := keyboard.(*wlrKeyboard); ok {
		s.seat.NotifyKeyboardModifiers(kb.dev.Keyboard())
	}
}

func (s *wlrSeat) SetKeyboard(keyboard wm.KeyboardDevice) {
	if kb, ok := keyboard.(*wlrKeyboard); ok {
		s.seat.SetKeyboard(kb.dev)
	}
}

func (s *wlrSeat) SetCapabilities(caps wm.Capability) {
	/* In TinyWL we always had a cursor, the core only reports a pointer once
	 * a pointing device is attached to the seat. */
	var wlrCaps wlroots.SeatCapability
	if caps&wm.CapabilityPointer != 0 {
		wlrCaps |= wlroots.SeatCapabilityPointer
	}
	if caps&wm.CapabilityKeyboard != 0 {
		wlrCaps |= wlroots.SeatCapabilityKeyboard
	}
	s.seat.SetCapabilities(wlrCaps)
}

// The wlr_seat goes away together with the display, see Compositor.Run
func (s *wlrSeat) OnDestroy(cb func()) {
	s.onDestroy = append(s.onDestroy, cb)
}

func (s *wlrSeat) destroy() {
	for _, cb := range s.onDestroy {
		cb()
	}
	s.onDestroy = nil
}

type wlrCursor struct {
	cursor wlroots.Cursor
	mgr    wlroots.XCursorManager
}

func (c *wlrCursor) X() float64 { return c.cursor.X() }
func (c *wlrCursor) Y() float64 { return c.cursor.Y() }

/* The cursor doesn't move unless we tell it to. It automatically handles
 * constraining the motion to the output layout. */
func (c *wlrCursor) Move(dev wm.InputDevice, dx, dy float64) {
	c.cursor.Move(unwrapDevice(dev), dx, dy)
}

func (c *wlrCursor) WarpAbsolute(dev wm.InputDevice, x, y float64) {
	c.cursor.WarpAbsolute(unwrapDevice(dev), x, y)
}

func (c *wlrCursor) AttachInputDevice(dev wm.InputDevice) {
	c.cursor.AttachInputDevice(unwrapDevice(dev))
}

func (c *wlrCursor) AttachOutputLayout(layout wm.OutputLayout) {
	if l, ok := layout.(*wlrLayout); ok {
		c.cursor.AttachOutputLayout(l.layout)
	}
}

func (c *wlrCursor) SetImage(name string) {
	c.cursor.SetXCursor(c.mgr, name)
}

// Makes sure the xcursor theme is loaded for the new output so the image
// shows up there too
func (c *wlrCursor) MapToOutput(output wm.Output) {
	c.mgr.Load(1)
}

func (c *wlrCursor) OnMotion(cb func(wm.MotionEvent)) {
	c.cursor.OnMotion(func(dev wlroots.InputDevice, time uint32, dx float64, dy float64) {
		cb(wm.MotionEvent{Device: &wlrDevice{dev: dev}, TimeMsec: time, DX: dx, DY: dy})
	})
}

func (c *wlrCursor) OnMotionAbsolute(cb func(wm.MotionEvent)) {
	c.cursor.OnMotionAbsolute(func(dev wlroots.InputDevice, time uint32, x float64, y float64) {
		cb(wm.MotionEvent{Device: &wlrDevice{dev: dev}, TimeMsec: time, X: x, Y: y})
	})
}

func (c *wlrCursor) OnButton(cb func(wm.ButtonEvent)) {
	c.cursor.OnButton(func(dev wlroots.InputDevice, time uint32, button uint32, state wlroots.ButtonState) {
		wmState := wm.ButtonPressed
		if state == wlroots.ButtonStateReleased {
			wmState = wm.ButtonReleased
		}
		cb(wm.ButtonEvent{Device: &wlrDevice{dev: dev}, TimeMsec: time, Button: button, State: wmState})
	})
}

type wlrDevice struct {
	dev wlroots.InputDevice
	// Empty means the default seat
	seat string
}

func (d *wlrDevice) Type() wm.DeviceType {
	switch d.dev.Type() {
	case wlroots.InputDeviceTypePointer:
		return wm.DeviceTypePointer
	case wlroots.InputDeviceTypeKeyboard:
		return wm.DeviceTypeKeyboard
	default:
		return wm.DeviceTypeUnknown
	}
}

func (d *wlrDevice) SeatName() string {
	return d.seat
}

func unwrapDevice(dev wm.InputDevice) wlroots.InputDevice {
	switch d := dev.(type) {
	case *wlrDevice:
		return d.dev
	case *wlrKeyboard:
		return d.dev
	}
	logrus.WithField("device", dev).Fatalln("Input device not created by the wlroots backend")
	return wlroots.InputDevice{}
}

type wlrKeyboard struct {
	*wlrDevice
	compositor *Compositor
}

func (k *wlrKeyboard) SetRepeatInfo(rate, delay int32) {
	k.dev.Keyboard().SetRepeatInfo(rate, delay)
}

func (k *wlrKeyboard) SetKeymap(keymap wm.Keymap) {
	if km, ok := keymap.(*wlrKeymap); ok {
		km.apply(k.dev.Keyboard())
	}
}

func (k *wlrKeyboard) OnKey(cb func(wm.KeyEvent)) {
	k.dev.Keyboard().OnKey(func(keyboard wlroots.Keyboard, time uint32, keyCode uint32, updateState bool, state wlroots.KeyState) {
		if state == wlroots.KeyStatePressed && k.compositor.handleKeyBinding(keyboard, keyCode) {
			return
		}
		wmState := wm.KeyReleased
		if state == wlroots.KeyStatePressed {
			wmState = wm.KeyPressed
		}
		cb(wm.KeyEvent{TimeMsec: time, KeyCode: keyCode, UpdateState: updateState, State: wmState})
	})
}

func (k *wlrKeyboard) OnModifiers(cb func()) {
	k.dev.Keyboard().OnModifiers(func(wlroots.Keyboard) {
		cb()
	})
}

func (k *wlrKeyboard) OnDestroy(cb func()) {
	k.dev.OnDestroy(func(wlroots.InputDevice) {
		cb()
	})
}

type wlrOutput struct {
	output wlroots.Output
}

func (o *wlrOutput) Name() string {
	return o.output.Name()
}

type wlrLayout struct {
	layout      wlroots.OutputLayout
	scene       wlroots.Scene
	sceneLayout wlroots.SceneOutputLayout
}

/* The add_auto function arranges outputs from left-to-right in the order
 * they appear. The output layout utility automatically adds a wl_output
 * global to the display. */
func (l *wlrLayout) Add(output wm.Output) {
	o, ok := output.(*wlrOutput)
	if !ok {
		return
	}
	lOutput := l.layout.AddOutputAuto(o.output)
	sceneOutput := l.scene.NewOutput(o.output)
	l.sceneLayout.AddOutput(lOutput, sceneOutput)
}

// wlroots drops destroyed outputs from the layout by itself
func (l *wlrLayout) Remove(wm.Output) {}

// hitSurface turns the result of a wlroots surface_at lookup into a core hit
func hitSurface(sub wlroots.Surface, subX, subY float64) (wm.ClientSurface, float64, float64, bool) {
	if sub.Nil() {
		return nil, 0, 0, false
	}
	return sub, subX, subY, true
}

// wlrXDGSurface implements wm.XDGSurface and wm.Positioner for xdg-shell toplevels
type wlrXDGSurface struct {
	surface wlroots.XDGSurface
}

func (s *wlrXDGSurface) Surface() wm.ClientSurface {
	return s.surface.Surface()
}

func (s *wlrXDGSurface) SurfaceAt(sx, sy float64) (wm.ClientSurface, float64, float64, bool) {
	return hitSurface(s.surface.SurfaceAt(sx, sy))
}

func (s *wlrXDGSurface) Role() wm.XDGRole {
	switch s.surface.Role() {
	case wlroots.XDGSurfaceRoleTopLevel:
		return wm.XDGRoleToplevel
	case wlroots.XDGSurfaceRolePopup:
		return wm.XDGRolePopup
	default:
		return wm.XDGRoleNone
	}
}

func (s *wlrXDGSurface) SetActivated(activated bool) {
	s.surface.TopLevel().SetActivated(activated)
}

func (s *wlrXDGSurface) OnMap(cb func()) {
	s.surface.OnMap(func(wlroots.XDGSurface) {
		s.surface.TopLevel().Base().SceneTree().Node().RaiseToTop()
		cb()
	})
}

func (s *wlrXDGSurface) OnUnmap(cb func()) {
	s.surface.OnUnmap(func(wlroots.XDGSurface) {
		cb()
	})
}

// xdg-shell does not tell us the seat, wlroots only ever has the default one here
func (s *wlrXDGSurface) OnRequestMove(cb func(string)) {
	s.surface.TopLevel().OnRequestMove(func(wlroots.SeatClient, uint32) {
		cb("")
	})
}

func (s *wlrXDGSurface) SetPosition(x, y float64) {
	s.surface.TopLevel().Base().SceneTree().Node().SetPosition(x, y)
}

// wlrX11Surface implements wm.X11Surface and wm.Positioner for XWayland windows
type wlrX11Surface struct {
	surface wlroots.XWaylandSurface
}

func (s *wlrX11Surface) Surface() wm.ClientSurface {
	return s.surface.Surface()
}

func (s *wlrX11Surface) SurfaceAt(sx, sy float64) (wm.ClientSurface, float64, float64, bool) {
	return hitSurface(s.surface.Surface().SurfaceAt(sx, sy))
}

func (s *wlrX11Surface) OnMap(cb func()) {
	s.surface.OnMap(func(wlroots.XWaylandSurface) {
		s.surface.Activate(true)
		cb()
	})
}

func (s *wlrX11Surface) OnUnmap(cb func()) {
	s.surface.OnUnmap(func(wlroots.XWaylandSurface) {
		cb()
	})
}

// Like xdg-shell, X11 move requests don't name a seat
func (s *wlrX11Surface) OnRequestMove(cb func(string)) {
	s.surface.OnRequestMove(func(wlroots.XWaylandSurface) {
		cb("")
	})
}

// X11 windows place themselves, so the new position goes out as a configure
func (s *wlrX11Surface) SetPosition(x, y float64) {
	box := s.surface.Geometry()
	s.surface.Configure(int16(x), int16(y), uint16(box.Width), uint16(box.Height))
}
