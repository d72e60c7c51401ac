package wm

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type call struct {
	name string
	args []any
}

type fakeSeatFocus struct {
	name      string
	calls     []call
	keyboard  KeyboardDevice
	caps      Capability
	onDestroy func()
}

func (f *fakeSeatFocus) record(name string, args ...any) {
	f.calls = append(f.calls, call{name: name, args: args})
}

func (f *fakeSeatFocus) NotifyPointerEnter(surface ClientSurface, sx, sy float64) {
	f.record("enter", surface, sx, sy)
}

func (f *fakeSeatFocus) NotifyPointerMotion(timeMsec uint32, sx, sy float64) {
	f.record("motion", timeMsec, sx, sy)
}

func (f *fakeSeatFocus) NotifyPointerButton(timeMsec uint32, button uint32, state ButtonState) {
	f.record("button", timeMsec, button, state)
}

func (f *fakeSeatFocus) ClearPointerFocus() {
	f.record("clear")
}

func (f *fakeSeatFocus) NotifyKeyboardEnter(surface ClientSurface) {
	f.record("keyboard-enter", surface)
}

func (f *fakeSeatFocus) NotifyKeyboardKey(event KeyEvent) {
	f.record("key", event)
}

func (f *fakeSeatFocus) NotifyKeyboardModifiers(keyboard KeyboardDevice) {
	f.record("modifiers", keyboard)
}

func (f *fakeSeatFocus) SetKeyboard(keyboard KeyboardDevice) {
	f.keyboard = keyboard
}

func (f *fakeSeatFocus) SetCapabilities(caps Capability) {
	f.caps = caps
}

func (f *fakeSeatFocus) OnDestroy(cb func()) {
	f.onDestroy = cb
}

// named returns all recorded calls with the given name
func (f *fakeSeatFocus) named(name string) []call {
	var out []call
	for _, c := range f.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSeatFocus) reset() {
	f.calls = nil
}

type fakeCursor struct {
	x, y          float64
	layout        OutputLayout
	image         string
	devices       []InputDevice
	mappedOutputs []Output
	onMotion      func(MotionEvent)
	onMotionAbs   func(MotionEvent)
	onButton      func(ButtonEvent)
	width, height float64
}

func (c *fakeCursor) X() float64 { return c.x }
func (c *fakeCursor) Y() float64 { return c.y }

func (c *fakeCursor) Move(_ InputDevice, dx, dy float64) {
	c.x += dx
	c.y += dy
}

func (c *fakeCursor) WarpAbsolute(_ InputDevice, x, y float64) {
	c.x = x * c.width
	c.y = y * c.height
}

func (c *fakeCursor) AttachInputDevice(dev InputDevice)      { c.devices = append(c.devices, dev) }
func (c *fakeCursor) AttachOutputLayout(layout OutputLayout) { c.layout = layout }
func (c *fakeCursor) SetImage(name string)                   { c.image = name }
func (c *fakeCursor) MapToOutput(output Output)              { c.mappedOutputs = append(c.mappedOutputs, output) }
func (c *fakeCursor) OnMotion(cb func(MotionEvent))          { c.onMotion = cb }
func (c *fakeCursor) OnMotionAbsolute(cb func(MotionEvent))  { c.onMotionAbs = cb }
func (c *fakeCursor) OnButton(cb func(ButtonEvent))          { c.onButton = cb }

// moveTo emits a relative motion event ending at (x, y)
func (c *fakeCursor) moveTo(x, y float64) {
	c.onMotion(MotionEvent{DX: x - c.x, DY: y - c.y})
}

func (c *fakeCursor) release(button uint32) {
	c.onButton(ButtonEvent{Button: button, State: ButtonReleased})
}

func (c *fakeCursor) press(button uint32) {
	c.onButton(ButtonEvent{Button: button, State: ButtonPressed})
}

type fakeKeymap struct{ destroyed bool }

func (k *fakeKeymap) Destroy() { k.destroyed = true }

type fakeKeymapContext struct {
	compileErr error
	compiled   []RuleNames
	destroyed  bool
	keymaps    []*fakeKeymap
}

func (c *fakeKeymapContext) Compile(names RuleNames) (Keymap, error) {
	c.compiled = append(c.compiled, names)
	if c.compileErr != nil {
		return nil, c.compileErr
	}
	keymap := &fakeKeymap{}
	c.keymaps = append(c.keymaps, keymap)
	return keymap, nil
}

func (c *fakeKeymapContext) Destroy() { c.destroyed = true }

type fakeBackend struct {
	seats      map[string]*fakeSeatFocus
	seatOrder  []*fakeSeatFocus
	cursors    []*fakeCursor
	contexts   []*fakeKeymapContext
	contextErr error
	compileErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{seats: map[string]*fakeSeatFocus{}}
}

func (b *fakeBackend) CreateSeat(name string) SeatFocus {
	seat := &fakeSeatFocus{name: name}
	b.seats[name] = seat
	b.seatOrder = append(b.seatOrder, seat)
	return seat
}

func (b *fakeBackend) CreateCursor() Cursor {
	cursor := &fakeCursor{width: 1920, height: 1080}
	b.cursors = append(b.cursors, cursor)
	return cursor
}

func (b *fakeBackend) NewKeymapContext() (KeymapContext, error) {
	if b.contextErr != nil {
		return nil, b.contextErr
	}
	ctx := &fakeKeymapContext{compileErr: b.compileErr}
	b.contexts = append(b.contexts, ctx)
	return ctx, nil
}

type fakeOutput struct{ name string }

func (o *fakeOutput) Name() string { return o.name }

type fakeLayout struct {
	outputs []Output
}

func (l *fakeLayout) Add(output Output) { l.outputs = append(l.outputs, output) }
func (l *fakeLayout) Remove(output Output) {
	for i, o := range l.outputs {
		if o == output {
			l.outputs = append(l.outputs[:i], l.outputs[i+1:]...)
			return
		}
	}
}

type fakeDevice struct {
	kind DeviceType
	seat string
}

func (d *fakeDevice) Type() DeviceType { return d.kind }
func (d *fakeDevice) SeatName() string { return d.seat }

type fakeKeyboard struct {
	fakeDevice
	rate, delay int32
	keymap      Keymap
	onKey       func(KeyEvent)
	onModifiers func()
	onDestroy   func()
}

func newFakeKeyboard(seat string) *fakeKeyboard {
	return &fakeKeyboard{fakeDevice: fakeDevice{kind: DeviceTypeKeyboard, seat: seat}}
}

func (k *fakeKeyboard) SetRepeatInfo(rate, delay int32) { k.rate, k.delay = rate, delay }
func (k *fakeKeyboard) SetKeymap(keymap Keymap)         { k.keymap = keymap }
func (k *fakeKeyboard) OnKey(cb func(KeyEvent))         { k.onKey = cb }
func (k *fakeKeyboard) OnModifiers(cb func())           { k.onModifiers = cb }
func (k *fakeKeyboard) OnDestroy(cb func())             { k.onDestroy = cb }

// clientSurface stands in for a wl_surface. Sub-surfaces are handed out as
// distinct values so tests can tell them apart
type clientSurface struct{ name string }

// fakeShell implements all three protocol variants. A hit is anything inside
// the width x height box at the surface origin
type fakeShell struct {
	client        *clientSurface
	role          XDGRole
	activated     bool
	width, height float64
	lastQueryX    float64
	lastQueryY    float64
	positions     [][2]float64

	onMap         func()
	onUnmap       func()
	onRequestMove func(string)
}

func newFakeShell(name string) *fakeShell {
	return &fakeShell{
		client: &clientSurface{name: name},
		role:   XDGRoleToplevel,
		width:  640,
		height: 480,
	}
}

func (s *fakeShell) Surface() ClientSurface { return s.client }
func (s *fakeShell) Role() XDGRole          { return s.role }
func (s *fakeShell) SetActivated(a bool)    { s.activated = a }
func (s *fakeShell) OnMap(cb func())        { s.onMap = cb }
func (s *fakeShell) OnUnmap(cb func())      { s.onUnmap = cb }
func (s *fakeShell) OnRequestMove(cb func(string)) {
	s.onRequestMove = cb
}

func (s *fakeShell) SurfaceAt(sx, sy float64) (ClientSurface, float64, float64, bool) {
	s.lastQueryX, s.lastQueryY = sx, sy
	if sx < 0 || sy < 0 || sx >= s.width || sy >= s.height {
		return nil, 0, 0, false
	}
	return s.client, sx, sy, true
}

// positionedShell additionally implements Positioner
type positionedShell struct {
	*fakeShell
}

func (s positionedShell) SetPosition(x, y float64) {
	s.positions = append(s.positions, [2]float64{x, y})
}

var errFake = errors.New("fake failure")

type fixture struct {
	backend *fakeBackend
	layout  *fakeLayout
	server  *Server
	logs    *test.Hook
	exits   []int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f := &fixture{
		backend: newFakeBackend(),
		layout:  &fakeLayout{},
		logs:    hook,
	}
	logger.ExitFunc = func(code int) {
		f.exits = append(f.exits, code)
	}
	f.server = NewServer(f.backend, f.layout, Options{Logger: logger})
	return f
}

// pointerSeat returns the default seat with a pointer attached, plus its cursor and focus fakes
func (f *fixture) pointerSeat() (*Seat, *fakeCursor, *fakeSeatFocus) {
	seat := f.server.FindOrCreateSeat(DefaultSeatName)
	seat.AttachPointingDevice(&fakeDevice{kind: DeviceTypePointer})
	return seat, seat.Pointer().Cursor().(*fakeCursor), seat.Focus().(*fakeSeatFocus)
}

func (f *fixture) mapXDG(name string) (*Surface, *fakeShell) {
	shell := newFakeShell(name)
	surface := f.server.NewXDGSurface(shell)
	shell.onMap()
	return surface, shell
}

func windowClients(windows []*Window) []ClientSurface {
	out := make([]ClientSurface, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.Surface().Client())
	}
	return out
}
