package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mstarongithub/seatwm/wm"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/swaywm/go-wlroots/xkb"
)

// Compositor owns the wlroots side of things and feeds everything into the wm core
type Compositor struct {
	display     wlroots.Display
	backend     wlroots.Backend
	renderer    wlroots.Renderer
	allocator   wlroots.Allocator
	scene       wlroots.Scene
	sceneLayout wlroots.SceneOutputLayout

	xdgShell wlroots.XDGShell
	xwayland wlroots.XWayland

	cursorMgr    wlroots.XCursorManager
	outputLayout wlroots.OutputLayout

	core    *wm.Server
	seats   []*wlrSeat
	outputs []wlroots.Output
}

func NewCompositor(opts wm.Options, cursorTheme string) (compositor *Compositor, err error) {
	compositor = new(Compositor)

	/* The Wayland display is managed by libwayland. It handles accepting
	 * clients from the Unix socket, manging Wayland globals, and so on. */
	compositor.display = wlroots.NewDisplay()

	/* The autocreate option will choose the most suitable backend based on the
	 * current environment, such as opening an X11 window if an X11 server is
	 * running. */
	compositor.backend, err = compositor.display.BackendAutocreate()
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	compositor.renderer, err = compositor.backend.RendererAutoCreate()
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	compositor.renderer.InitDisplay(compositor.display)

	compositor.allocator, err = compositor.backend.AllocatorAutocreate(compositor.renderer)
	if err != nil {
		return nil, fmt.Errorf("creating allocator: %w", err)
	}

	wlrCompositor := compositor.display.CompositorCreate(5, compositor.renderer)
	compositor.display.SubCompositorCreate()
	compositor.display.DataDeviceManagerCreate()

	compositor.outputLayout = wlroots.NewOutputLayout()
	compositor.scene = wlroots.NewScene()
	compositor.sceneLayout = compositor.scene.AttachOutputLayout(compositor.outputLayout)

	/* Loads up Xcursor themes to source cursor images from and makes sure that
	 * cursor images are available at all scale factors on the screen. Every
	 * seat's cursor shares this manager. */
	compositor.cursorMgr = wlroots.NewXCursorManager(cursorTheme, 24)
	compositor.cursorMgr.Load(1)

	compositor.core = wm.NewServer(
		&wlrBackend{compositor: compositor},
		&wlrLayout{
			layout:      compositor.outputLayout,
			scene:       compositor.scene,
			sceneLayout: compositor.sceneLayout,
		},
		opts,
	)

	compositor.backend.OnNewOutput(compositor.handleNewOutput)
	compositor.backend.OnNewInput(compositor.handleNewInput)

	compositor.xdgShell = compositor.display.XDGShellCreate(3)
	compositor.xdgShell.OnNewSurface(compositor.handleNewXDGSurface)

	/* Xwayland is started lazily, once the first X11 client connects. */
	compositor.xwayland = compositor.display.XWaylandCreate(wlrCompositor, true)
	compositor.xwayland.OnNewSurface(compositor.handleNewXWaylandSurface)

	/* The default seat exists from the start so clients always find a wl_seat,
	 * even before the first input device shows up. */
	compositor.core.FindOrCreateSeat(compositor.core.Options().DefaultSeat)

	return
}

// Core gives access to the window manager state, e.g. for the repl
func (compositor *Compositor) Core() *wm.Server {
	return compositor.core
}

func (compositor *Compositor) GetOutputs() []wlroots.Output {
	return compositor.outputs
}

func (compositor *Compositor) handleNewInput(dev wlroots.InputDevice) {
	/* This event is raised by the backend when a new input device becomes
	 * available. The core decides which seat it belongs to. */
	device := &wlrDevice{dev: dev}
	var err error
	if dev.Type() == wlroots.InputDeviceTypeKeyboard {
		err = compositor.core.ConnectInput(&wlrKeyboard{wlrDevice: device, compositor: compositor})
	} else {
		err = compositor.core.ConnectInput(device)
	}
	switch {
	case errors.Is(err, wm.ErrUnknownDevice):
		logrus.WithField("type", dev.Type()).Debugln("Ignoring input device")
	case err != nil:
		logrus.WithError(err).Errorln("Failed to connect input device")
	}
}

func (compositor *Compositor) handleNewFrame(output wlroots.Output) {
	/* Called every time an output is ready to display a frame, generally at
	 * the output's refresh rate. */
	sOut, err := compositor.scene.SceneOutput(output)
	if err != nil {
		return
	}

	sOut.Commit()
	sOut.SendFrameDone(time.Now())
}

func (compositor *Compositor) handleOutputRequestState(output wlroots.Output, state wlroots.OutputState) {
	logrus.WithFields(logrus.Fields{
		"output": output.Name(),
		"state":  state,
	}).Debugln("New state request for output")
	output.CommitState(state)
}

func (compositor *Compositor) handleNewOutput(output wlroots.Output) {
	logrus.WithField("name", output.Name()).Debugln("New output added")
	compositor.outputs = append(compositor.outputs, output)

	/* Configures the output created by the backend to use our allocator
	 * and our renderer. Must be done once, before commiting the output */
	output.InitRender(compositor.allocator, compositor.renderer)

	oState := wlroots.NewOutputState()
	oState.StateInit()
	oState.StateSetEnabled(true)

	/* Some backends don't have modes. DRM+KMS does, and we need to set a mode
	 * before we can use the output. */
	mode, err := output.PrefferedMode()
	if err == nil {
		oState.SetMode(mode)
	}

	output.CommitState(oState)
	oState.Finish()

	wrapped := &wlrOutput{output: output}

	output.OnFrame(compositor.handleNewFrame)
	output.OnRequestState(compositor.handleOutputRequestState)
	output.OnDestroy(func(output wlroots.Output) {
		logrus.WithField("name", output.Name()).Debugln("Output getting destroyed")
		compositor.outputs = removeOutput(compositor.outputs, output)
		compositor.core.RemoveOutput(wrapped)
	})

	compositor.core.AddOutput(wrapped)

	if err = output.SetTitle(fmt.Sprintf("seatwm - %s", output.Name())); err != nil {
		logrus.WithError(err).WithField("name", output.Name()).Debugln("Output has no title")
	}
}

func removeOutput(outputs []wlroots.Output, output wlroots.Output) []wlroots.Output {
	kept := outputs[:0]
	for _, o := range outputs {
		if o != output {
			kept = append(kept, o)
		}
	}
	return kept
}

func (compositor *Compositor) handleNewXDGSurface(xdgSurface wlroots.XDGSurface) {
	/* Raised when wlr_xdg_shell receives a new xdg surface from a client,
	 * either a toplevel (application window) or popup. Popups are only
	 * attached to the scene, the core only manages toplevels. */
	if xdgSurface.Role() == wlroots.XDGSurfaceRolePopup {
		parent := xdgSurface.Popup().Parent()
		if parent.Nil() {
			logrus.WithField("surface", xdgSurface).Errorln("xdgSurface popup parent is nil")
			return
		}
		xdgSurface.SetData(parent.XDGSurface().SceneTree().NewXDGSurface(xdgSurface))
		return
	}
	if xdgSurface.Role() != wlroots.XDGSurfaceRoleTopLevel {
		logrus.WithFields(logrus.Fields{
			"surface": xdgSurface,
			"role":    xdgSurface.Role(),
		}).Warnln("Ignoring xdgSurface without a known role")
		return
	}

	xdgSurface.SetData(compositor.scene.Tree().NewXDGSurface(xdgSurface.TopLevel().Base()))
	compositor.core.NewXDGSurface(&wlrXDGSurface{surface: xdgSurface})
}

func (compositor *Compositor) handleNewXWaylandSurface(surface wlroots.XWaylandSurface) {
	logrus.WithField("geometry", surface.Geometry()).Debugln("New XWayland surface")
	compositor.core.NewX11Surface(&wlrX11Surface{surface: surface})
}

func (compositor *Compositor) handleSetCursorRequest(seat *wlrSeat, client wlroots.SeatClient, surface wlroots.Surface, hotspotX int32, hotspotY int32) {
	/* This can be sent by any client, so we check to make sure this one
	 * actually has pointer focus first. */
	if seat.seat.PointerState().FocusedClient() != client {
		return
	}
	coreSeat := compositor.core.Seat(seat.name)
	if coreSeat == nil || coreSeat.Pointer() == nil {
		return
	}
	if cursor, ok := coreSeat.Pointer().Cursor().(*wlrCursor); ok {
		cursor.cursor.SetSurface(surface, hotspotX, hotspotY)
	}
}

// Every seat whose pointer is driven by the given cursor
func (compositor *Compositor) seatsOfCursor(cursor *wlrCursor) []*wlrSeat {
	seats := []*wlrSeat{}
	for _, seat := range compositor.core.Seats() {
		if seat.Pointer() == nil || seat.Pointer().Cursor() != wm.Cursor(cursor) {
			continue
		}
		if focus, ok := seat.Focus().(*wlrSeat); ok {
			seats = append(seats, focus)
		}
	}
	return seats
}

// Compositor keybindings. Returns true if the key was consumed.
// Only Alt+Escape is bound, it terminates the display
func (compositor *Compositor) handleKeyBinding(keyboard wlroots.Keyboard, keyCode uint32) bool {
	if keyboard.Modifiers()&wlroots.KeyboardModifierAlt == 0 {
		return false
	}
	// translate libinput keycode to xkbcommon and obtain keysyms
	for _, sym := range keyboard.XKBState().Syms(xkb.KeyCode(keyCode + 8)) {
		if sym == xkb.KeySymEscape {
			logrus.Infoln("Terminating on keybinding")
			compositor.display.Terminate()
			return true
		}
	}
	return false
}

func (compositor *Compositor) Start() (string, error) {
	socket, err := compositor.display.AddSocketAuto()
	if err != nil {
		compositor.backend.Destroy()
		return "", err
	}
	logrus.WithField("socket", socket).Debugln("got wl socket")

	/* Start the backend. This will enumerate outputs and inputs, become the DRM
	 * master, etc */
	if err = compositor.backend.Start(); err != nil {
		compositor.backend.Destroy()
		compositor.display.Destroy()
		return "", err
	}

	if res := os.Getenv("WAYLAND_DISPLAY"); res != "" {
		logrus.WithField("WAYLAND_DISPLAY", res).Debugln("Wayland display already set, overwriting")
	}
	if err = os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		return socket, err
	}

	logrus.WithField("WAYLAND_DISPLAY", socket).Infoln("Running Wayland compositor")
	return socket, nil
}

func (compositor *Compositor) Run() error {
	/* Does not return until the compositor exits. */
	compositor.display.Run()

	compositor.display.DestroyClients()
	for _, seat := range compositor.seats {
		seat.destroy()
	}
	compositor.seats = nil
	compositor.xwayland.Destroy()
	compositor.scene.Tree().Node().Destroy()
	compositor.cursorMgr.Destroy()
	compositor.outputLayout.Destroy()
	compositor.display.Destroy()
	return nil
}

func (compositor *Compositor) Stop() {
	compositor.display.Terminate()
}
