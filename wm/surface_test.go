package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowsAreInsertedAtHead(t *testing.T) {
	f := newFixture(t)
	s1, _ := f.mapXDG("s1")
	s2, _ := f.mapXDG("s2")
	s3, _ := f.mapXDG("s3")

	windows := f.server.Windows()
	require.Len(t, windows, 3)
	assert.Same(t, s3.Window(), f.server.TopWindow())
	assert.Equal(t, []*Window{s3.Window(), s2.Window(), s1.Window()}, windows)

	for _, w := range windows {
		x, y := w.Position()
		assert.Zero(t, x)
		assert.Zero(t, y)
	}
}

func TestMapGrantsKeyboardFocus(t *testing.T) {
	f := newFixture(t)
	surface, shell := f.mapXDG("s1")

	seat := f.server.Seat(DefaultSeatName)
	require.NotNil(t, seat, "map creates the default seat on demand")
	focus := seat.Focus().(*fakeSeatFocus)
	assert.Equal(t, []call{{name: "keyboard-enter", args: []any{shell.client}}}, focus.calls)
	assert.Same(t, surface, f.server.KeyboardFocus())
	assert.Equal(t, shell.client, surface.Client())
}

func TestUnmapFocusFallback(t *testing.T) {
	f := newFixture(t)
	s1, shell1 := f.mapXDG("s1")
	s2, shell2 := f.mapXDG("s2")
	focus := f.server.Seat(DefaultSeatName).Focus().(*fakeSeatFocus)
	require.Equal(t, []*Window{s2.Window(), s1.Window()}, f.server.Windows())
	focus.reset()

	shell2.onUnmap()

	assert.Equal(t, []call{{name: "keyboard-enter", args: []any{shell1.client}}}, focus.calls)
	assert.Equal(t, []*Window{s1.Window()}, f.server.Windows())
	assert.Nil(t, s2.Window())
	assert.True(t, s2.Destroyed())
	assert.Same(t, s1, f.server.KeyboardFocus())
	focus.reset()

	shell1.onUnmap()

	assert.Empty(t, f.server.Windows())
	assert.Nil(t, f.server.TopWindow())
	assert.Empty(t, focus.calls)
	assert.Nil(t, f.server.KeyboardFocus())
}

func TestUnmapFocusGoesToOldestRemaining(t *testing.T) {
	f := newFixture(t)
	_, shell1 := f.mapXDG("s1")
	f.mapXDG("s2")
	_, shell3 := f.mapXDG("s3")
	focus := f.server.Seat(DefaultSeatName).Focus().(*fakeSeatFocus)
	focus.reset()

	// Unmapping s1 (the tail) hands focus to the head
	shell1.onUnmap()
	assert.Equal(t, []call{{name: "keyboard-enter", args: []any{shell3.client}}}, focus.calls)
}

func TestSurfaceVariants(t *testing.T) {
	f := newFixture(t)

	x11 := newFakeShell("x11")
	assert.Equal(t, SurfaceKindX11, f.server.NewX11Surface(x11).Kind())
	assert.False(t, x11.activated, "x11 surfaces have no activation")

	xdg := newFakeShell("xdg")
	assert.Equal(t, SurfaceKindXDG, f.server.NewXDGSurface(xdg).Kind())
	assert.True(t, xdg.activated, "toplevels are activated before map")

	v6 := newFakeShell("v6")
	assert.Equal(t, SurfaceKindXDGV6, f.server.NewXDGV6Surface(v6).Kind())
	assert.True(t, v6.activated)

	popup := newFakeShell("popup")
	popup.role = XDGRolePopup
	f.server.NewXDGSurface(popup)
	assert.False(t, popup.activated)

	for _, shell := range []*fakeShell{x11, xdg, v6} {
		assert.NotNil(t, shell.onMap)
		assert.NotNil(t, shell.onUnmap)
		assert.NotNil(t, shell.onRequestMove)
	}
}

func TestMixedVariantsShareTheWindowList(t *testing.T) {
	f := newFixture(t)
	x11 := newFakeShell("x11")
	v6 := newFakeShell("v6")
	f.server.NewX11Surface(x11)
	f.server.NewXDGV6Surface(v6)

	x11.onMap()
	v6.onMap()

	assert.Equal(t, []ClientSurface{v6.client, x11.client}, windowClients(f.server.Windows()))
	snap := f.server.Snapshot()
	require.Len(t, snap.Windows, 2)
	assert.Equal(t, SurfaceKindXDGV6, snap.Windows[0].Kind)
	assert.Equal(t, SurfaceKindX11, snap.Windows[1].Kind)
}

func TestRepeatedMapAndUnmapAreIgnored(t *testing.T) {
	f := newFixture(t)
	surface, shell := f.mapXDG("s1")

	shell.onMap()
	assert.Len(t, f.server.Windows(), 1)
	assert.ErrorIs(t, f.logs.LastEntry().Data["error"].(error), ErrAlreadyMapped)

	shell.onUnmap()
	shell.onUnmap()
	assert.Empty(t, f.server.Windows())
	assert.ErrorIs(t, f.logs.LastEntry().Data["error"].(error), ErrNotMapped)

	// Unmapped surfaces are gone for good
	shell.onMap()
	assert.Empty(t, f.server.Windows())
	assert.False(t, surface.Mapped())
}

func TestUnmapBeforeMapIsIgnored(t *testing.T) {
	f := newFixture(t)
	shell := newFakeShell("s1")
	surface := f.server.NewXDGSurface(shell)

	shell.onUnmap()
	assert.False(t, surface.Destroyed())

	shell.onMap()
	assert.True(t, surface.Mapped())
}

func TestUnmapDoesNotTouchMoveMode(t *testing.T) {
	f := newFixture(t)
	seat, cursor, _ := f.pointerSeat()
	_, shell := f.mapXDG("s1")

	shell.onRequestMove("")
	shell.onUnmap()
	assert.Equal(t, PointerModeMove, seat.Pointer().Mode())

	// No window left to drag, motion is a no-op
	cursor.onMotion(MotionEvent{DX: 5, DY: 5})
	cursor.release(272)
	assert.Equal(t, PointerModeFree, seat.Pointer().Mode())
}

func TestMoveRequestAfterUnmapIsIgnored(t *testing.T) {
	f := newFixture(t)
	seat, _, _ := f.pointerSeat()
	_, shell := f.mapXDG("s1")
	shell.onUnmap()

	shell.onRequestMove("")
	assert.Equal(t, PointerModeFree, seat.Pointer().Mode())
}
