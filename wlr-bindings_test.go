package main

import (
	"testing"

	"github.com/mstarongithub/seatwm/wm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/swaywm/go-wlroots/xkb"
)

func TestHitSurfaceMissOnNilSurface(t *testing.T) {
	sub, x, y, ok := hitSurface(wlroots.Surface{}, 12, 34)
	assert.False(t, ok)
	assert.Nil(t, sub)
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestKeymapContextRejectsNullContext(t *testing.T) {
	context, err := newKeymapContext(xkb.Context{})
	assert.ErrorIs(t, err, errXKBContext)
	assert.Nil(t, context)
}

func TestKeymapRejectsNullKeymap(t *testing.T) {
	keymap, err := wrapKeymap(xkb.Keymap{}, wm.RuleNames{Layout: "xx"})
	assert.ErrorIs(t, err, errXKBKeymap)
	assert.Contains(t, err.Error(), `layout "xx"`)
	assert.Nil(t, keymap)
}

func TestCompileReportsUnknownLayout(t *testing.T) {
	t.Setenv("XKB_DEFAULT_LAYOUT", "")

	context, err := (&wlrBackend{}).NewKeymapContext()
	require.NoError(t, err)
	defer context.Destroy()

	keymap, err := context.Compile(wm.RuleNames{Layout: "no-such-layout"})
	assert.ErrorIs(t, err, errXKBKeymap)
	assert.Nil(t, keymap)
}
