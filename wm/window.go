package wm

type WindowID uint64

// Window is the compositor side of a mapped surface
type Window struct {
	id      WindowID
	x, y    float64
	surface *Surface
}

func (window *Window) ID() WindowID {
	return window.id
}

func (window *Window) Surface() *Surface {
	return window.surface
}

// Position in layout coordinates
func (window *Window) Position() (float64, float64) {
	return window.x, window.y
}

func (window *Window) moveBy(dx, dy float64) {
	window.x += dx
	window.y += dy
	if positioner, ok := window.surface.variant.native().(Positioner); ok {
		positioner.SetPosition(window.x, window.y)
	}
}

// localCoords translates layout coordinates into surface local ones.
// The 2.0 / scale factor compensates for HiDPI outputs
func (window *Window) localCoords(lx, ly float64) (float64, float64) {
	factor := 2.0 / window.surface.scale
	return (lx - window.x) * factor, (ly - window.y) * factor
}
