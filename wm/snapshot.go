package wm

// Snapshot is a read only copy of the core state.
// Safe to pass to other goroutines
type Snapshot struct {
	Seats   []SeatState
	Windows []WindowState
	Outputs []string
}

type SeatState struct {
	Name           string
	HasPointer     bool
	Mode           PointerMode
	CursorX        float64
	CursorY        float64
	PointerDevices int
	Keyboards      int
}

type WindowState struct {
	ID      WindowID
	Kind    SurfaceKind
	X, Y    float64
	Focused bool
}

// Snapshot returns the state as of the last handled event.
// This is the only method that may be called from outside the event loop
func (server *Server) Snapshot() Snapshot {
	if snap := server.snapshot.Load(); snap != nil {
		return *snap
	}
	return Snapshot{}
}

func (server *Server) publish() {
	snap := &Snapshot{
		Seats:   make([]SeatState, 0, len(server.seats)),
		Windows: make([]WindowState, 0, len(server.windows)),
		Outputs: make([]string, 0, len(server.outputs)),
	}
	for _, seat := range server.seats {
		state := SeatState{
			Name:      seat.name,
			Keyboards: len(seat.keyboards),
		}
		if seat.pointer != nil {
			state.HasPointer = true
			state.Mode = seat.pointer.mode
			state.CursorX, state.CursorY = seat.pointer.lastX, seat.pointer.lastY
			state.PointerDevices = len(seat.pointer.devices)
		}
		snap.Seats = append(snap.Seats, state)
	}
	for _, window := range server.windows {
		snap.Windows = append(snap.Windows, WindowState{
			ID:      window.id,
			Kind:    window.surface.Kind(),
			X:       window.x,
			Y:       window.y,
			Focused: server.keyboardFocus == window.surface,
		})
	}
	for _, output := range server.outputs {
		snap.Outputs = append(snap.Outputs, output.Name())
	}
	server.snapshot.Store(snap)
}
