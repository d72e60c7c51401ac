package repl

import (
	"fmt"
	"strings"

	"github.com/mstarongithub/seatwm/wm"
)

// Inspect renders parts of a wm snapshot for the inspect command.
// args is everything after "inspect"
func Inspect(snap wm.Snapshot, args []string) string {
	if len(args) == 0 {
		return "Usage: inspect seats|windows|outputs|seat <name>"
	}
	switch args[0] {
	case "seats":
		if len(snap.Seats) == 0 {
			return "No seats"
		}
		lines := make([]string, 0, len(snap.Seats))
		for _, seat := range snap.Seats {
			lines = append(lines, formatSeat(seat))
		}
		return strings.Join(lines, "\n")
	case "seat":
		if len(args) < 2 {
			return "Usage: inspect seat <name>"
		}
		for _, seat := range snap.Seats {
			if seat.Name == args[1] {
				return formatSeat(seat)
			}
		}
		return fmt.Sprintf("Seat %s not found", args[1])
	case "windows":
		if len(snap.Windows) == 0 {
			return "No windows"
		}
		lines := make([]string, 0, len(snap.Windows))
		for i, window := range snap.Windows {
			line := fmt.Sprintf("%d: window %d (%s) at (%.1f:%.1f)", i, window.ID, window.Kind, window.X, window.Y)
			if window.Focused {
				line += " focused"
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	case "outputs":
		if len(snap.Outputs) == 0 {
			return "No outputs"
		}
		lines := make([]string, 0, len(snap.Outputs))
		for i, output := range snap.Outputs {
			lines = append(lines, fmt.Sprintf("Output %v: %s", i, output))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("Unknown inspect target %q", args[0])
	}
}

func formatSeat(seat wm.SeatState) string {
	if !seat.HasPointer {
		return fmt.Sprintf("Seat %s: no pointer, %d keyboard(s)", seat.Name, seat.Keyboards)
	}
	return fmt.Sprintf(
		"Seat %s: pointer %s at (%.1f:%.1f) with %d device(s), %d keyboard(s)",
		seat.Name,
		seat.Mode,
		seat.CursorX,
		seat.CursorY,
		seat.PointerDevices,
		seat.Keyboards,
	)
}
