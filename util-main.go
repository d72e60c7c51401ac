package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mstarongithub/seatwm/common/ipc"
	"github.com/mstarongithub/seatwm/config"
	"github.com/swaywm/go-wlroots/wlroots"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// Tool mode: start the backend just long enough to look at what it found

func startToolCompositor(conf *config.Config) (*Compositor, error) {
	setupLogging(conf)
	// Init a compositor, used for stuff like getting displays
	compositor, err := NewCompositor(coreOptions(conf), conf.Cursor.Theme)
	if err != nil {
		return nil, fmt.Errorf("initializing compositor: %w", err)
	}
	if _, err = compositor.Start(); err != nil {
		return nil, fmt.Errorf("starting compositor: %w", err)
	}
	return compositor, nil
}

func utilListOutputs(out io.Writer, conf *config.Config, asJSON bool) error {
	compositor, err := startToolCompositor(conf)
	if err != nil {
		return err
	}
	defer compositor.Stop()

	names := outputNames(compositor.GetOutputs())
	if asJSON {
		return json.NewEncoder(out).Encode(ipc.NewOutputResponse(names, nil))
	}
	for i, name := range names {
		fmt.Fprintf(out, "Output %v: %s\n", i, name)
	}
	return nil
}

func utilListOutputModes(out io.Writer, conf *config.Config, outputName string, asJSON bool) error {
	compositor, err := startToolCompositor(conf)
	if err != nil {
		return err
	}
	defer compositor.Stop()

	filtered := sliceutils.Filter(compositor.GetOutputs(), func(output wlroots.Output) bool {
		return output.Name() == outputName
	})
	if len(filtered) == 0 {
		return fmt.Errorf("output %s not found", outputName)
	}
	modes := outputModes(filtered[0])
	if asJSON {
		return json.NewEncoder(out).Encode(ipc.NewOutputResponse(
			[]string{outputName},
			map[string][]ipc.OutputMode{outputName: modes},
		))
	}
	fmt.Fprintf(out, "Modes for output %s:\n", outputName)
	for _, mode := range modes {
		line := fmt.Sprintf("\t- %dx%d@%d(Ratio: %d)", mode.Width, mode.Height, mode.RefreshRate, mode.AspectRatio)
		if mode.Preferred {
			line += " (preferred)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func outputNames(outputs []wlroots.Output) []string {
	names := make([]string, 0, len(outputs))
	for _, output := range outputs {
		names = append(names, output.Name())
	}
	return names
}

func outputModes(output wlroots.Output) []ipc.OutputMode {
	modes := []ipc.OutputMode{}
	for _, mode := range output.Modes() {
		modes = append(modes, ipc.OutputMode{
			Width:       int(mode.Width()),
			Height:      int(mode.Height()),
			RefreshRate: int(mode.Refresh()),
			AspectRatio: int(mode.PictureAspectRatio()),
			Preferred:   mode.Preferred(),
		})
	}
	return modes
}
