package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mstarongithub/seatwm/config"
	"github.com/mstarongithub/seatwm/wm"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
)

// setupLogging applies the configured level and routes the wlroots log into logrus
func setupLogging(conf *config.Config) {
	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		logrus.WithError(err).WithField("level", conf.LogLevel).Warnln("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	importance := wlroots.LogImportanceError
	if level >= logrus.DebugLevel {
		importance = wlroots.LogImportanceDebug
	}
	wlroots.OnLog(importance, func(importance wlroots.LogImportance, msg string) {
		switch importance {
		case wlroots.LogImportanceDebug:
			logrus.Debugln(msg)
		case wlroots.LogImportanceInfo:
			logrus.Infoln(msg)
		case wlroots.LogImportanceError:
			logrus.Errorln(msg)
		case wlroots.LogImportanceSilent:
			return
		}
	})
}

func coreOptions(conf *config.Config) wm.Options {
	return wm.Options{
		Logger:      logrus.StandardLogger(),
		DefaultSeat: conf.Seat.Default,
		RepeatRate:  conf.Keyboard.RepeatRate,
		RepeatDelay: conf.Keyboard.RepeatDelay,
		KeymapRules: wm.RuleNames{
			Rules:   conf.Keyboard.XKB.Rules,
			Model:   conf.Keyboard.XKB.Model,
			Layout:  conf.Keyboard.XKB.Layout,
			Variant: conf.Keyboard.XKB.Variant,
			Options: conf.Keyboard.XKB.Options,
		},
		CursorImage:  conf.Cursor.Image,
		SurfaceScale: conf.SurfaceScale,
	}
}

func wlMain(conf *config.Config) error {
	setupLogging(conf)

	compositor, err := NewCompositor(coreOptions(conf), conf.Cursor.Theme)
	if err != nil {
		return fmt.Errorf("initializing compositor: %w", err)
	}
	if _, err = compositor.Start(); err != nil {
		return fmt.Errorf("starting compositor: %w", err)
	}

	switch conf.StartType {
	case config.START_REPL:
		go replRunner(compositor)
	case config.START_SINGLE_COMMAND:
		if conf.StartCommand == nil || strings.TrimSpace(*conf.StartCommand) == "" {
			logrus.Warnln("Start type is single command, but no command is set")
			break
		}
		startCommand(strings.Fields(*conf.StartCommand), os.Stdout)
	case config.START_NONE:
	}

	// start the wayland event loop
	if err = compositor.Run(); err != nil {
		return fmt.Errorf("running compositor: %w", err)
	}
	return nil
}
