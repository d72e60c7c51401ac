package main

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mstarongithub/seatwm/repl"
	"github.com/sirupsen/logrus"
)

func replRunner(compositor *Compositor) {
	// Guard stdin and stdout so that closing the repl doesn't close them
	commandRepl := repl.NewRepl(repl.NewReaderGuard(os.Stdin), repl.NewWriterGuard(os.Stdout))
	commandRepl.Handle("run", "run <command> [args...] - start a client on this display", func(args []string, r *repl.Repl) (string, error) {
		if len(args) == 0 {
			return "Nothing to run", nil
		}
		startCommand(args, r.Output)
		return "Running " + args[0], nil
	})
	commandRepl.Handle("quit", "quit - stop the compositor", func(_ []string, _ *repl.Repl) (string, error) {
		compositor.Stop()
		return "Quitting", repl.ErrStop
	})
	commandRepl.Handle("inspect", "inspect seats|windows|outputs|seat <name> - show window manager state", func(args []string, _ *repl.Repl) (string, error) {
		return repl.Inspect(compositor.Core().Snapshot(), args), nil
	})
	logrus.Debugln("Starting repl")
	if err := commandRepl.Run(); err != nil {
		logrus.WithError(err).Errorln("Repl stopped")
	}
}

// startCommand runs a client in the background, its output goes to out.
// Used both by the repl and for the configured start command
func startCommand(args []string, out io.Writer) {
	cmdString := strings.Join(args, " ")
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	go func(cmd *exec.Cmd, cmdString string) {
		err := cmd.Start()
		if err != nil {
			logrus.WithError(err).WithField("command", cmdString).Errorln("Command failed to start")
			return
		}
		started := time.Now()
		err = cmd.Wait()
		if exiterr, ok := err.(*exec.ExitError); ok {
			logrus.WithError(err).WithFields(logrus.Fields{
				"exit-code": exiterr.ExitCode(),
				"command":   cmdString,
				"runtime":   time.Since(started),
			}).Warningln("Bad command completion")
		}
	}(cmd, cmdString)
}
