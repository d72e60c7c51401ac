// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command handles one repl line. args doesn't contain the command name itself
type Command func(args []string, r *Repl) (string, error)

// Returned by a command to end the repl after its result got written
var ErrStop = errors.New("repl stopped")

// ReadCloser combines the Reader and Closer interfaces
type ReadCloser interface {
	io.Reader
	io.Closer
}

type entry struct {
	run   Command
	usage string
}

type Repl struct {
	Input    ReadCloser
	Output   io.WriteCloser
	scanner  *bufio.Scanner
	writer   *bufio.Writer
	commands map[string]entry
}

// Creates a new repl
// If no input is given, stdin will be used
// If no output is given, stdout will be used
// Note: The given reader and writer will be closed if the repl is started and then stops
func NewRepl(in ReadCloser, out io.WriteCloser) *Repl {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	r := &Repl{
		Input:    in,
		Output:   out,
		scanner:  bufio.NewScanner(in),
		writer:   bufio.NewWriter(out),
		commands: map[string]entry{},
	}
	r.Handle("help", "help - list all commands", func(_ []string, r *Repl) (string, error) {
		return r.help(), nil
	})
	return r
}

// Handle registers a command. Registering a name twice replaces the old command
func (r *Repl) Handle(name string, usage string, cmd Command) {
	r.commands[name] = entry{run: cmd, usage: usage}
}

// Dispatch runs the command named by the first word of line
func (r *Repl) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, ok := r.commands[fields[0]]
	if !ok {
		return fmt.Sprintf("Unknown command %q, try help", fields[0]), nil
	}
	return cmd.run(fields[1:], r)
}

func (r *Repl) help() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	builder := strings.Builder{}
	builder.WriteString("Commands:")
	for _, name := range names {
		builder.WriteString("\n\t" + r.commands[name].usage)
	}
	return builder.String()
}

// Starts the repl
// Blocks execution until the input runs dry or a command returns ErrStop
// Errors of other commands are written out and the repl keeps going
func (r *Repl) Run() error {
	defer r.Close()
	for r.scanner.Scan() {
		newMessage := r.scanner.Text()
		res, err := r.Dispatch(newMessage)
		stop := errors.Is(err, ErrStop)
		if err != nil && !stop {
			logrus.WithError(err).WithField("line", newMessage).Debugln("Repl command failed")
			res = "Error: " + err.Error()
		}
		if res != "" {
			if err = r.write(res); err != nil {
				return err
			}
		}
		if stop {
			return nil
		}
	}
	return r.scanner.Err()
}

func (r *Repl) write(res string) error {
	if _, err := r.writer.WriteString(res + "\n"); err != nil {
		return fmt.Errorf("failed to write result \"%s\": %w", res, err)
	}
	if err := r.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// Close stops the repl if it was still running
// This will also close the reader and writer
func (r *Repl) Close() {
	r.Input.Close()
	r.Output.Close()
}
