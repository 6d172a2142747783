// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: cmd/command.go
package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Commander interface for command execution
type Commander interface {
	// Run streams the command through the inherited standard streams and
	// blocks until it exits.
	Run(ctx context.Context, inv Invocation) error
	// Execute runs a command and returns its standard output.
	Execute(name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// RealCommander executes actual system commands. Nil streams fall back
// to the process's own.
type RealCommander struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Commander = RealCommander{}

func (c RealCommander) Run(ctx context.Context, inv Invocation) error {
	log.WithField("dir", inv.Dir).Debugf("Running command: %s", inv)

	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = orReader(c.Stdin, os.Stdin)
	cmd.Stdout = orWriter(c.Stdout, os.Stdout)
	cmd.Stderr = orWriter(c.Stderr, os.Stderr)

	if err := cmd.Start(); err != nil {
		return subprocessError(inv, err)
	}
	stop := relaySignals(cmd.Process)
	err := cmd.Wait()
	stop()
	return subprocessError(inv, err)
}

func (c RealCommander) Execute(name string, args ...string) ([]byte, error) {
	log.Debugf("Running command: %s", Invocation{Name: name, Args: args})
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

func (c RealCommander) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// relaySignals keeps opsctl alive while the child runs. SIGINT reaches the
// child from the terminal directly; SIGTERM is forwarded.
func relaySignals(p *os.Process) (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		for {
			select {
			case sig := <-sigs:
				if sig != os.Interrupt {
					_ = p.Signal(sig)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// subprocessError converts an os/exec error into a *SubprocessError
// carrying the exit code opsctl should exit with.
func subprocessError(inv Invocation, err error) error {
	if err == nil {
		return nil
	}
	code := exitFailure
	var ee *exec.ExitError
	switch {
	case errors.As(err, &ee):
		code = ee.ExitCode()
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			code = 128 + int(ws.Signal())
		}
		if code < 0 {
			code = exitFailure
		}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		code = 127
	}
	return &SubprocessError{Command: inv.String(), Code: code, Err: err}
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
