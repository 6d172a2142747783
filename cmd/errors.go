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

// File: cmd/errors.go
package cmd

import (
	"errors"
	"fmt"
)

// Exit codes for failures that do not come from a child process.
const (
	exitFailure = 1
	exitUsage   = 2
)

// UnknownCommandError reports a command name that is not registered.
type UnknownCommandError struct {
	// Parent is the command path the name was looked up under.
	Parent string
	// Name is empty when a sub-command was required but none was given.
	Name string
}

func (e *UnknownCommandError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: missing sub-command", e.Parent)
	}
	return fmt.Sprintf("unknown command %q for %q", e.Name, e.Parent)
}

// UsageError reports a malformed command line.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// SubprocessError reports a spawned command that did not exit cleanly.
type SubprocessError struct {
	Command string
	Code    int
	Err     error
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("%s: exited with code %d", e.Command, e.Code)
}

func (e *SubprocessError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var sub *SubprocessError
	if errors.As(err, &sub) {
		return sub.Code
	}
	var unknown *UnknownCommandError
	var usage *UsageError
	if errors.As(err, &unknown) || errors.As(err, &usage) {
		return exitUsage
	}
	return exitFailure
}
