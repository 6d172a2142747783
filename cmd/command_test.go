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

// File: cmd/command_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestRealCommanderExitCodes(t *testing.T) {
	sh := requireShell(t)

	for _, n := range []int{0, 1, 2, 127} {
		var out bytes.Buffer
		c := RealCommander{Stdout: &out, Stderr: &out}
		err := c.Run(context.Background(), Invocation{Name: sh, Args: []string{"-c", fmt.Sprintf("exit %d", n)}})

		assert.Equal(t, n, ExitCode(err), "exit %d", n)
		if n == 0 {
			assert.NoError(t, err)
			continue
		}
		var sub *SubprocessError
		require.True(t, errors.As(err, &sub))
		assert.Contains(t, sub.Command, "exit")
	}
}

func TestRealCommanderMissingExecutable(t *testing.T) {
	c := RealCommander{}
	err := c.Run(context.Background(), Invocation{Name: "opsctl-no-such-tool"})

	assert.Equal(t, 127, ExitCode(err))
}

func TestRealCommanderStreamsAndHonoursDir(t *testing.T) {
	sh := requireShell(t)
	dir := t.TempDir()

	var out bytes.Buffer
	c := RealCommander{Stdin: strings.NewReader("from-stdin\n"), Stdout: &out}
	err := c.Run(context.Background(), Invocation{Dir: dir, Name: sh, Args: []string{"-c", "pwd; cat"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "from-stdin", lines[1])
}

func TestRealCommanderExecute(t *testing.T) {
	sh := requireShell(t)

	out, err := RealCommander{}.Execute(sh, "-c", "echo captured")
	require.NoError(t, err)
	assert.Equal(t, "captured\n", string(out))
}

// TestSetupStopsAtFirstFailingProcess drives setup through real processes:
// the python runner is replaced by a script that fails on "install".
func TestSetupStopsAtFirstFailingProcess(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	runner := filepath.Join(dir, "runner")
	script := fmt.Sprintf("#!/bin/sh\necho \"$1\" >> %s\n[ \"$1\" = install ] && exit 4\nexit 0\n", marker)
	require.NoError(t, os.WriteFile(runner, []byte(script), 0755))

	var out, errOut bytes.Buffer
	app := &App{Commander: RealCommander{Stdout: &out, Stderr: &errOut}, Out: &out, Err: &errOut}
	code := Run(context.Background(), app, []string{"--python-runner", runner, "setup"})

	assert.Equal(t, 4, code)
	ran, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "install\n", string(ran))
}

func TestDeployPropagatesRealExitCode(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	runner := filepath.Join(dir, "runner")
	require.NoError(t, os.WriteFile(runner, []byte("#!/bin/sh\nexit 2\n"), 0755))

	var out bytes.Buffer
	app := &App{Commander: RealCommander{Stdout: &out, Stderr: &out}, Out: &out, Err: &out}
	code := Run(context.Background(), app, []string{"--python-runner", runner, "deploy", "--check"})

	assert.Equal(t, 2, code)
}
