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

// Description:
// This file implements the `doctor` command. It reports the host and the
// external tools opsctl shells out to, so a broken toolchain shows up before
// a deploy does.
//
// Output includes:
// - Host:
//   * Operating System
//   * Architecture
//   * Hostname
// - Tools (sops, ansible-playbook, ansible-galaxy, kubectl, docker-compose,
//   the Python runner):
//   * Resolved path
//   * First line of the version output
//
// Note:
// - Checks run one after another.
// - Any missing tool is listed in an error summary and the command fails.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// DoctorReport contains the host and toolchain information collected by doctor.
type DoctorReport struct {
	// OS is the operating system name.
	OS string `json:"os" yaml:"os"`

	// Architecture is the system's CPU architecture.
	Architecture string `json:"architecture" yaml:"architecture"`

	// Hostname is the system's network name.
	Hostname string `json:"hostname" yaml:"hostname"`

	// Tools lists every external tool in the order it was checked.
	Tools []ToolInfo `json:"tools" yaml:"tools"`
}

// ToolInfo describes one external tool.
type ToolInfo struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// toolCheck names a tool and the arguments that print its version.
type toolCheck struct {
	name        string
	versionArgs []string
}

func (s Settings) toolChecks() []toolCheck {
	return []toolCheck{
		{s.SecretsTool, []string{"--version"}},
		{"ansible-playbook", []string{"--version"}},
		{"ansible-galaxy", []string{"--version"}},
		{"kubectl", []string{"version", "--client"}},
		{composeTool, []string{"version"}},
		{s.PythonRunner, []string{"--version"}},
	}
}

func newDoctorCmd(app *App) *cobra.Command {
	doctor := &cobra.Command{
		Use:   "doctor",
		Short: "Check the tools opsctl depends on",
		Long:  `Report the host and the path and version of every external tool opsctl runs.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunDoctor(app)
		},
	}
	doctor.Flags().StringVar(&app.Settings.Format, "format", "yaml", "Output format: yaml or json")
	return doctor
}

// checkTool resolves name on PATH and reads its version.
func checkTool(c Commander, check toolCheck) (ToolInfo, error) {
	info := ToolInfo{Name: check.name}
	path, err := c.LookPath(check.name)
	if err != nil {
		info.Error = "not found"
		return info, fmt.Errorf("%s: not found on PATH: %w", check.name, err)
	}
	info.Path = path

	output, err := c.Execute(path, check.versionArgs...)
	if err != nil {
		info.Error = err.Error()
		return info, fmt.Errorf("%s: failed to execute version check: %w", check.name, err)
	}
	info.Version = firstLine(string(output))
	return info, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// RunDoctor gathers the report, writes it to app.Out in the configured
// format and fails if any tool could not be checked.
func RunDoctor(app *App) error {
	if err := validateFormat(app.Settings.Format); err != nil {
		return err
	}

	report := DoctorReport{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
	var errs []error

	if hostname, err := os.Hostname(); err == nil {
		report.Hostname = hostname
	} else {
		errs = append(errs, fmt.Errorf("hostname: failed to retrieve hostname: %w", err))
	}

	for _, check := range app.Settings.toolChecks() {
		info, err := checkTool(app.Commander, check)
		if err != nil {
			errs = append(errs, err)
		}
		report.Tools = append(report.Tools, info)
	}

	var output []byte
	var err error
	if app.Settings.Format == "json" {
		output, err = json.MarshalIndent(report, "", "  ")
	} else {
		output, err = yaml.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("output: failed to generate: %w", err)
	}
	fmt.Fprintln(app.Out, string(output))

	if len(errs) > 0 {
		fmt.Fprintln(app.Err, "\nSummary of errors:")
		for _, err := range errs {
			fmt.Fprintln(app.Err, "-", err)
		}
		return fmt.Errorf("errors occurred during toolchain check")
	}
	return nil
}
