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

// File: cmd/doctor_test.go
package cmd

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

// healthyToolchain returns a mock where every default tool resolves and
// prints a version.
func healthyToolchain() *MockCommander {
	return &MockCommander{
		Paths: map[string]string{
			"sops":             "/usr/bin/sops",
			"ansible-playbook": "/usr/bin/ansible-playbook",
			"ansible-galaxy":   "/usr/bin/ansible-galaxy",
			"kubectl":          "/usr/bin/kubectl",
			"docker-compose":   "/usr/bin/docker-compose",
			"pipenv":           "/usr/bin/pipenv",
		},
		Outputs: map[string]string{
			"/usr/bin/sops":             "sops 3.8.1 (latest)\n",
			"/usr/bin/ansible-playbook": "ansible-playbook [core 2.16.3]\n  config file = None\n",
			"/usr/bin/ansible-galaxy":   "ansible-galaxy [core 2.16.3]\n",
			"/usr/bin/kubectl":          "Client Version: v1.30.1\nKustomize Version: v5.0.4\n",
			"/usr/bin/docker-compose":   "Docker Compose version v2.27.0\n",
			"/usr/bin/pipenv":           "pipenv, version 2023.12.1\n",
		},
	}
}

func TestDoctorYAML(t *testing.T) {
	code, out, _ := runOpsctl(t, healthyToolchain(), "doctor")
	require.Equal(t, 0, code)

	var report DoctorReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, runtime.GOOS, report.OS)
	assert.Equal(t, runtime.GOARCH, report.Architecture)
	require.Len(t, report.Tools, 6)
	assert.Equal(t, ToolInfo{Name: "sops", Path: "/usr/bin/sops", Version: "sops 3.8.1 (latest)"}, report.Tools[0])
	assert.Equal(t, "Client Version: v1.30.1", report.Tools[3].Version)
}

func TestDoctorJSON(t *testing.T) {
	code, out, _ := runOpsctl(t, healthyToolchain(), "doctor", "--format", "json")
	require.Equal(t, 0, code)

	var report DoctorReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Tools, 6)
	assert.Equal(t, "ansible-playbook [core 2.16.3]", report.Tools[1].Version)
}

func TestDoctorMissingTool(t *testing.T) {
	mock := healthyToolchain()
	delete(mock.Paths, "kubectl")

	code, out, errOut := runOpsctl(t, mock, "doctor", "--format", "json")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "Summary of errors:")
	assert.Contains(t, errOut, "kubectl: not found on PATH")

	var report DoctorReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "not found", report.Tools[3].Error)
	assert.Empty(t, report.Tools[3].Path)
}

func TestDoctorUsesConfiguredRunners(t *testing.T) {
	mock := healthyToolchain()
	mock.Paths["poetry"] = "/usr/bin/poetry"
	mock.Outputs["/usr/bin/poetry"] = "Poetry (version 1.8.2)\n"

	code, out, _ := runOpsctl(t, mock, "--python-runner", "poetry", "doctor")
	require.Equal(t, 0, code)

	var report DoctorReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "poetry", report.Tools[5].Name)
	assert.Equal(t, "Poetry (version 1.8.2)", report.Tools[5].Version)
}

func TestDoctorInvalidFormat(t *testing.T) {
	code, _, errOut := runOpsctl(t, healthyToolchain(), "doctor", "--format", "xml")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "invalid format: xml")
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("yaml"))
	assert.Error(t, validateFormat("toml"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "v1", firstLine("  v1\nmore\n"))
	assert.Equal(t, "", firstLine(""))
}
