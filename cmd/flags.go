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

// File: cmd/flags.go
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Settings holds the root flags. Each flag defaults from an OPSCTL_*
// environment variable.
type Settings struct {
	Dir          string // project directory every command runs from
	SecretsTool  string
	EnvFile      string
	Kubeconfig   string
	Playbook     string
	Requirements string
	PythonRunner string // pipenv or poetry
	ComposeDir   string

	WithSecrets bool
	DryRun      bool
	Verbose     bool

	Format string // doctor output format
}

// bindFlags registers the root flags on fs. They must precede the command
// name; everything after it is forwarded to the underlying tool.
func bindFlags(fs *pflag.FlagSet, s *Settings) {
	fs.StringVar(&s.Dir, "dir", envOr("OPSCTL_DIR", ""), "Project directory commands run from")
	fs.StringVar(&s.SecretsTool, "secrets-tool", envOr("OPSCTL_SECRETS_TOOL", "sops"), "Secrets-decryption tool providing exec-env and exec-file")
	fs.StringVar(&s.EnvFile, "env-file", envOr("OPSCTL_ENV_FILE", "env.yml"), "Encrypted environment file")
	fs.StringVar(&s.Kubeconfig, "kubeconfig", envOr("OPSCTL_KUBECONFIG", "kubeconfig.yml"), "Encrypted kubeconfig file")
	fs.StringVar(&s.Playbook, "playbook", envOr("OPSCTL_PLAYBOOK", "playbook.yml"), "Ansible playbook")
	fs.StringVar(&s.Requirements, "requirements", envOr("OPSCTL_REQUIREMENTS", "requirements.yml"), "Ansible Galaxy requirements file")
	fs.StringVar(&s.PythonRunner, "python-runner", envOr("OPSCTL_PYTHON_RUNNER", "pipenv"), "Python environment runner (pipenv or poetry)")
	fs.StringVar(&s.ComposeDir, "compose-dir", envOr("OPSCTL_COMPOSE_DIR", "temporal"), "Directory holding the local docker-compose stack")
	fs.BoolVar(&s.WithSecrets, "with-secrets", envBool("OPSCTL_WITH_SECRETS"), "Run deploy inside the decrypted env-file scope")
	fs.BoolVar(&s.DryRun, "dry-run", envBool("OPSCTL_DRY_RUN"), "Print commands instead of running them")
	fs.BoolVarP(&s.Verbose, "verbose", "v", envBool("OPSCTL_DEBUG"), "Enable debug logging")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

// validateFormat checks if the provided format is either "json" or "yaml"
func validateFormat(format string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format: %s. Valid options are 'json' or 'yaml'", format)
	}
	return nil
}
