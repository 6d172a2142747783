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

// File: cmd/tasks.go
package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	composeTool = "docker-compose"

	temporalWebService = "service/temporal-web"
	temporalWebPorts   = "8088:8088"
)

// passthrough returns a command whose arguments all go to the underlying tool.
func passthrough(use, short string, run func(ctx context.Context, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}
}

func newDeployCmd(app *App) *cobra.Command {
	return passthrough("deploy [ansible-playbook args...]", "Run the Ansible playbook",
		func(ctx context.Context, args []string) error {
			return app.run(ctx, app.Settings.deploy(args))
		})
}

func newSetupCmd(app *App) *cobra.Command {
	return passthrough("setup [ansible-galaxy args...]", "Install Python and Ansible Galaxy dependencies",
		func(ctx context.Context, args []string) error {
			return app.runSteps(ctx, app.Settings.setup(args))
		})
}

func newKubectlCmd(app *App) *cobra.Command {
	return passthrough("kubectl [kubectl args...]", "Run kubectl with the decrypted kubeconfig",
		func(ctx context.Context, args []string) error {
			return app.run(ctx, app.Settings.kubectl(args))
		})
}

func newTemporalCmd(app *App) *cobra.Command {
	temporal := &cobra.Command{
		Use:   "temporal",
		Short: "Temporal helpers",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return &UnknownCommandError{Parent: cmd.CommandPath(), Name: name}
		},
	}
	temporal.AddCommand(
		passthrough("web [kubectl port-forward args...]", "Port-forward the Temporal web UI",
			func(ctx context.Context, args []string) error {
				return app.run(ctx, app.Settings.temporalWeb(args))
			}),
		passthrough("up [docker-compose up args...]", "Start the local Temporal stack",
			func(ctx context.Context, args []string) error {
				return app.run(ctx, app.Settings.temporalUp(args))
			}),
	)
	return temporal
}

// run spawns inv, or only prints it in dry-run mode.
func (a *App) run(ctx context.Context, inv Invocation) error {
	if a.Settings.DryRun {
		if inv.Dir != "" {
			fmt.Fprintf(a.Err, "+ (cd %s) %s\n", inv.Dir, inv)
			return nil
		}
		fmt.Fprintf(a.Err, "+ %s\n", inv)
		return nil
	}
	return a.Commander.Run(ctx, inv)
}

// runSteps runs steps in order and stops at the first failure.
func (a *App) runSteps(ctx context.Context, steps []Invocation) error {
	for i, step := range steps {
		if err := a.run(ctx, step); err != nil {
			return fmt.Errorf("step %d/%d: %w", i+1, len(steps), err)
		}
	}
	return nil
}

func (s Settings) secrets() SecretsWrapper {
	return SecretsWrapper{Tool: s.SecretsTool}
}

// python runs a tool inside the project's Python environment.
func (s Settings) python(args ...string) Invocation {
	return Invocation{Dir: s.Dir, Name: s.PythonRunner, Args: append([]string{"run"}, args...)}
}

func (s Settings) deploy(args []string) Invocation {
	inv := s.python(append([]string{"ansible-playbook", s.Playbook}, args...)...)
	if s.WithSecrets {
		return s.secrets().ExecEnv(s.EnvFile, inv)
	}
	return inv
}

func (s Settings) setup(args []string) []Invocation {
	return []Invocation{
		{Dir: s.Dir, Name: s.PythonRunner, Args: []string{"install"}},
		s.python(append([]string{"ansible-galaxy", "install", "-r", s.Requirements}, args...)...),
	}
}

func (s Settings) kubectl(args []string) Invocation {
	inv := Invocation{Dir: s.Dir, Name: "kubectl", Args: args}
	return s.secrets().ExecFile(s.Kubeconfig, "KUBECONFIG", inv)
}

func (s Settings) temporalWeb(args []string) Invocation {
	return s.kubectl(append([]string{"port-forward", temporalWebService, temporalWebPorts}, args...))
}

func (s Settings) temporalUp(args []string) Invocation {
	dir := s.ComposeDir
	if !filepath.IsAbs(dir) && s.Dir != "" {
		dir = filepath.Join(s.Dir, dir)
	}
	return Invocation{Dir: dir, Name: composeTool, Args: append([]string{"up"}, args...)}
}
