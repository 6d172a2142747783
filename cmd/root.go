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

// File: root.go
// Package: cmd
//
// Description:
// This file contains the entry point and base configuration for the `opsctl` CLI.
// NewRootCmd builds the command table (deploy, setup, kubectl, temporal, doctor)
// once per process and Run executes exactly one command from it.
//
// Features:
// - Selects one command, or one sub-command under `temporal`, from the arguments.
// - Forwards every argument after the command name verbatim to the wrapped tool.
// - Exits with the wrapped tool's own exit code.
//
// Usage:
// - Run the `opsctl` command without any arguments to see the help message:
//   `./opsctl`
// - Root flags go before the command name:
//   `./opsctl --dry-run deploy --check`

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// App carries what every command handler needs.
type App struct {
	Settings  Settings
	Commander Commander
	Out       io.Writer
	Err       io.Writer
}

// NewApp returns an App wired to the real process environment.
func NewApp() *App {
	return &App{
		Commander: RealCommander{},
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
}

// NewRootCmd builds the command table for app. Flag defaults are read from
// the environment at this point.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "opsctl",
		Short: "Task runner for playbook deploys, cluster access and the local stack",
		Long: `The opsctl CLI runs the project's operational tasks: Ansible deploys,
kubectl inside a decrypted kubeconfig scope and the local docker-compose stack.

Arguments after the command name are passed to the underlying tool unchanged.

Examples:
  - Deploy in check mode:
    ./opsctl deploy --check

  - List pods with the decrypted kubeconfig:
    ./opsctl kubectl get pods -A

  - Print the commands instead of running them:
    ./opsctl --dry-run setup`,
		Args:             cobra.ArbitraryArgs,
		TraverseChildren: true,
		SilenceErrors:    true,
		SilenceUsage:     true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setVerbose(app.Settings.Verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if cmd.ArgsLenAtDash() == 0 {
				return &UsageError{Msg: fmt.Sprintf("unexpected \"--\" before %q: root flags end at the command name", args[0])}
			}
			return &UnknownCommandError{Parent: cmd.CommandPath(), Name: args[0]}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	bindFlags(root.Flags(), &app.Settings)

	root.AddCommand(
		newDeployCmd(app),
		newSetupCmd(app),
		newKubectlCmd(app),
		newTemporalCmd(app),
		newDoctorCmd(app),
	)
	return root
}

// Run executes the command selected by args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) int {
	if args == nil {
		args = []string{}
	}
	configureLogging(app.Err, envBool("OPSCTL_DEBUG"))

	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var sub *SubprocessError
	if errors.As(err, &sub) {
		// the tool already reported on its own stderr
		log.Debug(err)
	} else {
		log.Error(err)
	}
	return ExitCode(err)
}

// Execute runs opsctl against the process arguments and exits.
// This function is called by main.main() to start the application.
func Execute() {
	os.Exit(Run(context.Background(), NewApp(), os.Args[1:]))
}
